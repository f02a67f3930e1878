// Package main is the entry point for the flatcat maintenance CLI.
// It wires configuration, the database, and the denormalization engine
// into cobra commands for batch rebuilds and repairs.
package main

func main() {
	Execute()
}
