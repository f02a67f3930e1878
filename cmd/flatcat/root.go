// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"flatcat/internal/config"
	"flatcat/internal/database"
	"flatcat/internal/denorm"
	"flatcat/internal/dialect"
)

// Exit codes: 0 success, 1 bad invocation, 2 the environment failed.
const (
	exitUserError = 1
	exitSysError  = 2
)

// sysError marks infrastructure failures (database, valkey) so Execute
// can exit 2 instead of 1.
type sysError struct{ err error }

func (e sysError) Error() string { return e.err.Error() }
func (e sysError) Unwrap() error { return e.err }

// system wraps err as a system failure. nil stays nil.
func system(err error) error {
	if err == nil {
		return nil
	}
	return sysError{err: err}
}

// rootFlags holds global flag values shared by all subcommands.
type rootFlags struct {
	configFile string
	verbose    bool
}

var flags rootFlags

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "flatcat",
		Short: "Maintains the denormalized article-category table of a shop catalog",
		Long: `Flatcat keeps article_categories_flat consistent with the category tree
and the direct article assignments. Every command is idempotent and paged,
so interrupted runs can simply be repeated.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if flags.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default: ./flatcat.yaml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().String("driver", "", "database driver: pgx or sqlite")
	root.PersistentFlags().String("dsn", "", "database connection string")
	root.PersistentFlags().Int64("page-size", 0, "rows per rebuild page")
	root.PersistentFlags().Int("max-depth", 0, "ancestor chain length treated as runaway")
	root.PersistentFlags().Bool("no-tx", false, "run multi-statement operations without transactions")

	root.AddCommand(
		newVersionCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newPathsCmd(),
		newRebuildCmd(),
		newOrphansCmd(),
		newWipeCmd(),
		newRepairCmd(),
	)

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var sys sysError
		if errors.As(err, &sys) {
			os.Exit(exitSysError)
		}
		os.Exit(exitUserError)
	}
}

// settings is the effective configuration for one command run.
type settings struct {
	driver   string
	dsn      string
	pageSize int64
	maxDepth int
	useTx    bool

	valkeyHost     string
	valkeyPort     string
	valkeyPassword string
}

// loadSettings merges configuration sources. Precedence: flags, then the
// optional config file, then environment variables with their defaults.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault("driver", cfg.DBDriver)
	v.SetDefault("dsn", cfg.DSN())
	v.SetDefault("page-size", cfg.PageSize)
	v.SetDefault("max-depth", cfg.MaxTreeDepth)
	v.SetDefault("no-tx", false)
	v.SetDefault("valkey-host", cfg.ValkeyHost)
	v.SetDefault("valkey-port", cfg.ValkeyPort)
	v.SetDefault("valkey-password", cfg.ValkeyPassword)

	if flags.configFile != "" {
		v.SetConfigFile(flags.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("flatcat")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	// Explicitly set flags win over the file and the environment.
	for _, key := range []string{"driver", "dsn", "page-size", "max-depth", "no-tx"} {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", key, err)
		}
	}

	s := &settings{
		driver:         v.GetString("driver"),
		dsn:            v.GetString("dsn"),
		pageSize:       v.GetInt64("page-size"),
		maxDepth:       v.GetInt("max-depth"),
		useTx:          !v.GetBool("no-tx"),
		valkeyHost:     v.GetString("valkey-host"),
		valkeyPort:     v.GetString("valkey-port"),
		valkeyPassword: v.GetString("valkey-password"),
	}

	// A page size of zero would loop forever in the paged runners.
	if s.pageSize < 1 {
		return nil, fmt.Errorf("page size must be positive, got %d", s.pageSize)
	}
	return s, nil
}

// openEngine connects to the configured database and builds an engine on it.
// The caller owns closing the returned handle.
func openEngine(s *settings) (*denorm.Engine, *sql.DB, error) {
	d, err := dialect.ForDriver(s.driver)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(s.driver, s.dsn)
	if err != nil {
		return nil, nil, system(fmt.Errorf("connect database: %w", err))
	}

	eng := denorm.New(db, d)
	eng.SetMaxDepth(s.maxDepth)
	if !s.useTx {
		eng.DisableTransactions()
	}
	return eng, db, nil
}
