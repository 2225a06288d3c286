package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GRUUUUDD/dublicate/internal/actions"
	"github.com/GRUUUUDD/dublicate/internal/config"
	"github.com/GRUUUUDD/dublicate/internal/database"
	"github.com/GRUUUUDD/dublicate/internal/index"
	dlog "github.com/GRUUUUDD/dublicate/internal/log"
	"github.com/GRUUUUDD/dublicate/internal/scanner"
)

// app holds the components shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	index   *index.Index
	scanner *scanner.Scanner
	actions *actions.Actions
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getConfigFlag retrieves the config path from the command or its parent.
func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// loadConfig resolves and validates the configuration. A broken file is
// reported and the defaults are used; an explicit path that does not exist
// is an error.
func loadConfig(cmd *cobra.Command, logger *slog.Logger) (*config.Config, error) {
	explicit := getConfigFlag(cmd)
	cfg, err := config.Load(explicit)
	if err != nil {
		if cfg == nil {
			return nil, err
		}
		logger.Warn("failed to load configuration, using defaults", "path", cfg.ConfigFilePath, "error", err)
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// newApp builds the configuration, logger, index, scanner and actions.
// A corrupt or mismatching index file is reported and an empty index is used.
func newApp(cmd *cobra.Command, opts ...scanner.Option) (*app, error) {
	logger := dlog.NewLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
	slog.SetDefault(logger)

	cfg, err := loadConfig(cmd, logger)
	if err != nil {
		return nil, err
	}

	idx, err := index.Open(cfg, index.WithLogger(logger))
	if err != nil {
		if !index.IsStorageError(err) {
			return nil, err
		}
		logger.Warn("starting with an empty index", "path", idx.Path(), "error", err)
		if errors.Is(err, index.ErrAlgorithmMismatch) {
			fmt.Fprintf(cmd.ErrOrStderr(),
				"Warning: the index was built with a different hash algorithm; run \"dupman scan\" again.\n")
		}
	}

	sc, err := scanner.New(cfg, idx, append([]scanner.Option{scanner.WithLogger(logger)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		index:   idx,
		scanner: sc,
		actions: actions.New(idx, actions.WithLogger(logger)),
	}, nil
}

// openHistory opens the history database, or returns nil when history is
// disabled or cannot be opened.
func (a *app) openHistory() *database.HistoryDB {
	if a.cfg.HistoryDir == "" {
		return nil
	}
	db, err := database.Open(a.cfg.HistoryDir, database.DefaultOptions())
	if err != nil {
		a.logger.Warn("scan history disabled", "dir", a.cfg.HistoryDir, "error", err)
		return nil
	}
	return db
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
