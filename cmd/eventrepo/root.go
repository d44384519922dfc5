package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jensholdgaard/eventrepo/internal/clock"
	"github.com/jensholdgaard/eventrepo/internal/config"
	"github.com/jensholdgaard/eventrepo/internal/event"
	"github.com/jensholdgaard/eventrepo/internal/store"
	"github.com/jensholdgaard/eventrepo/internal/telemetry"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "eventrepo",
		Short:         "Append-only event repository",
		Long:          "eventrepo stores events in named streams under one global order and reads them back by cursor.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to configuration file (defaults and EVENTREPO_* environment when empty)")

	root.AddCommand(
		newServeCommand(),
		newCreateCommand(),
		newReadCommand(),
		newHasCommand(),
		newLastCommand(),
		newDeleteStreamCommand(),
		newVersionCommand(),
	)
	return root
}

// session is an opened repository for one CLI invocation.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	repo   event.Repository
	repos  *store.Repositories
}

func (s *session) Close() error {
	if err := s.repos.Close(); err != nil {
		return fmt.Errorf("closing %s store: %w", s.cfg.Store.Driver, err)
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
}

// openSession loads the configuration and opens the configured store. CLI
// commands do not export telemetry, so the repository is instrumented with
// a no-op provider and only its logs reach stderr.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd, cfg)

	repos, err := store.Open(cmd.Context(), cfg.Store, clock.Real{})
	if err != nil {
		return nil, err
	}
	repo, err := telemetry.Instrument(repos.Events, telemetry.NewNopProvider(), logger)
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("instrumenting repository: %w", err)
	}
	logger.DebugContext(cmd.Context(), "store opened", slog.String("driver", cfg.Store.Driver))

	return &session{cfg: cfg, logger: logger, repo: repo, repos: repos}, nil
}

// withSession runs fn against an opened repository and closes it afterwards.
func withSession(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := s.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		return fn(cmd, args, s)
	}
}
