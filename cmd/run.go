package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/app"
	"github.com/abhisek/examprep/internal/config"
	"github.com/abhisek/examprep/internal/screens/flow"
	"github.com/abhisek/examprep/internal/session"
	"github.com/abhisek/examprep/internal/store"
)

// runtime is what every command works against: configuration, a logger,
// the store and the session engine built on it.
type runtime struct {
	cfg    config.Config
	logger *slog.Logger
	repo   store.Repository
	engine *session.Engine

	logCloser io.Closer
}

// openRuntime loads the configuration and opens the store. logOut receives
// log lines when no log file is configured; nil discards them, which keeps
// the terminal UI clean.
func openRuntime(cmd *cobra.Command, logOut io.Writer) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := cfg.Log.NewLogger(logOut)
	if err != nil {
		return nil, err
	}

	driver, err := store.ParseDriver(cfg.Driver)
	if err != nil {
		logCloser.Close()
		return nil, err
	}
	st, err := store.Open(cmdContext(cmd), store.Options{Driver: driver, DSN: cfg.DSN})
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", "driver", driver, "dialect", st.Dialect())
	repo := store.WithLogging(st, logger)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	planner := session.NewPlanner(repo, session.PlansFromConfig(cfg), rand.New(rand.NewSource(seed)))
	planner.BankSource = cfg.BankSource

	return &runtime{
		cfg:       cfg,
		logger:    logger,
		repo:      repo,
		engine:    session.NewEngine(repo, planner, session.Options{Logger: logger}),
		logCloser: logCloser,
	}, nil
}

func (rt *runtime) Close() error {
	return errors.Join(rt.repo.Close(), rt.logCloser.Close())
}

func (rt *runtime) deps(ctx context.Context) flow.Deps {
	return flow.Deps{Context: ctx, Engine: rt.engine, Repo: rt.repo, Logger: rt.logger}
}

// runApp opens the store, builds dependencies, and launches the TUI. A
// non-empty retakeID or mode opens that session straight away.
func runApp(cmd *cobra.Command, mode, retakeID string) error {
	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmdContext(cmd)
	deps := rt.deps(ctx)

	var start tea.Cmd
	switch {
	case retakeID != "":
		start = deps.Retake(retakeID)
	case mode != "":
		m, err := parseMode(mode)
		if err != nil {
			return err
		}
		topic, _ := cmd.Flags().GetString("topic")
		start = deps.Start(m, topic)
	}
	return app.Run(ctx, deps, start)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
