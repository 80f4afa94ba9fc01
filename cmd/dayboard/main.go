// Command dayboard is a terminal client for the personal productivity
// backend: a daily dashboard, kanban tasks, habits, goals, events, diary
// and notifications.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nhle/dayboard/internal/api"
	"github.com/nhle/dayboard/internal/app"
	"github.com/nhle/dayboard/internal/config"
	"github.com/nhle/dayboard/internal/credential"
	"github.com/nhle/dayboard/internal/dashboard"
	"github.com/nhle/dayboard/internal/focus"
	"github.com/nhle/dayboard/internal/guard"
	"github.com/nhle/dayboard/internal/kanban"
	"github.com/nhle/dayboard/internal/logger"
	"github.com/nhle/dayboard/internal/notify"
	"github.com/nhle/dayboard/internal/session"
	"github.com/nhle/dayboard/internal/store"
)

// snapshotRetention is how long an unused cached dashboard is kept.
const snapshotRetention = 30 * 24 * time.Hour

// storedTokens exposes the token store to the HTTP transport.
type storedTokens struct {
	credential.TokenStore
}

func (t storedTokens) Token() (string, bool) {
	return credential.Lookup(t.TokenStore)
}

func main() {
	configPath, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "dayboard: %v\n", err)
		os.Exit(2)
	}

	if err := run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "dayboard: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags returns the configuration file path selected by args.
func parseFlags(args []string) (string, error) {
	fs := pflag.NewFlagSet("dayboard", pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", config.DefaultPath(), "path to the configuration file")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return *configPath, nil
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
		File:     cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer closeLog.Close()

	tokens, err := credential.OpenKeyring(cfg.Credentials.Dir)
	if err != nil {
		return err
	}

	cache, err := store.NewSQLiteStore(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer cache.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if n, err := cache.PruneSnapshots(ctx, time.Now().Add(-snapshotRetention).Unix()); err != nil {
		log.Warn("pruning cached snapshots", zap.Error(err))
	} else if n > 0 {
		log.Info("pruned cached snapshots", zap.Int64("count", n))
	}

	client := api.NewClient(api.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.RequestTimeout(),
		MaxRequestsPerSec: cfg.API.MaxRequestsPerSec,
		Tokens:            storedTokens{tokens},
		Logger:            log,
	})
	svc := api.NewServices(client)

	sess := session.New(tokens, svc.Auth,
		session.WithLogger(log),
		session.WithExpiryCheck(cfg.ExpiryCheckInterval()),
	)
	sess.Start(ctx)
	defer sess.Close()

	agg := dashboard.New(dashboard.APISource{Services: svc},
		dashboard.WithLogger(log),
		dashboard.WithCache(cache, sess.Account),
	)
	defer agg.Close()

	poller := notify.New(svc.Notifications, notify.Config{
		Interval:  cfg.PollInterval(),
		Limit:     cfg.Notifications.Limit,
		OnFailure: notify.FailurePolicy(cfg.Notifications.OnFailure),
	}, log)
	defer poller.Stop()

	root := app.New(app.Deps{
		Session:   sess,
		Services:  svc,
		Router:    guard.NewRouter(guard.AuthGuard{Session: sess}, guard.AdminGuard{Tokens: tokens, Log: log}),
		Dashboard: agg,
		Actions:   dashboard.NewActions(agg, svc, log),
		Poller:    poller,
		Kanban:    kanban.NewService(svc.Tasks, log),
		Recorder:  focus.NewRecorder(svc.Focus, log),
		Log:       log,

		Config:     cfg,
		ConfigPath: configPath,
	})
	defer root.Close()

	log.Info("starting", zap.String("api", cfg.API.BaseURL), zap.String("config", configPath))
	if _, err := tea.NewProgram(root, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}
