package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/batvoice-org/timesheetbot/internal/config"
	"github.com/batvoice-org/timesheetbot/internal/metrics"
	"github.com/batvoice-org/timesheetbot/internal/scheduler"
	"github.com/batvoice-org/timesheetbot/internal/sheets"
	slackmsg "github.com/batvoice-org/timesheetbot/internal/slack"
	"github.com/batvoice-org/timesheetbot/internal/store"
	"github.com/batvoice-org/timesheetbot/internal/timesheet"
)

// Core bundles the long-lived components shared by the server and the
// one-shot CLI commands.
type Core struct {
	Repo      store.Repo
	Messenger *slackmsg.Client
	Service   *timesheet.Service
	Exporter  *sheets.Exporter // nil when no sheet is configured
}

// OpenCore opens the database and builds the service stack.
func OpenCore(ctx context.Context, cfg config.Config, log *zap.Logger) (*Core, error) {
	if cfg.SlackBotToken == "" {
		return nil, errors.New("SLACK_BOT_TOKEN is required")
	}

	repo, err := store.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	log.Info("sqlite ready", zap.String("path", cfg.DBPath))

	msgr := slackmsg.NewClient(cfg.SlackBotToken, repo, log)
	svc := timesheet.New(repo, msgr, cfg.Rules(), log)

	exporter, err := sheets.NewExporter(ctx, cfg.SheetURL, cfg.SheetCredsFile, repo, log)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	if exporter == nil {
		log.Info("no spreadsheet configured, export disabled")
	}

	return &Core{Repo: repo, Messenger: msgr, Service: svc, Exporter: exporter}, nil
}

// Close releases the core's resources.
func (c *Core) Close() {
	_ = c.Repo.Close()
}

// App is the long-running server: Slack interaction endpoint plus the
// hourly scheduler.
type App struct {
	cfg config.Config
	log *zap.Logger
}

// New validates configuration and returns an App.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	if cfg.SlackBotToken == "" {
		return nil, errors.New("SLACK_BOT_TOKEN is required")
	}
	return &App{cfg: cfg, log: log}, nil
}

// Run starts the HTTP server and the scheduler, then blocks until a
// shutdown signal arrives.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting timesheetbot", zap.String("http", a.cfg.HTTPAddr))

	core, err := OpenCore(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}
	defer core.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/slack", &interactionHandler{
		core:          core,
		signingSecret: a.cfg.SlackSigningSecret,
		log:           a.log,
	})

	srv := &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	var exp scheduler.Exporter
	if core.Exporter != nil {
		exp = core.Exporter
	}
	sched := scheduler.New(core.Service, exp, a.log)
	go func() {
		if err := sched.Run(ctx); err != nil {
			a.log.Error("scheduler error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	a.log.Info("shutdown signal received")

	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = srv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	return nil
}
