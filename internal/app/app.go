package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marketbrief/internal/agent"
	"github.com/marketbrief/internal/analyst"
	"github.com/marketbrief/internal/config"
	"github.com/marketbrief/internal/llm"
	"github.com/marketbrief/internal/mailer"
	"github.com/marketbrief/internal/market"
	"github.com/marketbrief/internal/notify"
	"github.com/marketbrief/internal/report"
	"github.com/marketbrief/internal/scheduler"
	"github.com/marketbrief/internal/store"
)

type App struct {
	config    *config.Config
	logger    *slog.Logger
	db        *sql.DB
	reports   *store.ReportStore
	agent     *agent.Agent
	scheduler *scheduler.Scheduler
}

func (app *App) Close() {
	app.db.Close()
}

func New() (*App, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := NewLogger(cfg)

	ctx := context.Background()
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ag, err := BuildAgent(cfg, logger, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		db.Close()
		return nil, err
	}

	sched, err := scheduler.New(cfg.ResearchSchedule, loc, cfg.RunTimeout, func(ctx context.Context) {
		if _, err := ag.Run(ctx); err != nil {
			logger.Error("scheduled run failed", "err", err)
		}
	}, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		config:    cfg,
		logger:    logger,
		db:        db,
		reports:   store.NewReportStore(db),
		agent:     ag,
		scheduler: sched,
	}, nil
}

// BuildAgent wires the research pipeline. Shared by the server and the
// one-shot CLI.
func BuildAgent(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*agent.Agent, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client := market.NewClient(cfg.FMPAPIKey, logger)
	browser := market.NewBrowserCollector(logger)
	collector := market.NewCollector(client, browser, logger)

	primary := llm.New(llm.Config{
		APIKey:      cfg.GroqAPIKey,
		BaseURL:     cfg.GroqBaseURL,
		Model:       cfg.GroqModel,
		Temperature: 0.1,
	})
	fallback := llm.New(llm.Config{
		APIKey:      cfg.GroqAPIKey,
		BaseURL:     cfg.GroqBaseURL,
		Model:       cfg.GroqFallbackModel,
		Temperature: 0.1,
	})
	an := analyst.New(primary, fallback, logger)

	m := mailer.New(mailer.Config{
		SendGridAPIKey: cfg.SendGridAPIKey,
		SMTPHost:       cfg.SMTPHost,
		SMTPPort:       cfg.SMTPPort,
		SMTPUsername:   cfg.SMTPUsername,
		SMTPPassword:   cfg.SMTPPassword,
		FromName:       cfg.FromName,
		FromAddress:    cfg.FromEmail,
	}, logger)

	slackNotifier := notify.NewSlack(cfg.SlackBotToken, cfg.SlackChannel, logger)

	var reportStore agent.ReportStore
	if db != nil {
		reportStore = store.NewReportStore(db)
	}

	return agent.New(collector, an, report.NewRenderer(), m, slackNotifier, reportStore, agent.Options{
		ToEmail:    cfg.ToEmail,
		ReportsDir: cfg.ReportsDir,
		Location:   loc,
	}, logger), nil
}

func (app *App) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", app.config.Port),
		Handler:     app.routes(),
		IdleTimeout: time.Minute,
		ReadTimeout: 5 * time.Second,
		// The trigger endpoint runs the pipeline synchronously.
		WriteTimeout: app.config.RunTimeout + 10*time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	app.scheduler.Start()

	g.Go(func() error {
		app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "schedule", app.config.ResearchSchedule)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done() // OS signal or sibling failure

		app.logger.Info("shutting down")
		app.scheduler.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	app.logger.Info("stopped server")
	return nil
}

// NewLogger builds the process logger and installs it as the slog default.
func NewLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	slog.SetDefault(logger)
	return logger
}
