// Package agent runs the complete research workflow: collect market data,
// generate the briefing, render and persist the report, then deliver it.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/marketbrief/internal/mailer"
	"github.com/marketbrief/internal/model"
	"github.com/marketbrief/internal/report"
)

const reportSubject = "Daily Market Research Report"

// Collector produces a market snapshot.
type Collector interface {
	Collect(ctx context.Context) *model.Snapshot
}

// Analyst turns a snapshot into briefing markdown.
type Analyst interface {
	Briefing(ctx context.Context, snap *model.Snapshot, now time.Time) (string, error)
}

// Renderer wraps briefing markdown into the HTML email document.
type Renderer interface {
	EmailHTML(markdown string, now time.Time) (string, error)
}

// EmailSender delivers the report email.
type EmailSender interface {
	Configured() bool
	SendWithRetry(msg mailer.Message, maxRetry int) error
}

// SlackSender posts the briefing to Slack.
type SlackSender interface {
	Configured() bool
	SendBriefing(ctx context.Context, analysis string, now time.Time) error
}

// ReportStore persists reports and run outcomes.
type ReportStore interface {
	SaveReport(ctx context.Context, r *model.Report) error
	RecordRun(ctx context.Context, run *model.Run) error
}

// Agent orchestrates one research run end to end.
type Agent struct {
	collector Collector
	analyst   Analyst
	renderer  Renderer
	mailer    EmailSender
	slack     SlackSender
	store     ReportStore // may be nil: run without persistence

	toEmail    string
	reportsDir string
	loc        *time.Location
	logger     *slog.Logger
}

type Options struct {
	ToEmail    string
	ReportsDir string
	Location   *time.Location
}

func New(collector Collector, an Analyst, renderer Renderer, m EmailSender, s SlackSender, st ReportStore, opts Options, logger *slog.Logger) *Agent {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Agent{
		collector:  collector,
		analyst:    an,
		renderer:   renderer,
		mailer:     m,
		slack:      s,
		store:      st,
		toEmail:    opts.ToEmail,
		reportsDir: opts.ReportsDir,
		loc:        loc,
		logger:     logger,
	}
}

// Run executes the pipeline once. Collection failures degrade; an empty
// snapshot or a double model failure fails the run. Delivery failures are
// recorded and only fail the run when every configured channel failed.
func (a *Agent) Run(ctx context.Context) (*model.RunResult, error) {
	started := time.Now().In(a.loc)
	a.logger.Info("agent: starting market research run", "time", started.Format(time.RFC3339))

	snap := a.collector.Collect(ctx)

	analysis, err := a.analyst.Briefing(ctx, snap, started)
	if err != nil {
		a.recordRun(ctx, &model.Run{Status: model.RunStatusFailed, Error: err.Error(), StartedAt: started})
		return nil, fmt.Errorf("agent: analysis failed: %w", err)
	}

	html, err := a.renderer.EmailHTML(analysis, started)
	if err != nil {
		a.recordRun(ctx, &model.Run{Status: model.RunStatusFailed, Error: err.Error(), StartedAt: started})
		return nil, err
	}

	rep := &model.Report{
		ID:        uuid.NewString(),
		Subject:   reportSubject,
		Markdown:  analysis,
		HTML:      html,
		CreatedAt: started,
	}

	result := &model.RunResult{ReportID: rep.ID}

	path, err := report.SaveHTML(a.reportsDir, html, started)
	if err != nil {
		a.logger.Warn("agent: report file not written", "err", err)
	} else {
		result.ReportPath = path
		a.logger.Info("agent: report saved", "path", path)
	}

	if a.store != nil {
		if err := a.store.SaveReport(ctx, rep); err != nil {
			a.logger.Warn("agent: report not persisted", "err", err)
		}
	}

	emailErr := a.deliverEmail(rep)
	result.EmailSent = emailErr == nil && a.mailer.Configured()

	slackErr := a.deliverSlack(ctx, analysis, started)
	result.SlackSent = slackErr == nil && a.slack.Configured()

	run := &model.Run{
		ReportID:  rep.ID,
		Status:    model.RunStatusOK,
		EmailSent: result.EmailSent,
		SlackSent: result.SlackSent,
		StartedAt: started,
	}

	anyConfigured := a.mailer.Configured() || a.slack.Configured()
	if anyConfigured && !result.EmailSent && !result.SlackSent {
		err := fmt.Errorf("agent: all delivery channels failed: email: %v; slack: %v", emailErr, slackErr)
		run.Status = model.RunStatusFailed
		run.Error = err.Error()
		a.recordRun(ctx, run)
		return result, err
	}

	a.recordRun(ctx, run)
	a.logger.Info("agent: market research completed",
		"report_id", rep.ID, "email_sent", result.EmailSent, "slack_sent", result.SlackSent)
	return result, nil
}

func (a *Agent) deliverEmail(rep *model.Report) error {
	if !a.mailer.Configured() {
		a.logger.Warn("agent: email delivery skipped (not configured)")
		return nil
	}
	err := a.mailer.SendWithRetry(mailer.Message{
		To:        []string{a.toEmail},
		Subject:   rep.Subject,
		Body:      rep.HTML,
		PlainBody: rep.Markdown,
		IsHTML:    true,
	}, 2)
	if err != nil {
		a.logger.Error("agent: email delivery failed", "err", err)
		return err
	}
	return nil
}

func (a *Agent) deliverSlack(ctx context.Context, analysis string, now time.Time) error {
	if !a.slack.Configured() {
		a.logger.Info("agent: slack notification skipped (not configured)")
		return nil
	}
	if err := a.slack.SendBriefing(ctx, analysis, now); err != nil {
		a.logger.Error("agent: slack delivery failed", "err", err)
		return err
	}
	return nil
}

func (a *Agent) recordRun(ctx context.Context, run *model.Run) {
	if a.store == nil {
		return
	}
	run.ID = uuid.NewString()
	run.FinishedAt = time.Now().In(a.loc)
	if err := a.store.RecordRun(ctx, run); err != nil {
		a.logger.Warn("agent: run not recorded", "err", err)
	}
}
