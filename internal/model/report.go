package model

import "time"

// Run statuses recorded in the runs table.
const (
	RunStatusOK     = "ok"
	RunStatusFailed = "failed"
)

// Report is one generated market briefing.
type Report struct {
	ID        string
	Subject   string
	Markdown  string
	HTML      string
	CreatedAt time.Time
}

// Run records the outcome of a single pipeline execution.
type Run struct {
	ID         string
	ReportID   string // empty when the run failed before a report was produced
	Status     string
	EmailSent  bool
	SlackSent  bool
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunResult is returned to callers that trigger a run (CLI, HTTP, scheduler).
type RunResult struct {
	ReportID   string
	ReportPath string
	EmailSent  bool
	SlackSent  bool
}
