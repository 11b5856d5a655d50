package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/marketbrief/internal/model"
)

// ErrNotFound is returned when a report id has no row.
var ErrNotFound = errors.New("store: report not found")

const timeLayout = time.RFC3339

// ReportStore reads and writes reports and run records.
type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// SaveReport inserts a generated report.
func (s *ReportStore) SaveReport(ctx context.Context, r *model.Report) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, subject, markdown, html, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.Subject, r.Markdown, r.HTML, r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("store: save report: %w", err)
	}
	return nil
}

// GetReport returns one report with its full body.
func (s *ReportStore) GetReport(ctx context.Context, id string) (*model.Report, error) {
	var r model.Report
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, subject, markdown, html, created_at FROM reports WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Subject, &r.Markdown, &r.HTML, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get report: %w", err)
	}
	r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &r, nil
}

// ListReports returns the most recent reports without their bodies.
func (s *ReportStore) ListReports(ctx context.Context, limit int) ([]model.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, created_at FROM reports ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list reports: %w", err)
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		var r model.Report
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Subject, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan report: %w", err)
		}
		r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// RecordRun inserts the outcome of a pipeline execution.
func (s *ReportStore) RecordRun(ctx context.Context, run *model.Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, report_id, status, email_sent, slack_sent, error, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.ReportID, run.Status, run.EmailSent, run.SlackSent, run.Error,
		run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("store: record run: %w", err)
	}
	return nil
}
