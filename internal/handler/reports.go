package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/marketbrief/internal/model"
	"github.com/marketbrief/internal/store"
)

const listLimit = 20

// ReportReader is the store surface the reports handler needs.
type ReportReader interface {
	ListReports(ctx context.Context, limit int) ([]model.Report, error)
	GetReport(ctx context.Context, id string) (*model.Report, error)
}

type ReportsHandler struct {
	BaseHandler
	reports ReportReader
}

func NewReportsHandler(logger *slog.Logger, reports ReportReader) *ReportsHandler {
	return &ReportsHandler{BaseHandler: BaseHandler{Logger: logger}, reports: reports}
}

// List returns recent reports without their bodies.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.ListReports(r.Context(), listLimit)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	items := make([]envelope, 0, len(reports))
	for _, rep := range reports {
		items = append(items, envelope{
			"id":         rep.ID,
			"subject":    rep.Subject,
			"created_at": rep.CreatedAt,
			"age":        humanize.Time(rep.CreatedAt),
		})
	}

	if err := h.writeJSON(w, http.StatusOK, envelope{"reports": items}, nil); err != nil {
		h.logError(r, err)
	}
}

// Get serves one stored report as HTML.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rep, err := h.reports.GetReport(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.notFoundResponse(w, r)
		return
	}
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rep.HTML))
}
