package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/marketbrief/internal/model"
)

// Runner executes one research run.
type Runner interface {
	Run(ctx context.Context) (*model.RunResult, error)
}

type ResearchHandler struct {
	BaseHandler
	runner  Runner
	timeout time.Duration
}

func NewResearchHandler(logger *slog.Logger, runner Runner, timeout time.Duration) *ResearchHandler {
	return &ResearchHandler{
		BaseHandler: BaseHandler{Logger: logger},
		runner:      runner,
		timeout:     timeout,
	}
}

// Trigger runs the pipeline synchronously and reports the outcome, mirroring
// what a cron platform expects: 200 with a summary on success, 500 otherwise.
func (h *ResearchHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("research trigger received", "remote", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	timestamp := time.Now().UTC().Format(time.RFC3339)
	result, err := h.runner.Run(ctx)
	if err != nil {
		h.logError(r, err)
		resp := envelope{
			"success":   false,
			"timestamp": timestamp,
			"error":     err.Error(),
			"message":   "Market research failed",
		}
		if writeErr := h.writeJSON(w, http.StatusInternalServerError, resp, nil); writeErr != nil {
			h.logError(r, writeErr)
		}
		return
	}

	resp := envelope{
		"success":    true,
		"timestamp":  timestamp,
		"report_id":  result.ReportID,
		"email_sent": result.EmailSent,
		"slack_sent": result.SlackSent,
		"message":    "Market research completed successfully",
	}
	if err := h.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		h.logError(r, err)
	}
}
