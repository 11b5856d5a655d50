package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/marketbrief/internal/handler"
	"github.com/marketbrief/internal/middleware"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)

	// Health check
	r.Get("/api/health", handler.Health(app.db))

	// Stored reports
	reportsHandler := handler.NewReportsHandler(app.logger, app.reports)
	r.Get("/api/reports", reportsHandler.List)
	r.Get("/api/reports/{id}", reportsHandler.Get)

	// Research trigger (cron platforms POST here)
	researchHandler := handler.NewResearchHandler(app.logger, app.agent, app.config.RunTimeout)
	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerToken(app.config.CronSecret))
		r.Use(middleware.RateLimit(rate.Limit(float64(app.config.RateLimitPerMinute)/60.0), app.config.RateLimitPerMinute))
		r.Post("/api/research/run", researchHandler.Trigger)
	})

	return r
}
