// Package httpapi exposes the feedback analytics over HTTP.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"care-feedback-go/internal/actionable"
	"care-feedback-go/internal/dataset"
	"care-feedback-go/internal/logger"
	"care-feedback-go/internal/metrics"
	"care-feedback-go/internal/pipeline"
	"care-feedback-go/internal/roster"
)

// SessionHeader identifies a viewer whose older feedback queries are
// superseded by newer ones.
const SessionHeader = "X-Session-ID"

type Handler struct {
	pipeline *pipeline.Pipeline
	sessions *pipeline.Sessions
	loader   *dataset.Loader
	roster   roster.Source
	log      *logger.Logger

	profiles  roster.ProfileSource
	checklist actionable.Checklist
}

func NewHandler(p *pipeline.Pipeline, loader *dataset.Loader, rosterSource roster.Source, log *logger.Logger) *Handler {
	return &Handler{
		pipeline: p,
		sessions: pipeline.NewSessions(p, 1024),
		loader:   loader,
		roster:   rosterSource,
		log:      log.Component("httpapi"),
	}
}

// WithProfiles enables the checklist and goal history routes. Without it
// they answer 501.
func (h *Handler) WithProfiles(src roster.ProfileSource, checklist actionable.Checklist) *Handler {
	h.profiles = src
	h.checklist = checklist
	return h
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/residents", h.HandleResidents)
	r.Get("/staff", h.HandleStaff)
	r.Get("/analyses", h.HandleListAnalyses)
	r.Get("/available-dates", h.HandleAvailableDates)
	r.Get("/feedback", h.HandleFeedback)
	r.Get("/resident-info", h.HandleResidentInfo)
	r.Get("/care-plan-suggestions", h.HandlePlanSuggestions)
	r.Get("/checklist", h.HandleChecklist)
	r.Get("/goal-history", h.HandleGoalHistory)
	return r
}

// observe logs every request and records route metrics.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLog := h.log.WithRequest(r)
		w.Header().Set("X-Request-ID", logger.RequestID(r))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())

		entry := reqLog.WithField("status", status).WithField("duration_ms", elapsed.Milliseconds())
		if status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request handled")
	})
}
