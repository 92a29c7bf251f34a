package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/foxseedlab/vox/internal/pipeline"
	"github.com/foxseedlab/vox/internal/recognizer"
	"github.com/foxseedlab/vox/internal/translation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const statusTimeout = 2 * time.Second

// Controller is the manual start/stop surface of the pipeline.
type Controller interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Status() pipeline.Status
}

type TranslationStatus interface {
	Mode() translation.Mode
	State() translation.State
}

type Dependencies struct {
	Controller  Controller
	Translation TranslationStatus
	// Recognizer is optional.
	Recognizer  recognizer.StatusChecker
	Gatherer    prometheus.Gatherer
}

type statusResponse struct {
	Pipeline    pipeline.Status   `json:"pipeline"`
	Translation translationStatus `json:"translation"`
	Recognizer  *recognizerStatus `json:"recognizer,omitempty"`
}

type translationStatus struct {
	Mode  string `json:"mode"`
	State string `json:"state"`
}

type recognizerStatus struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, buildStatus(r.Context(), deps))
	})
	r.Route("/session", func(r chi.Router) {
		r.Post("/start", func(w http.ResponseWriter, r *http.Request) {
			if err := deps.Controller.Start(r.Context()); err != nil {
				slog.Error("manual start failed", "error", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, deps.Controller.Status())
		})
		r.Post("/stop", func(w http.ResponseWriter, r *http.Request) {
			if err := deps.Controller.Stop(r.Context()); err != nil {
				slog.Error("manual stop failed", "error", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, deps.Controller.Status())
		})
	})
	return r
}

func buildStatus(ctx context.Context, deps Dependencies) statusResponse {
	resp := statusResponse{
		Pipeline: deps.Controller.Status(),
		Translation: translationStatus{
			Mode:  string(deps.Translation.Mode()),
			State: deps.Translation.State().String(),
		},
	}
	if deps.Recognizer != nil {
		ctx, cancel := context.WithTimeout(ctx, statusTimeout)
		defer cancel()
		status, err := deps.Recognizer.Status(ctx)
		if err != nil {
			resp.Recognizer = &recognizerStatus{Error: err.Error()}
		} else {
			resp.Recognizer = &recognizerStatus{Status: status}
		}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}
