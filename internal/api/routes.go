package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	defaultClipsLimit = 20
	maxClipsLimit     = 100
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/status", statusHandler(cfg))
	r.Get("/clips", listClipsHandler(cfg))

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			Version:   cfg.Version,
			BuildTime: cfg.BuildTime,
			UptimeS:   int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		byState, err := cfg.History.CountByState(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to count clips", "INTERNAL_ERROR")
			return
		}

		var inFlight int64
		if cfg.InFlight != nil {
			inFlight = cfg.InFlight()
		}
		var pending int
		if cfg.Sessions != nil {
			pending = cfg.Sessions()
		}

		WriteJSON(w, http.StatusOK, StatusResponse{
			InFlight:        inFlight,
			PendingSessions: pending,
			ClipsByState:    byState,
			Version:         cfg.Version,
			GitCommit:       cfg.GitCommit,
		})
	}
}

func listClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultClipsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxClipsLimit {
				WriteError(w, http.StatusBadRequest, "limit must be between 1 and 100", "BAD_REQUEST")
				return
			}
			limit = n
		}

		clips, err := cfg.History.ListRecent(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list clips", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, ClipsResponse{Clips: clips})
	}
}
