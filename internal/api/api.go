package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Shahin2512/HCP-Module/internal/storage"
)

const (
	maxRequestBodySize = 1 << 20 // 1MB
	defaultPageLimit   = 100

	// Prefix is where the record store API is mounted.
	Prefix = "/api/v1"
)

// AppDeps holds what the record store handlers need.
type AppDeps struct {
	Store  *storage.Store
	Logger *slog.Logger
	// Now is the clock used for default interaction dates; nil means
	// time.Now.
	Now func() time.Time
}

func (d AppDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d AppDeps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// NewAppHandler returns the record store HTTP API: HCP and interaction
// resources plus the chat logging endpoint, under Prefix.
func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(deps.logger()))
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth)
	r.Get("/", handleRoot)

	r.Route(Prefix, func(r chi.Router) {
		r.Get("/hcps", handleListHCPs(deps))
		r.Get("/hcps/", handleListHCPs(deps))
		r.Post("/hcps", handleCreateHCP(deps))
		r.Post("/hcps/", handleCreateHCP(deps))
		r.Get("/hcps/{id}", handleGetHCP(deps))

		r.Get("/interactions", handleListInteractions(deps))
		r.Get("/interactions/", handleListInteractions(deps))
		r.Post("/interactions", handleCreateInteraction(deps))
		r.Post("/interactions/", handleCreateInteraction(deps))
		r.Post("/interactions/chat", handleChat(deps))
		r.Get("/interactions/{id}", handleGetInteraction(deps))
		r.Put("/interactions/{id}", handleUpdateInteraction(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "HCP CRM record store"})
}

// accessLog logs one line per request with chi's request id.
func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// httpError replies with a FastAPI-style {"detail": "..."} body.
func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]string{"detail": fmt.Sprintf(format, args...)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusUnprocessableEntity, "invalid request body: %v", err)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, "id must be an integer")
		return 0, false
	}
	return id, true
}

// page reads skip/limit query parameters, defaulting to 0 and 100.
func page(w http.ResponseWriter, r *http.Request) (skip, limit int, ok bool) {
	skip, limit = 0, defaultPageLimit
	q := r.URL.Query()
	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httpError(w, http.StatusUnprocessableEntity, "skip must be a non-negative integer")
			return 0, 0, false
		}
		skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httpError(w, http.StatusUnprocessableEntity, "limit must be a positive integer")
			return 0, 0, false
		}
		limit = n
	}
	return skip, limit, true
}
