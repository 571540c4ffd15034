// Package diagnostics exposes the runtime's introspection/control
// surface: health, metrics, world/module snapshots, a rate-limited
// reload trigger, and a websocket relay of selected event-bus topics.
// Grounded on the teacher's infrastructure/middleware health/ratelimit
// handlers and its service-auth JWT middleware, reassembled behind a
// chi router (the teacher's own second HTTP router dependency) instead
// of its gin-based gateway, since this surface is a handful of routes
// rather than a full REST API.
package diagnostics

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/CalistaVerner/kalitech/internal/eventbus"
	"github.com/CalistaVerner/kalitech/internal/kalitech"
	"github.com/CalistaVerner/kalitech/internal/logging"
)

// World is the narrow view the /world and /reload endpoints need from
// the orchestrator; declared locally to avoid diagnostics depending on
// the orchestrator package's full surface (and to dodge an import cycle
// if the orchestrator ever wants to report through diagnostics too).
type World interface {
	Describe() WorldSnapshot
	RequestReload()
}

// ModuleLister is the narrow view of the module registry diagnostics needs.
type ModuleLister interface {
	Describe() []ModuleSnapshot
}

// WorldSnapshot is the JSON body for GET /world.
type WorldSnapshot struct {
	Built   bool             `json:"built"`
	Systems []SystemSnapshot `json:"systems,omitempty"`
}

// SystemSnapshot describes one running KSystem entry.
type SystemSnapshot struct {
	ProviderID string `json:"providerId"`
	StableID   string `json:"stableId,omitempty"`
	Order      int    `json:"order"`
}

// ModuleSnapshot mirrors scripting.Descriptor without importing the
// scripting package directly from diagnostics.
type ModuleSnapshot struct {
	ID         string `json:"id"`
	SourceHash string `json:"sourceHash"`
	Version    uint64 `json:"version"`
	State      string `json:"state"`
	LastError  string `json:"lastError,omitempty"`
}

// Options configures the diagnostics HTTP server.
type Options struct {
	Addr          string
	Token         string // when non-empty, bearer-token-gated via HS256 JWT
	Log           *logging.Logger
	Events        *eventbus.Bus
	World         World
	Modules       ModuleLister
	ReloadLimiter rate.Limit // requests/sec allowed against /reload
	StartedAt     time.Time
}

// Server wraps an http.Server plus the chi router backing it.
type Server struct {
	http    *http.Server
	log     *logging.Logger
	started time.Time
}

// New builds a diagnostics Server; call ListenAndServe to start it.
func New(opts Options) *Server {
	if opts.StartedAt.IsZero() {
		opts.StartedAt = time.Now()
	}
	if opts.ReloadLimiter <= 0 {
		opts.ReloadLimiter = rate.Limit(1) // one reload request per second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(opts.Log))

	r.Get("/healthz", healthHandler(opts.StartedAt))
	r.Handle("/metrics", promhttp.Handler())

	authed := r.With(bearerAuth(opts.Token))
	authed.Get("/world", worldHandler(opts.World))
	authed.Get("/world/query", worldQueryHandler(opts.World))
	authed.Get("/modules", modulesHandler(opts.Modules))

	reloadLimiter := rate.NewLimiter(opts.ReloadLimiter, 1)
	authed.Post("/reload", reloadHandler(opts.World, reloadLimiter))

	if opts.Events != nil {
		authed.Get("/ws/events", eventsWebsocketHandler(opts.Events, opts.Log))
	}

	return &Server{
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log:     opts.Log,
		started: opts.StartedAt,
	}
}

// ListenAndServe blocks serving the diagnostics surface until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func requestLogger(log *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if log != nil {
				log.WithField("path", r.URL.Path).
					WithField("method", r.Method).
					WithField("durationMs", time.Since(start).Milliseconds()).
					Debug("diagnostics request")
			}
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func healthHandler(startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"version": kalitech.Version,
			"uptime":  time.Since(startedAt).String(),
			"host":    hostStats(),
		})
	}
}

func worldHandler(world World) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if world == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "world not available"})
			return
		}
		writeJSON(w, http.StatusOK, world.Describe())
	}
}

// worldQueryHandler runs a gjson path (the `path` query parameter)
// against the marshaled WorldSnapshot, letting an operator pull a
// single field (e.g. `systems.0.providerId`) without parsing the full
// document client-side. Grounded on the teacher's own use of
// tidwall/gjson for ad-hoc field extraction over raw JSON payloads
// rather than fully unmarshaling into a struct.
func worldQueryHandler(world World) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if world == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "world not available"})
			return
		}
		path := r.URL.Query().Get("path")
		if path == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "path query parameter is required"})
			return
		}
		body, err := json.Marshal(world.Describe())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		result := gjson.GetBytes(body, path)
		if !result.Exists() {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no match for path " + path})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"path": path, "value": result.Value()})
	}
}

func modulesHandler(modules ModuleLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if modules == nil {
			writeJSON(w, http.StatusOK, []ModuleSnapshot{})
			return
		}
		writeJSON(w, http.StatusOK, modules.Describe())
	}
}

func reloadHandler(world World, limiter *rate.Limiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "reload rate limit exceeded"})
			return
		}
		if world == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "world not available"})
			return
		}
		world.RequestReload()
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "reload scheduled"})
	}
}
