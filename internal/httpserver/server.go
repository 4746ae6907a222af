// internal/httpserver/server.go
//
// HTTP server wiring for the Wordle API.
// Responsibilities:
//   - Router + middleware (request IDs, panic recovery, timeouts, JSON,
//     CORS, access logging, metrics, per-client rate limiting).
//   - Public endpoints: "/", "/health", "/metrics".
//   - Game endpoints: POST /game, GET /game/{id}, POST /game/{id}/guess.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled for a single client origin.
//   - Domain errors are rendered as {"code","message"}; see writeError.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-api/internal/game"
	"github.com/robalobadob/wordle-api/internal/metrics"
)

// GameService is the part of service.Service the handlers use.
type GameService interface {
	CreateGame(ctx context.Context) (game.Game, error)
	GetGame(ctx context.Context, id game.ID) (game.Game, error)
	Guess(ctx context.Context, id game.ID, tokens []string) (game.Game, error)
}

// Options configures a Server. Zero values disable the optional parts
// (rate limiting, metrics) and fall back to the defaults below.
type Options struct {
	ClientOrigin   string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	MaxAttempts    int // reported in game responses
	Metrics        *metrics.Metrics
}

const (
	defaultOrigin  = "http://localhost:5173"
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 16
)

// Server bundles the router and the game service.
type Server struct {
	r    *chi.Mux
	svc  GameService
	opts Options
	http *http.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(svc GameService, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = defaultOrigin
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultTimeout
	}
	s := &Server{r: chi.NewRouter(), svc: svc, opts: opts}
	s.http = &http.Server{Handler: s.r, ReadHeaderTimeout: 5 * time.Second}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))        // request-scoped logger
	s.r.Use(requestIDField)                     // ...tagged with the request id
	s.r.Use(accessLog)                          // one line per request
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))            // credentials-friendly CORS
	if opts.Metrics != nil {
		s.r.Use(opts.Metrics.Middleware)
	}

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]any{
			"service":   "wordle-api",
			"endpoints": []string{"/health", "POST /game", "GET /game/{id}", "POST /game/{id}/guess"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]bool{"ok": true})
	})
	if opts.Metrics != nil {
		s.r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	// --- game ---
	s.r.Route("/game", func(r chi.Router) {
		if opts.RateLimitRPS > 0 {
			r.Use(newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).Middleware)
		}
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Post("/{id}/guess", s.handleGuess)
	})

	// JSON 404/405 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "no route for " + r.URL.Path})
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusMethodNotAllowed, errorBody{Code: "METHOD_NOT_ALLOWED", Message: r.Method + " not allowed on " + r.URL.Path})
	})

	return s
}

// Start serves HTTP on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http.Addr = addr
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
// A Start that has not begun listening yet returns immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestIDField(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("reqId", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
})
