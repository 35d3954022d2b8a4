package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/cors"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// APIPrefix is where every record and view route is mounted.
const APIPrefix = "/api/v1"

// Config holds the HTTP-facing settings of the server.
type Config struct {
	Addr               string
	CORSAllowedOrigin  string
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server
	ledger *services.Ledger
	logger *log.StructuredLogger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	ready            atomic.Bool
	shutdownOnce     sync.Once
}

// NewServer wires routes and the middleware chain, returning a ready-to-run
// server. The caller owns the ledger and closes it after Shutdown.
func NewServer(cfg Config, ledger *services.Ledger, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	detector, err := security.NewDetector(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	s := &Server{
		Server: http.Server{
			Addr:         cfg.Addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		ledger:           ledger,
		logger:           log.NewStructuredLogger(logger),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		securityDetector: detector,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(handler)
	handler = cors.Middleware(cfg.CORSAllowedOrigin)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = trace.NewMiddleware(detector.ExtractClientIP, logger).Middleware(handler)
	s.Handler = handler

	s.ready.Store(true)
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", allow(http.MethodGet, s.handleHealth))
	mux.HandleFunc("/readyz", allow(http.MethodGet, s.handleReady))

	for _, kind := range core.Kinds() {
		svc, _ := s.ledger.For(kind)
		k := kind.String()
		mux.HandleFunc(APIPrefix+"/add-"+k, allow(http.MethodPost, s.handleCreate(svc)))
		mux.HandleFunc(APIPrefix+"/get-"+k+"s", allow(http.MethodGet, s.handleList(svc)))
		mux.HandleFunc(APIPrefix+"/"+k+"/{id}", allow(http.MethodGet, s.handleGet(svc)))
		mux.HandleFunc(APIPrefix+"/update-"+k+"/{id}", allow(http.MethodPut, s.handleUpdate(svc)))
		mux.HandleFunc(APIPrefix+"/delete-"+k+"/{id}", allow(http.MethodDelete, s.handleDelete(svc)))
	}

	mux.HandleFunc(APIPrefix+"/transactions", allow(http.MethodGet, s.handleTransactions))
	mux.HandleFunc(APIPrefix+"/dashboard", allow(http.MethodGet, s.handleDashboard))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("Not Found").Write(w)
	})
}

// allow rejects every method but method (and HEAD for GET routes) with 405.
func allow(method string, next http.HandlerFunc) http.HandlerFunc {
	allowed := method
	if method == http.MethodGet {
		allowed = strings.Join([]string{http.MethodGet, http.MethodHead}, ", ")
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method && !(method == http.MethodGet && r.Method == http.MethodHead) {
			MethodNotAllowedError(allowed).Write(w)
			return
		}
		next(w, r)
	}
}

// Shutdown marks the server not ready, stops the rate limiter cleanup and
// drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.ready.Store(false)
		s.logger.Logger().InfoContext(ctx, "Server shutting down",
			"rate_limited", s.rateLimiter.Hits(),
			"active_clients", s.rateLimiter.ActiveClients(),
			"suspicious_requests", s.securityDetector.GetMetrics().SuspiciousRequests)
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
