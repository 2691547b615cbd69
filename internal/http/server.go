// Package http exposes the dashboard and the submission form as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const headerRequestID = "X-Request-ID"

// Submitter records a submitted transaction.
type Submitter interface {
	Submit(ctx context.Context, sub core.Submission) (core.Transaction, error)
}

// DashboardReader computes the read-only views.
type DashboardReader interface {
	Data(ctx context.Context, year int) services.Dashboard
	Details(ctx context.Context, metric string, year int) (analytics.DetailReport, error)
	Index(ctx context.Context) services.Index
}

// Options tunes the server. Zero values select the defaults.
type Options struct {
	// RateLimitPerMin caps POST requests per client IP per minute.
	RateLimitPerMin int
	// ReadyCheck backs /readyz. Nil reports ready.
	ReadyCheck func(ctx context.Context) error
}

type appMetrics struct {
	totalRequests       int64
	transactionsCreated int64
	uptime              time.Time
}

type Server struct {
	http.Server
	submitter  Submitter
	dashboard  DashboardReader
	logger     *log.Logger
	events     *log.StructuredLogger
	limiter    *rateLimiter
	security   securityMetrics
	appMetrics appMetrics
	readyCheck func(ctx context.Context) error

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, submitter Submitter, dashboard DashboardReader, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Nop()
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	if opts.RateLimitPerMin <= 0 {
		opts.RateLimitPerMin = 60
	}

	s := &Server{
		submitter:  submitter,
		dashboard:  dashboard,
		logger:     logger,
		events:     log.NewStructuredLogger(logger),
		limiter:    newRateLimiter(opts.RateLimitPerMin),
		appMetrics: appMetrics{uptime: time.Now()},
		readyCheck: opts.ReadyCheck,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/data", s.handleData)
	mux.HandleFunc("POST /api/add", s.handleAdd)
	mux.HandleFunc("GET /api/details/{metric}", s.handleDetails)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	var handler http.Handler = s.withSecurity(mux)
	handler = log.RequestIDMiddleware(func(r *http.Request) string {
		return r.Header.Get(headerRequestID)
	})(handler)
	handler = withRequestID(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter cleanup and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down HTTP server", log.FieldOperation, log.OpShutdown)
		s.limiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withRequestID keeps a sane caller-supplied request id or assigns a new one,
// and echoes it on the response.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
			r.Header.Set(headerRequestID, id)
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r)
	})
}

// withSecurity applies security headers, POST rate limiting and request logging.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := log.FromContext(ctx)
		atomic.AddInt64(&s.appMetrics.totalRequests, 1)

		clientIP := extractClientIP(r)
		if detectSuspiciousRequest(r, &s.security) {
			logger.WithComponent(log.ComponentSecurity).WarnContext(ctx, "Suspicious request detected",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.Header.Get("User-Agent"))
		}

		applySecurityHeaders(w, r)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if r.Method == http.MethodPost && !s.limiter.allow(clientIP, &s.security) {
			logger.WithComponent(log.ComponentRateLimit).WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)
			rw.Header().Set("Retry-After", "60")
			writeError(rw, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
		} else {
			next.ServeHTTP(rw, r)
		}

		s.events.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
