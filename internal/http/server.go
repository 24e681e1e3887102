package http

import (
	"context"
	"net/http"
	"sync"

	"expensio/internal/auth"
	"expensio/internal/log"
	"expensio/internal/middleware/ratelimit"
	"expensio/internal/middleware/trace"
	"expensio/internal/services"
)

// Options configures the API server.
type Options struct {
	Addr                  string
	CORSOrigin            string
	AuthRequestsPerMinute int
}

type Server struct {
	http.Server

	auth         *auth.Service
	transactions *services.TransactionService

	corsOrigin   string
	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	logger       *log.Logger
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, authSvc *auth.Service, txnSvc *services.TransactionService, tokens *auth.TokenManager, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server:       http.Server{Addr: opts.Addr},
		auth:         authSvc,
		transactions: txnSvc,
		corsOrigin:   opts.CORSOrigin,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.AuthRequestsPerMinute,
		}),
		tracer: trace.NewMiddleware(extractClientIP),
		logger: logger.WithComponent(log.ComponentHTTP),
	}

	authLimited := s.limiter.Middleware(extractClientIP, tooManyRequests)

	// Scope the context logger to the auth component for every token-gated
	// route, so middleware rejections log under it.
	authScoped := log.ComponentMiddleware(log.ComponentAuth)
	tokenGate := auth.Middleware(tokens)
	authRequired := func(next http.Handler) http.Handler {
		return authScoped(tokenGate(next))
	}

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)

	mux.Handle("POST /api/auth/register", authLimited(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/auth/login", authLimited(http.HandlerFunc(s.handleLogin)))
	mux.Handle("GET /api/auth/me", authRequired(http.HandlerFunc(s.handleCurrentUser)))

	mux.Handle("GET /api/transactions", authRequired(http.HandlerFunc(s.handleListTransactions)))
	mux.Handle("GET /api/transactions/all", authRequired(http.HandlerFunc(s.handleListAllTransactions)))
	mux.Handle("GET /api/transactions/{id}", authRequired(http.HandlerFunc(s.handleGetTransaction)))
	mux.Handle("POST /api/transactions", authRequired(http.HandlerFunc(s.handleCreateTransaction)))
	mux.Handle("PUT /api/transactions/{id}", authRequired(http.HandlerFunc(s.handleUpdateTransaction)))
	mux.Handle("DELETE /api/transactions/{id}", authRequired(http.HandlerFunc(s.handleDeleteTransaction)))

	handler := s.tracer.Middleware(s.withCORS(s.withSecurityHeaders(mux)))
	handler = log.Middleware(s.logger)(handler)

	s.Handler = handler

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withCORS answers preflight requests and stamps the configured origin on
// every response.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.corsOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// metricsResponse exposes request counters for operational checks.
type metricsResponse struct {
	TotalRequests         int64 `json:"totalRequests"`
	AverageResponseTimeUs int64 `json:"averageResponseTimeUs"`
	RateLimitClients      int   `json:"rateLimitClients"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, metricsResponse{
		TotalRequests:         m.TotalRequests,
		AverageResponseTimeUs: m.AverageResponseTime,
		RateLimitClients:      s.limiter.ActiveClients(),
	})
}

// internalError logs an unexpected failure with its trace ID and answers
// with a generic message.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, message string, err error, args ...any) {
	args = append(args,
		log.FieldRequestID, trace.GetRequestID(r.Context()),
		log.FieldError, err.Error())
	s.logger.ErrorContext(r.Context(), message, args...)
	writeMessage(w, http.StatusInternalServerError, message)
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeMessage(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}

// extractClientIP resolves the client address, considering proxies
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
