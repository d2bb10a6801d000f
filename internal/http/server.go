package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budgetbuddy/internal/chart"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/middleware/ratelimit"
	"budgetbuddy/internal/middleware/security"
	"budgetbuddy/internal/middleware/trace"
	"budgetbuddy/internal/services"
)

// ReadyFunc reports whether a dependency is usable.
type ReadyFunc func(ctx context.Context) error

type Server struct {
	http.Server

	svc       *services.BudgetService
	chart     *chart.Renderer
	logger    *log.Logger
	ready     ReadyFunc
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	startedAt time.Time

	trustedProxies []string

	shutdownOnce sync.Once
}

type Option func(*Server)

// WithReadyCheck sets the dependency check behind /readyz.
func WithReadyCheck(fn ReadyFunc) Option {
	return func(s *Server) { s.ready = fn }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTrustedProxies adds proxy networks whose forwarding headers name the
// client. Invalid CIDRs are logged and skipped.
func WithTrustedProxies(cidrs ...string) Option {
	return func(s *Server) { s.trustedProxies = append(s.trustedProxies, cidrs...) }
}

// WithRateLimit overrides the per-client limit on POST requests.
func WithRateLimit(cfg ratelimit.Config) Option {
	return func(s *Server) { s.limiter = ratelimit.NewLimiter(cfg) }
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc *services.BudgetService, opts ...Option) *Server {
	s := &Server{
		svc:       svc,
		logger:    log.Discard(),
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:  security.NewDetector(),
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentHTTP)
	for _, cidr := range s.trustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", log.FieldError, err.Error())
		}
	}
	s.chart = chart.New(svc.Engine().Format)
	s.tracer = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /income", s.handleSetIncome)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("POST /loans", s.handleCreateLoan)
	mux.HandleFunc("POST /budgets", s.handleSetBudget)
	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /chart.png", s.handleChart)
	mux.HandleFunc("GET /alerts", s.handleAlerts)
	mux.HandleFunc("GET /classify", s.handleClassify)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, http.MethodPost)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Limiter exposes the rate limiter so the cache janitor can purge it.
func (s *Server) Limiter() *ratelimit.Limiter {
	return s.limiter
}

// Run serves until ctx is done, then shuts down within timeout.
func (s *Server) Run(ctx context.Context, timeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.Addr)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("HTTP server shutting down", log.FieldOperation, log.OpShutdown)
		err = s.Server.Shutdown(ctx)
	})
	return err
}
