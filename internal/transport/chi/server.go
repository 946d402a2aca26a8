package chi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/nobelidx/internal/domain/document"
	"github.com/kailas-cloud/nobelidx/internal/metrics"
	healthuc "github.com/kailas-cloud/nobelidx/internal/usecase/health"
	laureateuc "github.com/kailas-cloud/nobelidx/internal/usecase/laureate"
)

// RPC method names, each served at POST /rpc/<name>.
const (
	MethodGetPrizesByCategory                  = "GetPrizesByCategory"
	MethodCountLaureatesByCategoryAndYearRange = "CountLaureatesByCategoryAndYearRange"
	MethodCountLaureatesByMotivationKeyword    = "CountLaureatesByMotivationKeyword"
	MethodGetLaureateDetailsByName             = "GetLaureateDetailsByName"
	MethodSearchLaureatesByName                = "SearchLaureatesByName"
)

// Queries is the read side the RPCs delegate to.
type Queries interface {
	PrizesByCategory(ctx context.Context, category string) ([]document.Prize, error)
	CountByCategoryAndYearRange(ctx context.Context, category string, startYear, endYear int) (laureateuc.Count, error)
	CountByMotivationKeyword(ctx context.Context, keyword string) (laureateuc.Count, error)
	DetailsByName(ctx context.Context, firstname, surname string) ([]laureateuc.Detail, error)
	SearchByName(ctx context.Context, name string, k int, category string) ([]document.Match, error)
}

// HealthChecker produces the aggregated health report.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the RPC routes.
type Server struct {
	queries       Queries
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an RPC server.
func NewServer(queries Queries, health HealthChecker, logger *zap.Logger) *Server {
	return &Server{
		queries:       queries,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Router builds the chi router with the full middleware chain.
// Empty apiKeys disables authentication.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "unknown method")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeInvalidArgument, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/rpc", func(r chi.Router) {
		r.Post("/"+MethodGetPrizesByCategory, s.GetPrizesByCategory)
		r.Post("/"+MethodCountLaureatesByCategoryAndYearRange, s.CountLaureatesByCategoryAndYearRange)
		r.Post("/"+MethodCountLaureatesByMotivationKeyword, s.CountLaureatesByMotivationKeyword)
		r.Post("/"+MethodGetLaureateDetailsByName, s.GetLaureateDetailsByName)
		r.Post("/"+MethodSearchLaureatesByName, s.SearchLaureatesByName)
	})
	return r
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}
