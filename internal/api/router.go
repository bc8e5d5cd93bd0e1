package api

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/backoffice/users-api/internal/api/handler"
	"github.com/backoffice/users-api/internal/api/middleware"
	"github.com/backoffice/users-api/internal/core/ports"
	"github.com/backoffice/users-api/internal/core/service"
)

// adminRoleID is the id assigned to the seeded "admin" role.
const adminRoleID = 1

// Deps bundles everything the HTTP layer needs. Redis may be nil; JWTSecret
// may be empty, in which case mutating routes stay unguarded.
type Deps struct {
	Users       ports.UserService
	Roles       *service.RoleService
	Audit       ports.AuditRepository
	Pool        *pgxpool.Pool
	Redis       *redis.Client
	JWTSecret   string
	Development bool
	Log         zerolog.Logger
	// Metrics overrides the Prometheus registry for the HTTP middleware;
	// nil uses the default registry. Tests inject a fresh one to avoid
	// duplicate collector registration.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	if d.Metrics != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "users_api",
			Registerer: d.Metrics,
		}))
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: d.Metrics,
		}))
	} else {
		e.Use(echoprometheus.NewMiddleware("users_api"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log, d.Development)

	// --- Handlers ---
	userHandler := handler.NewUserHandler(d.Users, d.Audit)
	roleHandler := handler.NewRoleHandler(d.Roles)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Pool, d.Redis)

	// --- Root index ---
	e.GET("/", indexHandler)

	// --- Health probes ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- User routes ---
	users := e.Group("/api/users")
	users.POST("", userHandler.Create)
	users.POST("/login", userHandler.Login)
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.GetByID)
	users.GET("/email/:email", userHandler.GetByEmail)
	users.GET("/:id/audit", userHandler.Audit)

	// Mutating routes are guarded only when a JWT secret is configured;
	// by default the CRUD surface is open, matching the public API contract.
	// Deletion additionally requires the admin role.
	var mutating, adminOnly []echo.MiddlewareFunc
	if d.JWTSecret != "" {
		mutating = append(mutating, middleware.Auth(d.JWTSecret))
		adminOnly = append(mutating, middleware.RequireRole(adminRoleID))
	}
	users.PUT("/:id", userHandler.Update, mutating...)
	users.DELETE("/:id", userHandler.Delete, adminOnly...)

	// --- Role routes (read-only reference data) ---
	roles := e.Group("/api/roles")
	roles.GET("", roleHandler.List)
	roles.GET("/:id", roleHandler.GetByID)

	// --- Unmatched routes ---
	e.RouteNotFound("/*", routeNotFoundHandler)

	return e
}

type indexResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func indexHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, indexResponse{
		Success: true,
		Message: "Users API",
		Version: "1.0.0",
		Endpoints: map[string]string{
			"users":  "/api/users",
			"roles":  "/api/roles",
			"health": "/health",
		},
	})
}

type routeNotFoundResponse struct {
	Success            bool              `json:"success"`
	Error              errorBody         `json:"error"`
	Timestamp          time.Time         `json:"timestamp"`
	Path               string            `json:"path"`
	AvailableEndpoints map[string]string `json:"availableEndpoints"`
}

func routeNotFoundHandler(c echo.Context) error {
	req := c.Request()
	return c.JSON(http.StatusNotFound, routeNotFoundResponse{
		Success: false,
		Error: errorBody{
			Message: "route not found",
			Details: "endpoint " + req.Method + " " + req.URL.Path + " does not exist",
		},
		Timestamp: time.Now().UTC(),
		Path:      req.URL.Path,
		AvailableEndpoints: map[string]string{
			"users":  "/api/users",
			"roles":  "/api/roles",
			"health": "/health",
		},
	})
}
