package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/shopadmin/catalog-auth/internal/api/handler"
	"github.com/shopadmin/catalog-auth/internal/api/middleware"
	"github.com/shopadmin/catalog-auth/internal/core/domain"
	"github.com/shopadmin/catalog-auth/internal/core/ports"
	"github.com/shopadmin/catalog-auth/internal/infrastructure/http/handlers"
)

// RouterDeps carries everything the HTTP layer needs.
type RouterDeps struct {
	Log      zerolog.Logger
	Auth     ports.AuthService
	Products ports.ProductService
	Sessions ports.SessionResolver
	Cookie   *middleware.SessionCookie
	Health   *handlers.HealthHandler

	UploadDir      string
	MaxUploadBytes int64
	AllowedOrigins []string

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(d RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))
	if d.MaxUploadBytes > 0 {
		e.Use(echomiddleware.BodyLimit(bodyLimit(d.MaxUploadBytes)))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(metricsConfig(d.Registry)))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookie, d.Log)
	productHandler := handler.NewProductHandler(d.Products)

	requireAuth := middleware.RequireAuthenticated(d.Sessions, d.Cookie)
	requireAdmin := middleware.RequireRole(domain.RoleAdmin)
	requireUser := middleware.RequireRole(domain.RoleUser)

	// --- Auth routes ---
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.GET("/logout", authHandler.Logout)

	e.GET("/admin", authHandler.AdminPanel, requireAuth, requireAdmin)
	e.GET("/user", authHandler.UserPanel, requireAuth, requireUser)

	// --- Product routes (admin only, owner scoped) ---
	products := e.Group("/products", requireAuth, requireAdmin)
	products.POST("/add", productHandler.Create)
	products.GET("", productHandler.List)
	products.PUT("/update/:id", productHandler.Update)
	products.DELETE("/delete/:id", productHandler.Delete)

	if d.UploadDir != "" {
		e.Static("/uploads", d.UploadDir)
	}

	// --- Probes, metrics and docs ---
	if d.Health != nil {
		e.GET("/health", d.Health.Liveness)
		e.GET("/health/ready", d.Health.Readiness)
	}
	e.GET("/metrics", metricsHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func metricsConfig(reg *prometheus.Registry) echoprometheus.MiddlewareConfig {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "catalog",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health" || c.Path() == "/health/ready"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return cfg
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}

// bodyLimit leaves room for the multipart envelope around the photo.
func bodyLimit(maxUpload int64) string {
	return fmt.Sprintf("%dK", maxUpload/1024+64)
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
