// Package http - Router configuration for REST API.
//
// Router собирает middleware и demo handlers в единую точку входа.
// Ключевой элемент цепочки - Envelope middleware: все JSON ответы
// API приводятся к формату {meta, data}.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/WiserTogether/api-envelope/internal/adapters/http/handlers"
	"github.com/WiserTogether/api-envelope/internal/adapters/http/middleware"
	"github.com/WiserTogether/api-envelope/internal/envelope"
)

// ============================================
// Router Configuration
// ============================================

// RouterConfig - конфигурация роутера.
type RouterConfig struct {
	// Logger для middleware
	Logger *slog.Logger
	// Version приложения
	Version string
	// BuildTime время сборки
	BuildTime string
	// Environment (development, staging, production)
	Environment string
	// AllowedOrigins для CORS (production)
	AllowedOrigins []string
	// EnvelopeSkipPaths - пути, не оборачиваемые в конверт
	EnvelopeSkipPaths []string
}

// DefaultRouterConfig - конфигурация по умолчанию для development.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		Logger:            slog.Default(),
		Version:           "dev",
		BuildTime:         "unknown",
		Environment:       "development",
		AllowedOrigins:    []string{"*"},
		EnvelopeSkipPaths: []string{"/health", "/live", "/ready", "/metrics"},
	}
}

// ============================================
// Router Builder
// ============================================

// NewRouter создаёт сконфигурированный Gin Engine.
func NewRouter(config *RouterConfig) *gin.Engine {
	if config == nil {
		config = DefaultRouterConfig()
	}

	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// ============================================
	// Global Middleware
	// ============================================
	//
	// Порядок важен: Envelope стоит последним перед handler'ами, а
	// Recovery - внутри него, чтобы паника превращалась в 500 ответ,
	// который конверт пересоберёт. Logging и Metrics стоят снаружи
	// и видят финальный статус конверта.

	// 1. Request ID
	router.Use(middleware.RequestID())

	// 2. CORS
	if config.Environment == "production" {
		router.Use(middleware.CORS(middleware.ProductionCORSConfig(config.AllowedOrigins)))
	} else {
		router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}

	// 3. Logging
	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger:    config.Logger,
		SkipPaths: []string{"/health", "/live", "/ready", "/metrics"},
	}))

	// 4. Metrics (Prometheus)
	router.Use(middleware.Metrics())

	// 5. Envelope
	router.Use(middleware.Envelope(&middleware.EnvelopeConfig{
		Logger:    config.Logger,
		SkipPaths: config.EnvelopeSkipPaths,
	}))

	// 6. Recovery
	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           config.Logger,
		EnableStackTrace: config.Environment != "production",
	}))

	// ============================================
	// Metrics Endpoint
	// ============================================

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ============================================
	// Health Check Routes
	// ============================================

	healthHandler := handlers.NewHealthHandler(config.Version, config.BuildTime)
	healthHandler.RegisterRoutes(router)

	// ============================================
	// API v1 Routes
	// ============================================

	v1 := router.Group("/api/v1")
	{
		contactHandler := handlers.NewContactHandler(config.Logger)
		contactValidator := envelope.NewRulesValidator(map[string]any{
			"name":  "required",
			"email": "required,email",
		})
		contactHandler.RegisterRoutes(v1, middleware.RouteValidator(contactValidator))
	}

	// ============================================
	// 404 Handler
	// ============================================

	// Обычный JSON с 404: конверт превратит его в
	// {meta: {status: 404, errors: {api: ...}}, data: {}}.
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "endpoint not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	return router
}

// NewDevelopmentRouter создаёт роутер для development окружения.
func NewDevelopmentRouter() *gin.Engine {
	config := DefaultRouterConfig()
	config.Environment = "development"
	return NewRouter(config)
}
