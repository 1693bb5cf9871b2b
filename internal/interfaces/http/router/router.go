package router

import (
	"github.com/fieldserve/backend/internal/infrastructure/logger"
	"github.com/fieldserve/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// RouteRegistrar registers a group of routes on the versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Options configures router construction
type Options struct {
	// ServiceName is used for trace span naming
	ServiceName string
	// Tracing enables the otelgin middleware
	Tracing bool
	// TrustedProxies restricts which peers may set client-IP headers
	TrustedProxies []string
}

// New builds the gin engine with the standard middleware chain and
// registers all route groups under /api/v1. System routes (health,
// readiness) sit outside the tenant requirement.
func New(log *zap.Logger, opts Options, system RouteRegistrar, tenantScoped ...RouteRegistrar) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.RequestLogger(log))
	engine.Use(logger.Recovery(log))
	if opts.Tracing {
		engine.Use(otelgin.Middleware(opts.ServiceName))
	}

	api := engine.Group("/api/v1")
	if system != nil {
		system.RegisterRoutes(api)
	}

	scoped := api.Group("")
	scoped.Use(middleware.Tenant())
	for _, registrar := range tenantScoped {
		registrar.RegisterRoutes(scoped)
	}

	return engine, nil
}
