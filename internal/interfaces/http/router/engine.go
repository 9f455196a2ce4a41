package router

import (
	"fmt"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/ratelimit"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Dependencies is everything the engine needs. Optional parts are nil.
type Dependencies struct {
	Logger      *zap.Logger
	Development bool
	HTTP        config.HTTPConfig

	// Tracing is mounted when TracerProvider is set
	ServiceName    string
	TracerProvider trace.TracerProvider

	// /metrics is exposed when Metrics is set
	Metrics     *telemetry.Metrics
	MetricsPath string

	JWTService  *auth.JWTService
	Revocations auth.RevocationList

	// APILimiter applies to every request, AuthLimiter to login only
	APILimiter  ratelimit.Store
	AuthLimiter ratelimit.Store

	Auth      *handler.AuthHandler
	Customers *handler.CustomerHandler
	Orders    *handler.OrderHandler
	Health    *handler.HealthHandler
}

// apiPrefix is where every domain group is mounted
const apiPrefix = "/api"

// NewEngine builds the gin engine with the middleware chain and all routes.
//
// Order matters: the access log, tracing and metrics wrap the error handler
// so they observe the final status; recovery sits inside it so a panic is
// rendered as a 500 envelope.
func NewEngine(deps Dependencies) (*gin.Engine, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(deps.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(deps.HTTP.TrustedProxies); err != nil {
			return nil, fmt.Errorf("invalid trusted proxies: %w", err)
		}
	} else if err := engine.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	if deps.TracerProvider != nil {
		engine.Use(middleware.Tracing(deps.ServiceName, deps.TracerProvider))
		engine.Use(middleware.TraceAttributes())
	}
	if deps.Metrics != nil {
		engine.Use(middleware.HTTPMetrics(deps.Metrics))
	}
	engine.Use(middleware.ErrorHandler(deps.Development))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(deps.HTTP)))
	engine.Use(middleware.BodyLimit(deps.HTTP.MaxBodySize))
	if deps.APILimiter != nil {
		engine.Use(middleware.RateLimit(deps.APILimiter, log))
	}

	engine.GET("/health", deps.Health.Health)
	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(deps.Metrics.Handler()))
	}

	jwtAuth := middleware.JWTAuthWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:  deps.JWTService,
		Revocations: deps.Revocations,
		Logger:      log,
	})

	r := NewRouter(engine, WithPrefix(apiPrefix))
	for _, group := range []*DomainGroup{
		authRoutes(deps, jwtAuth, log),
		customerRoutes(deps.Customers, jwtAuth),
		orderRoutes(deps.Orders, jwtAuth),
	} {
		r.Register(group)
		log.Debug("Route group registered",
			zap.String("group", group.Name()),
			zap.String("prefix", apiPrefix+group.Prefix()),
		)
	}
	r.Setup()

	engine.NoRoute(func(c *gin.Context) {
		_ = c.Error(shared.NewNotFoundError(shared.CodeNotFound,
			fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path)))
	})

	return engine, nil
}

func authRoutes(deps Dependencies, jwtAuth gin.HandlerFunc, log *zap.Logger) *DomainGroup {
	login := []gin.HandlerFunc{deps.Auth.Login}
	if deps.AuthLimiter != nil {
		login = append([]gin.HandlerFunc{middleware.RateLimit(deps.AuthLimiter, log)}, login...)
	}

	return NewDomainGroup("auth", "/auth").
		POST("/login", login...).
		GET("/me", jwtAuth, middleware.Authenticated(deps.Auth.Me)).
		POST("/logout", jwtAuth, middleware.Authenticated(deps.Auth.Logout))
}

func customerRoutes(h *handler.CustomerHandler, jwtAuth gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("customers", "/customers").
		Use(jwtAuth).
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}

func orderRoutes(h *handler.OrderHandler, jwtAuth gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("orders", "/orders").
		Use(jwtAuth).
		GET("", h.List).
		POST("", h.Create).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}
