package router

import (
	"errors"
	"time"

	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/dropship/backend/internal/interfaces/http/handler"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig holds the knobs of the global middleware chain
type EngineConfig struct {
	Logger           *zap.Logger
	ServiceName      string
	TracingEnabled   bool
	ProfilingEnabled bool
	CORS             middleware.CORSConfig
	MaxBodySize      int64
	TrustedProxies   []string
	// Metrics is optional; /metrics is only served when set
	Metrics *middleware.HTTPMetrics
	// LoginAttempts per minute and client IP; 0 disables the limit
	LoginAttempts int
}

// Handlers groups every handler the API serves
type Handlers struct {
	Eligibility *handler.EligibilityHandler
	Rules       *handler.RulesHandler
	Products    *handler.ProductHandler
	System      *handler.SystemHandler
	Auth        *handler.AuthHandler
	// AdminAuth guards rule and catalog mutations
	AdminAuth gin.HandlerFunc
}

// NewEngine builds the gin engine with the global middleware chain, the
// probe endpoints and the /api/v1 routes
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	if h.AdminAuth == nil {
		return nil, errors.New("router: admin auth middleware is required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	middleware.SetupValidator()

	// request id first so every later middleware can log and report it
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		middleware.SpanEnricher(),
	)
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics.Middleware())
	}
	engine.Use(
		middleware.Profiling(cfg.ProfilingEnabled),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize),
	)

	engine.GET("/health", h.System.Health)
	if cfg.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	var loginGuard []gin.HandlerFunc
	if cfg.LoginAttempts > 0 {
		loginGuard = append(loginGuard, middleware.RateLimit(middleware.NewRateLimiter(cfg.LoginAttempts, time.Minute)))
	}

	r := NewRouter(engine)
	for _, group := range apiGroups(h, loginGuard) {
		r.Register(group)
	}
	r.Setup()
	return engine, nil
}

func apiGroups(h Handlers, loginGuard []gin.HandlerFunc) []*DomainGroup {
	admin := h.AdminAuth

	eligibility := NewDomainGroup("/eligibility").
		POST("/evaluate", h.Eligibility.Evaluate).
		POST("/evaluate/batch", h.Eligibility.EvaluateBatch)

	profit := NewDomainGroup("/profit").
		POST("/calculate", h.Eligibility.CalculateProfit).
		POST("/suggest-price", h.Eligibility.SuggestPrice)

	compliance := NewDomainGroup("/compliance").
		POST("/check", h.Eligibility.CheckCompliance)

	rules := NewDomainGroup("/rules").Use(admin).
		GET("", h.Rules.List).
		POST("/reload", h.Rules.Reload)
	rules.Group("/brands").
		POST("", h.Rules.AddBrand).
		DELETE("/:id", h.Rules.RemoveBrand)
	rules.Group("/keywords").
		POST("", h.Rules.AddKeyword).
		DELETE("/:id", h.Rules.RemoveKeyword)
	rules.Group("/restrictions").
		POST("", h.Rules.AddRestriction).
		PATCH("/:id", h.Rules.SetRestrictionEnabled).
		DELETE("/:id", h.Rules.RemoveRestriction)

	products := NewDomainGroup("/products").
		GET("", h.Products.List).
		GET("/:id", h.Products.Get).
		POST("/:id/evaluate", h.Eligibility.EvaluateProduct).
		POST("", admin, h.Products.Import).
		PATCH("/:id/stock", admin, h.Products.UpdateStock).
		DELETE("/:id", admin, h.Products.Remove)

	authGroup := NewDomainGroup("/auth").
		POST("/login", append(loginGuard, h.Auth.Login)...).
		POST("/logout", admin, h.Auth.Logout)

	system := NewDomainGroup("/system").
		GET("/ping", h.System.Ping).
		GET("/snapshot", h.System.Snapshot)

	return []*DomainGroup{eligibility, profit, compliance, rules, products, authGroup, system}
}
