package router

import (
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/doctaba/telehealth-api/internal/handler/appointment"
	"github.com/doctaba/telehealth-api/internal/handler/auth"
	"github.com/doctaba/telehealth-api/internal/handler/document"
	"github.com/doctaba/telehealth-api/internal/handler/health"
	"github.com/doctaba/telehealth-api/internal/handler/message"
	promhandler "github.com/doctaba/telehealth-api/internal/handler/prometheus"
	"github.com/doctaba/telehealth-api/internal/handler/user"
	"github.com/doctaba/telehealth-api/internal/handler/video"
	"github.com/doctaba/telehealth-api/internal/middleware"
	"github.com/doctaba/telehealth-api/internal/session"
	"github.com/doctaba/telehealth-api/pkg/validator"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type RouterConfig struct {
	Mode           string
	AllowedOrigins []string
	RateLimit      rate.Limit
	RateBurst      int
	RateLimited    bool
	MaxBodyBytes   int64
	MetricsPath    string
}

// Handlers are the route groups served by the router. Metrics may be nil
// to disable the exposition endpoint and request instrumentation.
type Handlers struct {
	Health      *health.Handler
	Auth        *auth.Handler
	User        *user.Handler
	Appointment *appointment.Handler
	Message     *message.Handler
	Document    *document.Handler
	Video       *video.Handler
	Metrics     *promhandler.Handler
}

type Router struct {
	engine   *gin.Engine
	config   RouterConfig
	sessions *session.Manager
	h        Handlers
}

func NewRouter(config RouterConfig, sessions *session.Manager, h Handlers) (*Router, error) {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if len(config.AllowedOrigins) == 0 {
		return nil, errors.New("router: at least one allowed origin is required")
	}
	if err := validator.Register(); err != nil {
		return nil, err
	}

	engine := gin.New()
	r := &Router{
		engine:   engine,
		config:   config,
		sessions: sessions,
		h:        h,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)
	if h.Metrics != nil {
		engine.Use(h.Metrics.Middleware())
	}
	engine.Use(
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		cors.New(cors.Config{
			AllowOrigins:     config.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderXRequestID},
			ExposeHeaders:    []string{middleware.HeaderXRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}
	engine.Use(middleware.SizeLimit(sizeLimit))

	if config.RateLimited {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(limiter.RateLimit())
	}

	r.setup()
	return r, nil
}

func (r *Router) setup() {
	r.h.Health.RegisterRoutes(r.engine)
	if r.h.Metrics != nil && r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, r.h.Metrics.Handler())
	}

	api := r.engine.Group("/api")
	api.Use(r.sessions.Middleware())

	// Public routes
	r.h.Auth.RegisterRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.SessionAuth(r.sessions))
	r.h.Auth.RegisterProtectedRoutes(protected)
	for _, h := range []Handler{r.h.User, r.h.Appointment, r.h.Message, r.h.Document, r.h.Video} {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
