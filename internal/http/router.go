package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/parcelhub/parcelhub/internal/auth"
	"github.com/parcelhub/parcelhub/internal/cache"
	"github.com/parcelhub/parcelhub/internal/config"
	"github.com/parcelhub/parcelhub/internal/domain/user"
	"github.com/parcelhub/parcelhub/internal/http/handlers"
	"github.com/parcelhub/parcelhub/internal/http/middlewares"
	"github.com/parcelhub/parcelhub/internal/observability"
)

// Deps carries the router's collaborators. main wires the postgres repos and
// redis cache in; tests hand over the in-memory equivalents.
type Deps struct {
	Users      handlers.UsersStore
	Shipments  handlers.ShipmentStore
	TrackCache cache.TrackingCache
	Prom       *observability.Prom
	Registry   *prometheus.Registry
	PingDB     func() error
	PingCache  func() error
	Tracing    bool
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())

	if deps.Tracing {
		r.Use(otelgin.Middleware("parcelhub"))
	}

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health + metrics

	health := handlers.NewHealthHandler(deps.PingDB, deps.PingCache)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// auth plumbing

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Users, jwtManager)
	usersHandler := handlers.NewUsersHandler(deps.Users)
	shipmentsHandler := handlers.NewShipmentsHandler(deps.Shipments, deps.Users, deps.TrackCache, deps.Prom)

	// credential endpoints are the one place we throttle
	limiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow())

	authGroup := r.Group("/auth")
	authGroup.Use(limiter.RateLimiterMiddleware(middlewares.KeyByIP))
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	users := r.Group("/users")
	users.Use(authMW.RequireAuth())
	users.GET("/profile", usersHandler.GetProfile)
	users.PUT("/profile", usersHandler.UpdateProfile)
	users.DELETE("/profile", usersHandler.DeleteProfile)

	shipments := r.Group("/shipments")
	// anonymous tracking: the code itself is the capability
	shipments.GET("/track/:tracking_number", shipmentsHandler.TrackShipment)
	shipments.POST("", authMW.RequireAuth(), shipmentsHandler.CreateShipment)
	shipments.GET("/user", authMW.RequireAuth(), shipmentsHandler.ListMyShipments)
	shipments.GET("/all", authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin), shipmentsHandler.ListAllShipments)
	shipments.PUT("/:id/status", authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin), shipmentsHandler.UpdateStatus)
	shipments.DELETE("/:id", authMW.RequireAuth(), authMW.RequireRole(user.RoleAdmin), shipmentsHandler.DeleteShipment)

	log.Info("router initialised", "routes", len(r.Routes()))

	return r
}
