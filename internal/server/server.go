// Package server contains the HTTP and WebSocket handlers of the API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "socialnet/docs" // swagger docs
	"socialnet/internal/auth"
	"socialnet/internal/cache"
	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/featureflags"
	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/notifications"
	"socialnet/internal/repository"
	"socialnet/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "socialnet-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository

	tokens   *auth.TokenManager
	sessions *auth.SessionStore
	revoker  *auth.Revoker

	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	userService         *service.UserService
	relationshipService *service.RelationshipService
	postService         *service.PostService
}

// NewServer connects to PostgreSQL and Redis and builds the server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil redisClient disables sessions, revocation and live notifications.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("config and database are required")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(serviceName),
		userRepo:       repository.NewUserRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		postRepo:       repository.NewPostRepository(db),
		tokens: auth.NewTokenManager(cfg.JWTSecret,
			time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
			time.Duration(cfg.JWTRefreshTTLHours)*time.Hour),
		sessions:     auth.NewSessionStore(redisClient, time.Duration(cfg.SessionTTLHours)*time.Hour),
		revoker:      auth.NewRevoker(redisClient),
		notifier:     notifications.NewNotifier(redisClient),
		featureFlags: featureflags.NewManager(cfg.FeatureFlags),
	}
	s.userService = service.NewUserService(s.userRepo)
	s.relationshipService = service.NewRelationshipService(s.followRepo, s.userRepo, s.featureFlags)
	s.postService = service.NewPostService(s.postRepo, s.userRepo)

	if redisClient != nil {
		s.hub = notifications.NewHub()
	}
	return s, nil
}

// App builds a fully configured Fiber app without listening.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Socialnet API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return models.RespondWithError(c, fe.Code, err)
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status":  "error",
				"message": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "Socialnet Metrics"}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	authGroup := api.Group("/auth")
	authGroup.Post("/token", middleware.RateLimit(s.redis, 10, 5*time.Minute, "token"), s.ObtainToken)
	authGroup.Post("/token/refresh", s.RefreshToken)
	authGroup.Post("/token/verify", s.VerifyToken)
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", s.AuthRequired(), s.Logout)

	users := api.Group("/users")
	users.Get("/", s.OptionalAuth(), s.ListUsers)
	users.Post("/", s.OptionalAuth(), middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Register)
	// Relationship views before the generic /:id routes.
	users.Get("/friends", s.AuthRequired(), s.ListFriends)
	users.Get("/followers", s.AuthRequired(), s.ListFollowers)
	users.Get("/followed", s.AuthRequired(), s.ListFollowed)
	users.Post("/:id/add_friend", s.AuthRequired(), middleware.RateLimit(s.redis, 30, time.Minute, "follow"), s.AddFriend)
	users.Post("/:id/remove_friend", s.AuthRequired(), s.RemoveFriend)
	users.Post("/:id/change_password", s.AuthRequired(), s.ChangePassword)
	users.Get("/:id/activity", s.AuthRequired(), s.GetActivity)
	users.Get("/:id", s.OptionalAuth(), s.GetUser)
	users.Put("/:id", s.AuthRequired(), s.ReplaceUser)
	users.Patch("/:id", s.AuthRequired(), s.PatchUser)
	users.Delete("/:id", s.AuthRequired(), s.DeleteUser)

	posts := api.Group("/posts")
	posts.Get("/", s.OptionalAuth(), s.ListPosts)
	posts.Post("/", s.AuthRequired(), middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/analytics", s.AuthRequired(), s.GetLikeAnalytics)
	posts.Post("/:id/like", s.AuthRequired(), s.LikePost)
	posts.Post("/:id/unlike", s.AuthRequired(), s.UnlikePost)
	posts.Get("/:id/analytics", s.AuthRequired(), s.GetPostAnalytics)
	posts.Get("/:id", s.OptionalAuth(), s.GetPost)
	posts.Put("/:id", s.AuthRequired(), s.ReplacePost)
	posts.Patch("/:id", s.AuthRequired(), s.PatchPost)
	posts.Delete("/:id", s.AuthRequired(), s.DeletePost)

	if s.hub != nil {
		api.Get("/ws", s.AuthRequired(), s.WebsocketHandler())
	}

	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports 503 when the database is unreachable. Redis is
// optional, so its absence only degrades the report.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status, overall := fiber.StatusOK, "healthy"
	switch {
	case dbStatus != "healthy":
		status, overall = fiber.StatusServiceUnavailable, "unhealthy"
	case redisStatus != "healthy":
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires live notifications and listens on the configured port.
func (s *Server) Start() error {
	s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())

	s.app = s.App()

	if s.hub != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start notification wiring", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
