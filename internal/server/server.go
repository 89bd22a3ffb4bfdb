// Package server exposes the blog over HTTP: feeds, post pages, follow
// actions and account endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"blogfeed/internal/cache"
	"blogfeed/internal/config"
	"blogfeed/internal/featureflags"
	"blogfeed/internal/feed"
	"blogfeed/internal/middleware"
	"blogfeed/internal/models"
	"blogfeed/internal/repository"
	"blogfeed/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	responseCache cache.ResponseCache
	invalidator   *cache.Invalidator
	featureFlags  *featureflags.Manager

	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository

	feeds         *feed.Engine
	postService   *service.PostService
	followService *service.FollowService
	authService   *service.AuthService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; responseCache defaults to an in-process cache.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, responseCache cache.ResponseCache) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server needs a config and a database")
	}
	if responseCache == nil {
		responseCache = cache.NewMemoryCache()
	}

	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	invalidator := cache.NewInvalidator(responseCache,
		cache.WithClearOnCreate(flags.Predicate(featureflags.InvalidateOnCreate)),
	)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("blogfeed-api"),
		responseCache:  responseCache,
		invalidator:    invalidator,
		featureFlags:   flags,
		userRepo:       userRepo,
		groupRepo:      groupRepo,
		feeds:          feed.NewEngine(postRepo, groupRepo, userRepo, cfg.PostsPerPage),
		postService:    service.NewPostService(postRepo, groupRepo, commentRepo, invalidator),
		followService:  service.NewFollowService(followRepo, userRepo, invalidator),
		authService:    service.NewAuthService(userRepo, cfg.JWTSecret, middleware.DefaultTokenTTL, 0),
	}, nil
}

// FeatureFlags exposes the runtime flag set.
func (s *Server) FeatureFlags() *featureflags.Manager {
	return s.featureFlags
}

// NewApp builds a Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "blogfeed",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok && fe.Code == fiber.StatusNotFound {
				return models.RespondWithError(c, fiber.StatusNotFound,
					&models.AppError{Code: models.CodeNotFound, Message: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
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

	// After requestid and context so every line carries request_id.
	app.Use(middleware.StructuredLogger())

	// CORS goes before the limiter so throttled responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "X-Cache, X-Trace-ID",
		AllowCredentials: true,
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
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	auth := middleware.AuthRequired(s.config.JWTSecret)
	optional := middleware.OptionalAuth(s.config.JWTSecret)

	accounts := app.Group("/auth")
	accounts.Post("/signup", middleware.RateLimit(s.redis, middleware.SignupLimit), s.Signup)
	accounts.Post("/login", middleware.RateLimit(s.redis, middleware.LoginLimit), s.Login)

	// Feeds
	app.Get("/", s.Index)
	app.Get("/group/:slug", s.GroupFeed)
	app.Get("/follow", auth, s.FollowFeed)

	// Profiles; the specific /follow and /unfollow routes share the prefix.
	app.Get("/profile/:username", optional, s.Profile)
	app.Post("/profile/:username/follow", auth, s.ProfileFollow)
	app.Post("/profile/:username/unfollow", auth, s.ProfileUnfollow)

	// Posts
	app.Post("/create", auth, middleware.RateLimit(s.redis, middleware.PostLimit), s.CreatePost)
	app.Post("/posts/:id/edit", auth, s.EditPost)
	app.Post("/posts/:id/comment", auth, middleware.RateLimit(s.redis, middleware.CommentLimit), s.AddComment)
	app.Get("/posts/:id", s.PostDetail)

	app.Use(s.NotFound)
}

// NotFound answers every unmatched route.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusNotFound,
		&models.AppError{Code: models.CodeNotFound, Message: "page not found"})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and, when configured, Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional when the response cache runs in-process.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	body := fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	}
	// The in-process cache never evicts, so its size is worth watching.
	if sized, ok := s.responseCache.(interface{ Len() int }); ok {
		body["cache_entries"] = sized.Len()
	}
	return c.Status(status).JSON(body)
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown stops the listener, then closes the database and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
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
