package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/codeforge/backend/internal/application/billing"
	"github.com/codeforge/backend/internal/application/generation"
	identityapp "github.com/codeforge/backend/internal/application/identity"
	workspaceapp "github.com/codeforge/backend/internal/application/workspace"
	"github.com/codeforge/backend/internal/infrastructure/auth"
	"github.com/codeforge/backend/internal/infrastructure/config"
	"github.com/codeforge/backend/internal/infrastructure/engine"
	"github.com/codeforge/backend/internal/infrastructure/logger"
	"github.com/codeforge/backend/internal/infrastructure/persistence"
	"github.com/codeforge/backend/internal/infrastructure/storage"
	"github.com/codeforge/backend/internal/interfaces/http/handler"
	"github.com/codeforge/backend/internal/interfaces/http/middleware"
	"github.com/codeforge/backend/internal/interfaces/http/router"
	"github.com/codeforge/backend/internal/interfaces/ws"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CodeForge Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	collabRepo := persistence.NewGormCollaborationRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Token infrastructure. The blacklist backs logout; fall back to the
	// in-process store when Redis is unreachable so a missing cache does
	// not take the API down.
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
		log.Info("Redis token blacklist connected", zap.String("addr", cfg.Redis.Addr()))
	}
	verifier := auth.NewGoogleIDTokenVerifier(cfg.Google.ClientID)

	// Project sandbox storage
	sandboxStore, err := storage.NewSandboxStore(&cfg.Workspace, storage.WithSandboxLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize workspace storage", zap.Error(err))
	}

	// Archive storage for project exports
	var archives workspaceapp.ArchiveStore
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3ArchiveStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		archives = s3Store
		log.Info("Object storage connected", zap.String("bucket", cfg.Storage.Bucket))
	} else if cfg.App.Env != "production" {
		archives = storage.NewStubArchiveStorage()
		log.Info("Object storage disabled, using in-memory archive store")
	} else {
		log.Warn("Object storage disabled, project export unavailable")
	}

	// Code-generation engine
	codeEngine, err := engine.NewHTTPEngine(&cfg.Engine, engine.WithEngineLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize generation engine", zap.Error(err))
	}

	// Initialize application services
	authService := identityapp.NewAuthService(userRepo, jwtService, verifier, blacklist, cfg.Google, log)
	userService := identityapp.NewUserService(userRepo, log)
	projectService := workspaceapp.NewProjectService(projectRepo, collabRepo, sandboxStore, log)
	collabService := workspaceapp.NewCollaborationService(projectRepo, collabRepo, userRepo, log)
	fileService := workspaceapp.NewFileService(projectRepo, collabRepo, sandboxStore, archives, log)
	orderService := billingapp.NewOrderService(orderRepo, log)
	webhookService := billingapp.NewStripeWebhookService(cfg.Stripe, orderRepo, log)
	generationService := generation.NewService(codeEngine, sandboxStore, log)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	projectHandler := handler.NewProjectHandler(projectService)
	collabHandler := handler.NewCollaborationHandler(collabService)
	fileHandler := handler.NewFileHandler(fileService)
	orderHandler := handler.NewOrderHandler(orderService)
	webhookHandler := handler.NewStripeWebhookHandler(webhookService)
	proxyHandler := handler.NewProxyHandler(cfg.Proxy, log)
	systemHandler := handler.NewSystemHandler(db.DB)

	// WebSocket hub for per-project generation sessions
	hub := ws.NewHub(log)
	wsHandler := ws.NewHandler(hub, projectService, generationService, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	ginEngine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := ginEngine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. RequestLog - Body/header logging with redaction (if enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	ginEngine.Use(middleware.RequestID())
	ginEngine.Use(logger.Recovery(log))
	ginEngine.Use(logger.GinMiddleware(log))

	if cfg.Log.RequestBody || cfg.Log.ResponseBody || cfg.Log.Headers {
		ginEngine.Use(middleware.RequestLog(middleware.DefaultRequestLogConfig(cfg.Log, log)))
	}

	ginEngine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	ginEngine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	ginEngine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		ginEngine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health endpoints (outside API versioning)
	ginEngine.GET("/health", systemHandler.Health)
	ginEngine.GET("/healthz", systemHandler.Health)
	ginEngine.GET("/ready", systemHandler.Ready)

	// Stripe webhook endpoint (no authentication; verified by signature)
	ginEngine.POST("/api/v1/webhooks/stripe", webhookHandler.HandleStripeWebhook)

	// Setup API routes using router
	r := router.NewRouter(ginEngine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Identity domain (Google sign-in, sessions, account)
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/google", authHandler.GoogleLogin)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)

	userRoutes := router.NewDomainGroup("users", "/users")
	userRoutes.GET("/me", userHandler.GetMe)
	userRoutes.PATCH("/me", userHandler.UpdateMe)
	userRoutes.DELETE("/me", userHandler.DeleteMe)

	// Workspace domain (projects, collaborators, sandbox files)
	projectRoutes := router.NewDomainGroup("workspace", "/projects")
	projectRoutes.POST("", projectHandler.Create)
	projectRoutes.GET("", projectHandler.List)
	projectRoutes.GET("/:id", projectHandler.Get)
	projectRoutes.PATCH("/:id", projectHandler.Update)
	projectRoutes.DELETE("/:id", projectHandler.Delete)
	projectRoutes.POST("/:id/archive", projectHandler.Archive)
	projectRoutes.POST("/:id/unarchive", projectHandler.Unarchive)

	// Collaborator management
	projectRoutes.GET("/:id/collaborators", collabHandler.List)
	projectRoutes.POST("/:id/collaborators", collabHandler.Add)
	projectRoutes.PATCH("/:id/collaborators/:userId", collabHandler.ChangeRole)
	projectRoutes.DELETE("/:id/collaborators/:userId", collabHandler.Remove)

	// Sandbox file operations
	projectRoutes.GET("/:id/files", fileHandler.List)
	projectRoutes.GET("/:id/files/*path", fileHandler.Read)
	projectRoutes.PUT("/:id/files/*path", fileHandler.Write)
	projectRoutes.DELETE("/:id/files/*path", fileHandler.Delete)
	projectRoutes.POST("/:id/export", fileHandler.Export)

	// Billing domain (orders are created by the Stripe webhook flow)
	orderRoutes := router.NewDomainGroup("billing", "/orders")
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/:id", orderHandler.Get)

	// Forwarding proxy
	proxyRoutes := router.NewDomainGroup("proxy", "/proxy")
	proxyRoutes.GET("/forward", proxyHandler.Forward)
	proxyRoutes.POST("/forward", proxyHandler.Forward)
	proxyRoutes.PUT("/forward", proxyHandler.Forward)
	proxyRoutes.PATCH("/forward", proxyHandler.Forward)
	proxyRoutes.DELETE("/forward", proxyHandler.Forward)
	proxyRoutes.GET("/direct", proxyHandler.Direct)
	proxyRoutes.POST("/direct", proxyHandler.Direct)
	proxyRoutes.PUT("/direct", proxyHandler.Direct)
	proxyRoutes.PATCH("/direct", proxyHandler.Direct)
	proxyRoutes.DELETE("/direct", proxyHandler.Direct)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(authRoutes).
		Register(userRoutes).
		Register(projectRoutes).
		Register(orderRoutes).
		Register(proxyRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// WebSocket endpoint for generation sessions. Browsers cannot set the
	// Authorization header on upgrade requests, so the token may also
	// arrive as a query parameter.
	wsJWTConfig := middleware.DefaultJWTConfig(jwtService)
	wsJWTConfig.TokenBlacklist = blacklist
	wsJWTConfig.AllowQueryToken = true
	wsJWTConfig.Logger = log
	ginEngine.GET("/ws/projects/:id",
		middleware.JWTAuthMiddlewareWithConfig(wsJWTConfig),
		wsHandler.ServeProject,
	)

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        ginEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
