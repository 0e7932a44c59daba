package app

import (
	"complaint_tracker_backend/internal/config"
	"complaint_tracker_backend/internal/controller"
	"complaint_tracker_backend/internal/middleware"
	"complaint_tracker_backend/internal/repository"
	"complaint_tracker_backend/internal/service"
	"complaint_tracker_backend/pkg/configwatcher"
	"complaint_tracker_backend/pkg/database"
	"complaint_tracker_backend/pkg/logger"
	"complaint_tracker_backend/pkg/monitoring"
	"complaint_tracker_backend/pkg/security"
	"complaint_tracker_backend/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Log             *zap.Logger
	level           zap.AtomicLevel
	tracer          *sdktrace.TracerProvider
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	complaint    *repository.ComplaintRepository
	statusUpdate *repository.StatusUpdateRepository
	tokens       *repository.TokenBlacklist
}

type services struct {
	auth      *service.AuthService
	complaint *service.ComplaintService
	ledger    *service.LedgerService
}

type controllers struct {
	auth      *controller.AuthController
	complaint *controller.ComplaintController
	feedback  *controller.FeedbackController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		complaint:    repository.NewComplaintRepository(db),
		statusUpdate: repository.NewStatusUpdateRepository(db),
		tokens:       repository.NewTokenBlacklist(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	var revoker service.TokenRevoker
	if repos.tokens.Enabled() {
		revoker = repos.tokens
	}
	s.auth = service.NewAuthService(repos.user, revoker, cfg)
	s.complaint = service.NewComplaintService(repos.complaint, repos.user, a.Log)
	s.ledger = service.NewLedgerService(repos.complaint, repos.statusUpdate, repos.user, cfg.Complaint.FeedbackOwnerOnly, a.Log)

	return s
}

func (a *App) initControllers(s *services) (*controllers, error) {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return nil, err
	}
	var redisPinger controller.Pinger
	if a.Redis != nil {
		redisPinger = database.RedisPinger{RDB: a.Redis}
	}

	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		complaint: controller.NewComplaintController(s.complaint, s.ledger),
		feedback:  controller.NewFeedbackController(s.ledger),
		health:    controller.NewHealthController(sqlDB, redisPinger),
	}, nil
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(a.Log))
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window()))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp wires storage, services and routes. Migrations run automatically
// outside release mode, or when ForceMigrate is set.
func NewApp(cfg *config.Config, configDir string) (*App, error) {
	log, level := logger.New(cfg)
	log.Info("Logger initialized successfully", zap.String("level", level.String()))

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == gin.DebugMode, log)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db, log); err != nil {
			return nil, err
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("initialize redis: %w", err)
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
		Redis:     rdb,
		Log:       log,
		level:     level,
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, fmt.Errorf("initialize tracing: %w", err)
		}
		app.tracer = tp
	}

	repos := app.initRepositories(db, rdb)
	app.services = app.initServices(repos, cfg)
	controllers, err := app.initControllers(app.services)
	if err != nil {
		return nil, err
	}

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, app.services.auth, repos.user)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		lvl := logger.ParseLevel(newCfg.Log.Level, newCfg.Server.Mode)
		if lvl != app.level.Level() {
			app.level.SetLevel(lvl)
			app.Log.Info("Log level changed", zap.String("level", lvl.String()))
		}
	})

	return app, nil
}

func (a *App) watchConfig(ctx context.Context) {
	if a.ConfigDir == "" {
		return
	}
	file := filepath.Join(a.ConfigDir, "config.yaml")
	err := configwatcher.Watch(ctx, file, a.Log, func(newCfg *config.Config) {
		for _, cb := range a.configCallbacks {
			cb(newCfg)
		}
	})
	if err != nil {
		a.Log.Warn("Config hot reload disabled", zap.Error(err))
	}
}

// Run serves until SIGINT or SIGTERM, then shuts down within five seconds.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go a.watchConfig(ctx)

	serveErr := make(chan error, 1)
	go func() {
		a.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	a.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(shutdownCtx)
	a.Log.Info("Server exiting")
	return nil
}

// Close releases tracing, redis and database handles.
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			a.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Log.Sync()
}
