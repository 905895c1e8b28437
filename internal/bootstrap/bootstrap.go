// Package bootstrap turns a configuration into a ready-to-serve router and the
// resources behind it.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/controllers"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/migrations"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/repositories"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/routes"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/services"
	"github.com/aman-gurjar-dev/TechnoHack/internal/config"
	"github.com/aman-gurjar-dev/TechnoHack/internal/db"
	"github.com/aman-gurjar-dev/TechnoHack/internal/jobs"
	"github.com/aman-gurjar-dev/TechnoHack/internal/middleware"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/auth"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/cache"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/filestorage"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/logger"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/validation"
	"github.com/aman-gurjar-dev/TechnoHack/internal/seed"
)

// redisNamespace prefixes every key this service writes to a shared Redis.
const redisNamespace = "technohack"

// multipartOverhead leaves room for form fields and part headers next to the image.
const multipartOverhead = 1 << 20

// Dependencies holds all the application dependencies
type Dependencies struct {
	DB          *db.PostgresDB
	Repos       *repositories.Repositories
	Cache       cache.Cache
	FileStorage *filestorage.LocalStorage
	JWTService  *auth.JWTService
	Services    *services.Services
	// Queue is nil when background jobs are disabled.
	Queue    *jobs.Queue
	Handlers routes.Handlers
	Logger   zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	level := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  level,
		Pretty: !cfg.IsProduction(),
	})
	lgr.Info().Str("logLevel", string(level)).Str("mode", cfg.Server.Mode).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the pool and applies both the application and the job
// queue migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, logger.Component("db"))
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	if err := migrations.NewMigrator(database.Pool, logger.Component("migrations")).Up(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	if cfg.Jobs.Enabled {
		if err := jobs.Migrate(ctx, database.Pool, logger.Component("jobs")); err != nil {
			database.Close()
			return nil, err
		}
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SetupCache builds the read cache selected by cache.driver.
func SetupCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	ttl := config.Duration(cfg.Cache.TTL)
	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		rc, err := cache.NewRedisCacheFromURL(ctx, cfg.Cache.RedisURL, ttl, redisNamespace)
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return cache.NewMemoryCache(ttl), nil
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps := &Dependencies{DB: database, Logger: lgr}
	deps.Repos = repositories.NewRepositories(database, config.Duration(cfg.Database.QueryTimeout))

	if _, err := seed.EnsureAdmin(ctx, deps.Repos.UserRepository, seed.Admin{
		Name:     cfg.Admin.SeedName,
		Email:    cfg.Admin.SeedEmail,
		Password: cfg.Admin.SeedPassword,
	}, logger.Component("seed")); err != nil {
		return nil, err
	}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.MaxUploadBytes, logger.Component("storage"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService, err = auth.NewJWTService(auth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenTTL:    config.Duration(cfg.JWT.Expiration),
		TokenIssuer: cfg.JWT.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	deps.Cache, err = SetupCache(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	lgr.Info().Str("driver", cfg.Cache.Driver).Msg("Read cache ready")

	deps.Services = services.NewServices(services.Dependencies{
		Users:         deps.Repos.UserRepository,
		Clubs:         deps.Repos.ClubRepository,
		Events:        deps.Repos.EventRepository,
		Announcements: deps.Repos.AnnouncementRepository,
		Tokens:        deps.JWTService,
		Storage:       deps.FileStorage,
		Cache:         deps.Cache,
		AdminKey:      cfg.Admin.Key,
		Logger:        lgr,
	})

	if cfg.Jobs.Enabled {
		deps.Queue, err = jobs.NewQueue(database.Pool, deps.Services.Announcement,
			config.Duration(cfg.Jobs.ArchiveInterval), logger.Component("jobs"))
		if err != nil {
			_ = deps.Cache.Close()
			return nil, err
		}
	}

	deps.Handlers = routes.Handlers{
		Auth:           controllers.NewAuthController(deps.Services.Auth, cfg.IsProduction(), logger.Component("auth")),
		Club:           controllers.NewClubController(deps.Services.Club),
		Event:          controllers.NewEventController(deps.Services.Event),
		Announcement:   controllers.NewAnnouncementController(deps.Services.Announcement),
		Health:         controllers.NewHealthController(deps.Repos.UserRepository, config.Duration(cfg.Database.QueryTimeout)),
		AuthMiddleware: middleware.NewAuthMiddleware(deps.JWTService, deps.Repos.UserRepository, logger.Component("auth")),
		AuthLimiter:    middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		MaxBodyBytes:   cfg.Server.MaxUploadBytes + multipartOverhead,
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.EqualFold(cfg.Server.Mode, config.ModeProduction) {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	router.Use(
		middleware.ErrorMode(!cfg.IsProduction()),
		middleware.RequestLogger(logger.Component("http")),
		middleware.Recovery(),
		middleware.CORS(cfg.CORS.AllowedOrigins, !cfg.IsProduction()),
		middleware.Metrics(),
	)

	router.Static(filestorage.URLPrefix, deps.FileStorage.BasePath())
	lgr.Info().Str("path", deps.FileStorage.BasePath()).Msg("Static file serving configured for uploads directory")

	routes.SetupSwagger(router)
	routes.SetupRouter(router, deps.Handlers)

	return router
}
