package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/schooldesk/internal/app/auth"
	appControllers "github.com/yigit/schooldesk/internal/app/controllers"
	appMigrations "github.com/yigit/schooldesk/internal/app/migrations"
	appRepos "github.com/yigit/schooldesk/internal/app/repositories"
	appRoutes "github.com/yigit/schooldesk/internal/app/routes"
	appServices "github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/config"
	"github.com/yigit/schooldesk/internal/db"
	appMiddleware "github.com/yigit/schooldesk/internal/middleware"
	pkgAuth "github.com/yigit/schooldesk/internal/pkg/auth"
	"github.com/yigit/schooldesk/internal/pkg/cache"
	"github.com/yigit/schooldesk/internal/pkg/logger"
	"github.com/yigit/schooldesk/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	SettingsService  appServices.SettingsService
	AdmissionService appServices.AdmissionService
	SessionService   appServices.SessionService
	RoutineService   appServices.RoutineService
	LookupService    *appServices.LookupService
	RollNumbers      *appServices.RollNumberService

	Controllers appRoutes.Controllers

	AuthMiddleware    *appMiddleware.AuthMiddleware
	RollNumberLimiter *appMiddleware.RateLimiter
	Repos             *appRepos.Repositories
	JWTService        *pkgAuth.JWTService
	AuthzService      *appAuth.AuthorizationService
	Cache             cache.Store
	Logger            zerolog.Logger

	closers []func() error
}

// Close releases resources opened by BuildDependencies.
func (d *Dependencies) Close() {
	for _, c := range d.closers {
		if err := c(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close dependency")
		}
	}
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("SCHOOLDESK_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("configs", "config.yaml")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := logger.Logger()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds defaults.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)
	if err := migrator.Migrate(ctx, appMigrations.Embedded()); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	settingsRepo := appRepos.NewSettingsRepository(dbPool)
	if err := seed.CreateDefaultData(ctx, settingsRepo, cfg.School.DefaultPeriodDuration, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// setupCache connects to Redis, or falls back to no caching when Redis is unset or down.
func setupCache(cfg *config.Config, lgr zerolog.Logger) (cache.Store, func() error) {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("Redis address not set, settings cache disabled")
		return cache.Noop{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := cache.NewRedisStore(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   "schooldesk:",
	})
	if err != nil {
		lgr.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, settings cache disabled")
		return cache.Noop{}, nil
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis settings cache connected")
	return store, store.Close
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var closeCache func() error
	deps.Cache, closeCache = setupCache(cfg, lgr)
	if closeCache != nil {
		deps.closers = append(deps.closers, closeCache)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.ClassRepository, deps.Repos.StudentRepository)

	deps.SettingsService = appServices.NewSettingsService(
		deps.Repos.SettingsRepository,
		deps.Cache,
		cfg.SettingsCacheTTL(),
		cfg.School.DefaultPeriodDuration,
		lgr,
	)
	deps.RollNumbers = appServices.NewRollNumberService(
		deps.Repos.ClassRepository,
		deps.Repos.StudentRepository,
		cfg.School.RollNumberWidth,
		lgr,
	)
	deps.AdmissionService = appServices.NewAdmissionService(
		deps.Repos.ClassRepository,
		deps.Repos.StudentRepository,
		deps.RollNumbers,
		lgr,
	)
	deps.SessionService = appServices.NewSessionService(
		deps.RollNumbers,
		deps.Repos.StudentRepository,
		deps.AdmissionService,
		cfg.SessionTTL(),
		cfg.School.SessionSweepSchedule,
		lgr,
	)
	deps.RoutineService = appServices.NewRoutineService(
		deps.Repos.ClassRepository,
		deps.Repos.SubjectRepository,
		deps.Repos.TeacherRepository,
		deps.Repos.RoutineRepository,
		deps.SettingsService,
		lgr,
	)
	deps.LookupService = appServices.NewLookupService(
		deps.Repos.ClassRepository,
		deps.Repos.SubjectRepository,
		deps.Repos.TeacherRepository,
	)

	if err := deps.SessionService.Start(); err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to start session sweeper: %w", err)
	}
	deps.closers = append(deps.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		deps.SessionService.Stop(ctx)
		return nil
	})

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.RollNumberLimiter = appMiddleware.NewRateLimiter(cfg.School.RollNumberRatePerMinute)

	deps.Controllers = appRoutes.Controllers{
		Lookup:   appControllers.NewLookupController(deps.LookupService, deps.AuthzService),
		Student:  appControllers.NewStudentController(deps.AdmissionService, deps.RollNumbers, deps.AuthzService),
		Settings: appControllers.NewSettingsController(deps.SettingsService),
		Routine:  appControllers.NewRoutineController(deps.RoutineService),
		Session:  appControllers.NewSessionController(deps.SessionService, deps.AuthzService),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.CORS(cfg.CORSOrigins()),
		appMiddleware.RequestLogger(logger.Component("http")),
	)

	appRoutes.SetupRouter(router,
		deps.Controllers,
		deps.AuthMiddleware,
		deps.AuthzService,
		deps.RollNumberLimiter,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
