package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	appControllers "github.com/Cookie-Knight/student-information-system-fyp/internal/app/controllers"
	appMigrations "github.com/Cookie-Knight/student-information-system-fyp/internal/app/migrations"
	appRepos "github.com/Cookie-Knight/student-information-system-fyp/internal/app/repositories"
	appRoutes "github.com/Cookie-Knight/student-information-system-fyp/internal/app/routes"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/app/selection"
	appServices "github.com/Cookie-Knight/student-information-system-fyp/internal/app/services"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/config"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/db"
	appMiddleware "github.com/Cookie-Knight/student-information-system-fyp/internal/middleware"
	pkgAuth "github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/auth"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/cache"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/docstore"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/email"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/filestorage"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/helpers"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/logger"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/metrics"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/validation"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/pkg/websocket"
	"github.com/Cookie-Knight/student-information-system-fyp/internal/seed"
)

const (
	maxBodyBytes       = 8 << 20
	healthCheckTimeout = 2 * time.Second
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	Cache       *cache.Client // nil when redis is disabled
	FileStorage *filestorage.LocalStorage

	AuthService      appServices.AuthService
	SelectionService appServices.SelectionService
	SelectionManager *selection.Manager

	Hub            *websocket.Hub
	WSHandler      *websocket.Handler
	MessageHandler *websocket.MessageHandler

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:   logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Format:  cfg.Logging.Format,
		Service: "campusphere",
	})
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("dir", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database, lgr)
	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SeedDatabase loads the fixture file into an empty portal. Failures are
// logged and startup continues.
func SeedDatabase(ctx context.Context, cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) {
	if cfg.Database.SeedFile == "" {
		return
	}
	fixtures, err := seed.Load(cfg.Database.SeedFile)
	if err != nil {
		lgr.Warn().Err(err).Str("file", cfg.Database.SeedFile).Msg("Seed file not loaded")
		return
	}
	if err := seed.CreateDefaultData(ctx, deps.Repos, deps.Repos.UserRepository, fixtures, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool, docstore.NewPostgresStore(database.Pool))

	if cfg.Redis.Enabled {
		client, err := cache.NewClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, lgr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		deps.Cache = client
	} else {
		lgr.Info().Msg("Redis disabled; token revocation and rate limiting are off")
	}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.PublicBaseURL())
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	emailService := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.PublicBaseURL(),
	}, lgr)

	repos := deps.Repos
	courseService := appServices.NewCourseService(repos.StudentRepository, repos.CourseRepository, lgr)
	resultService := appServices.NewResultService(repos.StudentRepository, repos.CourseRepository, repos.ResultRepository, lgr)
	attendanceService := appServices.NewAttendanceService(repos.StudentRepository, repos.CourseRepository, repos.AttendanceRepository, lgr)
	scheduleService := appServices.NewScheduleService(repos.StudentRepository, repos.CourseRepository,
		repos.ExamRepository, repos.TimetableRepository, time.Local, lgr)
	profileService := appServices.NewProfileService(repos.UserRepository, repos.StudentRepository, deps.FileStorage, lgr)
	feedbackService := appServices.NewFeedbackService(repos.FeedbackRepository, lgr)
	galleryService := appServices.NewGalleryService(repos.NewsRepository, repos.PerksRepository, lgr)

	// Selection snapshots are pushed to the student's sockets as they settle
	deps.Hub = websocket.NewHub(lgr)
	hub := deps.Hub
	publisher := selection.PublisherFunc(func(userID int64, snap selection.Snapshot) {
		if err := hub.SendToUser(userID, websocket.MessageTypeSnapshot, snap); err != nil {
			lgr.Debug().Err(err).Int64("userID", userID).Msg("Snapshot not delivered")
		}
	})

	fetcher := appServices.NewSemesterFetcher(repos.ResultRepository, attendanceService, repos.ExamRepository, repos.TimetableRepository)
	deps.SelectionManager = selection.NewManager(courseService, fetcher, publisher, selection.ManagerConfig{
		FetchTimeout: helpers.ParseDuration(cfg.Selection.FetchTimeout, 10*time.Second),
		IdleTimeout:  helpers.ParseDuration(cfg.Selection.IdleTimeout, 30*time.Minute),
	}, lgr)
	deps.SelectionService = appServices.NewSelectionService(deps.SelectionManager, lgr)

	selectionService := deps.SelectionService
	deps.WSHandler = websocket.NewHandler(hub, cfg.Server.CORSOrigins, func(userID int64) {
		snap, err := selectionService.Current(context.Background(), userID)
		if err != nil {
			lgr.Warn().Err(err).Int64("userID", userID).Msg("Could not load selection for new socket")
			return
		}
		_ = hub.SendToUser(userID, websocket.MessageTypeSnapshot, snap)
	}, lgr)
	deps.MessageHandler = websocket.NewMessageHandler(hub, selectionService.Commands(), lgr)

	authDeps := appServices.AuthDependencies{
		Users:         repos.UserRepository,
		Tokens:        repos.TokenRepository,
		ResetTokens:   repos.PasswordResetTokenRepository,
		Students:      repos.StudentRepository,
		JWT:           deps.JWTService,
		Email:         emailService,
		Sessions:      selectionService,
		ResetTokenTTL: helpers.ParseDuration(cfg.JWT.ResetTokenExpiration, time.Hour),
	}
	var blacklist appMiddleware.TokenBlacklist
	if deps.Cache != nil {
		authDeps.Revoker = deps.Cache
		blacklist = deps.Cache
	}
	deps.AuthService = appServices.NewAuthService(authDeps, lgr)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, blacklist, lgr)

	deps.Controllers = appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.AuthService, lgr),
		Profile:   appControllers.NewProfileController(profileService, lgr),
		Course:    appControllers.NewCourseController(courseService, lgr),
		Result:    appControllers.NewResultController(resultService, lgr),
		Record:    appControllers.NewRecordController(attendanceService, scheduleService, lgr),
		Feedback:  appControllers.NewFeedbackController(feedbackService, lgr),
		Gallery:   appControllers.NewGalleryController(galleryService, lgr),
		Selection: appControllers.NewSelectionController(selectionService, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, database *db.PostgresDB, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.Logger(lgr),
		appMiddleware.SecurityHeaders(),
		cors.New(corsConfig(cfg.Server.CORSOrigins)),
		metrics.Middleware(),
		appMiddleware.BodyLimit(maxBodyBytes),
	)

	appRoutes.SetupSwagger(router)

	var limiter appMiddleware.RateLimiter
	if deps.Cache != nil {
		limiter = deps.Cache
	}
	authLimiter := appMiddleware.RateLimit(limiter, cfg.RateLimit.Requests,
		helpers.ParseDuration(cfg.RateLimit.Window, time.Minute), lgr)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.WSHandler, authLimiter)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/api/v1/health", healthHandler(database, deps.Cache))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

func healthHandler(database *db.PostgresDB, redis *cache.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		checks := gin.H{"database": "ok"}
		status := http.StatusOK
		if err := database.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if redis.Enabled() {
			checks["redis"] = "ok"
			if err := redis.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	}
}
