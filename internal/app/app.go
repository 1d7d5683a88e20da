package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"edulink_backend/internal/auth"
	"edulink_backend/internal/config"
	"edulink_backend/internal/email"
	"edulink_backend/internal/handlers"
	"edulink_backend/internal/live"
	"edulink_backend/internal/logger"
	"edulink_backend/internal/middleware"
	"edulink_backend/internal/models"
	"edulink_backend/internal/repositories"
	"edulink_backend/internal/routes"
	"edulink_backend/internal/services"
	"edulink_backend/internal/validator"
	"edulink_backend/internal/workers"
	"edulink_backend/pkg/cache"
	"edulink_backend/ws"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ginRouter := SetupRouter(ctx, cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter builds the full dependency graph and returns a configured
// gin engine. Background loops (live dispatch, retention sweeps) run
// until ctx is cancelled.
func SetupRouter(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	// --- Repositories ---
	userRepo := repositories.NewUserRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)
	updateRepo := repositories.NewRealtimeUpdateRepository(gormDB)
	activityRepo := repositories.NewActivityRepository(gormDB)
	courseRepo := repositories.NewCourseRepository(gormDB)
	analyticsRepo := repositories.NewAnalyticsRepository(gormDB)

	// --- Live publisher ---
	snapshotSource := services.NewLiveSnapshotSource(notificationRepo, updateRepo)
	publisher := live.NewPublisher(snapshotSource)
	go publisher.Run(ctx)

	// --- Snapshot cache: redis when configured, in-process otherwise ---
	var snapshotCache cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
		}
		snapshotCache = redisCache
		logger.Info("Redis cache connected", "addr", cfg.Redis.Addr)
	} else {
		snapshotCache = cache.NewMemory()
		logger.Warn("Redis not configured, using in-memory analytics cache")
	}

	// --- Email ---
	var mailer email.Provider
	if cfg.Email.Enabled {
		mailer = email.NewSMTPProvider(&email.SMTPConfig{
			Host:      cfg.Email.SMTPHost,
			Port:      cfg.Email.SMTPPort,
			Username:  cfg.Email.SMTPUsername,
			Password:  cfg.Email.SMTPPassword,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
		logger.Info("SMTP mailer enabled", "host", cfg.Email.SMTPHost)
	} else {
		mailer = email.NewNoopProvider()
	}

	// --- Services ---
	activityService := services.NewActivityService(activityRepo)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, publisher, mailer)
	updateService := services.NewRealtimeUpdateService(updateRepo, publisher)
	analyticsService := services.NewAnalyticsService(
		userRepo, courseRepo, analyticsRepo,
		snapshotCache, time.Duration(cfg.Analytics.CacheTTLSeconds)*time.Second,
	)
	courseService := services.NewCourseService(courseRepo, userRepo, notificationService, updateService, activityService)
	authService := services.NewAuthService(userRepo, activityService)

	// --- Retention worker ---
	retentionWorker := workers.NewRetentionWorker(
		notificationRepo, updateRepo, publisher,
		cfg.Retention.RealtimeUpdateDays,
		cfg.Retention.ReadNotificationDays,
		cfg.Retention.SweepIntervalMinutes,
	)
	retentionWorker.Start(ctx)

	// --- Handlers ---
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)
	appHandlers := &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, authService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, notificationService),
		UpdateHandler:       handlers.NewUpdateHandler(baseHandler, updateService),
		ActivityHandler:     handlers.NewActivityHandler(baseHandler, activityService),
		AnalyticsHandler:    handlers.NewAnalyticsHandler(baseHandler, analyticsService),
		CourseHandler:       handlers.NewCourseHandler(baseHandler, courseService),
	}

	wsHandler := ws.NewWebSocketHandler(publisher)

	ginRouter := initializeGinRouter(cfg)
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler)

	return ginRouter
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())

	return router
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.StudentProfile{},
		&models.Course{},
		&models.Assignment{},
		&models.Submission{},
		&models.QuizResult{},
		&models.Notification{},
		&models.RealtimeUpdate{},
		&models.UserActivity{},
	)
}

// seedFirstAdmin creates the bootstrap admin account on an empty
// deployment. A no-op when unconfigured or when the account exists.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.FirstAdminEmail == "" || cfg.FirstAdminPassword == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", cfg.FirstAdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.FirstAdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:        cfg.FirstAdminEmail,
		PasswordHash: hash,
		FirstName:    "Admin",
		Role:         models.UserRoleAdmin,
		Status:       models.UserStatusActive,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	logger.Info("Seeded first admin user", "email", cfg.FirstAdminEmail)
	return nil
}
