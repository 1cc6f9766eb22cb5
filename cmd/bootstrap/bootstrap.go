package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telehealth-booking/config"
	deliveryHttp "telehealth-booking/internal/delivery/http"
	"telehealth-booking/internal/delivery/http/handler"
	"telehealth-booking/internal/delivery/http/middleware"
	"telehealth-booking/internal/infrastructure/cache"
	"telehealth-booking/internal/infrastructure/database"
	"telehealth-booking/internal/observability/metrics"
	"telehealth-booking/internal/repository"
	"telehealth-booking/internal/service"
	"telehealth-booking/internal/usecase"
	"telehealth-booking/pkg/jwt"
	"telehealth-booking/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Log         *logrus.Logger
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	app.Log = setupLogger(cfg.App.LogLevel)
	app.Log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	// Initialize all layers
	app.Server = initializeServer(cfg, app.Log, db, redisClient)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, log *logrus.Logger, db *gorm.DB, redisClient *redis.Client) *http.Server {
	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()
	txm := database.NewTransactor(db)

	// Redis-backed stores
	tokenStore := cache.NewTokenStore(redisClient)
	bookingLimiter := cache.NewRateLimiter(redisClient, "booking", cfg.RateLimit.Limit, cfg.RateLimit.Window, cfg.RateLimit.FailOpen)

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	doctorProfileRepo := repository.NewDoctorProfileRepository()
	patientProfileRepo := repository.NewPatientProfileRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	meetingService := service.NewMeetingService(cfg.Booking.MeetingBaseURL)
	notifier := service.NewNotifier(service.NotifierConfig{
		Provider:        cfg.Notification.Provider,
		CallMeBotURL:    cfg.Notification.CallMeBotURL,
		CallMeBotAPIKey: cfg.Notification.CallMeBotAPIKey,
		SendGridAPIKey:  cfg.Notification.SendGridAPIKey,
		FromEmail:       cfg.Notification.FromEmail,
		FromName:        cfg.Notification.FromName,
		Timeout:         cfg.Booking.NotifyTimeout,
	}, log)
	log.Infof("Appointment notifications via %s", notifier.Name())

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, txm, log, userRepo, roleRepo, doctorProfileRepo, patientProfileRepo, auditService, jwtService, tokenStore)
	doctorProfileUsecase := usecase.NewDoctorProfileUsecase(db, txm, log, userRepo, doctorProfileRepo, auditService)
	patientProfileUsecase := usecase.NewPatientProfileUsecase(db, txm, log, userRepo, patientProfileRepo, auditService)
	availabilityUsecase := usecase.NewAvailabilityUsecase(db, log, doctorProfileRepo, appointmentRepo, bookingMetrics, cfg.Booking.Location)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, txm, log, appointmentRepo, doctorProfileRepo, patientProfileRepo,
		auditService, meetingService, notifier, bookingMetrics, cfg.Booking)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorProfileUsecase, availabilityUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(patientProfileUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, tokenStore, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.AllowedOrigins)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(bookingLimiter, cfg.RateLimit.Window, log)
	tracingMiddleware := middleware.NewTracingMiddleware(otel.Tracer("telehealth-booking/http"))

	// Initialize router
	router := deliveryHttp.NewRouter(log, authHandler, doctorHandler, patientHandler, appointmentHandler, auditLogHandler,
		authMiddleware, corsMiddleware, rateLimitMiddleware, tracingMiddleware)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
