package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitclub/internal/booking"
	"fitclub/internal/cache"
	"fitclub/internal/config"
	"fitclub/internal/db"
	"fitclub/internal/email"
	"fitclub/internal/events"
	"fitclub/internal/facility"
	"fitclub/internal/logger"
	"fitclub/internal/member"
	"fitclub/internal/schedule"
	"fitclub/internal/server"

	"github.com/redis/go-redis/v9"
)

// @title FitClub API
// @version 1.0
// @description Room and trainer scheduling for a fitness club.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.InitWithLevel(cfg.LogLevel)
	defer logger.Sync()
	logger.Info("Starting FitClub application")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Connecting to database...")
	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	database, err := db.Connect(connectCtx, cfg.DatabaseURL)
	connectCancel()
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	emailService := email.New(rdb, email.SMTPConfig{
		From:     cfg.EmailFrom,
		FromName: cfg.EmailFromName,
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Pass:     cfg.SMTPPass,
	})
	go emailService.Start(ctx)
	go watchEmailQueue(ctx, emailService)
	logger.Info("Email service initialized")

	var publisher events.Publisher = events.Nop{}
	if cfg.KafkaEnabled() {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("Publishing booking events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	scheduleService := schedule.NewService(
		schedule.NewRepository(database),
		cache.NewRedisCache(rdb),
		time.Duration(cfg.ScheduleCacheTTL)*time.Second,
	)

	bookingRepo := booking.NewRepository(database)
	opts := []booking.Option{
		booking.WithNotifier(emailService),
		booking.WithPublisher(publisher),
		booking.WithScheduleInvalidator(scheduleService),
	}

	srv := server.New(cfg,
		map[string]server.HealthCheck{
			"postgres": database.PingContext,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		facility.NewHandler(facility.NewService(facility.NewRepository(database), nil)),
		member.NewHandler(member.NewService(member.NewRepository(database), nil)),
		booking.NewHandler(
			booking.NewService(bookingRepo, opts...),
			booking.NewEnrollmentManager(bookingRepo, opts...),
			booking.NewStatusMachine(bookingRepo, opts...),
		),
		schedule.NewHandler(scheduleService),
	)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

func watchEmailQueue(ctx context.Context, svc *email.Service) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.QueueLength(ctx)
		}
	}
}
