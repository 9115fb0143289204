package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/taskvault/taskvault/internal/config"
	"github.com/taskvault/taskvault/internal/handler"
	"github.com/taskvault/taskvault/internal/mailer"
	"github.com/taskvault/taskvault/internal/messaging/nats"
	"github.com/taskvault/taskvault/internal/platform/metrics"
	"github.com/taskvault/taskvault/internal/repository"
	"github.com/taskvault/taskvault/internal/router"
	"github.com/taskvault/taskvault/internal/scheduler"
	"github.com/taskvault/taskvault/internal/storage"
	"github.com/taskvault/taskvault/internal/token"
	"github.com/taskvault/taskvault/internal/usecase"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.MongoDB)

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// NATS is optional: without a URL the sweep just skips publishing.
	var publisher *nats.Publisher
	if cfg.NATSURL != "" {
		publisher, err = nats.NewPublisher(cfg.NATSURL)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer publisher.Close()
	}

	mm := metrics.NewManager("taskvault")
	go func() {
		if err := metrics.StartMetricsServer(cfg.MetricsPort, logger, mm.Registry); err != nil {
			logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	userRepo := repository.NewUserRepository(db, redisClient, logger)
	tokens := token.NewService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	var mailSender mailer.Mailer
	switch cfg.MailProvider {
	case "mailersend":
		mailSender = mailer.NewMailerSendService(
			cfg.MailerSendAPIKey, cfg.MailFromEmail, cfg.MailFromName,
			cfg.VerificationURL, cfg.FrontendURL, logger)
	default:
		mailSender = mailer.NewSMTPMailerService(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass,
			cfg.MailFromEmail, cfg.MailFromName,
			cfg.VerificationURL, cfg.FrontendURL, logger)
	}

	// Object storage is optional like NATS: without an endpoint the
	// profile-image endpoint reports a server error, everything else runs.
	var objectStore storage.ObjectStorage
	if cfg.MinioEndpoint != "" {
		objectStore, err = storage.NewS3Storage(
			cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey,
			cfg.MinioBucket, cfg.MinioUseSSL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to object storage", zap.Error(err))
		}
	}

	authUsecase := usecase.NewAuthUsecase(userRepo, tokens, mailSender, mm,
		cfg.VerificationTokenTTL, cfg.ResetTokenTTL, cfg.RefreshCookieMaxAge, logger)
	taskUsecase := usecase.NewTaskUsecase(userRepo, userRepo, objectStore, logger)

	cookieMaxAgeSec := int(cfg.RefreshCookieMaxAge / time.Second)
	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authUsecase, cfg.IsProduction(), cookieMaxAgeSec, logger),
		Verification: handler.NewVerificationHandler(authUsecase, cfg.FrontendURL, logger),
		Reset:        handler.NewResetHandler(authUsecase, logger),
		Task:         handler.NewTaskHandler(taskUsecase, cfg.IsProduction(), logger),
		Group:        handler.NewGroupHandler(taskUsecase, logger),
		Notification: handler.NewNotificationHandler(taskUsecase, logger),
	}

	sweep := scheduler.NewSweep(userRepo, publisher, mm, cfg.SweepInterval, logger)
	go sweep.Run(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router.New(handlers, tokens, mm, cfg.FrontendURL, logger),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down HTTP server", zap.Error(err))
		}
	}()

	logger.Info("Starting TaskVault", zap.Int("port", cfg.Port))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Failed to serve HTTP", zap.Error(err))
	}
}
