package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gartstein/ehs/internal/training/auth"
	"github.com/gartstein/ehs/internal/training/config"
	"github.com/gartstein/ehs/internal/training/controller"
	"github.com/gartstein/ehs/internal/training/db"
	"github.com/gartstein/ehs/internal/training/events"
	"github.com/gartstein/ehs/internal/training/handlers"
	"github.com/gartstein/ehs/internal/training/metrics"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	repo, err := db.NewRepository(initDatabase(cfg))
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	m := metrics.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var producer controller.EventProducer
	if len(cfg.KafkaBrokers) > 0 {
		if err := events.EnsureTopic(cfg.KafkaBrokers, cfg.Topic, logger); err != nil {
			logger.Fatal("failed to reach Kafka", zap.Error(err))
		}
		kafkaProducer := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
		defer kafkaProducer.Close()
		producer = kafkaProducer

		consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroupID, cfg.Topic, logger)
		consumer.RegisterHandler(events.AuditHandler(logger, func(t events.EventType) {
			m.EventConsumed(string(t))
		}))
		consumer.Start(ctx)
		defer func() {
			cancel()
			<-consumer.Done()
			consumer.Close()
		}()
	} else {
		logger.Warn("no Kafka brokers configured, lifecycle events go to the log only")
		producer = events.NewLogProducer(logger)
	}

	opts := []controller.Option{controller.WithMetrics(m)}
	if cfg.RejectSiblings {
		opts = append(opts, controller.WithSiblingPolicy(controller.RejectSiblings))
	}
	lifecycleSvc := controller.NewLifecycleService(repo, producer, logger, opts...)

	authInterceptor := auth.NewAuthInterceptor(cfg.JWTSecret)
	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger, grpc.UnaryInterceptor(authInterceptor.Unary()))
	server.RegisterGRPCHandler(handlers.NewLifecycleHandler(lifecycleSvc, logger))

	restHandler := handlers.NewRESTHandler(lifecycleSvc, logger, m.Handler(), repo.Ping)
	limiter := handlers.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	if err := server.RegisterHTTPGateway(restHandler, cfg.JWTSecret, limiter); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start servers", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

func initDatabase(cfg *config.Config) *db.Config {
	return &db.Config{
		Driver:   cfg.DBDriver,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Path:     cfg.DBPath,
	}
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then shuts down servers.
func waitForShutdown(server *handlers.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Servers stopped properly")
}
