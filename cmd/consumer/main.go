package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/redirect-gateway/internal/container"
	"github.com/serroba/redirect-gateway/internal/messaging"
	"go.uber.org/zap"
)

type config struct {
	RedisAddr      string `env:"REDIS_ADDR"      envDefault:"localhost:6379"`
	ConsumerGroup  string `env:"CONSUMER_GROUP"  envDefault:"analytics"`
	AnalyticsTally bool   `env:"ANALYTICS_TALLY" envDefault:"false"`
	LogFormat      string `env:"LOG_FORMAT"      envDefault:"console"`
	LogLevel       string `env:"LOG_LEVEL"       envDefault:"info"`
}

func main() {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[config]()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	opts := &container.Options{
		RedisAddr:      cfg.RedisAddr,
		Events:         container.EventsRedis,
		ConsumerGroup:  cfg.ConsumerGroup,
		AnalyticsTally: cfg.AnalyticsTally,
		LogFormat:      cfg.LogFormat,
		LogLevel:       cfg.LogLevel,
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)
	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("consuming analytics events", zap.String("group", cfg.ConsumerGroup))

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
