package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/collegetrack/internal/bootstrap"
	"anoa.com/collegetrack/internal/config"
	"anoa.com/collegetrack/internal/server"
	"anoa.com/collegetrack/pkg/database"
	"anoa.com/collegetrack/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Configure(logger.Config{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})

	db, err := database.Connect(database.Options{
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
		SSLMode:  cfg.DBSSLMode,
		Debug:    cfg.IsDevelopment() && cfg.LogLevel == "debug",
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer database.Close(db)

	if err := bootstrap.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	if cfg.IsDevelopment() {
		if err := bootstrap.Seed(context.Background(), db); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	redisClient := connectRedis(cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("server exited with error")
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// connectRedis returns nil when REDIS_URL is unset or unreachable.
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		logger.Warn().Msg("REDIS_URL not set, rate limits and live notifications are disabled")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid REDIS_URL, continuing without redis")
		return nil
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable, continuing without redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Msg("connected to redis")
	return client
}
