package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"account-api/internal/config"
	"account-api/internal/db"
	apihttp "account-api/internal/http"
	"account-api/internal/repository"
	"account-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	hasher := service.NewBcryptHasher(cfg.BcryptCost)

	var revocations service.RevocationStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			revocations = service.NewRedisRevocationStore(redisClient)
		}
		cancel()
	}

	sessions := service.NewSessionServiceWithStore(
		cfg.SessionSecret,
		time.Duration(cfg.SessionTTLMinutes)*time.Minute,
		revocations,
	)

	userSvc := service.NewUserService(logger, userRepo, hasher)
	strategy := service.NewLocalStrategy(logger, userRepo, hasher)
	userHandler := apihttp.NewUserHandler(logger, userSvc, strategy, sessions, cfg.DevOrTest())
	router := apihttp.NewRouter(logger, sessions, userHandler, cfg.CORSOrigin)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("env", cfg.AppEnv))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
