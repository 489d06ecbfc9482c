package main

import (
	"context"
	"database/sql"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storefront/api/internal/adapters/handler/http"
	registry "github.com/storefront/api/internal/adapters/registry/redis"
	repo "github.com/storefront/api/internal/adapters/repository/postgres"
	"github.com/storefront/api/internal/config"
	"github.com/storefront/api/internal/core/services"
)

func main() {
	cfg := config.Load()
	if err := cfg.ValidateAuthSecrets(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	db, err := sql.Open("postgres", cfg.PostgresConnString())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	redisOpts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid redis url")
	}
	redisClient := goredis.NewClient(redisOpts)
	defer redisClient.Close()

	userRepo := repo.NewUserRepository(db)
	productRepo := repo.NewProductRepository(db)
	sessionRegistry := registry.NewSessionRegistry(redisClient)

	tokenSvc, err := services.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid token configuration")
	}
	authSvc := services.NewAuthService(userRepo, sessionRegistry, tokenSvc)
	userSvc := services.NewUserService(userRepo)
	productSvc := services.NewProductService(productRepo)

	authHandler := http.NewAuthHandler(authSvc, cfg.IsProduction())
	userHandler := http.NewUserHandler(userSvc)
	productHandler := http.NewProductHandler(productSvc)
	authMiddleware := http.NewAuthMiddleware(tokenSvc, userSvc)

	handler := http.NewHandler(authHandler, userHandler, productHandler, authMiddleware)
	server := &stdhttp.Server{Addr: "0.0.0.0:" + cfg.Port, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("shutdown failed")
	}
}
