package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	api "oauth-backend/api/echo"
	"oauth-backend/cache"
	redisstate "oauth-backend/cache/redis"
	"oauth-backend/config"
	"oauth-backend/domain"
	"oauth-backend/federation"
	"oauth-backend/inmem"
	"oauth-backend/internal/auth"
	"oauth-backend/internal/server"
	"oauth-backend/mongodb"
	"oauth-backend/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setupLogger(cfg)

	ctx := context.Background()

	userRepo, cleanupRepo := newUserRepository(ctx, cfg)
	defer cleanupRepo()

	stateStore := newStateStore(cfg)
	defer stateStore.Close()

	hasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	userService := services.NewUserService(userRepo, hasher, cfg.ProviderName)

	flow := federation.NewService(federation.ProviderConfig{
		Name:         cfg.ProviderName,
		IssuerURL:    cfg.ProviderURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
	}, stateStore, userService, &http.Client{
		Timeout: time.Duration(cfg.HTTPClientTimeoutSec) * time.Second,
	})

	srv := server.New(":"+cfg.HTTPPort,
		api.NewOAuthAPI(flow),
		api.NewUserAPI(userService),
	)

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("HTTP server listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func setupLogger(cfg *config.ServerConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func newUserRepository(ctx context.Context, cfg *config.ServerConfig) (domain.UserRepository, func()) {
	if cfg.MongoURI == "" {
		log.Warn().Msg("MONGO_URI not set, using in-memory user store")
		return inmem.NewUserRepository(), func() {}
	}

	repo, err := mongodb.NewUserRepository(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	log.Info().Str("db", cfg.MongoDBName).Msg("using MongoDB user store")
	return repo, func() {
		if err := repo.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("error closing MongoDB client")
		}
	}
}

func newStateStore(cfg *config.ServerConfig) cache.StateStore {
	ttl := time.Duration(cfg.StateTTLMin) * time.Minute

	if cfg.RedisAddr == "" {
		return cache.NewMemoryStateStore(ttl)
	}

	client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("using Redis state store")
	return redisstate.NewStateStore(client, cfg.RedisStatePrefix, ttl)
}
