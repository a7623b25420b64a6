package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Mish-atul/wallet-2fa-auth/adapters/events"
	"github.com/Mish-atul/wallet-2fa-auth/adapters/store"
	"github.com/Mish-atul/wallet-2fa-auth/adapters/tokenizer"
	"github.com/Mish-atul/wallet-2fa-auth/config"
	"github.com/Mish-atul/wallet-2fa-auth/ports"
	"github.com/Mish-atul/wallet-2fa-auth/service"
	transport "github.com/Mish-atul/wallet-2fa-auth/transport/http"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx := context.Background()

	signKey, err := loadSigningKey(cfg.SessionKeyFile)
	if err != nil {
		log.Fatal("failed to load signing key", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to create postgres pool", zap.Error(err))
	}
	defer pool.Close()

	pgStore := store.NewPostgresStore(pool)
	if err := pgStore.EnsureSchema(ctx); err != nil {
		log.Fatal("failed to ensure schema", zap.Error(err))
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to parse redis url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)

	var attempts ports.AttemptStore = pgStore
	if cfg.NonceStore == "redis" {
		attempts = store.NewRedisStore(redisClient)
	}

	var eventPub ports.EventPublisher = events.NopPublisher{}
	if cfg.EventsEnabled {
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatal("failed to create event publisher", zap.Error(err))
		}
		eventPub = events.NewWatermillPublisher(publisher)
	}

	authService := service.NewAuthService(
		pgStore,
		attempts,
		tokenizer.NewJWTTokenizer(signKey),
		eventPub,
		service.ChallengeConfig{
			Domain:  cfg.ChallengeDomain,
			URI:     cfg.ChallengeURI,
			ChainID: cfg.ChainID,
		},
		log,
	)

	router := transport.SetupRouter(authService, log)

	log.Info("starting server", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// loadSigningKey reads a PEM-encoded EC private key, or generates an
// ephemeral one when no file is configured.
func loadSigningKey(path string) (*ecdsa.PrivateKey, error) {
	if path == "" {
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key: %w", err)
	}
	return key, nil
}
