package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/straye-as/crm-console/internal/config"
	"go.uber.org/zap"
)

// RedisTokenStore implements TokenStore in redis, letting several console
// processes share one session
type RedisTokenStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisTokenStore connects to redis and verifies the connection
func NewRedisTokenStore(cfg *config.SessionConfig, logger *zap.Logger) (*RedisTokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Info("Token store connected to redis",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB),
	)

	return NewRedisTokenStoreWithClient(client, cfg.TokenKey, cfg.TokenTTLDuration(), logger), nil
}

// NewRedisTokenStoreWithClient wraps an existing redis client
func NewRedisTokenStoreWithClient(client *redis.Client, key string, ttl time.Duration, logger *zap.Logger) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		key:    key,
		ttl:    ttl,
		logger: logger,
	}
}

// Load returns the stored token
func (s *RedisTokenStore) Load(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return val, nil
}

// Save stores the token, expiring it after the configured TTL
func (s *RedisTokenStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Clear removes the token
func (s *RedisTokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// Close releases the redis connection pool
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}
