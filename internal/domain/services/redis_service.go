package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"assetverse-http-service/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss 缓存未命中或缓存未启用
var ErrCacheMiss = errors.New("cache miss")

// InterfaceRedisService defines the Redis service interface
type InterfaceRedisService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Enabled() bool
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
}

// NewRedisService creates a new Redis service. When Redis is disabled the
// service stays usable and every lookup is a cache miss.
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	if !cfg.RedisEnabled {
		return &RedisService{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	return &RedisService{Client: client}
}

// 1 Set sets a key-value pair in Redis with expiration
func (s *RedisService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if s.Client == nil {
		return nil
	}
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, key, jsonValue, expiration).Err()
}

// 2 Get gets a value from Redis by key
func (s *RedisService) Get(ctx context.Context, key string, dest interface{}) error {
	if s.Client == nil {
		return ErrCacheMiss
	}
	val, err := s.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(val), dest)
}

// 3 Delete deletes keys from Redis
func (s *RedisService) Delete(ctx context.Context, keys ...string) error {
	if s.Client == nil || len(keys) == 0 {
		return nil
	}
	return s.Client.Del(ctx, keys...).Err()
}

// 4 Ping checks the Redis connection
func (s *RedisService) Ping(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Ping(ctx).Err()
}

// 5 Enabled reports whether a Redis client is configured
func (s *RedisService) Enabled() bool {
	return s.Client != nil
}
