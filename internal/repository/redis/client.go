package redis

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var RedisClient *redis.Client
var redisEnabled bool

// InitRedis connects to addr, which may be a host:port pair or a redis:// URL.
// An empty addr or an unreachable server leaves Redis disabled.
func InitRedis(addr, password string) error {
	if addr == "" {
		log.Info().Str("component", "redis").Msg("REDIS_URL not set, room snapshots and logout revocation disabled")
		redisEnabled = false
		return nil
	}

	opts := &redis.Options{Addr: addr, Password: password, DB: 0}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return err
		}
		if password != "" {
			parsed.Password = password
		}
		opts = parsed
	}
	RedisClient = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := RedisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Str("component", "redis").Err(err).Msg("could not connect to Redis, continuing without it")
		redisEnabled = false
		return nil // Don't fail startup if Redis is unavailable
	}

	redisEnabled = true
	log.Info().Str("component", "redis").Msg("connected")
	return nil
}

// IsRedisEnabled returns whether Redis is available
func IsRedisEnabled() bool {
	return redisEnabled
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// RedisCache acts as a wrapper around redis.Client for the key/value needs of the services
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Set stores a key-value pair with expiration
func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value by key. A missing key is reported as ("", nil).
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// Del deletes keys
func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}
