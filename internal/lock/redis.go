package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "ttsprep:lock:"
	defaultRedisTTL    = 30 * time.Second
	defaultRedisRetry  = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions tunes a Redis locker. Zero values fall back to defaults.
type RedisOptions struct {
	Prefix     string
	TTL        time.Duration
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// Redis is a Locker shared by every process pointed at the same Redis.
// A lock expires after TTL if its holder dies without releasing it.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
	logger *slog.Logger
}

// NewRedis creates a locker from an existing Redis client.
func NewRedis(client *redis.Client, opts RedisOptions) *Redis {
	l := &Redis{
		client: client,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		retry:  opts.RetryDelay,
		logger: opts.Logger,
	}
	if l.prefix == "" {
		l.prefix = defaultRedisPrefix
	}
	if l.ttl <= 0 {
		l.ttl = defaultRedisTTL
	}
	if l.retry <= 0 {
		l.retry = defaultRedisRetry
	}
	return l
}

// NewRedisFromURL connects to Redis and returns a locker using it.
func NewRedisFromURL(redisURL string, opts RedisOptions) (*Redis, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedis(client, opts), nil
}

// Lock implements Locker.
func (l *Redis) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return l.unlockFunc(redisKey, token), nil
		}
		timer.Reset(l.retry)
	}
}

func (l *Redis) unlockFunc(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() { l.release(redisKey, token) })
	}
}

func (l *Redis) release(redisKey, token string) {
	// Release even when the caller's context is already gone.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil && l.logger != nil {
		l.logger.Warn("failed to release lock", "key", redisKey, "error", err)
	}
}

// Close closes the Redis connection
func (l *Redis) Close() error {
	return l.client.Close()
}
