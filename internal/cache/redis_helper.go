package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisHost = "127.0.0.1"
	defaultRedisPort = "6379"
	redisPingTimeout = 5 * time.Second
)

// openRedis dials Redis and fails fast when the server does not answer a ping.
func openRedis(cfg config.CacheConfig) (*redis.Client, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", opts.Addr, err)
	}

	return client, nil
}

// redisOptions prefers REDIS_URL and otherwise assembles host, port, password and db.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = defaultRedisHost
	}
	if port == "" {
		port = defaultRedisPort
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
