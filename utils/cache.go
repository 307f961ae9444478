// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"github.com/erinpaul2002/careops-backend/config"

	"github.com/go-redis/redis/v8"
)

var (
	// IdempotencyClient backs the production idempotency ledger.
	IdempotencyClient *redis.Client
)

// InitIdempotencyCache initializes the Redis client for the idempotency
// ledger (using DB from AppConfig).
func InitIdempotencyCache() {
	IdempotencyClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisIdempotencyDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := IdempotencyClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Idempotency): %v", err)
	}
}

// GetIdempotencyClient returns the idempotency ledger client.
func GetIdempotencyClient() *redis.Client {
	if IdempotencyClient == nil {
		InitIdempotencyCache()
	}
	return IdempotencyClient
}
