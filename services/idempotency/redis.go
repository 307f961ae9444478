package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/erinpaul2002/careops-backend/models"
)

// RedisLedger is the production ledger. Records are stored as JSON under
// their composite key with the retention window as TTL, so Redis handles the
// purge and Sweep is a no-op.
type RedisLedger struct {
	Client *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{Client: client}
}

func (l *RedisLedger) Check(ctx context.Context, tenantID, key, method, path string) (*models.IdempotencyRecord, error) {
	data, err := l.Client.Get(ctx, models.IdempotencyStorageKey(tenantID, key, method, path)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup failed: %w", err)
	}
	var rec models.IdempotencyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt idempotency record: %w", err)
	}
	return &rec, nil
}

func (l *RedisLedger) Store(ctx context.Context, rec *models.IdempotencyRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency record: %w", err)
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		ttl = models.IdempotencyRetention
	}
	if err := l.Client.Set(ctx, rec.StorageKey(), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store idempotency record: %w", err)
	}
	return nil
}

// Sweep is a no-op: key TTLs expire records server-side.
func (l *RedisLedger) Sweep(ctx context.Context, now time.Time) int {
	return 0
}
