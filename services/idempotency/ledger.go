package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/erinpaul2002/careops-backend/models"
)

// Ledger deduplicates externally-retried mutating requests. Check returns
// the stored record for (tenant, key, method, path) when one exists and has
// not expired; the HTTP layer decides between replay and key-reuse conflict
// by comparing request hashes.
type Ledger interface {
	Check(ctx context.Context, tenantID, key, method, path string) (*models.IdempotencyRecord, error)
	Store(ctx context.Context, rec *models.IdempotencyRecord) error
	// Sweep purges expired records; returns how many were removed.
	Sweep(ctx context.Context, now time.Time) int
}

// MemoryLedger keeps records in-process with explicit expiry, swept by the
// worker loop tick.
type MemoryLedger struct {
	mu      sync.Mutex
	records map[string]*models.IdempotencyRecord
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[string]*models.IdempotencyRecord)}
}

func (l *MemoryLedger) Check(ctx context.Context, tenantID, key, method, path string) (*models.IdempotencyRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[models.IdempotencyStorageKey(tenantID, key, method, path)]
	if !ok || time.Now().After(rec.ExpiresAt) {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (l *MemoryLedger) Store(ctx context.Context, rec *models.IdempotencyRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *rec
	if cp.ExpiresAt.IsZero() {
		cp.ExpiresAt = cp.CreatedAt.Add(models.IdempotencyRetention)
	}
	l.records[cp.StorageKey()] = &cp
	return nil
}

func (l *MemoryLedger) Sweep(ctx context.Context, now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, rec := range l.records {
		if now.After(rec.ExpiresAt) {
			delete(l.records, k)
			n++
		}
	}
	return n
}
