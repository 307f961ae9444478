package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// IdempotencyRetention is how long a stored response snapshot stays
// replayable before the sweep purges it.
const IdempotencyRetention = 24 * time.Hour

// IdempotencyRecord deduplicates externally-retried mutating requests. It is
// keyed by (tenant, client key, method, path) and stores a hash of the
// original request body plus a snapshot of the response.
type IdempotencyRecord struct {
	TenantID       string    `bson:"tenant_id" json:"tenant_id"`
	Key            string    `bson:"key" json:"key"` // client-supplied header value
	Method         string    `bson:"method" json:"method"`
	Path           string    `bson:"path" json:"path"`
	RequestHash    string    `bson:"request_hash" json:"request_hash"` // sha256 of the normalized body
	ResponseStatus int       `bson:"response_status" json:"response_status"`
	ResponseBody   []byte    `bson:"response_body" json:"response_body,omitempty"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	ExpiresAt      time.Time `bson:"expires_at" json:"expires_at"`
}

// StorageKey is the composite lookup key.
func (r *IdempotencyRecord) StorageKey() string {
	return IdempotencyStorageKey(r.TenantID, r.Key, r.Method, r.Path)
}

func IdempotencyStorageKey(tenantID, key, method, path string) string {
	return fmt.Sprintf("idem:%s:%s:%s:%s", tenantID, key, method, path)
}

// HashRequestBody fingerprints a request body for key-reuse detection.
func HashRequestBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
