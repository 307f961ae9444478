package models

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Domain event types emitted by the scheduling core.
const (
	EventBookingCreated     = "booking.created"
	EventBookingConfirmed   = "booking.confirmed"
	EventBookingCompleted   = "booking.completed"
	EventBookingUpdated     = "booking.updated"
	EventBookingReminderDue = "booking.reminder_due"
	EventInventoryLowStock  = "inventory.low_stock"
	EventFormOverdue        = "form.overdue"
)

// DomainEvent is an append-only record consumed by notification and sync
// collaborators. DedupHash prevents duplicate rows for identical
// (tenant, type, entity, payload) tuples.
type DomainEvent struct {
	ID         string            `bson:"id" json:"id"`
	TenantID   string            `bson:"tenant_id" json:"tenant_id"`
	Type       string            `bson:"type" json:"type"`
	EntityType string            `bson:"entity_type" json:"entity_type"`
	EntityID   string            `bson:"entity_id" json:"entity_id"`
	Payload    map[string]string `bson:"payload,omitempty" json:"payload,omitempty"`
	DedupHash  string            `bson:"dedup_hash" json:"dedup_hash"`
	CreatedAt  time.Time         `bson:"created_at" json:"created_at"`
}

// NewDomainEvent builds an event and computes its dedup hash over the
// identifying tuple with payload keys in sorted order.
func NewDomainEvent(tenantID, eventType, entityType, entityID string, payload map[string]string) *DomainEvent {
	var sb strings.Builder
	sb.WriteString(tenantID)
	sb.WriteByte('|')
	sb.WriteString(eventType)
	sb.WriteByte('|')
	sb.WriteString(entityType)
	sb.WriteByte('|')
	sb.WriteString(entityID)

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteByte('|')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(payload[k])
	}

	sum := sha256.Sum256([]byte(sb.String()))
	return &DomainEvent{
		ID:         uuid.New().String(),
		TenantID:   tenantID,
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    payload,
		DedupHash:  hex.EncodeToString(sum[:]),
		CreatedAt:  time.Now().UTC(),
	}
}
