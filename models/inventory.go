package models

import "time"

// InventoryItem is tenant-scoped stock consumed by completed bookings.
// Items and thresholds are administered externally; the lifecycle only
// decrements OnHand.
type InventoryItem struct {
	ID                string    `bson:"id" json:"id"`
	TenantID          string    `bson:"tenant_id" json:"tenant_id"`
	Name              string    `bson:"name" json:"name"`
	OnHand            int       `bson:"on_hand" json:"on_hand"`
	LowStockThreshold int       `bson:"low_stock_threshold" json:"low_stock_threshold"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}
