package models

import "time"

// InventoryConsumption maps an inventory item to the quantity a completed
// booking of the service consumes.
type InventoryConsumption struct {
	ItemID   string `bson:"item_id" json:"item_id"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// Service is a tenant-scoped bookable offering.
type Service struct {
	ID              string                 `bson:"id" json:"id"`
	TenantID        string                 `bson:"tenant_id" json:"tenant_id"`
	Name            string                 `bson:"name" json:"name"`
	DurationMinutes int                    `bson:"duration_minutes" json:"duration_minutes"` // slot length
	LocationType    string                 `bson:"location_type" json:"location_type"`       // e.g. "on_site", "remote"
	Timezone        string                 `bson:"timezone" json:"timezone"`                 // IANA zone for slot resolution
	Active          bool                   `bson:"active" json:"active"`                     // inactive services resolve no slots
	FormTemplateID  string                 `bson:"form_template_id,omitempty" json:"form_template_id,omitempty"`
	Consumption     []InventoryConsumption `bson:"consumption,omitempty" json:"consumption,omitempty"`
	CreatedAt       time.Time              `bson:"created_at" json:"created_at"`
}
