package models

import "time"

// BookingStatus is the booking lifecycle state.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no_show"
)

// Booking represents a reserved appointment interval.
type Booking struct {
	ID              string            `bson:"id" json:"id"`
	TenantID        string            `bson:"tenant_id" json:"tenant_id"`
	ServiceID       string            `bson:"service_id" json:"service_id"`
	ContactID       string            `bson:"contact_id" json:"contact_id"`
	Start           time.Time         `bson:"start" json:"start"`
	End             time.Time         `bson:"end" json:"end"` // start + service duration
	Status          BookingStatus     `bson:"status" json:"status"`
	CalendarEventID string            `bson:"calendar_event_id,omitempty" json:"calendar_event_id,omitempty"`
	Notes           string            `bson:"notes,omitempty" json:"notes,omitempty"`
	CustomFields    map[string]string `bson:"custom_fields,omitempty" json:"custom_fields,omitempty"`
	CreatedAt       time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updated_at"`
	CancelledAt     *time.Time        `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"` // soft-delete tombstone
}

// Occupies reports whether the booking still holds its interval against
// other bookings. Cancelled and no-show bookings release the time.
func (b *Booking) Occupies() bool {
	return b.Status != BookingCancelled && b.Status != BookingNoShow
}

// Terminal reports whether the booking can no longer change status.
func (b *Booking) Terminal() bool {
	switch b.Status {
	case BookingCompleted, BookingCancelled, BookingNoShow:
		return true
	}
	return false
}

// Slot is a candidate bookable [start, end) interval for a service on a date.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
