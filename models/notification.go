package models

import "time"

// ReminderPayload is the message handed to the reminder delivery pipeline.
type ReminderPayload struct {
	TenantID     string    `json:"tenant_id"`
	BookingID    string    `json:"booking_id"`
	ContactID    string    `json:"contact_id"`
	ContactName  string    `json:"contact_name"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ServiceName  string    `json:"service_name"`
	Start        time.Time `json:"start"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
}
