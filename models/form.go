package models

import "time"

// FormStatus tracks a post-booking form request.
type FormStatus string

const (
	FormPending   FormStatus = "pending"
	FormSubmitted FormStatus = "submitted"
	FormOverdue   FormStatus = "overdue"
)

// FormRequest asks a contact to fill in a post-booking form. Created when a
// booking of a form-linked service is confirmed; flipped to overdue by the
// worker loop once its due instant passes unanswered.
type FormRequest struct {
	ID          string            `bson:"id" json:"id"`
	TenantID    string            `bson:"tenant_id" json:"tenant_id"`
	BookingID   string            `bson:"booking_id" json:"booking_id"`
	TemplateID  string            `bson:"template_id" json:"template_id"`
	ContactID   string            `bson:"contact_id" json:"contact_id"`
	Status      FormStatus        `bson:"status" json:"status"`
	DueAt       time.Time         `bson:"due_at" json:"due_at"`
	SubmittedAt *time.Time        `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	Fields      map[string]string `bson:"fields,omitempty" json:"fields,omitempty"`
	CreatedAt   time.Time         `bson:"created_at" json:"created_at"`
}

// Contact is the person a booking is for. Contact management is external;
// the core only needs the reference and delivery details.
type Contact struct {
	ID        string    `bson:"id" json:"id"`
	TenantID  string    `bson:"tenant_id" json:"tenant_id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
