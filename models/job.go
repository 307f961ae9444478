package models

import "time"

// JobKind names the type-specific handler a scheduled job runs under.
type JobKind string

const (
	JobBookingReminder  JobKind = "booking.reminder"
	JobFormOverdueCheck JobKind = "form.overdue_check"
)

// JobStatus tracks a scheduled job through the worker loop.
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// JobPriority orders due jobs within one worker tick.
type JobPriority string

const (
	PriorityHigh   JobPriority = "high"
	PriorityNormal JobPriority = "normal"
	PriorityLow    JobPriority = "low"
)

// Rank gives the claim order; lower runs first.
func (p JobPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityNormal:
		return 1
	default:
		return 2
	}
}

// ScheduledJob is a tenant-scoped unit of deferred work, created when an
// event necessitates future action and retired by the worker loop.
type ScheduledJob struct {
	ID        string            `bson:"id" json:"id"`
	TenantID  string            `bson:"tenant_id" json:"tenant_id"`
	Kind      JobKind           `bson:"kind" json:"kind"`
	DueAt     time.Time         `bson:"due_at" json:"due_at"`
	Priority  JobPriority       `bson:"priority" json:"priority"`
	Payload   map[string]string `bson:"payload,omitempty" json:"payload,omitempty"`
	Status    JobStatus         `bson:"status" json:"status"`
	Attempts  int               `bson:"attempts" json:"attempts"`
	LastError string            `bson:"last_error,omitempty" json:"last_error,omitempty"`
	LockedBy  string            `bson:"locked_by,omitempty" json:"locked_by,omitempty"` // worker identity while running
	LockedAt  *time.Time        `bson:"locked_at,omitempty" json:"locked_at,omitempty"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time         `bson:"updated_at" json:"updated_at"`
}
