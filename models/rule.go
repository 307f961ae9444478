package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/erinpaul2002/careops-backend/utils"
)

// RuleKind discriminates the availability rule variants.
type RuleKind string

const (
	RuleKindWeekly       RuleKind = "weekly"        // recurring by weekday
	RuleKindDateOverride RuleKind = "date_override" // replaces weekly rules for one date
	RuleKindDateBlock    RuleKind = "date_block"    // closes part or all of one date
)

// AvailabilityRule defines when a service is open (weekly, date_override) or
// closed (date_block). Rules are constructed through the New*Rule functions,
// which validate the variant's required fields; a zero-value rule is invalid.
type AvailabilityRule struct {
	ID        string   `bson:"id" json:"id"`
	TenantID  string   `bson:"tenant_id" json:"tenant_id"`
	ServiceID string   `bson:"service_id" json:"service_id"`
	Kind      RuleKind `bson:"kind" json:"kind"`

	Weekday int    `bson:"weekday" json:"weekday"`             // 0=Sunday; weekly rules only
	Date    string `bson:"date,omitempty" json:"date,omitempty"` // YYYY-MM-DD; date kinds only

	StartMinute int  `bson:"start_minute" json:"start_minute"` // minutes from midnight
	EndMinute   int  `bson:"end_minute" json:"end_minute"`     // exclusive, up to 1440
	AllDay      bool `bson:"all_day,omitempty" json:"all_day,omitempty"` // date_block: whole date closed

	BufferMinutes       int `bson:"buffer_minutes,omitempty" json:"buffer_minutes,omitempty"`             // gap appended after each slot
	SlotIntervalMinutes int `bson:"slot_interval_minutes,omitempty" json:"slot_interval_minutes,omitempty"` // candidate spacing; 0 = duration+buffer

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// NewWeeklyRule builds a recurring open window for a weekday.
func NewWeeklyRule(tenantID, serviceID string, weekday, startMinute, endMinute int) (*AvailabilityRule, error) {
	if weekday < 0 || weekday > 6 {
		return nil, utils.Validationf("weekday %d out of range 0-6", weekday)
	}
	if err := validateDayWindow(startMinute, endMinute); err != nil {
		return nil, err
	}
	return &AvailabilityRule{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		ServiceID:   serviceID,
		Kind:        RuleKindWeekly,
		Weekday:     weekday,
		StartMinute: startMinute,
		EndMinute:   endMinute,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// NewDateOverrideRule builds an open window that replaces the weekly rules
// for one calendar date.
func NewDateOverrideRule(tenantID, serviceID, date string, startMinute, endMinute int) (*AvailabilityRule, error) {
	if _, _, _, err := utils.ParseDateKey(date); err != nil {
		return nil, err
	}
	if err := validateDayWindow(startMinute, endMinute); err != nil {
		return nil, err
	}
	return &AvailabilityRule{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		ServiceID:   serviceID,
		Kind:        RuleKindDateOverride,
		Date:        date,
		StartMinute: startMinute,
		EndMinute:   endMinute,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// NewDateBlockRule closes a sub-window of one date, or the whole date when
// allDay is set (startMinute/endMinute are ignored in that case).
func NewDateBlockRule(tenantID, serviceID, date string, allDay bool, startMinute, endMinute int) (*AvailabilityRule, error) {
	if _, _, _, err := utils.ParseDateKey(date); err != nil {
		return nil, err
	}
	r := &AvailabilityRule{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		ServiceID: serviceID,
		Kind:      RuleKindDateBlock,
		Date:      date,
		AllDay:    allDay,
		CreatedAt: time.Now().UTC(),
	}
	if allDay {
		r.StartMinute, r.EndMinute = 0, 24*60
		return r, nil
	}
	if err := validateDayWindow(startMinute, endMinute); err != nil {
		return nil, err
	}
	r.StartMinute, r.EndMinute = startMinute, endMinute
	return r, nil
}

func validateDayWindow(start, end int) error {
	if start < 0 || end > 24*60 {
		return utils.Validationf("time window [%d, %d) outside the day", start, end)
	}
	if start >= end {
		return utils.Validationf("start minute %d must precede end minute %d", start, end)
	}
	return nil
}

// Validate re-checks the rule's own time-order invariant, used on updates.
func (r *AvailabilityRule) Validate() error {
	switch r.Kind {
	case RuleKindWeekly:
		if r.Weekday < 0 || r.Weekday > 6 {
			return utils.Validationf("weekday %d out of range 0-6", r.Weekday)
		}
	case RuleKindDateOverride, RuleKindDateBlock:
		if _, _, _, err := utils.ParseDateKey(r.Date); err != nil {
			return err
		}
		if r.Kind == RuleKindDateBlock && r.AllDay {
			return nil
		}
	default:
		return utils.Validationf("unknown rule kind %q", r.Kind)
	}
	return validateDayWindow(r.StartMinute, r.EndMinute)
}

// SameSlot reports whether two rules of the same kind compete for the same
// weekday or date; only such pairs can conflict.
func (r *AvailabilityRule) SameSlot(other *AvailabilityRule) bool {
	if r.Kind != other.Kind {
		return false
	}
	if r.Kind == RuleKindWeekly {
		return r.Weekday == other.Weekday
	}
	return r.Date == other.Date
}

// Overlaps reports time-of-day overlap between two rules, half-open.
func (r *AvailabilityRule) Overlaps(other *AvailabilityRule) bool {
	return r.StartMinute < other.EndMinute && other.StartMinute < r.EndMinute
}
