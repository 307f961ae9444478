package availability

import (
	"time"

	"github.com/erinpaul2002/careops-backend/database"
	"github.com/erinpaul2002/careops-backend/models"
)

// AvailabilityService owns the rule model that defines when a service is
// open and the slot resolution that turns rules into bookable intervals.
type AvailabilityService interface {
	AddRule(rule *models.AvailabilityRule) error
	UpdateRule(rule *models.AvailabilityRule) error
	RemoveRule(tenantID, ruleID string) error
	ListRules(tenantID, serviceID string) []models.AvailabilityRule

	// ResolveSlots enumerates the open candidate slots for a service on a
	// calendar date. Windows are anchored in the service's timezone; a
	// non-empty zone renders the returned instants in that zone for display.
	ResolveSlots(tenantID, serviceID, date, zone string) ([]models.Slot, error)
	// ValidateInterval checks that start is an open slot boundary for the
	// service, ignoring the booking excludeBookingID when re-validating a
	// reschedule. Returns the slot end on success.
	ValidateInterval(tenantID, serviceID string, start time.Time, excludeBookingID string) (time.Time, error)
}

// DefaultAvailabilityService is the concrete implementation over the store.
type DefaultAvailabilityService struct {
	Store *database.Store
}

// AddRule validates the candidate rule against existing rules of the same
// kind and inserts it; the store is unchanged on conflict.
func (s *DefaultAvailabilityService) AddRule(rule *models.AvailabilityRule) error {
	return s.Store.InsertRule(rule)
}

// UpdateRule revalidates and replaces an existing rule.
func (s *DefaultAvailabilityService) UpdateRule(rule *models.AvailabilityRule) error {
	return s.Store.UpdateRule(rule)
}

// RemoveRule deletes a rule.
func (s *DefaultAvailabilityService) RemoveRule(tenantID, ruleID string) error {
	return s.Store.DeleteRule(tenantID, ruleID)
}

// ListRules returns the rules of one service.
func (s *DefaultAvailabilityService) ListRules(tenantID, serviceID string) []models.AvailabilityRule {
	return s.Store.ListRules(tenantID, serviceID)
}
