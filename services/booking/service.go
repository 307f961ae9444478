package booking

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/erinpaul2002/careops-backend/database"
	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/services/availability"
	"github.com/erinpaul2002/careops-backend/services/calendar"
)

// CreateBookingInput carries everything needed to reserve a slot.
type CreateBookingInput struct {
	TenantID     string            `json:"-"`
	ServiceID    string            `json:"service_id"`
	ContactID    string            `json:"contact_id"`
	Start        time.Time         `json:"start"`
	Notes        string            `json:"notes,omitempty"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// BookingService owns the booking state machine and its gated side effects.
type BookingService interface {
	Create(input CreateBookingInput) (*models.Booking, error)
	Reschedule(tenantID, bookingID string, newStart time.Time) (*models.Booking, error)
	Transition(tenantID, bookingID string, to models.BookingStatus) (*models.Booking, error)
	Cancel(tenantID, bookingID string) (*models.Booking, error)
	Get(tenantID, bookingID string) (*models.Booking, error)
}

// DefaultBookingService is the concrete implementation. Compound operations
// (create, reschedule, transition) are serialized by one mutex so status
// checks, inventory consumption and the final commit act as a unit; the
// store's own lock additionally keeps the overlap re-check atomic against
// slot listings.
type DefaultBookingService struct {
	Store        *database.Store
	Availability availability.AvailabilityService
	Calendar     calendar.CalendarSync
	Logger       *zap.Logger

	mu sync.Mutex
}

// Get returns a booking.
func (s *DefaultBookingService) Get(tenantID, bookingID string) (*models.Booking, error) {
	return s.Store.GetBooking(tenantID, bookingID)
}

// allowedTransitions is the full status transition table. Completed,
// cancelled and no_show are terminal.
var allowedTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:   {models.BookingConfirmed, models.BookingCancelled, models.BookingNoShow},
	models.BookingConfirmed: {models.BookingCompleted, models.BookingCancelled, models.BookingNoShow},
}

func transitionAllowed(from, to models.BookingStatus) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}
