package handlers

import (
	"github.com/erinpaul2002/careops-backend/database"
	"github.com/erinpaul2002/careops-backend/services/availability"
	"github.com/erinpaul2002/careops-backend/services/booking"
	"github.com/erinpaul2002/careops-backend/services/idempotency"
)

// HandlerBundle groups the HTTP handlers so route registration takes a
// single dependency.
type HandlerBundle struct {
	Availability *AvailabilityHandler
	Booking      *BookingHandler
	Admin        *AdminHandler
	Forms        *FormHandler

	// Ledger backs the idempotency middleware on the public endpoints.
	Ledger idempotency.Ledger
}

// NewHandlerBundle wires handlers over the shared store and domain services.
func NewHandlerBundle(store *database.Store, avail availability.AvailabilityService, bookings booking.BookingService, ledger idempotency.Ledger) *HandlerBundle {
	return &HandlerBundle{
		Availability: NewAvailabilityHandler(avail),
		Booking:      NewBookingHandler(bookings),
		Admin:        NewAdminHandler(store),
		Forms:        NewFormHandler(store),
		Ledger:       ledger,
	}
}
