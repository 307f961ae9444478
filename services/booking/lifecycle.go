package booking

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/utils"
)

// formDueAfterBooking is how long after the booking end a linked form
// request stays answerable before the overdue check flips it.
const formDueAfterBooking = 48 * time.Hour

// reminderLead is how far before the booking start the reminder job is due.
const reminderLead = 24 * time.Hour

// Create validates the chosen slot against the open windows and the overlap
// guard, persists the booking as pending, emits booking.created and enqueues
// the reminder job.
func (s *DefaultBookingService) Create(input CreateBookingInput) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	svc, err := s.Store.GetService(input.TenantID, input.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, utils.Conflictf("service %s is not open for booking", svc.ID)
	}
	if _, err := s.Store.GetContact(input.TenantID, input.ContactID); err != nil {
		return nil, err
	}

	end, err := s.Availability.ValidateInterval(input.TenantID, input.ServiceID, input.Start, "")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	b := &models.Booking{
		ID:           uuid.New().String(),
		TenantID:     input.TenantID,
		ServiceID:    input.ServiceID,
		ContactID:    input.ContactID,
		Start:        input.Start,
		End:          end,
		Status:       models.BookingPending,
		Notes:        input.Notes,
		CustomFields: input.CustomFields,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Hard gate: the overlap re-check runs atomically inside the commit.
	if err := s.Store.CommitBooking(b); err != nil {
		return nil, err
	}

	s.syncCalendar(b)
	s.emit(models.EventBookingCreated, b)

	s.Store.EnqueueJob(&models.ScheduledJob{
		ID:       uuid.New().String(),
		TenantID: b.TenantID,
		Kind:     models.JobBookingReminder,
		DueAt:    b.Start.Add(-reminderLead),
		Priority: models.PriorityHigh,
		Payload:  map[string]string{"booking_id": b.ID},
		CreatedAt: now,
	})

	return b, nil
}

// Reschedule moves a non-terminal booking to a new interval, recomputing the
// end from the service duration and re-validating windows and conflicts with
// the booking itself excluded.
func (s *DefaultBookingService) Reschedule(tenantID, bookingID string, newStart time.Time) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.Store.GetBooking(tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Terminal() {
		return nil, utils.Conflictf("booking %s is %s and cannot be rescheduled", b.ID, b.Status)
	}

	end, err := s.Availability.ValidateInterval(tenantID, b.ServiceID, newStart, b.ID)
	if err != nil {
		return nil, err
	}

	b.Start = newStart
	b.End = end
	b.UpdatedAt = time.Now().UTC()
	if err := s.Store.CommitBooking(b); err != nil {
		return nil, err
	}

	s.syncCalendar(b)
	s.emit(models.EventBookingUpdated, b)
	return b, nil
}

// Transition drives the state machine. Disallowed transitions leave the
// booking unchanged; side effects are gated per target status.
func (s *DefaultBookingService) Transition(tenantID, bookingID string, to models.BookingStatus) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(tenantID, bookingID, to)
}

// Cancel is the soft delete: transition to cancelled plus tombstone.
func (s *DefaultBookingService) Cancel(tenantID, bookingID string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(tenantID, bookingID, models.BookingCancelled)
}

func (s *DefaultBookingService) transitionLocked(tenantID, bookingID string, to models.BookingStatus) (*models.Booking, error) {
	b, err := s.Store.GetBooking(tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(b.Status, to) {
		return nil, &utils.InvalidTransitionError{From: string(b.Status), To: string(to)}
	}

	svc, err := s.Store.GetService(tenantID, b.ServiceID)
	if err != nil {
		return nil, err
	}

	// Completion consumes inventory first: if stock is short, the whole
	// transition is rejected with no partial deduction.
	if to == models.BookingCompleted {
		crossed, err := s.Store.ConsumeInventory(tenantID, svc.Consumption)
		if err != nil {
			return nil, err
		}
		for _, item := range crossed {
			s.emitLowStock(item)
		}
	}

	from := b.Status
	b.Status = to
	b.UpdatedAt = time.Now().UTC()

	switch to {
	case models.BookingCancelled, models.BookingNoShow:
		// Best-effort release of the external reservation; failure does not
		// block the transition.
		if b.CalendarEventID != "" {
			if err := s.Calendar.DeleteEvent(context.Background(), b.CalendarEventID); err != nil {
				s.Logger.Warn("calendar release failed",
					zap.String("booking_id", b.ID), zap.Error(err))
			}
			b.CalendarEventID = ""
		}
		if to == models.BookingCancelled {
			now := time.Now().UTC()
			b.CancelledAt = &now
		}
	default:
		s.syncCalendar(b)
	}

	if err := s.Store.UpdateBooking(b); err != nil {
		return nil, err
	}

	switch to {
	case models.BookingConfirmed:
		s.emit(models.EventBookingConfirmed, b)
		s.openFormRequest(b, svc)
	case models.BookingCompleted:
		s.emit(models.EventBookingCompleted, b)
	default:
		s.emit(models.EventBookingUpdated, b)
	}

	s.Logger.Info("booking status changed",
		zap.String("booking_id", b.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return b, nil
}

// openFormRequest creates the pending post-booking form and schedules its
// overdue check when the service links a form template.
func (s *DefaultBookingService) openFormRequest(b *models.Booking, svc *models.Service) {
	if svc.FormTemplateID == "" {
		return
	}
	now := time.Now().UTC()
	form := &models.FormRequest{
		ID:         uuid.New().String(),
		TenantID:   b.TenantID,
		BookingID:  b.ID,
		TemplateID: svc.FormTemplateID,
		ContactID:  b.ContactID,
		Status:     models.FormPending,
		DueAt:      b.End.Add(formDueAfterBooking),
		CreatedAt:  now,
	}
	s.Store.PutForm(form)
	s.Store.EnqueueJob(&models.ScheduledJob{
		ID:        uuid.New().String(),
		TenantID:  b.TenantID,
		Kind:      models.JobFormOverdueCheck,
		DueAt:     form.DueAt,
		Priority:  models.PriorityNormal,
		Payload:   map[string]string{"form_id": form.ID},
		CreatedAt: now,
	})
}

// syncCalendar upserts the external reservation, best-effort and
// non-blocking for the state transition.
func (s *DefaultBookingService) syncCalendar(b *models.Booking) {
	eventID, err := s.Calendar.UpsertEvent(context.Background(), b)
	if err != nil {
		s.Logger.Warn("calendar sync failed",
			zap.String("booking_id", b.ID), zap.Error(err))
		return
	}
	if eventID != "" && eventID != b.CalendarEventID {
		b.CalendarEventID = eventID
		if err := s.Store.UpdateBooking(b); err != nil {
			s.Logger.Warn("failed to record calendar reference",
				zap.String("booking_id", b.ID), zap.Error(err))
		}
	}
}

func (s *DefaultBookingService) emit(eventType string, b *models.Booking) {
	s.Store.AppendEvent(models.NewDomainEvent(b.TenantID, eventType, "booking", b.ID, map[string]string{
		"booking_id": b.ID,
		"service_id": b.ServiceID,
		"status":     string(b.Status),
		"start":      b.Start.UTC().Format(time.RFC3339),
	}))
}

func (s *DefaultBookingService) emitLowStock(item models.InventoryItem) {
	s.Store.AppendEvent(models.NewDomainEvent(item.TenantID, models.EventInventoryLowStock, "inventory_item", item.ID, map[string]string{
		"item_id":   item.ID,
		"name":      item.Name,
		"on_hand":   strconv.Itoa(item.OnHand),
		"threshold": strconv.Itoa(item.LowStockThreshold),
	}))
	s.Logger.Warn("inventory low stock",
		zap.String("item_id", item.ID),
		zap.Int("on_hand", item.OnHand),
		zap.Int("threshold", item.LowStockThreshold))
}
