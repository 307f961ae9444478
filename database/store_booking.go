package database

import (
	"time"

	"github.com/erinpaul2002/careops-backend/database/persist"
	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/utils"
)

// IsOverlapping reports whether any booking of the tenant with a live status
// and id != excludeID overlaps [start, end). Half-open intervals: touching
// endpoints do not conflict.
func (s *Store) IsOverlapping(tenantID string, start, end time.Time, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlapsLocked(tenantID, start, end, excludeID)
}

func (s *Store) overlapsLocked(tenantID string, start, end time.Time, excludeID string) bool {
	for _, b := range s.bookings {
		if b.TenantID != tenantID || b.ID == excludeID || !b.Occupies() {
			continue
		}
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}

// CommitBooking inserts or replaces a booking after re-checking the overlap
// guard under the write lock. This is the synchronous re-check that closes
// the race between slot listing and booking commit.
func (s *Store) CommitBooking(b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.Occupies() && s.overlapsLocked(b.TenantID, b.Start, b.End, b.ID) {
		return utils.Conflictf("interval [%s, %s) is already booked",
			b.Start.UTC().Format(time.RFC3339), b.End.UTC().Format(time.RFC3339))
	}
	cp := *b
	s.bookings[b.ID] = &cp
	s.persist.Save(persist.CollBookings, b.ID, cp)
	return nil
}

// UpdateBooking replaces a booking without re-running the overlap guard.
// Only for mutations that cannot occupy new time (status changes, notes).
func (s *Store) UpdateBooking(b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.bookings[b.ID]
	if !ok || old.TenantID != b.TenantID {
		return utils.NotFound("booking", b.ID)
	}
	cp := *b
	s.bookings[b.ID] = &cp
	s.persist.Save(persist.CollBookings, b.ID, cp)
	return nil
}

// GetBooking returns a tenant's booking by id.
func (s *Store) GetBooking(tenantID, id string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok || b.TenantID != tenantID {
		return nil, utils.NotFound("booking", id)
	}
	cp := *b
	return &cp, nil
}

// ListBookings returns all bookings of a tenant.
func (s *Store) ListBookings(tenantID string) []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.TenantID == tenantID {
			out = append(out, *b)
		}
	}
	return out
}

// --- form requests ---

// PutForm inserts or replaces a form request.
func (s *Store) PutForm(f *models.FormRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *f
	s.forms[f.ID] = &cp
	s.persist.Save(persist.CollForms, f.ID, cp)
}

// GetForm returns a tenant's form request by id.
func (s *Store) GetForm(tenantID, id string) (*models.FormRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.forms[id]
	if !ok || f.TenantID != tenantID {
		return nil, utils.NotFound("form request", id)
	}
	cp := *f
	return &cp, nil
}

// SubmitForm records a submission for a pending or overdue form request.
func (s *Store) SubmitForm(tenantID, id string, fields map[string]string) (*models.FormRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok || f.TenantID != tenantID {
		return nil, utils.NotFound("form request", id)
	}
	if f.Status == models.FormSubmitted {
		return nil, utils.Conflictf("form request %s already submitted", id)
	}
	now := time.Now().UTC()
	f.Status = models.FormSubmitted
	f.SubmittedAt = &now
	f.Fields = fields
	s.persist.Save(persist.CollForms, f.ID, *f)
	cp := *f
	return &cp, nil
}

// MarkFormOverdue flips a pending form request past its due instant to
// overdue. Returns false when the form is no longer pending or not yet due.
func (s *Store) MarkFormOverdue(tenantID, id string, now time.Time) (*models.FormRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.forms[id]
	if !ok || f.TenantID != tenantID {
		return nil, false
	}
	if f.Status != models.FormPending || now.Before(f.DueAt) {
		return nil, false
	}
	f.Status = models.FormOverdue
	s.persist.Save(persist.CollForms, f.ID, *f)
	cp := *f
	return &cp, true
}
