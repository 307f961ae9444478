package calendar

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erinpaul2002/careops-backend/models"
)

// CalendarSync mirrors bookings into an external calendar. Both operations
// are best-effort: callers log failures and move on, they never block a
// booking state transition.
type CalendarSync interface {
	UpsertEvent(ctx context.Context, booking *models.Booking) (eventID string, err error)
	DeleteEvent(ctx context.Context, eventID string) error
}

// LogSync is the default implementation used when no calendar integration is
// configured. It hands out stable event references and logs the sync points
// where a real connector would call out.
type LogSync struct {
	Logger *zap.Logger
}

func (s *LogSync) UpsertEvent(ctx context.Context, booking *models.Booking) (string, error) {
	eventID := booking.CalendarEventID
	if eventID == "" {
		eventID = fmt.Sprintf("cal-%s", uuid.New().String())
	}
	s.Logger.Debug("calendar upsert",
		zap.String("booking_id", booking.ID),
		zap.String("event_id", eventID),
		zap.Time("start", booking.Start))
	return eventID, nil
}

func (s *LogSync) DeleteEvent(ctx context.Context, eventID string) error {
	s.Logger.Debug("calendar delete", zap.String("event_id", eventID))
	return nil
}
