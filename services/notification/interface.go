package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/services/tasks"
	"github.com/erinpaul2002/careops-backend/utils"
)

// Messenger is the messaging collaborator the worker loop sends reminders
// through. Delivery is best-effort.
type Messenger interface {
	SendReminder(ctx context.Context, contact models.Contact, booking models.Booking, service models.Service) error
}

// AsynqMessenger hands reminders to the asynq delivery pipeline; the
// consumer in cron/worker.go performs the actual send.
type AsynqMessenger struct {
	Client *asynq.Client
	Logger *zap.Logger
}

func NewAsynqMessenger(client *asynq.Client) *AsynqMessenger {
	return &AsynqMessenger{Client: client, Logger: utils.GetLogger()}
}

func (m *AsynqMessenger) SendReminder(ctx context.Context, contact models.Contact, booking models.Booking, service models.Service) error {
	payload := models.ReminderPayload{
		TenantID:     booking.TenantID,
		BookingID:    booking.ID,
		ContactID:    contact.ID,
		ContactName:  contact.Name,
		ContactEmail: contact.Email,
		ServiceName:  service.Name,
		Start:        booking.Start,
		Title:        fmt.Sprintf("Upcoming appointment: %s", service.Name),
		Body: fmt.Sprintf("Hi %s, your %s appointment is on %s.",
			contact.Name, service.Name, utils.FormatInZone(booking.Start, service.Timezone)),
	}

	task, opts, err := tasks.NewReminderTask(payload, time.Now())
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := m.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	m.Logger.Debug("reminder enqueued",
		zap.String("booking_id", booking.ID),
		zap.String("contact_id", contact.ID))
	return nil
}

// LogMessenger logs instead of delivering. Used in tests and when no queue
// is configured.
type LogMessenger struct {
	Logger *zap.Logger
}

func (m *LogMessenger) SendReminder(ctx context.Context, contact models.Contact, booking models.Booking, service models.Service) error {
	m.Logger.Info("reminder",
		zap.String("booking_id", booking.ID),
		zap.String("contact", contact.Name),
		zap.String("service", service.Name),
		zap.Time("start", booking.Start))
	return nil
}
