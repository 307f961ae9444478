package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/erinpaul2002/careops-backend/models"
)

// execute dispatches a claimed job to its type-specific handler. Unknown
// kinds are no-ops that still complete.
func (w *Worker) execute(ctx context.Context, job models.ScheduledJob, now time.Time) error {
	switch job.Kind {
	case models.JobBookingReminder:
		return w.runReminder(ctx, job)
	case models.JobFormOverdueCheck:
		return w.runOverdueCheck(job, now)
	default:
		w.Logger.Info("unknown job kind, skipping",
			zap.String("job_id", job.ID),
			zap.String("kind", string(job.Kind)))
		return nil
	}
}

// runReminder sends the booking reminder unless the booking is gone,
// cancelled or already completed.
func (w *Worker) runReminder(ctx context.Context, job models.ScheduledJob) error {
	bookingID := job.Payload["booking_id"]
	b, err := w.Store.GetBooking(job.TenantID, bookingID)
	if err != nil {
		// The booking was removed; nothing to remind about.
		w.Logger.Debug("reminder skipped, booking gone", zap.String("booking_id", bookingID))
		return nil
	}
	if b.Status == models.BookingCancelled || b.Status == models.BookingCompleted {
		return nil
	}

	contact, err := w.Store.GetContact(job.TenantID, b.ContactID)
	if err != nil {
		return err
	}
	svc, err := w.Store.GetService(job.TenantID, b.ServiceID)
	if err != nil {
		return err
	}

	if err := w.Messenger.SendReminder(ctx, *contact, *b, *svc); err != nil {
		return err
	}

	w.Store.AppendEvent(models.NewDomainEvent(job.TenantID, models.EventBookingReminderDue, "booking", b.ID, map[string]string{
		"booking_id": b.ID,
		"contact_id": b.ContactID,
		"start":      b.Start.UTC().Format(time.RFC3339),
	}))
	return nil
}

// runOverdueCheck flips a still-pending, past-due form request to overdue.
func (w *Worker) runOverdueCheck(job models.ScheduledJob, now time.Time) error {
	formID := job.Payload["form_id"]
	form, flipped := w.Store.MarkFormOverdue(job.TenantID, formID, now)
	if !flipped {
		return nil
	}

	w.Logger.Warn("form request overdue",
		zap.String("alert", "warning"),
		zap.String("form_id", form.ID),
		zap.String("booking_id", form.BookingID))

	w.Store.AppendEvent(models.NewDomainEvent(job.TenantID, models.EventFormOverdue, "form_request", form.ID, map[string]string{
		"form_id":    form.ID,
		"booking_id": form.BookingID,
		"due_at":     form.DueAt.UTC().Format(time.RFC3339),
	}))
	return nil
}
