package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/erinpaul2002/careops-backend/database"
	"github.com/erinpaul2002/careops-backend/database/persist"
	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/services/idempotency"
)

// recordingMessenger counts deliveries and can be told to fail.
type recordingMessenger struct {
	sent []string
	fail error
}

func (m *recordingMessenger) SendReminder(ctx context.Context, contact models.Contact, b models.Booking, svc models.Service) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, b.ID)
	return nil
}

type workerFixture struct {
	store     *database.Store
	messenger *recordingMessenger
	worker    *Worker
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	store := database.NewStore(&persist.Nop{}, zap.NewNop())
	m := &recordingMessenger{}
	w := NewWorker(store, idempotency.NewMemoryLedger(), m, zap.NewNop())
	return &workerFixture{store: store, messenger: m, worker: w}
}

func (f *workerFixture) seedBooking(t *testing.T, status models.BookingStatus) *models.Booking {
	t.Helper()
	if err := f.store.PutService(&models.Service{
		ID: "svc1", TenantID: "t1", Name: "Consultation",
		DurationMinutes: 60, Timezone: "UTC", Active: true,
	}); err != nil {
		t.Fatalf("seed service: %v", err)
	}
	f.store.PutContact(&models.Contact{ID: "c1", TenantID: "t1", Name: "Ada"})
	start := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)
	b := &models.Booking{
		ID: "b1", TenantID: "t1", ServiceID: "svc1", ContactID: "c1",
		Start: start, End: start.Add(time.Hour), Status: status,
	}
	if err := f.store.CommitBooking(b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func (f *workerFixture) seedReminderJob(due time.Time) {
	f.store.EnqueueJob(&models.ScheduledJob{
		ID: "j1", TenantID: "t1", Kind: models.JobBookingReminder,
		DueAt: due, Priority: models.PriorityHigh,
		Payload: map[string]string{"booking_id": "b1"},
	})
}

func TestTickSendsDueReminder(t *testing.T) {
	f := newWorkerFixture(t)
	f.seedBooking(t, models.BookingConfirmed)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	f.seedReminderJob(now.Add(-time.Minute))

	f.worker.Tick(now)

	if len(f.messenger.sent) != 1 || f.messenger.sent[0] != "b1" {
		t.Fatalf("sent: %v", f.messenger.sent)
	}
	job, _ := f.store.GetJob("t1", "j1")
	if job.Status != models.JobDone || job.Attempts != 1 {
		t.Fatalf("job: %+v", job)
	}

	reminders := 0
	for _, e := range f.store.EventsByTenant("t1") {
		if e.Type == models.EventBookingReminderDue {
			reminders++
		}
	}
	if reminders != 1 {
		t.Fatalf("reminder events: %d", reminders)
	}
}

func TestTickIgnoresFutureJobs(t *testing.T) {
	f := newWorkerFixture(t)
	f.seedBooking(t, models.BookingConfirmed)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	f.seedReminderJob(now.Add(time.Hour))

	f.worker.Tick(now)

	if len(f.messenger.sent) != 0 {
		t.Fatalf("future job executed: %v", f.messenger.sent)
	}
	job, _ := f.store.GetJob("t1", "j1")
	if job.Status != models.JobQueued {
		t.Fatalf("job: %+v", job)
	}
}

func TestReminderSkipsDeadBookings(t *testing.T) {
	for _, status := range []models.BookingStatus{models.BookingCancelled, models.BookingCompleted} {
		f := newWorkerFixture(t)
		f.seedBooking(t, status)
		now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
		f.seedReminderJob(now)

		f.worker.Tick(now)

		if len(f.messenger.sent) != 0 {
			t.Fatalf("%s: reminder sent", status)
		}
		// Skipping still completes the job.
		job, _ := f.store.GetJob("t1", "j1")
		if job.Status != models.JobDone {
			t.Fatalf("%s: job %+v", status, job)
		}
	}
}

func TestReminderSkipsMissingBooking(t *testing.T) {
	f := newWorkerFixture(t)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	f.seedReminderJob(now)

	f.worker.Tick(now)

	job, _ := f.store.GetJob("t1", "j1")
	if job.Status != models.JobDone {
		t.Fatalf("job: %+v", job)
	}
}

func TestTickFailsJobOnDeliveryError(t *testing.T) {
	f := newWorkerFixture(t)
	f.seedBooking(t, models.BookingConfirmed)
	f.messenger.fail = errors.New("smtp down")
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	f.seedReminderJob(now)

	f.worker.Tick(now)

	job, _ := f.store.GetJob("t1", "j1")
	if job.Status != models.JobFailed || job.Attempts != 1 || job.LastError != "smtp down" {
		t.Fatalf("job: %+v", job)
	}

	// Failed jobs stay failed on later ticks.
	f.messenger.fail = nil
	f.worker.Tick(now.Add(time.Hour))
	job, _ = f.store.GetJob("t1", "j1")
	if job.Status != models.JobFailed || job.Attempts != 1 {
		t.Fatalf("failed job retried: %+v", job)
	}
}

func TestTickFlipsOverdueForms(t *testing.T) {
	f := newWorkerFixture(t)
	due := time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)
	f.store.PutForm(&models.FormRequest{
		ID: "f1", TenantID: "t1", BookingID: "b1", TemplateID: "intake-v1",
		Status: models.FormPending, DueAt: due,
	})
	f.store.EnqueueJob(&models.ScheduledJob{
		ID: "j1", TenantID: "t1", Kind: models.JobFormOverdueCheck,
		DueAt: due, Priority: models.PriorityNormal,
		Payload: map[string]string{"form_id": "f1"},
	})

	f.worker.Tick(due.Add(time.Minute))

	form, _ := f.store.GetForm("t1", "f1")
	if form.Status != models.FormOverdue {
		t.Fatalf("form: %+v", form)
	}
	overdue := 0
	for _, e := range f.store.EventsByTenant("t1") {
		if e.Type == models.EventFormOverdue {
			overdue++
		}
	}
	if overdue != 1 {
		t.Fatalf("overdue events: %d", overdue)
	}
}

func TestOverdueCheckIgnoresSubmittedForms(t *testing.T) {
	f := newWorkerFixture(t)
	due := time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)
	f.store.PutForm(&models.FormRequest{
		ID: "f1", TenantID: "t1", BookingID: "b1", TemplateID: "intake-v1",
		Status: models.FormPending, DueAt: due,
	})
	if _, err := f.store.SubmitForm("t1", "f1", map[string]string{"q1": "yes"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.store.EnqueueJob(&models.ScheduledJob{
		ID: "j1", TenantID: "t1", Kind: models.JobFormOverdueCheck,
		DueAt: due, Priority: models.PriorityNormal,
		Payload: map[string]string{"form_id": "f1"},
	})

	f.worker.Tick(due.Add(time.Minute))

	form, _ := f.store.GetForm("t1", "f1")
	if form.Status != models.FormSubmitted {
		t.Fatalf("submitted form flipped: %+v", form)
	}
	job, _ := f.store.GetJob("t1", "j1")
	if job.Status != models.JobDone {
		t.Fatalf("job: %+v", job)
	}
}

func TestTickCompletesUnknownKinds(t *testing.T) {
	f := newWorkerFixture(t)
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	f.store.EnqueueJob(&models.ScheduledJob{
		ID: "j1", TenantID: "t1", Kind: "mystery.kind",
		DueAt: now, Priority: models.PriorityLow,
	})

	f.worker.Tick(now)

	job, _ := f.store.GetJob("t1", "j1")
	if job.Status != models.JobDone {
		t.Fatalf("job: %+v", job)
	}
}

func TestTickReclaimsStaleLocks(t *testing.T) {
	f := newWorkerFixture(t)
	f.seedBooking(t, models.BookingConfirmed)
	claimedAt := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	f.seedReminderJob(claimedAt)

	// Another worker claims the job and dies.
	f.store.ClaimDueJobs(claimedAt, 10, "w-dead")

	f.worker.Tick(claimedAt.Add(11 * time.Minute))

	if len(f.messenger.sent) != 1 {
		t.Fatalf("reclaimed job not executed: %v", f.messenger.sent)
	}
	job, _ := f.store.GetJob("t1", "j1")
	if job.Status != models.JobDone {
		t.Fatalf("job: %+v", job)
	}
}

func TestStartAndStop(t *testing.T) {
	f := newWorkerFixture(t)
	f.worker.PollInterval = 10 * time.Millisecond
	f.worker.Start()
	time.Sleep(30 * time.Millisecond)
	f.worker.Stop()
}
