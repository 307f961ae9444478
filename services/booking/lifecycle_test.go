package booking

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/erinpaul2002/careops-backend/database"
	"github.com/erinpaul2002/careops-backend/database/persist"
	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/services/availability"
	"github.com/erinpaul2002/careops-backend/services/calendar"
	"github.com/erinpaul2002/careops-backend/utils"
)

type fixture struct {
	store *database.Store
	svc   *DefaultBookingService
}

// 2025-06-02 is a Monday with a 09:00-12:00 weekly window.
func newFixture(t *testing.T, service *models.Service) *fixture {
	t.Helper()
	logger := zap.NewNop()
	store := database.NewStore(&persist.Nop{}, logger)

	if service == nil {
		service = &models.Service{
			ID:              "svc1",
			TenantID:        "t1",
			Name:            "Consultation",
			DurationMinutes: 60,
			Timezone:        "UTC",
			Active:          true,
		}
	}
	if err := store.PutService(service); err != nil {
		t.Fatalf("seed service: %v", err)
	}
	rule, err := models.NewWeeklyRule("t1", service.ID, 1, 9*60, 12*60)
	if err != nil {
		t.Fatalf("build rule: %v", err)
	}
	if err := store.InsertRule(rule); err != nil {
		t.Fatalf("seed rule: %v", err)
	}
	store.PutContact(&models.Contact{ID: "c1", TenantID: "t1", Name: "Ada", Email: "ada@example.com"})

	avail := &availability.DefaultAvailabilityService{Store: store}
	return &fixture{
		store: store,
		svc: &DefaultBookingService{
			Store:        store,
			Availability: avail,
			Calendar:     &calendar.LogSync{Logger: logger},
			Logger:       logger,
		},
	}
}

func mondayAt(hour int) time.Time {
	return time.Date(2025, 6, 2, hour, 0, 0, 0, time.UTC)
}

func (f *fixture) create(t *testing.T, start time.Time) *models.Booking {
	t.Helper()
	b, err := f.svc.Create(CreateBookingInput{
		TenantID:  "t1",
		ServiceID: "svc1",
		ContactID: "c1",
		Start:     start,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t, nil)
	b := f.create(t, mondayAt(9))

	if b.Status != models.BookingPending {
		t.Fatalf("new booking is %s", b.Status)
	}
	if !b.End.Equal(mondayAt(10)) {
		t.Fatalf("end not derived from duration: %v", b.End)
	}

	events := f.store.EventsByTenant("t1")
	if len(events) != 1 || events[0].Type != models.EventBookingCreated {
		t.Fatalf("events: %+v", events)
	}

	// A reminder job is queued 24h before the start.
	due := mondayAt(9).Add(-24 * time.Hour)
	jobs := f.store.ClaimDueJobs(due, 10, "w1")
	if len(jobs) != 1 || jobs[0].Kind != models.JobBookingReminder {
		t.Fatalf("jobs: %+v", jobs)
	}
	if jobs[0].Payload["booking_id"] != b.ID {
		t.Fatalf("payload: %+v", jobs[0].Payload)
	}
}

func TestCreateBookingFromZoneShiftedListing(t *testing.T) {
	f := newFixture(t, nil)

	// A client browsing in another zone books the instant it was shown.
	avail := &availability.DefaultAvailabilityService{Store: f.store}
	slots, err := avail.ResolveSlots("t1", "svc1", "2025-06-02", "America/New_York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("no slots listed")
	}

	b, err := f.svc.Create(CreateBookingInput{
		TenantID: "t1", ServiceID: "svc1", ContactID: "c1", Start: slots[0].Start,
	})
	if err != nil {
		t.Fatalf("listed slot rejected at commit: %v", err)
	}
	if !b.Start.Equal(mondayAt(9)) {
		t.Fatalf("booked instant drifted: %v", b.Start)
	}
}

func TestCreateBookingRejectsConflicts(t *testing.T) {
	f := newFixture(t, nil)
	f.create(t, mondayAt(9))

	var conflict *utils.ConflictError
	_, err := f.svc.Create(CreateBookingInput{
		TenantID: "t1", ServiceID: "svc1", ContactID: "c1", Start: mondayAt(9),
	})
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Off-grid start inside the window is also rejected.
	_, err = f.svc.Create(CreateBookingInput{
		TenantID: "t1", ServiceID: "svc1", ContactID: "c1",
		Start: time.Date(2025, 6, 2, 9, 20, 0, 0, time.UTC),
	})
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Adjacent slot still books fine.
	f.create(t, mondayAt(10))
}

func TestCreateBookingClosedService(t *testing.T) {
	f := newFixture(t, nil)
	svc, _ := f.store.GetService("t1", "svc1")
	svc.Active = false
	if err := f.store.PutService(svc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Create(CreateBookingInput{
		TenantID: "t1", ServiceID: "svc1", ContactID: "c1", Start: mondayAt(9),
	}); err == nil {
		t.Fatal("expected refusal for inactive service")
	}
}

func TestCreateBookingUnknownContact(t *testing.T) {
	f := newFixture(t, nil)
	var notFound *utils.NotFoundError
	_, err := f.svc.Create(CreateBookingInput{
		TenantID: "t1", ServiceID: "svc1", ContactID: "ghost", Start: mondayAt(9),
	})
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to models.BookingStatus
		ok       bool
	}{
		{models.BookingPending, models.BookingConfirmed, true},
		{models.BookingPending, models.BookingCancelled, true},
		{models.BookingPending, models.BookingNoShow, true},
		{models.BookingPending, models.BookingCompleted, false},
		{models.BookingConfirmed, models.BookingCompleted, true},
		{models.BookingConfirmed, models.BookingCancelled, true},
		{models.BookingConfirmed, models.BookingNoShow, true},
		{models.BookingConfirmed, models.BookingPending, false},
		{models.BookingCompleted, models.BookingCancelled, false},
		{models.BookingCancelled, models.BookingConfirmed, false},
		{models.BookingNoShow, models.BookingCompleted, false},
	}
	for _, tc := range cases {
		f := newFixture(t, nil)
		b := f.create(t, mondayAt(9))
		b.Status = tc.from
		if err := f.store.UpdateBooking(b); err != nil {
			t.Fatalf("seed status: %v", err)
		}

		_, err := f.svc.Transition("t1", b.ID, tc.to)
		if tc.ok && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.ok {
			var invalid *utils.InvalidTransitionError
			if !errors.As(err, &invalid) {
				t.Errorf("%s -> %s: expected invalid transition, got %v", tc.from, tc.to, err)
			}
			after, _ := f.store.GetBooking("t1", b.ID)
			if after.Status != tc.from {
				t.Errorf("%s -> %s: booking mutated to %s", tc.from, tc.to, after.Status)
			}
		}
	}
}

func TestCancelSetsTombstone(t *testing.T) {
	f := newFixture(t, nil)
	b := f.create(t, mondayAt(9))

	cancelled, err := f.svc.Cancel("t1", b.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != models.BookingCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("tombstone missing: %+v", cancelled)
	}
	if cancelled.CalendarEventID != "" {
		t.Fatalf("calendar reference not released: %q", cancelled.CalendarEventID)
	}

	// The interval is free again.
	f.create(t, mondayAt(9))
}

func TestConfirmOpensFormRequest(t *testing.T) {
	f := newFixture(t, &models.Service{
		ID:              "svc1",
		TenantID:        "t1",
		Name:            "Consultation",
		DurationMinutes: 60,
		Timezone:        "UTC",
		Active:          true,
		FormTemplateID:  "intake-v1",
	})
	b := f.create(t, mondayAt(9))

	if _, err := f.svc.Transition("t1", b.ID, models.BookingConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The overdue check job carries the form id and is due 48h after the end.
	wantDue := b.End.Add(48 * time.Hour)
	jobs := f.store.ClaimDueJobs(wantDue, 10, "w1")
	var overdue *models.ScheduledJob
	for i := range jobs {
		if jobs[i].Kind == models.JobFormOverdueCheck {
			overdue = &jobs[i]
		}
	}
	if overdue == nil {
		t.Fatalf("no overdue check queued: %+v", jobs)
	}
	if !overdue.DueAt.Equal(wantDue) {
		t.Fatalf("due at %v, want %v", overdue.DueAt, wantDue)
	}
	form, err := f.store.GetForm("t1", overdue.Payload["form_id"])
	if err != nil {
		t.Fatalf("form not created: %v", err)
	}
	if form.Status != models.FormPending || form.BookingID != b.ID || form.TemplateID != "intake-v1" {
		t.Fatalf("form: %+v", form)
	}
}

func TestConfirmWithoutTemplateSkipsForm(t *testing.T) {
	f := newFixture(t, nil)
	b := f.create(t, mondayAt(9))
	if _, err := f.svc.Transition("t1", b.ID, models.BookingConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, j := range f.store.ClaimDueJobs(b.End.Add(72*time.Hour), 10, "w1") {
		if j.Kind == models.JobFormOverdueCheck {
			t.Fatalf("form job queued without a template: %+v", j)
		}
	}
}

func TestCompleteConsumesInventory(t *testing.T) {
	f := newFixture(t, &models.Service{
		ID:              "svc1",
		TenantID:        "t1",
		Name:            "Treatment",
		DurationMinutes: 60,
		Timezone:        "UTC",
		Active:          true,
		Consumption:     []models.InventoryConsumption{{ItemID: "gloves", Quantity: 2}},
	})
	f.store.PutItem(&models.InventoryItem{ID: "gloves", TenantID: "t1", Name: "Gloves", OnHand: 3, LowStockThreshold: 2})

	b := f.create(t, mondayAt(9))
	if _, err := f.svc.Transition("t1", b.ID, models.BookingConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.Transition("t1", b.ID, models.BookingCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item, _ := f.store.GetItem("t1", "gloves")
	if item.OnHand != 1 {
		t.Fatalf("on hand %d", item.OnHand)
	}

	// 3 -> 1 crossed the threshold, so exactly one low-stock event exists.
	lowStock := 0
	for _, e := range f.store.EventsByTenant("t1") {
		if e.Type == models.EventInventoryLowStock {
			lowStock++
		}
	}
	if lowStock != 1 {
		t.Fatalf("low stock events: %d", lowStock)
	}
}

func TestCompleteRejectedWhenStockShort(t *testing.T) {
	f := newFixture(t, &models.Service{
		ID:              "svc1",
		TenantID:        "t1",
		Name:            "Treatment",
		DurationMinutes: 60,
		Timezone:        "UTC",
		Active:          true,
		Consumption:     []models.InventoryConsumption{{ItemID: "gloves", Quantity: 5}},
	})
	f.store.PutItem(&models.InventoryItem{ID: "gloves", TenantID: "t1", Name: "Gloves", OnHand: 2, LowStockThreshold: 1})

	b := f.create(t, mondayAt(9))
	if _, err := f.svc.Transition("t1", b.ID, models.BookingConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var short *utils.InsufficientInventoryError
	_, err := f.svc.Transition("t1", b.ID, models.BookingCompleted)
	if !errors.As(err, &short) {
		t.Fatalf("expected insufficient inventory, got %v", err)
	}

	// Transition rejected whole: status unchanged, stock untouched.
	after, _ := f.store.GetBooking("t1", b.ID)
	if after.Status != models.BookingConfirmed {
		t.Fatalf("status mutated to %s", after.Status)
	}
	item, _ := f.store.GetItem("t1", "gloves")
	if item.OnHand != 2 {
		t.Fatalf("stock mutated to %d", item.OnHand)
	}
}

func TestReschedule(t *testing.T) {
	f := newFixture(t, nil)
	b := f.create(t, mondayAt(9))

	moved, err := f.svc.Reschedule("t1", b.ID, mondayAt(11))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !moved.Start.Equal(mondayAt(11)) || !moved.End.Equal(mondayAt(12)) {
		t.Fatalf("moved to [%v, %v)", moved.Start, moved.End)
	}

	// The old interval is open again.
	f.create(t, mondayAt(9))

	// Rescheduling onto itself passes the overlap guard via self exclusion.
	if _, err := f.svc.Reschedule("t1", b.ID, mondayAt(11)); err != nil {
		t.Fatalf("self reschedule rejected: %v", err)
	}

	var conflict *utils.ConflictError
	if _, err := f.svc.Reschedule("t1", b.ID, mondayAt(9)); !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRescheduleTerminalRejected(t *testing.T) {
	f := newFixture(t, nil)
	b := f.create(t, mondayAt(9))
	if _, err := f.svc.Cancel("t1", b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var conflict *utils.ConflictError
	if _, err := f.svc.Reschedule("t1", b.ID, mondayAt(10)); !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
