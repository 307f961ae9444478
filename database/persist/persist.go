package persist

// Collection names used by the persistence port.
const (
	CollRules       = "availability_rules"
	CollServices    = "services"
	CollBookings    = "bookings"
	CollJobs        = "scheduled_jobs"
	CollInventory   = "inventory_items"
	CollForms       = "form_requests"
	CollContacts    = "contacts"
	CollEvents      = "domain_events"
	CollIdempotency = "idempotency_records"
)

// Persister is the asynchronous write-behind port for durable storage.
// Callers fire and forget: implementations must never surface errors to the
// caller (logged only) and must preserve write order per entity.
type Persister interface {
	Save(collection, id string, entity any)
	Delete(collection, id string)
	// Close flushes pending writes and stops the writer.
	Close()
}

// Nop discards all writes. Used in tests and single-binary runs without a
// durable store.
type Nop struct{}

func (Nop) Save(collection, id string, entity any) {}
func (Nop) Delete(collection, id string)           {}
func (Nop) Close()                                 {}
