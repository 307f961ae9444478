package database

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/erinpaul2002/careops-backend/database/persist"
	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/utils"
)

// Store holds the scheduling core's in-memory state. All mutating access is
// serialized through one lock; composite check-then-commit operations
// (booking commit, inventory consumption, job claim) run entirely inside it
// so they are atomic relative to concurrent booking attempts. Durable writes
// go through the injected Persister, fire-and-forget.
type Store struct {
	mu      sync.RWMutex
	persist persist.Persister
	logger  *zap.Logger

	rules     map[string]*models.AvailabilityRule
	services  map[string]*models.Service
	bookings  map[string]*models.Booking
	jobs      map[string]*models.ScheduledJob
	items     map[string]*models.InventoryItem
	forms     map[string]*models.FormRequest
	contacts  map[string]*models.Contact
	events    []*models.DomainEvent
	eventHash map[string]struct{}
}

// NewStore builds an empty store around a persistence port.
func NewStore(p persist.Persister, logger *zap.Logger) *Store {
	return &Store{
		persist:   p,
		logger:    logger,
		rules:     make(map[string]*models.AvailabilityRule),
		services:  make(map[string]*models.Service),
		bookings:  make(map[string]*models.Booking),
		jobs:      make(map[string]*models.ScheduledJob),
		items:     make(map[string]*models.InventoryItem),
		forms:     make(map[string]*models.FormRequest),
		contacts:  make(map[string]*models.Contact),
		eventHash: make(map[string]struct{}),
	}
}

// --- services ---

// PutService inserts or replaces a service after validating its timezone.
func (s *Store) PutService(svc *models.Service) error {
	if svc.DurationMinutes <= 0 {
		return utils.Validationf("service duration must be positive")
	}
	if _, err := utils.LoadZone(svc.Timezone); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *svc
	s.services[svc.ID] = &cp
	s.persist.Save(persist.CollServices, svc.ID, cp)
	return nil
}

// GetService returns a tenant's service by id.
func (s *Store) GetService(tenantID, id string) (*models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	if !ok || svc.TenantID != tenantID {
		return nil, utils.NotFound("service", id)
	}
	cp := *svc
	return &cp, nil
}

// ListServices returns all services of a tenant.
func (s *Store) ListServices(tenantID string) []models.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Service
	for _, svc := range s.services {
		if svc.TenantID == tenantID {
			out = append(out, *svc)
		}
	}
	return out
}

// DeleteService removes a service together with all its availability rules,
// as one unit. It refuses while the service still has non-terminal bookings.
func (s *Store) DeleteService(tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.services[id]
	if !ok || svc.TenantID != tenantID {
		return utils.NotFound("service", id)
	}
	for _, b := range s.bookings {
		if b.ServiceID == id && !b.Terminal() {
			return utils.Conflictf("service %s has open bookings", id)
		}
	}
	delete(s.services, id)
	s.persist.Delete(persist.CollServices, id)
	for rid, r := range s.rules {
		if r.ServiceID == id {
			delete(s.rules, rid)
			s.persist.Delete(persist.CollRules, rid)
		}
	}
	return nil
}

// --- availability rules ---

// InsertRule validates the candidate against all existing rules of the same
// kind for the same service and inserts it. On conflict the store is left
// unchanged.
func (s *Store) InsertRule(r *models.AvailabilityRule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.services[r.ServiceID]; !ok {
		return utils.NotFound("service", r.ServiceID)
	}
	if err := s.ruleConflictLocked(r, ""); err != nil {
		return err
	}
	cp := *r
	s.rules[r.ID] = &cp
	s.persist.Save(persist.CollRules, r.ID, cp)
	return nil
}

// UpdateRule replaces an existing rule, revalidating its own invariant and
// its overlap against the other rules of the same kind.
func (s *Store) UpdateRule(r *models.AvailabilityRule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.rules[r.ID]
	if !ok || old.TenantID != r.TenantID {
		return utils.NotFound("rule", r.ID)
	}
	if err := s.ruleConflictLocked(r, r.ID); err != nil {
		return err
	}
	cp := *r
	s.rules[r.ID] = &cp
	s.persist.Save(persist.CollRules, r.ID, cp)
	return nil
}

// DeleteRule removes a rule.
func (s *Store) DeleteRule(tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok || r.TenantID != tenantID {
		return utils.NotFound("rule", id)
	}
	delete(s.rules, id)
	s.persist.Delete(persist.CollRules, id)
	return nil
}

// ListRules returns all rules of one service.
func (s *Store) ListRules(tenantID, serviceID string) []models.AvailabilityRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AvailabilityRule
	for _, r := range s.rules {
		if r.TenantID == tenantID && r.ServiceID == serviceID {
			out = append(out, *r)
		}
	}
	return out
}

func (s *Store) ruleConflictLocked(candidate *models.AvailabilityRule, excludeID string) error {
	for _, existing := range s.rules {
		if existing.ID == excludeID || existing.ServiceID != candidate.ServiceID {
			continue
		}
		if candidate.SameSlot(existing) && candidate.Overlaps(existing) {
			return utils.Conflictf("rule overlaps existing %s rule %s", existing.Kind, existing.ID)
		}
	}
	return nil
}

// --- contacts ---

// PutContact inserts or replaces a contact.
func (s *Store) PutContact(c *models.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.contacts[c.ID] = &cp
	s.persist.Save(persist.CollContacts, c.ID, cp)
}

// GetContact returns a tenant's contact by id.
func (s *Store) GetContact(tenantID, id string) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok || c.TenantID != tenantID {
		return nil, utils.NotFound("contact", id)
	}
	cp := *c
	return &cp, nil
}

// --- inventory ---

// PutItem inserts or replaces an inventory item.
func (s *Store) PutItem(it *models.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it.UpdatedAt = time.Now().UTC()
	cp := *it
	s.items[it.ID] = &cp
	s.persist.Save(persist.CollInventory, it.ID, cp)
}

// GetItem returns a tenant's inventory item by id.
func (s *Store) GetItem(tenantID, id string) (*models.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok || it.TenantID != tenantID {
		return nil, utils.NotFound("inventory item", id)
	}
	cp := *it
	return &cp, nil
}

// ConsumeInventory atomically deducts the configured quantities. If any item
// is unknown or short, nothing is deducted. It returns the items whose
// on-hand quantity crossed at or below their low-stock threshold during this
// deduction, so the caller can alert exactly once per crossing.
func (s *Store) ConsumeInventory(tenantID string, consumption []models.InventoryConsumption) ([]models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Check phase: no partial deduction on failure.
	for _, c := range consumption {
		it, ok := s.items[c.ItemID]
		if !ok || it.TenantID != tenantID {
			return nil, utils.NotFound("inventory item", c.ItemID)
		}
		if it.OnHand < c.Quantity {
			return nil, &utils.InsufficientInventoryError{ItemID: c.ItemID, Needed: c.Quantity, OnHand: it.OnHand}
		}
	}

	var crossed []models.InventoryItem
	for _, c := range consumption {
		it := s.items[c.ItemID]
		before := it.OnHand
		it.OnHand -= c.Quantity
		it.UpdatedAt = time.Now().UTC()
		if before > it.LowStockThreshold && it.OnHand <= it.LowStockThreshold {
			crossed = append(crossed, *it)
		}
		s.persist.Save(persist.CollInventory, it.ID, *it)
	}
	return crossed, nil
}

// --- domain events ---

// AppendEvent records a domain event unless an identical one (by dedup hash)
// already exists. Returns whether the event was appended.
func (s *Store) AppendEvent(e *models.DomainEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.eventHash[e.DedupHash]; dup {
		return false
	}
	cp := *e
	s.events = append(s.events, &cp)
	s.eventHash[e.DedupHash] = struct{}{}
	s.persist.Save(persist.CollEvents, e.ID, cp)
	return true
}

// EventsByTenant returns a tenant's events in append order.
func (s *Store) EventsByTenant(tenantID string) []models.DomainEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.DomainEvent
	for _, e := range s.events {
		if e.TenantID == tenantID {
			out = append(out, *e)
		}
	}
	return out
}
