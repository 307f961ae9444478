package availability

import (
	"sort"
	"time"

	"github.com/erinpaul2002/careops-backend/models"
	"github.com/erinpaul2002/careops-backend/utils"
)

// minuteWindow is a time-of-day interval in minutes from midnight, carrying
// the slot spacing knobs of the rule it came from.
type minuteWindow struct {
	start    int
	end      int
	buffer   int
	interval int
}

// ResolveSlots computes the ordered, duplicate-free open slots for a service
// on a calendar date. Date-override rules replace the weekly rules entirely
// for their date; an all-day block closes the date; partial blocks exclude
// candidates that intersect them; existing live bookings suppress occupied
// candidates.
//
// Rule windows are time-of-day in the service's own zone; zone only changes
// how the resulting instants are rendered, never which instants exist, so a
// listed slot is bookable regardless of the zone it was listed under.
func (s *DefaultAvailabilityService) ResolveSlots(tenantID, serviceID, date, zone string) ([]models.Slot, error) {
	slots, err := s.resolveSlots(tenantID, serviceID, date, "")
	if err != nil || zone == "" {
		return slots, err
	}
	loc, err := utils.LoadZone(zone)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		slots[i].Start = slots[i].Start.In(loc)
		slots[i].End = slots[i].End.In(loc)
	}
	return slots, nil
}

func (s *DefaultAvailabilityService) resolveSlots(tenantID, serviceID, date, excludeBookingID string) ([]models.Slot, error) {
	svc, err := s.Store.GetService(tenantID, serviceID)
	if err != nil {
		return nil, err
	}
	loc, err := utils.LoadZone(svc.Timezone)
	if err != nil {
		return nil, err
	}
	if _, _, _, err := utils.ParseDateKey(date); err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, nil
	}

	windows, blocks, closed := selectRules(s.Store.ListRules(tenantID, serviceID), date, weekdayOfDate(date, loc))
	if closed || len(windows) == 0 {
		return nil, nil
	}

	var slots []models.Slot
	for _, w := range windows {
		step := w.interval
		if step == 0 {
			step = svc.DurationMinutes + w.buffer
		}
		if step < 1 {
			step = 1
		}
		for cursor := w.start; cursor+svc.DurationMinutes <= w.end; cursor += step {
			candidate := minuteWindow{start: cursor, end: cursor + svc.DurationMinutes}
			if intersectsAny(candidate, blocks) {
				continue
			}
			start, err := utils.ResolveCivilTime(date, candidate.start, loc)
			if err != nil {
				return nil, err
			}
			end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)
			if s.Store.IsOverlapping(tenantID, start, end, excludeBookingID) {
				continue
			}
			slots = append(slots, models.Slot{Start: start, End: end})
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Start.Before(slots[j].Start) })
	return dedupeByStart(slots), nil
}

// ValidateInterval re-validates a chosen interval against the open windows
// immediately before commit. The atomic re-check in the store remains the
// final guard; this closes the listing race at the rule level.
func (s *DefaultAvailabilityService) ValidateInterval(tenantID, serviceID string, start time.Time, excludeBookingID string) (time.Time, error) {
	svc, err := s.Store.GetService(tenantID, serviceID)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := utils.LoadZone(svc.Timezone)
	if err != nil {
		return time.Time{}, err
	}
	date := utils.DateKeyInZone(start, loc)
	slots, err := s.resolveSlots(tenantID, serviceID, date, excludeBookingID)
	if err != nil {
		return time.Time{}, err
	}
	for _, slot := range slots {
		if slot.Start.Equal(start) {
			return slot.End, nil
		}
	}
	return time.Time{}, utils.Conflictf("interval starting %s is not an open slot", start.In(loc).Format(time.RFC3339))
}

// selectRules partitions a service's rules for one date: open windows (with
// override-replaces-weekly semantics), partial block exclusions, and the
// all-day closed short circuit.
func selectRules(rules []models.AvailabilityRule, date string, weekday int) (windows []minuteWindow, blocks []minuteWindow, closed bool) {
	var weekly, overrides []minuteWindow
	for _, r := range rules {
		switch r.Kind {
		case models.RuleKindWeekly:
			if r.Weekday == weekday {
				weekly = append(weekly, windowOf(r))
			}
		case models.RuleKindDateOverride:
			if r.Date == date {
				overrides = append(overrides, windowOf(r))
			}
		case models.RuleKindDateBlock:
			if r.Date != date {
				continue
			}
			if r.AllDay {
				return nil, nil, true
			}
			blocks = append(blocks, windowOf(r))
		}
	}
	if len(overrides) > 0 {
		return overrides, blocks, false
	}
	return weekly, blocks, false
}

func windowOf(r models.AvailabilityRule) minuteWindow {
	return minuteWindow{
		start:    r.StartMinute,
		end:      r.EndMinute,
		buffer:   r.BufferMinutes,
		interval: r.SlotIntervalMinutes,
	}
}

func intersectsAny(candidate minuteWindow, blocks []minuteWindow) bool {
	for _, b := range blocks {
		if candidate.start < b.end && b.start < candidate.end {
			return true
		}
	}
	return false
}

func dedupeByStart(slots []models.Slot) []models.Slot {
	var out []models.Slot
	for _, s := range slots {
		if len(out) > 0 && s.Start.Equal(out[len(out)-1].Start) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// weekdayOfDate gives the weekday index (0=Sunday) of a civil date in the
// zone. Anchored at noon so DST transitions at midnight cannot shift it.
func weekdayOfDate(date string, loc *time.Location) int {
	t, err := utils.ResolveCivilTime(date, 12*60, loc)
	if err != nil {
		return -1
	}
	return int(t.Weekday())
}
