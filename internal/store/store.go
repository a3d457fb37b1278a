package store

import (
	"sync"

	"github.com/geocoder89/agendahub/internal/dateformat"
	"github.com/geocoder89/agendahub/internal/domain/event"
)

// Store holds the last event list fetched from the remote store. It is only
// ever mutated by whole-collection replacement after a successful re-fetch,
// so it can never drift from server state by local patching. The refresher
// and the UI host touch it from different goroutines, hence the lock.
type Store struct {
	mu    sync.RWMutex
	items []event.Event
	byID  map[int64]int // id -> index into items
}

func New() *Store {
	return &Store{byID: make(map[int64]int)}
}

// ReplaceAll swaps the entire held collection atomically. Server order is
// preserved as-is; the client imposes no sort of its own.
func (s *Store) ReplaceAll(records []event.Event) {
	items := make([]event.Event, len(records))
	copy(items, records)

	byID := make(map[int64]int, len(items))
	for i, e := range items {
		byID[e.ID] = i
	}

	s.mu.Lock()
	s.items = items
	s.byID = byID
	s.mu.Unlock()
}

func (s *Store) FindByID(id int64) (event.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return event.Event{}, false
	}
	return s.items[i], true
}

// Upcoming returns the first limit records in stored order. A limit at or
// below zero, or beyond the held count, returns everything.
func (s *Store) Upcoming(limit int) []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.items)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]event.Event, n)
	copy(out, s.items[:n])
	return out
}

// HasEventOn reports whether any held record falls on the given calendar
// day. The date may arrive in either display or ISO form.
func (s *Store) HasEventOn(date string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.items {
		if dateformat.SameDay(e.Date, date) {
			return true
		}
	}
	return false
}

// CalendarEvents projects the held records into the widget's shape, dates
// normalized to ISO.
func (s *Store) CalendarEvents() []event.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]event.CalendarEvent, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, event.CalendarEvent{
			ID:    e.ID,
			Title: e.Title,
			Date:  dateformat.ToCalendar(e.Date),
		})
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Snapshot copies out the full held collection in stored order.
func (s *Store) Snapshot() []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]event.Event, len(s.items))
	copy(out, s.items)
	return out
}
