package cache

import (
	"sync"
	"time"

	"github.com/geocoder89/agendahub/internal/domain/event"
)

// MonthCache keeps recently fetched month views so flipping the
// mini-calendar back and forth does not hammer the remote store. Entries
// expire quickly; a mutation-driven re-fetch calls Clear anyway.
type MonthCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry // keyed by "YYYY-MM"
}

type entry struct {
	records []event.Event
	exp     time.Time
}

func NewMonthCache(ttl time.Duration) *MonthCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &MonthCache{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *MonthCache) Get(month string) ([]event.Event, bool) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[month]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, month)
		c.mu.Unlock()
		return nil, false
	}

	return e.records, true
}

func (c *MonthCache) Set(month string, records []event.Event) {
	c.mu.Lock()
	c.m[month] = entry{records: records, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Clear drops every cached month. Called after any successful mutation so a
// stale month view never outlives the change that invalidated it.
func (c *MonthCache) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry)
	c.mu.Unlock()
}
