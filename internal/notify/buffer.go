package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultCapacity = 64

// Buffer queues notices until the toast surface polls them off. When the
// buffer is full the oldest notice is dropped: a stale toast nobody saw is
// worth less than the newest one.
type Buffer struct {
	mu      sync.Mutex
	pending []Notice
	cap     int
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Buffer{cap: capacity}
}

func (b *Buffer) Notify(_ context.Context, message string, kind Kind) {
	n := Notice{
		ID:      uuid.NewString(),
		Message: message,
		Kind:    kind,
		At:      time.Now(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.pending) >= b.cap {
		b.pending = b.pending[1:]
	}
	b.pending = append(b.pending, n)
}

// Drain hands over everything pending and empties the buffer.
func (b *Buffer) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.pending
	b.pending = nil
	return out
}

// Fanout delivers each notice to every wrapped notifier.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, message string, kind Kind) {
	for _, n := range f {
		n.Notify(ctx, message, kind)
	}
}
