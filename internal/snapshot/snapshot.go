// Package snapshot persists the last-known event list outside the process,
// so a restarted client can render a calendar before (or without) reaching
// the remote store. Purely best-effort: the remote store stays authoritative
// and every successful re-fetch overwrites the snapshot.
package snapshot

import (
	"context"
	"errors"

	"github.com/geocoder89/agendahub/internal/domain/event"
)

var ErrNoSnapshot = errors.New("no snapshot stored")

type Store interface {
	Save(ctx context.Context, records []event.Event) error
	Load(ctx context.Context) ([]event.Event, error)
}

// Noop is used when no snapshot backend is configured.
type Noop struct{}

func (Noop) Save(context.Context, []event.Event) error { return nil }

func (Noop) Load(context.Context) ([]event.Event, error) { return nil, ErrNoSnapshot }
