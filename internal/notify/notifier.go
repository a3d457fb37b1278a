package notify

import (
	"context"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notice is one toast-worthy message. Fire-and-forget: the core never waits
// for an acknowledgement from whatever surface renders it.
type Notice struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Kind    Kind      `json:"kind"`
	At      time.Time `json:"at"`
}

type Notifier interface {
	Notify(ctx context.Context, message string, kind Kind)
}
