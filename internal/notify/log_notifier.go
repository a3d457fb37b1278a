package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes notices to the structured log. The CLI uses it as its
// only surface; the host keeps it alongside the buffer so notices are
// visible even when no browser is polling.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, message string, kind Kind) {
	if kind == KindError {
		n.log.ErrorContext(ctx, "notice", "kind", kind, "message", message)
		return
	}
	n.log.InfoContext(ctx, "notice", "kind", kind, "message", message)
}
