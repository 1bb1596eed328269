package library

import (
	"context"
	"log/slog"

	"github.com/anven/resona/src/features/metrics"
)

// Result tells a caller whether an optimistic mutation actually happened.
// A rejected call is a full no-op locally and may simply be retried.
type Result int

const (
	Applied Result = iota
	Rejected
)

func (r Result) String() string {
	if r == Applied {
		return "applied"
	}
	return "rejected"
}

// applyOptimistic runs the remote effect first and the local effect only on
// success, so a remote failure leaves local state exactly as it was. This
// is the single place remote errors are caught and logged; they never
// travel further up.
func applyOptimistic(ctx context.Context, op string, remote func(context.Context) error, local func()) Result {
	if err := remote(ctx); err != nil {
		slog.Error("Remote library mutation failed", "operation", op, "error", err)
		metrics.RemoteFailures.WithLabelValues(op).Inc()
		return Rejected
	}
	local()
	return Applied
}
