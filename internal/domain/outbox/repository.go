package outbox

import (
	"context"
	"time"
)

type Repository interface {
	// Create joins the caller's transaction when one is in the context.
	Create(ctx context.Context, event Event) error
	// ClaimPending leases due events so concurrent relays never publish the same batch.
	ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]Event, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}
