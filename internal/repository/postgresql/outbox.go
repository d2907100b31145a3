package postgresql

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/outbox"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
)

type outboxRepositoryImpl struct {
	db *database.DB
}

func NewOutboxRepository(db *database.DB) outbox.Repository {
	return &outboxRepositoryImpl{db: db}
}

func (r *outboxRepositoryImpl) Create(ctx context.Context, event outbox.Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		INSERT INTO outbox_events (id, company_id, aggregate_type, aggregate_id, event_type, topic, payload, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, event.ID, event.CompanyID, event.AggregateType, event.AggregateID, event.EventType, event.Topic, event.Payload, event.Status)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// ClaimPending leases up to limit due events, oldest first. Claimed rows get next_retry_at pushed out
// by lease, so a concurrent relay skips them until they are marked or the lease lapses.
func (r *outboxRepositoryImpl) ClaimPending(ctx context.Context, limit int, lease time.Duration) ([]outbox.Event, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		WITH due AS (
			SELECT id
			FROM outbox_events
			WHERE status IN ('pending', 'failed')
				AND (next_retry_at IS NULL OR next_retry_at <= NOW())
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE outbox_events o
		SET next_retry_at = NOW() + make_interval(secs => $2), updated_at = NOW()
		FROM due
		WHERE o.id = due.id
		RETURNING o.id, o.company_id, o.aggregate_type, o.aggregate_id, o.event_type, o.topic, o.payload,
			o.status, o.retry_count, o.next_retry_at, o.created_at
	`, limit, lease.Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending outbox events: %w", err)
	}
	defer rows.Close()

	var events []outbox.Event
	for rows.Next() {
		var e outbox.Event
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Topic,
			&e.Payload, &e.Status, &e.RetryCount, &e.NextRetryAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outbox events: %w", err)
	}

	// RETURNING has no order
	sort.Slice(events, func(i, j int) bool { return events[i].CreatedAt.Before(events[j].CreatedAt) })
	return events, nil
}

func (r *outboxRepositoryImpl) MarkSent(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE outbox_events
		SET status = 'sent', processed_at = NOW(), error_message = NULL, updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event sent: %w", err)
	}
	return nil
}

// MarkFailed backs off linearly, capped at 150 seconds.
func (r *outboxRepositoryImpl) MarkFailed(ctx context.Context, id string, reason string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `
		UPDATE outbox_events
		SET status = 'failed',
			retry_count = retry_count + 1,
			error_message = $2,
			next_retry_at = NOW() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds'),
			updated_at = NOW()
		WHERE id = $1
	`, id, reason)
	if err != nil {
		return fmt.Errorf("failed to mark outbox event failed: %w", err)
	}
	return nil
}
