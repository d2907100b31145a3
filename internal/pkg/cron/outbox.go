package cron

import (
	"context"
	"time"
)

// OutboxPublisher drains one batch of pending events.
type OutboxPublisher interface {
	ProcessPending(ctx context.Context) (int, error)
}

type OutboxJobs struct {
	publisher OutboxPublisher
	interval  time.Duration
}

func NewOutboxJobs(publisher OutboxPublisher, interval time.Duration) *OutboxJobs {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &OutboxJobs{publisher: publisher, interval: interval}
}

func (j *OutboxJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("publish_outbox_events", j.interval, j.PublishOutboxEvents)
}

func (j *OutboxJobs) PublishOutboxEvents(ctx context.Context) error {
	_, err := j.publisher.ProcessPending(ctx)
	return err
}
