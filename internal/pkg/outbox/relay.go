// Package outbox publishes committed-run events written by the commit transaction.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/outbox"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/metrics"
	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafkago.Writer the relay needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// NewKafkaWriter builds a writer that routes by message topic and keys by aggregate id.
func NewKafkaWriter(brokers []string, writeTimeout time.Duration) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
	}
}

// claimLease bounds how long a claimed batch stays hidden from other relays.
const claimLease = time.Minute

type Relay struct {
	repo      outbox.Repository
	writer    MessageWriter
	batchSize int
	lease     time.Duration
	logger    *slog.Logger
}

func NewRelay(repo outbox.Repository, writer MessageWriter, batchSize int, logger *slog.Logger) *Relay {
	if batchSize <= 0 {
		batchSize = 50
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{repo: repo, writer: writer, batchSize: batchSize, lease: claimLease, logger: logger}
}

func toMessage(event outbox.Event) kafkago.Message {
	return kafkago.Message{
		Topic: event.Topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
			{Key: "company_id", Value: []byte(event.CompanyID)},
		},
	}
}

// ProcessPending publishes one batch and returns how many events were sent.
// A failed publish marks that event for retry and moves on.
func (r *Relay) ProcessPending(ctx context.Context) (int, error) {
	events, err := r.repo.ClaimPending(ctx, r.batchSize, r.lease)
	if err != nil {
		return 0, fmt.Errorf("failed to claim pending outbox events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	sent := 0
	for _, event := range events {
		if err := r.writer.WriteMessages(ctx, toMessage(event)); err != nil {
			metrics.OutboxPublished.WithLabelValues("failed").Inc()
			r.logger.Error("publish outbox event failed",
				"outbox_id", event.ID,
				"event_type", event.EventType,
				"topic", event.Topic,
				"retry_count", event.RetryCount,
				"error", err,
			)
			if markErr := r.repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				r.logger.Error("mark outbox failed failed", "outbox_id", event.ID, "error", markErr)
			}
			continue
		}

		if err := r.repo.MarkSent(ctx, event.ID); err != nil {
			r.logger.Error("mark outbox sent failed", "outbox_id", event.ID, "error", err)
			continue
		}
		metrics.OutboxPublished.WithLabelValues("sent").Inc()
		sent++
	}

	r.logger.Info("outbox batch processed", "pending", len(events), "sent", sent)
	return sent, nil
}
