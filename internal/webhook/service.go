package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/askhat/filesync/internal/connection"
	"github.com/askhat/filesync/internal/metrics"
	"github.com/askhat/filesync/internal/queue"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type eventStore interface {
	Save(ctx context.Context, event Event) error
	MarkProcessed(ctx context.Context, id uuid.UUID, processedAt time.Time) error
}

type connectionStore interface {
	FindByAccountID(ctx context.Context, accountID string) (connection.Connection, error)
}

type sweeper interface {
	SweepAccount(ctx context.Context, accountID string) error
}

// Intake validates and durabilizes inbound webhook notifications and emits
// sync messages for transferable files.
type Intake struct {
	events      eventStore
	connections connectionStore
	queue       queue.Queue
	sweeper     sweeper
	log         *zap.Logger
}

// NewIntake constructs a webhook intake. The sweeper is optional; without
// one, sync-completed events are recorded but trigger no catch-up.
func NewIntake(events eventStore, connections connectionStore, q queue.Queue, sweeper sweeper, log *zap.Logger) *Intake {
	return &Intake{
		events:      events,
		connections: connections,
		queue:       q,
		sweeper:     sweeper,
		log:         log,
	}
}

// Handle durabilizes one inbound notification and, for recognized file
// events, emits a sync message. The raw event is persisted before any
// interpretation; unsupported event types and unresolvable accounts are
// recorded outcomes, not errors. An emission failure propagates and leaves
// the event unprocessed so an at-least-once caller can retry.
func (s *Intake) Handle(ctx context.Context, eventType string, payload json.RawMessage) (uuid.UUID, error) {
	event := Event{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.events.Save(ctx, event); err != nil {
		return uuid.Nil, fmt.Errorf("persist webhook event: %w", err)
	}

	switch eventType {
	case EventFileAdded:
		if err := s.handleFileAdded(ctx, event); err != nil {
			return event.ID, err
		}
	case EventFileSynced:
		if err := s.handleFileSynced(ctx, event); err != nil {
			return event.ID, err
		}
	default:
		s.log.Info("unsupported webhook event type",
			zap.String("event_type", eventType),
			zap.String("event_id", event.ID.String()),
		)
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeUnsupported).Inc()
	}

	return event.ID, nil
}

func (s *Intake) handleFileAdded(ctx context.Context, event Event) error {
	p, err := ParseFileAdded(event.Payload)
	if err != nil {
		return err
	}

	if _, err := s.connections.FindByAccountID(ctx, p.LinkedAccount.ID); err != nil {
		if errors.Is(err, connection.ErrConnectionNotFound) {
			// Expected race: the webhook can arrive before the account
			// link completes.
			s.log.Info("no connection for webhook account",
				zap.String("account_id", p.LinkedAccount.ID),
				zap.String("file_id", p.ID),
			)
			metrics.WebhookEvents.WithLabelValues(metrics.OutcomeNoConnection).Inc()
			return nil
		}
		return err
	}

	msg := queue.SyncMessage{
		AccountID:    p.LinkedAccount.ID,
		FileID:       p.ID,
		RemoteURL:    p.FileURL,
		DeclaredSize: p.Size,
		Metadata: queue.FileMetadata{
			OriginalName: p.Name,
			MimeType:     resolveMimeType(p.MimeType, p.Name),
			Size:         p.Size,
		},
		Timestamp: time.Now().UTC(),
	}
	if err := s.queue.Send(ctx, msg); err != nil {
		return fmt.Errorf("emit sync message: %w", err)
	}

	if err := s.events.MarkProcessed(ctx, event.ID, time.Now().UTC()); err != nil {
		return err
	}

	metrics.WebhookEvents.WithLabelValues(metrics.OutcomeEmitted).Inc()
	return nil
}

func (s *Intake) handleFileSynced(ctx context.Context, event Event) error {
	p, err := ParseFileSynced(event.Payload)
	if err != nil {
		return err
	}

	if s.sweeper == nil {
		s.log.Info("sync completed event without sweeper configured",
			zap.String("account_id", p.LinkedAccount.ID),
		)
		metrics.WebhookEvents.WithLabelValues(metrics.OutcomeUnsupported).Inc()
		return nil
	}

	if err := s.sweeper.SweepAccount(ctx, p.LinkedAccount.ID); err != nil {
		return fmt.Errorf("sweep account %s: %w", p.LinkedAccount.ID, err)
	}

	if err := s.events.MarkProcessed(ctx, event.ID, time.Now().UTC()); err != nil {
		return err
	}

	metrics.WebhookEvents.WithLabelValues(metrics.OutcomeEmitted).Inc()
	return nil
}
