package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventKind names a progress change.
type EventKind string

const (
	EventItemRead         EventKind = "item_read"
	EventBookmarkAdded    EventKind = "bookmark_added"
	EventBookmarkRemoved  EventKind = "bookmark_removed"
	EventQuizResultSaved  EventKind = "quiz_result_saved"
	EventChecklistChecked EventKind = "checklist_item_checked"
	EventChecklistCleared EventKind = "checklist_item_unchecked"
)

const eventTimeout = 5 * time.Second

// Event describes one effective change to a learner's progress.
// Loggers may receive events from concurrent changes out of order; Seq
// increases with each change made through one Store and restores the order.
type Event struct {
	Seq       uint64         `json:"seq"`
	Namespace string         `json:"namespace"`
	Kind      EventKind      `json:"kind"`
	ItemID    string         `json:"itemId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// EventLogger receives progress events. The store calls loggers
// synchronously, in registration order, after each effective change.
type EventLogger interface {
	LogEvent(event Event) error
}

// EventLoggerFunc adapts a function to EventLogger.
type EventLoggerFunc func(Event) error

func (f EventLoggerFunc) LogEvent(e Event) error { return f(e) }

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if event.Kind == "" {
		return fmt.Errorf("event kind is required")
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresEventLogger appends events to the progress_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.Kind == "" {
		return fmt.Errorf("event kind is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO progress_events (namespace, kind, item_id, data, created_at)
		 VALUES ($1, $2, NULLIF($3, ''), $4::jsonb, $5)`,
		event.Namespace,
		string(event.Kind),
		event.ItemID,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("progress event logged",
		"kind", event.Kind,
		"namespace", event.Namespace,
		"item_id", event.ItemID,
	)
	return nil
}
