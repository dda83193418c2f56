package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/phrazzld/taskdeck-api/internal/platform/logger"
)

// LoggingHandler writes one structured log line per event.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a LoggingHandler.
func NewLoggingHandler(l *slog.Logger) *LoggingHandler {
	if l == nil {
		l = slog.Default()
	}
	return &LoggingHandler{logger: l.With(slog.String("component", "event_log"))}
}

// HandleEvent implements EventHandler.
func (h *LoggingHandler) HandleEvent(ctx context.Context, event *TaskEvent) error {
	logger.FromContextOrDefault(ctx, h.logger).Info("task event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.String("owner_id", event.OwnerID.String()),
		slog.Int("task_count", len(event.TaskIDs)))
	return nil
}

// Publisher is the subset of *nats.Conn used to publish events.
type Publisher interface {
	Publish(subject string, data []byte) error
}

var _ Publisher = (*nats.Conn)(nil)

// NATSHandler publishes each event as JSON on "<prefix>.<event type>", for
// example taskdeck.task.completed.
type NATSHandler struct {
	publisher Publisher
	prefix    string
	logger    *slog.Logger
}

// NewNATSHandler creates a NATSHandler publishing through p.
func NewNATSHandler(p Publisher, prefix string, l *slog.Logger) *NATSHandler {
	if p == nil {
		panic("publisher cannot be nil")
	}
	if l == nil {
		l = slog.Default()
	}
	return &NATSHandler{
		publisher: p,
		prefix:    prefix,
		logger:    l.With(slog.String("component", "nats_event_publisher")),
	}
}

// Subject returns the subject an event of type t is published on.
func (h *NATSHandler) Subject(t EventType) string {
	if h.prefix == "" {
		return string(t)
	}
	return h.prefix + "." + string(t)
}

// HandleEvent implements EventHandler.
func (h *NATSHandler) HandleEvent(ctx context.Context, event *TaskEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
	}

	subject := h.Subject(event.Type)
	if err := h.publisher.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish event %s to %s: %w", event.ID, subject, err)
	}

	logger.FromContextOrDefault(ctx, h.logger).Debug("published task event",
		slog.String("subject", subject),
		slog.String("event_id", event.ID.String()))
	return nil
}

// ConnectNATS dials the NATS server at url, reconnecting indefinitely after
// the initial connection succeeds.
func ConnectNATS(url string, l *slog.Logger) (*nats.Conn, error) {
	if l == nil {
		l = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("taskdeck-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				l.Warn("NATS disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			l.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}
