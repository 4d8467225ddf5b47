// Package events publishes domain events after successful writes. Publishing
// is best effort: a broker outage is logged and counted, never returned.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"tastyhaat/internal/models"
	"tastyhaat/internal/telemetry"
)

const (
	UserCreated            = "user.created"
	UserUpdated            = "user.updated"
	UserRoleChanged        = "user.role_changed"
	MenuCreated            = "menu.created"
	MenuUpdated            = "menu.updated"
	MenuDeleted            = "menu.deleted"
	OrderCreated           = "order.created"
	CheckoutSessionCreated = "checkout.session_created"
)

type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }

type Emitter struct {
	pub     Publisher
	metrics *telemetry.Metrics
	log     *zap.Logger
}

func NewEmitter(pub Publisher, metrics *telemetry.Metrics, log *zap.Logger) *Emitter {
	if pub == nil {
		pub = Nop{}
	}
	return &Emitter{pub: pub, metrics: metrics, log: log}
}

// Emit is safe to call on a nil Emitter.
func (e *Emitter) Emit(ctx context.Context, eventType, key string, payload any) {
	if e == nil {
		return
	}

	ev := models.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Key:       key,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	status := "ok"
	if err := e.pub.Publish(ctx, key, ev); err != nil {
		status = "error"
		e.log.Warn("failed to publish event",
			zap.String("event_id", ev.ID),
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}

	e.metrics.MessagesPublished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
		attribute.String("status", status),
	))
}
