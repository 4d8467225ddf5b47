package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"tastyhaat/internal/events"
	"tastyhaat/internal/models"
	"tastyhaat/internal/telemetry"
)

var (
	ErrMissingFields   = errors.New("missing required order fields")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type Store interface {
	Create(ctx context.Context, o *models.Order) error
	List(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
}

type EventEmitter interface {
	Emit(ctx context.Context, eventType, key string, payload any)
}

// Draft is an order as submitted by the client. Nil Quantity means one item;
// empty Status means pending.
type Draft struct {
	UserID   string
	Username string
	Email    string
	MenuID   string
	MenuName string
	Price    float64
	Quantity *int
	Status   string
}

type UseCase struct {
	store   Store
	events  EventEmitter
	metrics *telemetry.Metrics
	log     *zap.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

func NewUseCase(store Store, emitter EventEmitter, metrics *telemetry.Metrics, log *zap.Logger, tracer trace.Tracer) *UseCase {
	if emitter == nil {
		emitter = (*events.Emitter)(nil)
	}
	return &UseCase{
		store:   store,
		events:  emitter,
		metrics: metrics,
		log:     log,
		tracer:  tracer,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder records an order as given. The menu item is not looked up and
// no stock is reserved.
func (uc *UseCase) PlaceOrder(ctx context.Context, d Draft) (*models.Order, error) {
	ctx, span := uc.tracer.Start(ctx, "PlaceOrder",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("order.user_id", d.UserID),
			attribute.String("order.menu_id", d.MenuID),
			attribute.Float64("order.price", d.Price),
		),
	)
	defer span.End()

	if strings.TrimSpace(d.UserID) == "" || strings.TrimSpace(d.MenuID) == "" ||
		strings.TrimSpace(d.MenuName) == "" || !(d.Price > 0) {
		span.SetStatus(codes.Error, "missing required fields")
		return nil, ErrMissingFields
	}

	quantity := 1
	if d.Quantity != nil {
		quantity = *d.Quantity
	}
	if quantity < 1 {
		span.SetStatus(codes.Error, "invalid quantity")
		return nil, ErrInvalidQuantity
	}

	status := strings.TrimSpace(d.Status)
	if status == "" {
		status = models.OrderStatusPending
	}

	o := &models.Order{
		UserID:    d.UserID,
		Username:  d.Username,
		Email:     models.NormalizeEmail(d.Email),
		MenuID:    d.MenuID,
		MenuName:  d.MenuName,
		Price:     d.Price,
		Quantity:  quantity,
		Status:    status,
		CreatedAt: uc.now(),
	}

	if err := uc.store.Create(ctx, o); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.metrics.OrdersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
		return nil, fmt.Errorf("create order: %w", err)
	}
	span.SetAttributes(attribute.String("order.id", o.ID.Hex()))

	totalCents := models.Amount(o.Price * float64(o.Quantity)).MinorUnits()
	uc.metrics.OrdersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "ok")))
	uc.metrics.OrderValueCents.Record(ctx, totalCents)
	uc.events.Emit(ctx, events.OrderCreated, o.ID.Hex(), o)

	span.SetStatus(codes.Ok, "")
	uc.log.Info("order placed",
		zap.String("order_id", o.ID.Hex()),
		zap.String("user_id", o.UserID),
		zap.String("menu_id", o.MenuID),
		zap.Int64("total_cents", totalCents),
	)
	return o, nil
}

func (uc *UseCase) List(ctx context.Context) ([]models.Order, error) {
	ctx, span := uc.tracer.Start(ctx, "ListOrders")
	defer span.End()

	orders, err := uc.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (uc *UseCase) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	ctx, span := uc.tracer.Start(ctx, "ListOrdersByUser", trace.WithAttributes(attribute.String("order.user_id", userID)))
	defer span.End()

	orders, err := uc.store.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list orders for user: %w", err)
	}
	return orders, nil
}
