package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"tastyhaat/internal/events"
	"tastyhaat/internal/models"
	"tastyhaat/internal/telemetry"
)

const defaultDescription = "Order Payment"

var ErrInvalidAmount = errors.New("invalid amount")

// ProviderError carries the payment provider's own message, which is passed
// through to the client.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string { return "payment provider: " + e.Message }
func (e *ProviderError) Unwrap() error { return e.Err }

type CheckoutRequest struct {
	AmountCents   int64
	Currency      string
	Description   string
	CustomerEmail string
	CustomerName  string
	SuccessURL    string
	CancelURL     string
}

type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*models.CheckoutSession, error)
}

type EventEmitter interface {
	Emit(ctx context.Context, eventType, key string, payload any)
}

type UseCase struct {
	gateway   Gateway
	clientURL string
	events    EventEmitter
	metrics   *telemetry.Metrics
	log       *zap.Logger
	tracer    trace.Tracer
}

func NewUseCase(gateway Gateway, clientURL string, emitter EventEmitter, metrics *telemetry.Metrics, log *zap.Logger, tracer trace.Tracer) *UseCase {
	if emitter == nil {
		emitter = (*events.Emitter)(nil)
	}
	return &UseCase{
		gateway:   gateway,
		clientURL: strings.TrimRight(clientURL, "/"),
		events:    emitter,
		metrics:   metrics,
		log:       log,
		tracer:    tracer,
	}
}

// CreateCheckout opens a hosted checkout session for a single line item.
// Nothing is persisted; the session only lives at the provider.
func (uc *UseCase) CreateCheckout(ctx context.Context, amount models.Amount, description, email, name string) (*models.CheckoutSession, error) {
	ctx, span := uc.tracer.Start(ctx, "CreateCheckoutSession",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Float64("payment.amount", amount.Float64())),
	)
	defer span.End()

	cents := amount.MinorUnits()
	if !(amount > 0) || cents <= 0 {
		span.SetStatus(codes.Error, "invalid amount")
		return nil, ErrInvalidAmount
	}
	span.SetAttributes(attribute.Int64("payment.amount_cents", cents))

	if strings.TrimSpace(description) == "" {
		description = defaultDescription
	}

	req := CheckoutRequest{
		AmountCents:   cents,
		Currency:      models.CurrencyUSD,
		Description:   description,
		CustomerEmail: models.NormalizeEmail(email),
		CustomerName:  strings.TrimSpace(name),
		SuccessURL:    uc.clientURL + "/payments-success",
		CancelURL:     uc.clientURL + "/payments-cancel",
	}

	session, err := uc.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.metrics.CheckoutSessions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	uc.metrics.CheckoutSessions.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "ok")))
	uc.events.Emit(ctx, events.CheckoutSessionCreated, session.ID, map[string]any{
		"sessionId":   session.ID,
		"amountCents": cents,
		"currency":    req.Currency,
		"email":       req.CustomerEmail,
	})

	span.SetStatus(codes.Ok, "")
	uc.log.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.Int64("amount_cents", cents),
		zap.String("email", req.CustomerEmail),
	)
	return session, nil
}
