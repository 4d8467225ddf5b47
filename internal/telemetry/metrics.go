package telemetry

import (
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	MessagesPublished metric.Int64Counter
	MessagesConsumed  metric.Int64Counter
	ProcessingTime    metric.Float64Histogram

	UsersCreated     metric.Int64Counter
	MenusCreated     metric.Int64Counter
	OrdersCreated    metric.Int64Counter
	OrderValueCents  metric.Int64Histogram
	CheckoutSessions metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	published, err := meter.Int64Counter("messages_published_total",
		metric.WithDescription("Total domain events handed to the broker"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	consumed, err := meter.Int64Counter("messages_consumed_total",
		metric.WithDescription("Total domain events consumed"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, err
	}

	procTime, err := meter.Float64Histogram("message_processing_duration_seconds",
		metric.WithDescription("Duration of event processing"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5),
	)
	if err != nil {
		return nil, err
	}

	usersCreated, err := meter.Int64Counter("users_created_total",
		metric.WithDescription("Total users signed up"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, err
	}

	menusCreated, err := meter.Int64Counter("menus_created_total",
		metric.WithDescription("Total menu items posted"),
		metric.WithUnit("{menu}"),
	)
	if err != nil {
		return nil, err
	}

	ordersCreated, err := meter.Int64Counter("orders_created_total",
		metric.WithDescription("Total orders created"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	orderValue, err := meter.Int64Histogram("order_value_cents",
		metric.WithDescription("Order value in cents"),
		metric.WithUnit("cents"),
		metric.WithExplicitBucketBoundaries(100, 500, 1000, 5000, 10000, 50000),
	)
	if err != nil {
		return nil, err
	}

	checkouts, err := meter.Int64Counter("checkout_sessions_total",
		metric.WithDescription("Checkout sessions requested from the payment provider"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		MessagesPublished: published,
		MessagesConsumed:  consumed,
		ProcessingTime:    procTime,
		UsersCreated:      usersCreated,
		MenusCreated:      menusCreated,
		OrdersCreated:     ordersCreated,
		OrderValueCents:   orderValue,
		CheckoutSessions:  checkouts,
	}, nil
}
