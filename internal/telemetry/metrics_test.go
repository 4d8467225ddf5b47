package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	assert.NotNil(t, m.OrdersCreated)
	assert.NotNil(t, m.CheckoutSessions)

	m.OrderValueCents.Record(context.Background(), 1000)
}

func TestSetupDisabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")

	log, tracer, meter, shutdown, err := Setup(context.Background(), "test")
	require.NoError(t, err)
	defer shutdown(context.Background())

	assert.NotNil(t, log)
	assert.NotNil(t, tracer)
	_, err = NewMetrics(meter)
	assert.NoError(t, err)
}
