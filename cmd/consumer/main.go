package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"tastyhaat/internal/config"
	"tastyhaat/internal/kafka"
	"tastyhaat/internal/models"
	"tastyhaat/internal/rabbitmq"
	"tastyhaat/internal/telemetry"
)

const (
	groupID = "tastyhaat-events-tail"
	queue   = "tastyhaat.events.tail"
)

type processor struct {
	log     *zap.Logger
	tracer  trace.Tracer
	metrics *telemetry.Metrics
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load reads .env, which may carry the OTEL_* settings Setup needs.
	cfg, err := config.Load()
	if err != nil {
		panic("invalid configuration: " + err.Error())
	}

	log, tracer, meter, shutdown, err := telemetry.Setup(ctx, "events-consumer")
	if err != nil {
		panic("failed to initialize telemetry: " + err.Error())
	}
	defer shutdown(context.Background())

	metrics, err := telemetry.NewMetrics(meter)
	if err != nil {
		log.Fatal("failed to create metrics", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down consumer...")
		cancel()
	}()

	p := &processor{log: log, tracer: tracer, metrics: metrics}

	switch cfg.Events.Backend {
	case config.EventsRabbitMQ:
		err = p.tailRabbit(ctx, cfg.Events)
	default:
		err = p.tailKafka(ctx, cfg.Events)
	}
	if err != nil {
		log.Error("consumer error", zap.Error(err))
	}
}

func (p *processor) tailKafka(ctx context.Context, cfg config.EventsConfig) error {
	if err := kafka.EnsureTopic(ctx, cfg.KafkaBrokers[0], cfg.Topic, 3, 1); err != nil {
		p.log.Warn("failed to create events topic", zap.String("topic", cfg.Topic), zap.Error(err))
	}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.Topic, groupID)
	defer consumer.Close()

	p.log.Info("consumer started", zap.String("topic", cfg.Topic), zap.String("group", groupID))
	return consumer.Listen(ctx, func(ctx context.Context, msg kafka.Message) error {
		return p.process(ctx, msg.Value)
	})
}

func (p *processor) tailRabbit(ctx context.Context, cfg config.EventsConfig) error {
	client, err := rabbitmq.Dial(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		return err
	}
	defer client.Close()

	deliveries, err := client.Consume(queue, "#", 10)
	if err != nil {
		return err
	}

	p.log.Info("consumer started", zap.String("exchange", cfg.RabbitExchange), zap.String("queue", queue))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			if err := p.process(ctx, d.Body); err != nil {
				// Undecodable events are dropped rather than redelivered forever.
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (p *processor) process(ctx context.Context, body []byte) error {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "ProcessEvent", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	var ev models.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal event")
		p.log.Warn("dropping malformed event", zap.Error(err))
		return err
	}

	span.SetAttributes(
		attribute.String("event.id", ev.ID),
		attribute.String("event.type", ev.Type),
		attribute.String("event.key", ev.Key),
	)

	attrs := metric.WithAttributes(attribute.String("event_type", ev.Type))
	p.metrics.MessagesConsumed.Add(ctx, 1, attrs)
	p.metrics.ProcessingTime.Record(ctx, time.Since(start).Seconds(), attrs)

	span.SetStatus(codes.Ok, "")
	p.log.Info("event received",
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.Type),
		zap.String("key", ev.Key),
		zap.Time("created_at", ev.CreatedAt),
		zap.Any("payload", ev.Payload),
	)
	return nil
}
