package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tastyhaat/internal/config"
	"tastyhaat/internal/events"
	"tastyhaat/internal/kafka"
	"tastyhaat/internal/menu"
	"tastyhaat/internal/order"
	"tastyhaat/internal/rabbitmq"
	"tastyhaat/internal/store/memstore"
	"tastyhaat/internal/store/mongostore"
	"tastyhaat/internal/store/pgstore"
	"tastyhaat/internal/user"
)

type backend struct {
	users  user.Store
	menus  menu.Store
	orders order.Store

	ping  func(context.Context) error
	close func(context.Context) error
}

func (b *backend) Ping(ctx context.Context) error { return b.ping(ctx) }

func openBackend(ctx context.Context, cfg config.StoreConfig) (*backend, error) {
	switch cfg.Backend {
	case config.StoreMongo:
		s, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return &backend{users: s.Users, menus: s.Menus, orders: s.Orders, ping: s.Ping, close: s.Close}, nil
	case config.StorePostgres:
		s, err := pgstore.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		return &backend{users: s.Users, menus: s.Menus, orders: s.Orders, ping: s.Ping, close: s.Close}, nil
	case config.StoreMemory:
		s := memstore.New()
		return &backend{users: s.Users, menus: s.Menus, orders: s.Orders, ping: s.Ping, close: s.Close}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}

type closablePublisher interface {
	events.Publisher
	Close() error
}

// openPublisher falls back to dropping events when the broker is
// unreachable; the API keeps serving either way.
func openPublisher(ctx context.Context, cfg config.EventsConfig, log *zap.Logger) closablePublisher {
	switch cfg.Backend {
	case config.EventsKafka:
		topicCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := kafka.EnsureTopic(topicCtx, cfg.KafkaBrokers[0], cfg.Topic, 3, 1); err != nil {
			log.Warn("failed to create events topic", zap.String("topic", cfg.Topic), zap.Error(err))
		}
		return kafka.NewProducer(cfg.KafkaBrokers, cfg.Topic)
	case config.EventsRabbitMQ:
		p, err := rabbitmq.Dial(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			log.Error("rabbitmq unavailable, events will be dropped", zap.Error(err))
			return nopPublisher{}
		}
		return p
	}
	return nopPublisher{}
}

type nopPublisher struct {
	events.Nop
}

func (nopPublisher) Close() error { return nil }
