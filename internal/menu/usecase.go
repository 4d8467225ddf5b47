package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"tastyhaat/internal/events"
	"tastyhaat/internal/models"
	"tastyhaat/internal/store"
	"tastyhaat/internal/telemetry"
)

var (
	ErrMissingFields = errors.New("name, price and postedBy required")
	ErrInvalidUpdate = errors.New("invalid menu update")
	ErrNotFound      = errors.New("menu not found")
	ErrInvalidID     = store.ErrInvalidID
)

type Store interface {
	Create(ctx context.Context, m *models.Menu) error
	List(ctx context.Context) ([]models.Menu, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Menu, error)
	ListByOwner(ctx context.Context, email string) ([]models.Menu, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.MenuUpdate) (*models.Menu, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type EventEmitter interface {
	Emit(ctx context.Context, eventType, key string, payload any)
}

// Draft is a menu item as posted by a seller. A nil IsAvailable means
// available.
type Draft struct {
	Name        string
	Price       float64
	Description string
	Image       string
	IsAvailable *bool
	PostedBy    string
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

func (uc *UseCase) Create(ctx context.Context, d Draft) (*models.Menu, error) {
	ctx, span := uc.tracer.Start(ctx, "CreateMenu",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("menu.posted_by", d.PostedBy),
			attribute.Float64("menu.price", d.Price),
		),
	)
	defer span.End()

	name := strings.TrimSpace(d.Name)
	owner := models.NormalizeEmail(d.PostedBy)
	if name == "" || owner == "" || !(d.Price > 0) {
		span.SetStatus(codes.Error, "missing required fields")
		return nil, ErrMissingFields
	}

	available := true
	if d.IsAvailable != nil {
		available = *d.IsAvailable
	}

	now := uc.now()
	m := &models.Menu{
		Name:        name,
		Price:       d.Price,
		Description: d.Description,
		Image:       d.Image,
		IsAvailable: available,
		PostedBy:    owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.store.Create(ctx, m); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("create menu: %w", err)
	}

	uc.metrics.MenusCreated.Add(ctx, 1, metric.WithAttributes(attribute.Bool("available", m.IsAvailable)))
	uc.events.Emit(ctx, events.MenuCreated, m.ID.Hex(), m)

	span.SetStatus(codes.Ok, "")
	uc.log.Info("menu created",
		zap.String("menu_id", m.ID.Hex()),
		zap.String("posted_by", owner),
		zap.Float64("price", m.Price),
	)
	return m, nil
}

func (uc *UseCase) List(ctx context.Context) ([]models.Menu, error) {
	ctx, span := uc.tracer.Start(ctx, "ListMenus")
	defer span.End()

	menus, err := uc.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return menus, nil
}

func (uc *UseCase) ListByOwner(ctx context.Context, email string) ([]models.Menu, error) {
	ctx, span := uc.tracer.Start(ctx, "ListMenusByOwner")
	defer span.End()

	menus, err := uc.store.ListByOwner(ctx, models.NormalizeEmail(email))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list menus by owner: %w", err)
	}
	return menus, nil
}

func (uc *UseCase) Get(ctx context.Context, id string) (*models.Menu, error) {
	ctx, span := uc.tracer.Start(ctx, "GetMenu", trace.WithAttributes(attribute.String("menu.id", id)))
	defer span.End()

	oid, err := store.ParseID(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	m, err := uc.store.Get(ctx, oid)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		span.RecordError(err)
		return nil, fmt.Errorf("get menu: %w", err)
	}
	return m, nil
}

// Update changes only the fields set in upd. Ownership is not checked.
func (uc *UseCase) Update(ctx context.Context, id string, upd models.MenuUpdate) (*models.Menu, error) {
	ctx, span := uc.tracer.Start(ctx, "UpdateMenu", trace.WithAttributes(attribute.String("menu.id", id)))
	defer span.End()

	oid, err := store.ParseID(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidUpdate)
		}
		upd.Name = &name
	}
	if upd.Price != nil && !(*upd.Price > 0) {
		return nil, fmt.Errorf("%w: price must be greater than zero", ErrInvalidUpdate)
	}
	upd.UpdatedAt = uc.now()

	m, err := uc.store.Update(ctx, oid, upd)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("update menu: %w", err)
	}

	uc.events.Emit(ctx, events.MenuUpdated, m.ID.Hex(), m)
	return m, nil
}

func (uc *UseCase) Delete(ctx context.Context, id string) error {
	ctx, span := uc.tracer.Start(ctx, "DeleteMenu", trace.WithAttributes(attribute.String("menu.id", id)))
	defer span.End()

	oid, err := store.ParseID(id)
	if err != nil {
		return ErrInvalidID
	}

	switch err := uc.store.Delete(ctx, oid); {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete menu: %w", err)
	}

	uc.events.Emit(ctx, events.MenuDeleted, id, map[string]string{"menuId": id})
	uc.log.Info("menu deleted", zap.String("menu_id", id))
	return nil
}
