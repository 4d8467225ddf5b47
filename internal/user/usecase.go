package user

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
	ErrEmailRequired = errors.New("email is required")
	ErrEmailTaken    = errors.New("user already exists")
	ErrInvalidField  = errors.New("invalid field name")
	ErrNotFound      = errors.New("user not found")
	ErrInvalidRole   = models.ErrInvalidRole
	ErrInvalidID     = store.ErrInvalidID
)

type Store interface {
	Create(ctx context.Context, u *models.User) error
	List(ctx context.Context) ([]models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error)
	SetRole(ctx context.Context, id primitive.ObjectID, role models.Role, at time.Time) (*models.User, error)
}

type EventEmitter interface {
	Emit(ctx context.Context, eventType, key string, payload any)
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

// Create signs a user up from an arbitrary document. Email is required and
// unique, role is optional, everything else is kept as profile data.
func (uc *UseCase) Create(ctx context.Context, doc map[string]any) (u *models.User, err error) {
	ctx, span := uc.tracer.Start(ctx, "CreateUser", trace.WithSpanKind(trace.SpanKindInternal))
	defer func() { endSpan(span, err) }()

	email, _ := doc["email"].(string)
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	span.SetAttributes(attribute.String("user.email", email))

	role := models.DefaultRole
	if raw, ok := doc["role"]; ok && raw != nil {
		if role, err = parseRole(raw); err != nil {
			return nil, err
		}
	}

	profile, err := profileFields(doc)
	if err != nil {
		return nil, err
	}

	switch _, err := uc.store.GetByEmail(ctx, email); {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	now := uc.now()
	u = &models.User{
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
		Profile:   profile,
	}
	if err := uc.store.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	uc.metrics.UsersCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("role", string(role))))
	uc.events.Emit(ctx, events.UserCreated, u.ID.Hex(), u)
	uc.log.Info("user created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", email),
		zap.String("role", string(role)),
	)
	return u, nil
}

func (uc *UseCase) List(ctx context.Context) ([]models.User, error) {
	ctx, span := uc.tracer.Start(ctx, "ListUsers")
	defer span.End()

	users, err := uc.store.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (uc *UseCase) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, span := uc.tracer.Start(ctx, "GetUserByEmail")
	defer span.End()

	u, err := uc.store.GetByEmail(ctx, models.NormalizeEmail(email))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// RoleByEmail never fails: unknown users and lookup errors both resolve to
// the default role.
func (uc *UseCase) RoleByEmail(ctx context.Context, email string) models.Role {
	ctx, span := uc.tracer.Start(ctx, "GetUserRole")
	defer span.End()

	u, err := uc.store.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			span.RecordError(err)
			uc.log.Error("failed to fetch role", zap.String("email", email), zap.Error(err))
		}
		return models.DefaultRole
	}
	if u.Role == "" {
		return models.DefaultRole
	}
	return u.Role
}

// Update applies a partial profile patch to the user with the given id.
func (uc *UseCase) Update(ctx context.Context, id string, patch map[string]any) (u *models.User, err error) {
	ctx, span := uc.tracer.Start(ctx, "UpdateUser", trace.WithAttributes(attribute.String("user.id", id)))
	defer func() { endSpan(span, err) }()

	oid, err := store.ParseID(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	upd := models.UserUpdate{UpdatedAt: uc.now()}
	if raw, ok := patch["email"]; ok {
		email, _ := raw.(string)
		email = models.NormalizeEmail(email)
		if email == "" {
			return nil, ErrEmailRequired
		}
		upd.Email = &email
	}
	if raw, ok := patch["role"]; ok {
		role, err := parseRole(raw)
		if err != nil {
			return nil, err
		}
		upd.Role = &role
	}
	if upd.Profile, err = profileFields(patch); err != nil {
		return nil, err
	}

	u, err = uc.store.Update(ctx, oid, upd)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, store.ErrDuplicate):
		return nil, ErrEmailTaken
	case err != nil:
		return nil, fmt.Errorf("update user: %w", err)
	}

	uc.events.Emit(ctx, events.UserUpdated, u.ID.Hex(), u)
	return u, nil
}

// SetRole validates the role before the id so a bad role is reported even
// when the id is malformed too.
func (uc *UseCase) SetRole(ctx context.Context, id string, rawRole string) (u *models.User, err error) {
	ctx, span := uc.tracer.Start(ctx, "SetUserRole", trace.WithAttributes(attribute.String("user.id", id)))
	defer func() { endSpan(span, err) }()

	role, err := models.ParseRole(rawRole)
	if err != nil {
		return nil, ErrInvalidRole
	}
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	u, err = uc.store.SetRole(ctx, oid, role, uc.now())
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("set role: %w", err)
	}

	uc.events.Emit(ctx, events.UserRoleChanged, u.ID.Hex(), map[string]any{
		"userId": u.ID.Hex(),
		"email":  u.Email,
		"role":   u.Role,
	})
	uc.log.Info("user role changed", zap.String("user_id", u.ID.Hex()), zap.String("role", string(role)))
	return u, nil
}

func parseRole(raw any) (models.Role, error) {
	s, ok := raw.(string)
	if !ok {
		return "", ErrInvalidRole
	}
	return models.ParseRole(s)
}

// profileFields drops reserved keys and rejects keys a document store would
// read as an operator or a path.
func profileFields(doc map[string]any) (map[string]any, error) {
	profile := make(map[string]any, len(doc))
	for k, v := range doc {
		if _, reserved := models.ReservedUserFields[k]; reserved {
			continue
		}
		if k == "" || strings.HasPrefix(k, "$") || strings.Contains(k, ".") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidField, k)
		}
		profile[k] = v
	}
	return profile, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
