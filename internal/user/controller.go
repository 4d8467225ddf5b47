package user

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"tastyhaat/internal/models"
)

type Controller struct {
	useCase *UseCase
	log     *zap.Logger
	tracer  trace.Tracer
}

func NewController(useCase *UseCase, log *zap.Logger, tracer trace.Tracer) *Controller {
	return &Controller{useCase: useCase, log: log, tracer: tracer}
}

func (ct *Controller) Register(r fiber.Router) {
	r.Post("/users", ct.Create)
	r.Get("/users", ct.List)
	r.Get("/users/:email/role", ct.Role)
	r.Get("/users/:email", ct.Get)
	r.Put("/users/:id", ct.Update)
	r.Patch("/users/:id/role", ct.SetRole)
}

// clientError maps usecase errors to a status and message; ok is false for
// anything that should surface as a 500.
func clientError(err error) (status int, msg string, ok bool) {
	switch {
	case errors.Is(err, ErrEmailRequired):
		return fiber.StatusBadRequest, "Email is required", true
	case errors.Is(err, ErrInvalidRole):
		return fiber.StatusBadRequest, "Invalid role provided", true
	case errors.Is(err, ErrInvalidID):
		return fiber.StatusBadRequest, "Invalid user ID", true
	case errors.Is(err, ErrInvalidField):
		return fiber.StatusBadRequest, err.Error(), true
	case errors.Is(err, ErrEmailTaken):
		return fiber.StatusConflict, "User already exists", true
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound, "User not found", true
	}
	return 0, "", false
}

func (ct *Controller) fail(c *fiber.Ctx, span trace.Span, err error) error {
	if status, msg, ok := clientError(err); ok {
		span.SetStatus(codes.Error, msg)
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	ct.log.Error("user request failed", zap.String("route", c.Route().Path), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
}

func (ct *Controller) Create(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.CreateUser",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	var doc map[string]any
	if err := c.BodyParser(&doc); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	u, err := ct.useCase.Create(ctx, doc)
	if err != nil {
		return ct.fail(c, span, err)
	}

	span.SetStatus(codes.Ok, "")
	return c.Status(fiber.StatusCreated).JSON(models.Inserted(u.ID.Hex()))
}

func (ct *Controller) List(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.ListUsers")
	defer span.End()

	users, err := ct.useCase.List(ctx)
	if err != nil {
		return ct.fail(c, span, err)
	}
	return c.JSON(users)
}

func (ct *Controller) Get(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.GetUser")
	defer span.End()

	u, err := ct.useCase.GetByEmail(ctx, c.Params("email"))
	if err != nil {
		return ct.fail(c, span, err)
	}
	return c.JSON(u)
}

func (ct *Controller) Role(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.GetUserRole")
	defer span.End()

	role := ct.useCase.RoleByEmail(ctx, c.Params("email"))
	span.SetAttributes(attribute.String("user.role", string(role)))
	return c.JSON(fiber.Map{"role": role})
}

func (ct *Controller) Update(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.UpdateUser")
	defer span.End()

	var patch map[string]any
	if err := c.BodyParser(&patch); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	u, err := ct.useCase.Update(ctx, c.Params("id"), patch)
	if err != nil {
		return ct.fail(c, span, err)
	}
	return c.JSON(u)
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (ct *Controller) SetRole(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.SetUserRole")
	defer span.End()

	// An unparsable body is treated as a missing role.
	var req setRoleRequest
	_ = c.BodyParser(&req)

	u, err := ct.useCase.SetRole(ctx, c.Params("id"), req.Role)
	if err != nil {
		return ct.fail(c, span, err)
	}

	span.SetStatus(codes.Ok, "")
	return c.JSON(fiber.Map{
		"success": true,
		"message": "User role updated successfully",
		"user":    u,
	})
}
