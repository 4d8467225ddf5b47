package menu

import (
	"errors"

	"github.com/gofiber/fiber/v2"
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
	r.Get("/menus", ct.List)
	r.Get("/menus/user/:email", ct.ListByOwner)
	r.Get("/menus/:id", ct.Get)
	r.Post("/menus", ct.Create)
	r.Patch("/menus/:id", ct.Update)
	r.Delete("/menus/:id", ct.Delete)
}

type createMenuRequest struct {
	Name        string         `json:"name"`
	Price       *models.Amount `json:"price"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	IsAvailable *bool          `json:"isAvailable"`
	PostedBy    string         `json:"postedBy"`
}

type updateMenuRequest struct {
	Name        *string        `json:"name"`
	Price       *models.Amount `json:"price"`
	Description *string        `json:"description"`
	Image       *string        `json:"image"`
	IsAvailable *bool          `json:"isAvailable"`
}

// respond renders err; fallback is the message used for unexpected errors.
func (ct *Controller) respond(c *fiber.Ctx, span trace.Span, err error, fallback string) error {
	var (
		status int
		msg    string
	)
	switch {
	case errors.Is(err, ErrMissingFields):
		status, msg = fiber.StatusBadRequest, "Name, price and postedBy required"
	case errors.Is(err, ErrInvalidUpdate):
		status, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, ErrInvalidID):
		status, msg = fiber.StatusBadRequest, "Invalid ID"
	case errors.Is(err, ErrNotFound):
		status, msg = fiber.StatusNotFound, "Menu not found"
	default:
		span.RecordError(err)
		ct.log.Error(fallback, zap.Error(err))
		status, msg = fiber.StatusInternalServerError, fallback
	}
	span.SetStatus(codes.Error, msg)
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func (ct *Controller) Create(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.CreateMenu",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	var req createMenuRequest
	if err := c.BodyParser(&req); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	d := Draft{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		IsAvailable: req.IsAvailable,
		PostedBy:    req.PostedBy,
	}
	if req.Price != nil {
		d.Price = req.Price.Float64()
	}

	m, err := ct.useCase.Create(ctx, d)
	if err != nil {
		return ct.respond(c, span, err, "Failed to add menu")
	}

	span.SetStatus(codes.Ok, "")
	return c.Status(fiber.StatusCreated).JSON(models.Inserted(m.ID.Hex()))
}

func (ct *Controller) List(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.ListMenus")
	defer span.End()

	menus, err := ct.useCase.List(ctx)
	if err != nil {
		return ct.respond(c, span, err, "Failed to fetch menus")
	}
	return c.JSON(menus)
}

func (ct *Controller) ListByOwner(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.ListMenusByOwner")
	defer span.End()

	menus, err := ct.useCase.ListByOwner(ctx, c.Params("email"))
	if err != nil {
		return ct.respond(c, span, err, "Failed to fetch user menus")
	}
	return c.JSON(menus)
}

func (ct *Controller) Get(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.GetMenu")
	defer span.End()

	m, err := ct.useCase.Get(ctx, c.Params("id"))
	if err != nil {
		return ct.respond(c, span, err, "Failed to fetch menu")
	}
	return c.JSON(m)
}

func (ct *Controller) Update(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.UpdateMenu")
	defer span.End()

	var req updateMenuRequest
	if err := c.BodyParser(&req); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	upd := models.MenuUpdate{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		IsAvailable: req.IsAvailable,
	}
	if req.Price != nil {
		p := req.Price.Float64()
		upd.Price = &p
	}

	m, err := ct.useCase.Update(ctx, c.Params("id"), upd)
	if err != nil {
		return ct.respond(c, span, err, "Failed to update menu")
	}
	return c.JSON(m)
}

func (ct *Controller) Delete(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.DeleteMenu")
	defer span.End()

	if err := ct.useCase.Delete(ctx, c.Params("id")); err != nil {
		return ct.respond(c, span, err, "Failed to delete menu")
	}
	return c.JSON(fiber.Map{"message": "Menu deleted"})
}
