package order

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/baggage"
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
	r.Post("/orders", ct.Create)
	r.Get("/orders", ct.List)
	r.Get("/orders/user/:userId", ct.ListByUser)
}

type createOrderRequest struct {
	UserID   string         `json:"userId"`
	Username string         `json:"username"`
	Email    string         `json:"email"`
	MenuID   string         `json:"menuId"`
	MenuName string         `json:"menuName"`
	Price    *models.Amount `json:"price"`
	Quantity *int           `json:"quantity"`
	Status   string         `json:"status"`
}

func (ct *Controller) Create(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.CreateOrder",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		span.SetStatus(codes.Error, "invalid body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	if req.UserID != "" {
		member, _ := baggage.NewMember("user_id", req.UserID)
		bag, _ := baggage.New(member)
		ctx = baggage.ContextWithBaggage(ctx, bag)
	}

	d := Draft{
		UserID:   req.UserID,
		Username: req.Username,
		Email:    req.Email,
		MenuID:   req.MenuID,
		MenuName: req.MenuName,
		Quantity: req.Quantity,
		Status:   req.Status,
	}
	if req.Price != nil {
		d.Price = req.Price.Float64()
	}

	o, err := ct.useCase.PlaceOrder(ctx, d)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			span.SetStatus(codes.Error, "missing required fields")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required order fields"})
		case errors.Is(err, ErrInvalidQuantity):
			span.SetStatus(codes.Error, "invalid quantity")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Quantity must be at least 1"})
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ct.log.Error("failed to create order", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create order"})
	}

	span.SetStatus(codes.Ok, "")
	return c.Status(fiber.StatusCreated).JSON(models.Inserted(o.ID.Hex()))
}

func (ct *Controller) List(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.ListOrders")
	defer span.End()

	orders, err := ct.useCase.List(ctx)
	if err != nil {
		ct.log.Error("failed to list orders", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch orders"})
	}
	return c.JSON(orders)
}

func (ct *Controller) ListByUser(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.ListOrdersByUser")
	defer span.End()

	orders, err := ct.useCase.ListByUser(ctx, c.Params("userId"))
	if err != nil {
		ct.log.Error("failed to list user orders", zap.String("user_id", c.Params("userId")), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch orders"})
	}
	return c.JSON(orders)
}
