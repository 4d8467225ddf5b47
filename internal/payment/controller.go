package payment

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
	r.Post("/create-payment-intent", ct.CreateCheckout)
}

type checkoutRequest struct {
	Amount      *models.Amount `json:"amount"`
	UserEmail   string         `json:"userEmail"`
	UserName    string         `json:"userName"`
	Description string         `json:"description"`
}

func (ct *Controller) CreateCheckout(c *fiber.Ctx) error {
	ctx, span := ct.tracer.Start(c.UserContext(), "Controller.CreateCheckout",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		if errors.Is(err, models.ErrNotNumeric) {
			span.SetStatus(codes.Error, "invalid amount")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
		}
		span.SetStatus(codes.Error, "invalid body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	var amount models.Amount
	if req.Amount != nil {
		amount = *req.Amount
	}

	session, err := ct.useCase.CreateCheckout(ctx, amount, req.Description, req.UserEmail, req.UserName)
	if err != nil {
		var perr *ProviderError
		switch {
		case errors.Is(err, ErrInvalidAmount):
			span.SetStatus(codes.Error, "invalid amount")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid amount"})
		case errors.As(err, &perr):
			ct.log.Error("payment provider error", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": perr.Message})
		}
		ct.log.Error("failed to create checkout session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	span.SetStatus(codes.Ok, "")
	return c.JSON(session)
}
