package handler

import (
	"io"
	"net/http"

	"stripe-shop-backend/internal/dto"
	"stripe-shop-backend/internal/service"

	"github.com/labstack/echo/v4"
)

const stripeSignatureHeader = "Stripe-Signature"

type PaymentHandler struct {
	checkoutService service.CheckoutService
	webhookService  service.WebhookService
}

func NewPaymentHandler(checkoutService service.CheckoutService, webhookService service.WebhookService) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
		webhookService:  webhookService,
	}
}

func (h *PaymentHandler) CreateCheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.CartID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "cart_id is required")
	}

	clientSecret, err := h.checkoutService.BeginCheckout(ctx, user, req.CartID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.CheckoutResponse{ClientSecret: clientSecret})
}

// StripeWebhook acknowledges every delivery with 200; the body reports
// whether the event was actually processed.
func (h *PaymentHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusOK, &dto.WebhookResponse{Success: false})
	}

	ok := h.webhookService.Handle(ctx, body, c.Request().Header.Get(stripeSignatureHeader))
	return c.JSON(http.StatusOK, &dto.WebhookResponse{Success: ok})
}
