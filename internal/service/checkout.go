package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"stripe-shop-backend/internal/apperr"
	"stripe-shop-backend/internal/client"
	"stripe-shop-backend/internal/config"
	"stripe-shop-backend/internal/model"
	"stripe-shop-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type CheckoutService interface {
	// BeginCheckout opens a Stripe checkout session for the cart and returns
	// the session's client secret.
	BeginCheckout(ctx context.Context, actor *model.User, cartID string) (string, error)
	SetLogger(logger *slog.Logger)
}

type checkoutServiceImpl struct {
	stripeClient client.StripeClient
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
	frontendHost string
	logger       *slog.Logger
}

func NewCheckoutService(
	stripeClient client.StripeClient,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	stripeCfg *config.Stripe,
) CheckoutService {
	return &checkoutServiceImpl{
		stripeClient: stripeClient,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		frontendHost: stripeCfg.FrontendHost,
		logger:       slog.Default(),
	}
}

func (s *checkoutServiceImpl) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *checkoutServiceImpl) BeginCheckout(ctx context.Context, actor *model.User, cartID string) (string, error) {
	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return "", storeErr(err, "cart not found")
	}
	if !actor.IsSuperuser && cart.CustomerID != actor.ID {
		return "", apperr.PermissionDenied("not enough permissions")
	}
	if len(cart.CartItems) == 0 {
		return "", apperr.Validation("cart is empty")
	}

	// Resolve every item against Stripe before committing anything locally.
	// A single unresolvable item aborts the whole checkout.
	lineItems := make([]client.CheckoutLineItem, 0, len(cart.CartItems))
	total := decimal.Zero
	for _, item := range cart.CartItems {
		if item.ProductID == nil {
			return "", apperr.NotFound("cart references a product that no longer exists")
		}
		product, err := s.productRepo.FindByID(ctx, *item.ProductID)
		if err != nil {
			return "", storeErr(err, "product not found")
		}
		if product.StripeID == nil {
			return "", apperr.NotFound(fmt.Sprintf("product %s is not available for checkout", product.ID))
		}

		stripeProduct, err := s.stripeClient.RetrieveProduct(ctx, *product.StripeID)
		if err != nil {
			return "", mapStripeErr(err, "retrieve stripe product")
		}

		lineItems = append(lineItems, client.CheckoutLineItem{
			Price:    stripeProduct.DefaultPrice,
			Quantity: item.Quantity,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}

	// The order is created before the session so its id can travel in the
	// session metadata. Retried calls create a fresh order and session each
	// time; no idempotency key is sent to Stripe.
	order := &model.Order{
		Status:        model.OrderStatusPending,
		Currency:      "USD",
		TotalPrice:    total,
		PaymentMethod: model.PaymentMethodStripe,
		CustomerID:    &actor.ID,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return "", apperr.Persistence("unable to create order", err)
	}
	s.logger.InfoContext(ctx, "order created", "order_id", order.ID, "customer_id", actor.ID)

	session, err := s.stripeClient.CreateCheckoutSession(ctx, &client.CheckoutSessionParams{
		LineItems: lineItems,
		OrderID:   order.ID,
		ReturnURL: fmt.Sprintf("%s/return?session_id={CHECKOUT_SESSION_ID}", s.frontendHost),
	})
	if err != nil {
		return "", mapStripeErr(err, "create checkout session")
	}

	if err := s.orderRepo.SetCheckoutSession(ctx, order.ID, session.ID); err != nil {
		// The order stays pending with no session reference; the caller
		// should treat the checkout as abandoned.
		return "", apperr.Persistence("unable to update order", err)
	}

	return session.ClientSecret, nil
}

// mapStripeErr maps a provider failure onto the taxonomy: "resource_missing"
// becomes NotFound carrying Stripe's message, anything else a provider fault.
func mapStripeErr(err error, fallback string) error {
	var se *client.StripeError
	if errors.As(err, &se) {
		if se.IsResourceMissing() {
			return apperr.Wrap(apperr.KindNotFound, se.Message, se)
		}
		return apperr.Provider(se.Message, se)
	}
	return apperr.Provider(fallback, err)
}
