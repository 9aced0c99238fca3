package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stripe-shop-backend/internal/client"
	"stripe-shop-backend/internal/config"
	"stripe-shop-backend/internal/model"
	"stripe-shop-backend/internal/money"
	"stripe-shop-backend/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// defaultHandlerTimeout bounds how long a webhook request waits on its
// reconciliation handler.
const defaultHandlerTimeout = 1500 * time.Millisecond

// EventHandlerFunc reconciles one provider event against local state.
type EventHandlerFunc func(ctx context.Context, event *model.StripeEvent) error

type WebhookService interface {
	// Handle decodes, verifies and dispatches one webhook delivery. The
	// outcome is collapsed into a boolean; no handler fault reaches the
	// caller.
	Handle(ctx context.Context, body []byte, sigHeader string) bool
	SetLogger(logger *slog.Logger)
}

type webhookServiceImpl struct {
	stripeClient   client.StripeClient
	productRepo    repository.ProductRepository
	orderRepo      repository.OrderRepository
	eventRepo      repository.WebhookEventRepository
	webhookSecret  string
	handlerTimeout time.Duration
	handlers       map[string]EventHandlerFunc
	logger         *slog.Logger
}

func NewWebhookService(
	stripeClient client.StripeClient,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	eventRepo repository.WebhookEventRepository,
	stripeCfg *config.Stripe,
) WebhookService {
	s := &webhookServiceImpl{
		stripeClient:   stripeClient,
		productRepo:    productRepo,
		orderRepo:      orderRepo,
		eventRepo:      eventRepo,
		webhookSecret:  stripeCfg.WebhookSecret,
		handlerTimeout: defaultHandlerTimeout,
		logger:         slog.Default(),
	}

	// Registry resolved once at construction; unknown types miss here and
	// are reported as failures.
	s.handlers = map[string]EventHandlerFunc{
		"product.created":                          s.handleProductCreated,
		"product.updated":                          s.handleProductUpdated,
		"product.deleted":                          s.handleProductDeleted,
		"payment_intent.created":                   s.handlePaymentIntentCreated,
		"payment_intent.amount_capturable_updated": s.handleAmountCapturableUpdated,
		"payment_intent.canceled":                  s.handlePaymentIntentLifecycle,
		"payment_intent.payment_failed":            s.handlePaymentIntentLifecycle,
		"payment_intent.succeeded":                 s.handlePaymentIntentLifecycle,
	}

	return s
}

func (s *webhookServiceImpl) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *webhookServiceImpl) Handle(ctx context.Context, body []byte, sigHeader string) bool {
	event, err := s.stripeClient.ConstructEvent(body, sigHeader, s.webhookSecret)
	if err != nil {
		if errors.Is(err, client.ErrSignatureVerification) {
			s.logger.ErrorContext(ctx, "failed to verify stripe webhook signature", "err", err)
		} else {
			s.logger.ErrorContext(ctx, "unable to decode stripe webhook payload", "err", err)
		}
		return false
	}

	if event.ID != "" {
		seen, err := s.eventRepo.Exists(ctx, event.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "webhook event dedupe lookup failed", "event_id", event.ID, "err", err)
			return false
		}
		if seen {
			s.logger.InfoContext(ctx, "webhook event deduplicated", "event_id", event.ID, "type", event.Type)
			return true
		}
	}

	handler, ok := s.handlers[event.Type]
	if !ok {
		s.logger.ErrorContext(ctx, "received unrecognized stripe webhook event", "type", event.Type)
		return false
	}

	s.logger.InfoContext(ctx, "processing event", "type", event.Type, "event_id", event.ID)

	// The handler runs on its own goroutine; the request waits for at most
	// handlerTimeout. On timeout the goroutine is not cancelled and may run
	// to completion in the background, which the caller must tolerate. The
	// handler context is detached from the request: writing the response
	// cancels the request context, which must not abort in-flight store or
	// provider calls.
	hctx := context.WithoutCancel(ctx)
	result := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("webhook handler panic: %v", r)
			}
		}()
		result <- handler(hctx, event)
	}()

	select {
	case err := <-result:
		if err != nil {
			s.logger.ErrorContext(ctx, "webhook handler failed", "type", event.Type, "err", err)
			return false
		}
	case <-time.After(s.handlerTimeout):
		s.logger.ErrorContext(ctx, "webhook handler timed out", "type", event.Type, "timeout", s.handlerTimeout)
		return false
	}

	if event.ID != "" {
		if err := s.eventRepo.MarkProcessed(ctx, event.ID, event.Type); err != nil {
			// Already processed; a redelivery will dedupe on the next pass.
			s.logger.ErrorContext(ctx, "unable to record processed webhook event", "event_id", event.ID, "err", err)
		}
	}

	s.logger.InfoContext(ctx, "finished processing event", "type", event.Type, "event_id", event.ID)
	return true
}

// fetchProduct pulls the full product and its default price from Stripe and
// converts them into local product fields.
func (s *webhookServiceImpl) fetchProduct(ctx context.Context, stripeProductID string) (*client.StripeProduct, map[string]interface{}, error) {
	stripeProduct, err := s.stripeClient.RetrieveProduct(ctx, stripeProductID)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieve stripe product %s: %w", stripeProductID, err)
	}
	price, err := s.stripeClient.RetrievePrice(ctx, stripeProduct.DefaultPrice)
	if err != nil {
		return nil, nil, fmt.Errorf("retrieve stripe price %s: %w", stripeProduct.DefaultPrice, err)
	}

	amount, err := money.FromMinorUnits(price.UnitAmountDecimal)
	if err != nil {
		return nil, nil, fmt.Errorf("convert stripe price: %w", err)
	}

	images := stripeProduct.Images
	if len(images) > model.MaxProductImages {
		images = images[:model.MaxProductImages]
	}
	rawImages, err := json.Marshal(images)
	if err != nil {
		return nil, nil, fmt.Errorf("encode product images: %w", err)
	}

	fields := map[string]interface{}{
		"name":        stripeProduct.Name,
		"description": stripeProduct.Description,
		"currency":    strings.ToUpper(price.Currency),
		"price":       amount,
		"images":      datatypes.JSON(rawImages),
		"updated_at":  time.Now(),
	}
	return stripeProduct, fields, nil
}

func (s *webhookServiceImpl) handleProductCreated(ctx context.Context, event *model.StripeEvent) error {
	stripeProduct, fields, err := s.fetchProduct(ctx, event.ObjectID())
	if err != nil {
		return err
	}

	product := &model.Product{
		Name:        fields["name"].(string),
		Description: fields["description"].(string),
		Currency:    fields["currency"].(string),
		Price:       fields["price"].(decimal.Decimal).Round(2),
		Images:      fields["images"].(datatypes.JSON),
		StripeID:    &stripeProduct.ID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (s *webhookServiceImpl) handleProductUpdated(ctx context.Context, event *model.StripeEvent) error {
	stripeProduct, fields, err := s.fetchProduct(ctx, event.ObjectID())
	if err != nil {
		return err
	}

	existing, err := s.productRepo.FindByStripeID(ctx, stripeProduct.ID)
	if err != nil {
		return fmt.Errorf("unable to retrieve product with stripe id %s: %w", stripeProduct.ID, err)
	}

	if err := s.productRepo.Updates(ctx, existing.ID, fields); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// handleProductDeleted is idempotent: a product that is already gone locally
// is a no-op.
func (s *webhookServiceImpl) handleProductDeleted(ctx context.Context, event *model.StripeEvent) error {
	stripeID := event.ObjectID()

	existing, err := s.productRepo.FindByStripeID(ctx, stripeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.InfoContext(ctx, "product already absent, nothing to delete", "stripe_id", stripeID)
			return nil
		}
		return fmt.Errorf("look up product with stripe id %s: %w", stripeID, err)
	}

	if err := s.productRepo.Delete(ctx, existing.ID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// resolvePaymentIntent re-fetches the payment intent and looks up the order
// its metadata points at. A missing order_id or order logs and aborts the
// handler without failing the delivery.
func (s *webhookServiceImpl) resolvePaymentIntent(ctx context.Context, event *model.StripeEvent) (*client.StripePaymentIntent, *model.Order, error) {
	pi, err := s.stripeClient.RetrievePaymentIntent(ctx, event.ObjectID())
	if err != nil {
		return nil, nil, fmt.Errorf("retrieve payment intent: %w", err)
	}

	orderID := strings.TrimSpace(pi.Metadata["order_id"])
	if orderID == "" {
		s.logger.ErrorContext(ctx, "unable to get order_id from payment intent metadata", "payment_intent", pi.ID)
		return nil, nil, nil
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.ErrorContext(ctx, "unable to retrieve order referenced by payment intent", "order_id", orderID, "payment_intent", pi.ID)
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("look up order %s: %w", orderID, err)
	}

	return pi, order, nil
}

func (s *webhookServiceImpl) handlePaymentIntentCreated(ctx context.Context, event *model.StripeEvent) error {
	pi, order, err := s.resolvePaymentIntent(ctx, event)
	if err != nil || order == nil {
		return err
	}

	if order.StripePaymentIntent != nil {
		if *order.StripePaymentIntent == pi.ID {
			return nil
		}
		// An already-linked order keeps its reference; a different intent id
		// is never written over it here.
		s.logger.ErrorContext(ctx, "order already linked to a different payment intent",
			"order_id", order.ID, "linked", *order.StripePaymentIntent, "incoming", pi.ID)
		return nil
	}

	if err := s.orderRepo.SetPaymentIntent(ctx, order.ID, pi.ID); err != nil {
		return fmt.Errorf("link payment intent to order: %w", err)
	}
	return nil
}

func (s *webhookServiceImpl) handleAmountCapturableUpdated(ctx context.Context, event *model.StripeEvent) error {
	_, order, err := s.resolvePaymentIntent(ctx, event)
	if err != nil || order == nil {
		return err
	}
	// TODO: capture flow; amount is capturable but no capture is issued yet.
	return nil
}

func (s *webhookServiceImpl) handlePaymentIntentLifecycle(ctx context.Context, event *model.StripeEvent) error {
	// Hook point for status transitions on cancel/failure/success.
	return nil
}
