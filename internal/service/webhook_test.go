package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"stripe-shop-backend/internal/client"
	"stripe-shop-backend/internal/config"
	"stripe-shop-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func newWebhookFixture() (*webhookServiceImpl, *StripeClientMock, *ProductRepoMock, *OrderRepoMock, *WebhookEventRepoMock) {
	stripeClient := new(StripeClientMock)
	productRepo := new(ProductRepoMock)
	orderRepo := new(OrderRepoMock)
	eventRepo := new(WebhookEventRepoMock)

	svc := NewWebhookService(stripeClient, productRepo, orderRepo, eventRepo, &config.Stripe{
		WebhookSecret: "whsec_test",
	}).(*webhookServiceImpl)

	return svc, stripeClient, productRepo, orderRepo, eventRepo
}

func stripeEvent(id, eventType, objectID string) *model.StripeEvent {
	raw, _ := json.Marshal(map[string]string{"id": objectID})
	return &model.StripeEvent{
		ID:   id,
		Type: eventType,
		Data: model.StripeEventData{Object: raw},
	}
}

func TestWebhook_DecodeFailure(t *testing.T) {
	svc, stripeClient, _, _, _ := newWebhookFixture()

	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, "whsec_test").
		Return(nil, fmt.Errorf("decode webhook payload: unexpected end of JSON input"))

	ok := svc.Handle(context.Background(), []byte("{"), "")
	assert.False(t, ok)
}

func TestWebhook_BadSignature(t *testing.T) {
	svc, stripeClient, _, _, _ := newWebhookFixture()

	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, "whsec_test").
		Return(nil, client.ErrSignatureVerification)

	ok := svc.Handle(context.Background(), []byte("{}"), "t=1,v1=bad")
	assert.False(t, ok)
}

func TestWebhook_UnknownEventType(t *testing.T) {
	svc, stripeClient, _, _, eventRepo := newWebhookFixture()

	event := stripeEvent("evt_1", "customer.created", "cus_1")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_1").Return(false, nil)

	ok := svc.Handle(context.Background(), []byte("{}"), "")
	assert.False(t, ok)
	eventRepo.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_DeduplicatesSeenEvent(t *testing.T) {
	svc, stripeClient, productRepo, _, eventRepo := newWebhookFixture()

	event := stripeEvent("evt_dup", "product.created", "prod_1")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_dup").Return(true, nil)

	ok := svc.Handle(context.Background(), []byte("{}"), "")
	assert.True(t, ok)
	productRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	stripeClient.AssertNotCalled(t, "RetrieveProduct", mock.Anything, mock.Anything)
}

func TestWebhook_PanickingHandlerIsIsolated(t *testing.T) {
	svc, stripeClient, _, _, eventRepo := newWebhookFixture()

	event := stripeEvent("evt_panic", "product.created", "prod_1")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_panic").Return(false, nil)

	svc.handlers["product.created"] = func(ctx context.Context, event *model.StripeEvent) error {
		panic("boom")
	}

	assert.NotPanics(t, func() {
		ok := svc.Handle(context.Background(), []byte("{}"), "")
		assert.False(t, ok)
	})
	eventRepo.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_SlowHandlerTimesOut(t *testing.T) {
	svc, stripeClient, _, _, eventRepo := newWebhookFixture()
	svc.handlerTimeout = 20 * time.Millisecond

	event := stripeEvent("evt_slow", "product.created", "prod_1")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_slow").Return(false, nil)

	block := make(chan struct{})
	defer close(block)
	svc.handlers["product.created"] = func(ctx context.Context, event *model.StripeEvent) error {
		<-block
		return nil
	}

	start := time.Now()
	ok := svc.Handle(context.Background(), []byte("{}"), "")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
	eventRepo.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_TimedOutHandlerOutlivesRequest(t *testing.T) {
	svc, stripeClient, productRepo, _, eventRepo := newWebhookFixture()
	svc.handlerTimeout = 20 * time.Millisecond

	event := stripeEvent("evt_detach", "product.created", "prod_1")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_detach").Return(false, nil)
	productRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	release := make(chan struct{})
	done := make(chan error, 1)
	svc.handlers["product.created"] = func(ctx context.Context, event *model.StripeEvent) error {
		<-release
		// The request is long gone by now; the handler context must still
		// be alive so the store write below goes through.
		if err := ctx.Err(); err != nil {
			done <- err
			return err
		}
		done <- svc.productRepo.Create(ctx, &model.Product{Name: "late"})
		return nil
	}

	reqCtx, cancel := context.WithCancel(context.Background())
	ok := svc.Handle(reqCtx, []byte("{}"), "")
	assert.False(t, ok)

	// Response written, request context torn down.
	cancel()
	close(release)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("handler never completed")
	}
	productRepo.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

type logRecorder struct {
	mu   sync.Mutex
	msgs []string
}

func (h *logRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (h *logRecorder) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, r.Message)
	return nil
}

func (h *logRecorder) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *logRecorder) WithGroup(string) slog.Handler      { return h }

func (h *logRecorder) contains(msg string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, m := range h.msgs {
		if m == msg {
			return true
		}
	}
	return false
}

func TestWebhook_SetLoggerRedirectsOutput(t *testing.T) {
	svc, stripeClient, _, _, eventRepo := newWebhookFixture()

	recorder := &logRecorder{}
	svc.SetLogger(slog.New(recorder))

	event := stripeEvent("evt_log", "customer.created", "cus_1")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_log").Return(false, nil)

	ok := svc.Handle(context.Background(), []byte("{}"), "")
	assert.False(t, ok)
	assert.True(t, recorder.contains("received unrecognized stripe webhook event"))
}

func TestWebhook_ProductCreated(t *testing.T) {
	svc, stripeClient, productRepo, _, eventRepo := newWebhookFixture()

	event := stripeEvent("evt_pc", "product.created", "prod_1")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_pc").Return(false, nil)

	stripeClient.On("RetrieveProduct", mock.Anything, "prod_1").Return(&client.StripeProduct{
		ID:           "prod_1",
		Name:         "Espresso Beans",
		Description:  "dark roast",
		Images:       []string{"https://img.example/1.png"},
		DefaultPrice: "price_1",
	}, nil)
	stripeClient.On("RetrievePrice", mock.Anything, "price_1").Return(&client.StripePrice{
		ID:                "price_1",
		Currency:          "usd",
		UnitAmountDecimal: "1999",
	}, nil)

	productRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Product) bool {
		return p.Name == "Espresso Beans" &&
			p.Currency == "USD" &&
			p.Price.String() == "19.99" &&
			p.AvailableQuantity == 0 &&
			p.StripeID != nil && *p.StripeID == "prod_1"
	})).Return(nil)
	eventRepo.On("MarkProcessed", mock.Anything, "evt_pc", "product.created").Return(nil)

	ok := svc.Handle(context.Background(), []byte("{}"), "")
	assert.True(t, ok)
	productRepo.AssertExpectations(t)
	eventRepo.AssertExpectations(t)
}

func TestWebhook_ProductUpdated_MissingLocally(t *testing.T) {
	svc, stripeClient, productRepo, _, eventRepo := newWebhookFixture()

	event := stripeEvent("evt_pu", "product.updated", "prod_gone")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_pu").Return(false, nil)

	stripeClient.On("RetrieveProduct", mock.Anything, "prod_gone").Return(&client.StripeProduct{
		ID:           "prod_gone",
		Name:         "Ghost",
		DefaultPrice: "price_g",
	}, nil)
	stripeClient.On("RetrievePrice", mock.Anything, "price_g").Return(&client.StripePrice{
		ID:                "price_g",
		Currency:          "usd",
		UnitAmountDecimal: "500",
	}, nil)
	productRepo.On("FindByStripeID", mock.Anything, "prod_gone").Return(nil, gorm.ErrRecordNotFound)

	ok := svc.Handle(context.Background(), []byte("{}"), "")
	assert.False(t, ok)
	productRepo.AssertNotCalled(t, "Updates", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_ProductDeleted_Idempotent(t *testing.T) {
	svc, stripeClient, productRepo, _, eventRepo := newWebhookFixture()

	event := stripeEvent("evt_pd", "product.deleted", "prod_gone")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_pd").Return(false, nil)
	productRepo.On("FindByStripeID", mock.Anything, "prod_gone").Return(nil, gorm.ErrRecordNotFound)
	eventRepo.On("MarkProcessed", mock.Anything, "evt_pd", "product.deleted").Return(nil)

	ok := svc.Handle(context.Background(), []byte("{}"), "")
	assert.True(t, ok)
	productRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestWebhook_PaymentIntentCreated_LinksOrder(t *testing.T) {
	svc, stripeClient, _, orderRepo, eventRepo := newWebhookFixture()

	event := stripeEvent("evt_pi", "payment_intent.created", "pi_1")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_pi").Return(false, nil)

	stripeClient.On("RetrievePaymentIntent", mock.Anything, "pi_1").Return(&client.StripePaymentIntent{
		ID:       "pi_1",
		Status:   "requires_payment_method",
		Metadata: map[string]string{"order_id": "order-1"},
	}, nil)
	orderRepo.On("FindByID", mock.Anything, "order-1").Return(&model.Order{
		Base:   model.Base{ID: "order-1"},
		Status: model.OrderStatusPending,
	}, nil)
	orderRepo.On("SetPaymentIntent", mock.Anything, "order-1", "pi_1").Return(nil)
	eventRepo.On("MarkProcessed", mock.Anything, "evt_pi", "payment_intent.created").Return(nil)

	ok := svc.Handle(context.Background(), []byte("{}"), "")
	assert.True(t, ok)
	orderRepo.AssertExpectations(t)
}

func TestWebhook_PaymentIntentCreated_MissingOrderID(t *testing.T) {
	svc, stripeClient, _, orderRepo, eventRepo := newWebhookFixture()

	event := stripeEvent("evt_noid", "payment_intent.created", "pi_noid")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_noid").Return(false, nil)

	stripeClient.On("RetrievePaymentIntent", mock.Anything, "pi_noid").Return(&client.StripePaymentIntent{
		ID:       "pi_noid",
		Metadata: map[string]string{},
	}, nil)
	eventRepo.On("MarkProcessed", mock.Anything, "evt_noid", "payment_intent.created").Return(nil)

	// The delivery itself succeeds; the store stays unmodified.
	ok := svc.Handle(context.Background(), []byte("{}"), "")
	assert.True(t, ok)
	orderRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	orderRepo.AssertNotCalled(t, "SetPaymentIntent", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_PaymentIntentCreated_DoesNotOverwriteLink(t *testing.T) {
	svc, stripeClient, _, orderRepo, eventRepo := newWebhookFixture()

	event := stripeEvent("evt_dup_pi", "payment_intent.created", "pi_new")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_dup_pi").Return(false, nil)

	linked := "pi_old"
	stripeClient.On("RetrievePaymentIntent", mock.Anything, "pi_new").Return(&client.StripePaymentIntent{
		ID:       "pi_new",
		Metadata: map[string]string{"order_id": "order-1"},
	}, nil)
	orderRepo.On("FindByID", mock.Anything, "order-1").Return(&model.Order{
		Base:                model.Base{ID: "order-1"},
		StripePaymentIntent: &linked,
	}, nil)
	eventRepo.On("MarkProcessed", mock.Anything, "evt_dup_pi", "payment_intent.created").Return(nil)

	ok := svc.Handle(context.Background(), []byte("{}"), "")
	assert.True(t, ok)
	orderRepo.AssertNotCalled(t, "SetPaymentIntent", mock.Anything, mock.Anything, mock.Anything)
}

func TestWebhook_ProviderFailurePropagates(t *testing.T) {
	svc, stripeClient, _, _, eventRepo := newWebhookFixture()

	event := stripeEvent("evt_err", "payment_intent.created", "pi_err")
	stripeClient.On("ConstructEvent", mock.Anything, mock.Anything, mock.Anything).Return(event, nil)
	eventRepo.On("Exists", mock.Anything, "evt_err").Return(false, nil)
	stripeClient.On("RetrievePaymentIntent", mock.Anything, "pi_err").
		Return(nil, errors.New("connection reset"))

	ok := svc.Handle(context.Background(), []byte("{}"), "")
	assert.False(t, ok)
	eventRepo.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}
