package service

import (
	"context"

	"stripe-shop-backend/internal/client"
	"stripe-shop-backend/internal/model"

	"github.com/stretchr/testify/mock"
)

type StripeClientMock struct{ mock.Mock }

func (m *StripeClientMock) RetrieveProduct(ctx context.Context, id string) (*client.StripeProduct, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*client.StripeProduct)
	return p, args.Error(1)
}

func (m *StripeClientMock) RetrievePrice(ctx context.Context, id string) (*client.StripePrice, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*client.StripePrice)
	return p, args.Error(1)
}

func (m *StripeClientMock) RetrievePaymentIntent(ctx context.Context, id string) (*client.StripePaymentIntent, error) {
	args := m.Called(ctx, id)
	pi, _ := args.Get(0).(*client.StripePaymentIntent)
	return pi, args.Error(1)
}

func (m *StripeClientMock) CreateCheckoutSession(ctx context.Context, params *client.CheckoutSessionParams) (*client.StripeCheckoutSession, error) {
	args := m.Called(ctx, params)
	s, _ := args.Get(0).(*client.StripeCheckoutSession)
	return s, args.Error(1)
}

func (m *StripeClientMock) ConstructEvent(payload []byte, sigHeader string, secret string) (*model.StripeEvent, error) {
	args := m.Called(payload, sigHeader, secret)
	e, _ := args.Get(0).(*model.StripeEvent)
	return e, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByStripeID(ctx context.Context, stripeID string) (*model.Product, error) {
	args := m.Called(ctx, stripeID)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) List(ctx context.Context, offset, limit int) ([]*model.Product, int64, error) {
	args := m.Called(ctx, offset, limit)
	products, _ := args.Get(0).([]*model.Product)
	return products, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) Updates(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProductRepoMock) ReplaceCategories(ctx context.Context, product *model.Product, categories []model.Category) error {
	args := m.Called(ctx, product, categories)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) List(ctx context.Context, customerID string, offset, limit int) ([]*model.Order, int64, error) {
	args := m.Called(ctx, customerID, offset, limit)
	orders, _ := args.Get(0).([]*model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) ListAll(ctx context.Context, offset, limit int) ([]*model.Order, int64, error) {
	args := m.Called(ctx, offset, limit)
	orders, _ := args.Get(0).([]*model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Updates(ctx context.Context, id string, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *OrderRepoMock) SetCheckoutSession(ctx context.Context, id string, sessionID string) error {
	args := m.Called(ctx, id, sessionID)
	return args.Error(0)
}

func (m *OrderRepoMock) SetPaymentIntent(ctx context.Context, id string, paymentIntentID string) error {
	args := m.Called(ctx, id, paymentIntentID)
	return args.Error(0)
}

func (m *OrderRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *OrderRepoMock) AddItem(ctx context.Context, item *model.OrderItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *OrderRepoMock) FindItem(ctx context.Context, itemID string) (*model.OrderItem, error) {
	args := m.Called(ctx, itemID)
	item, _ := args.Get(0).(*model.OrderItem)
	return item, args.Error(1)
}

func (m *OrderRepoMock) ListItems(ctx context.Context, orderID string) ([]*model.OrderItem, int64, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]*model.OrderItem)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) DeleteItem(ctx context.Context, itemID string) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *OrderRepoMock) Addresses(ctx context.Context, order *model.Order) ([]*model.Address, error) {
	args := m.Called(ctx, order)
	addresses, _ := args.Get(0).([]*model.Address)
	return addresses, args.Error(1)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) Create(ctx context.Context, cart *model.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *CartRepoMock) FindByID(ctx context.Context, id string) (*model.Cart, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) List(ctx context.Context, customerID string, offset, limit int) ([]*model.Cart, int64, error) {
	args := m.Called(ctx, customerID, offset, limit)
	carts, _ := args.Get(0).([]*model.Cart)
	return carts, args.Get(1).(int64), args.Error(2)
}

func (m *CartRepoMock) ListAll(ctx context.Context, offset, limit int) ([]*model.Cart, int64, error) {
	args := m.Called(ctx, offset, limit)
	carts, _ := args.Get(0).([]*model.Cart)
	return carts, args.Get(1).(int64), args.Error(2)
}

func (m *CartRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CartRepoMock) AddItem(ctx context.Context, item *model.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *CartRepoMock) FindItem(ctx context.Context, itemID string) (*model.CartItem, error) {
	args := m.Called(ctx, itemID)
	item, _ := args.Get(0).(*model.CartItem)
	return item, args.Error(1)
}

func (m *CartRepoMock) ListItems(ctx context.Context, cartID string) ([]*model.CartItem, int64, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]*model.CartItem)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *CartRepoMock) DeleteItem(ctx context.Context, itemID string) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

type WebhookEventRepoMock struct{ mock.Mock }

func (m *WebhookEventRepoMock) Exists(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *WebhookEventRepoMock) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	args := m.Called(ctx, eventID, eventType)
	return args.Error(0)
}
