package repository

import (
	"context"
	"fmt"
	"testing"

	"stripe-shop-backend/internal/client"
	"stripe-shop-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, client.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:          email,
		HashedPassword: "x",
		IsActive:       true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, name string) *model.Product {
	t.Helper()
	product := &model.Product{Name: name}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestUserDelete_RelationGraph(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userRepo := NewUserRepository(db)

	user := seedUser(t, db, "a@example.com")
	product := seedProduct(t, db, "beans")

	cart := &model.Cart{CustomerID: user.ID}
	require.NoError(t, db.Create(cart).Error)
	require.NoError(t, db.Create(&model.CartItem{CartID: cart.ID, ProductID: &product.ID, Quantity: 1}).Error)
	require.NoError(t, db.Create(&model.Address{Street: "1 Main", City: "X", State: "Y", PostalCode: "1", Country: "US", CustomerID: user.ID}).Error)

	order := &model.Order{CustomerID: &user.ID}
	require.NoError(t, db.Create(order).Error)
	review := &model.Review{Rating: 4, ProductID: product.ID, CustomerID: &user.ID}
	require.NoError(t, db.Create(review).Error)

	require.NoError(t, userRepo.Delete(ctx, user.ID))

	var count int64
	db.Model(&model.Cart{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.CartItem{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&model.Address{}).Count(&count)
	assert.Zero(t, count)

	// Orders and reviews survive with the customer reference cleared.
	var keptOrder model.Order
	require.NoError(t, db.First(&keptOrder, "id = ?", order.ID).Error)
	assert.Nil(t, keptOrder.CustomerID)

	var keptReview model.Review
	require.NoError(t, db.First(&keptReview, "id = ?", review.ID).Error)
	assert.Nil(t, keptReview.CustomerID)
}

func TestProductDelete_RelationGraph(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	productRepo := NewProductRepository(db)

	user := seedUser(t, db, "b@example.com")
	product := seedProduct(t, db, "grinder")

	cart := &model.Cart{CustomerID: user.ID}
	require.NoError(t, db.Create(cart).Error)
	cartItem := &model.CartItem{CartID: cart.ID, ProductID: &product.ID, Quantity: 2}
	require.NoError(t, db.Create(cartItem).Error)

	order := &model.Order{CustomerID: &user.ID}
	require.NoError(t, db.Create(order).Error)
	orderItem := &model.OrderItem{OrderID: order.ID, ProductID: &product.ID, Quantity: 1}
	require.NoError(t, db.Create(orderItem).Error)

	require.NoError(t, db.Create(&model.Review{Rating: 5, ProductID: product.ID, CustomerID: &user.ID}).Error)

	require.NoError(t, productRepo.Delete(ctx, product.ID))

	// Reviews go with the product; cart and order lines survive detached.
	var count int64
	db.Model(&model.Review{}).Where("product_id = ?", product.ID).Count(&count)
	assert.Zero(t, count)

	var keptCartItem model.CartItem
	require.NoError(t, db.First(&keptCartItem, "id = ?", cartItem.ID).Error)
	assert.Nil(t, keptCartItem.ProductID)

	var keptOrderItem model.OrderItem
	require.NoError(t, db.First(&keptOrderItem, "id = ?", orderItem.ID).Error)
	assert.Nil(t, keptOrderItem.ProductID)
}

func TestProductFindByStripeID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	productRepo := NewProductRepository(db)

	stripeID := "prod_abc"
	product := &model.Product{Name: "kettle", StripeID: &stripeID}
	require.NoError(t, productRepo.Create(ctx, product))

	found, err := productRepo.FindByStripeID(ctx, "prod_abc")
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = productRepo.FindByStripeID(ctx, "prod_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderUpdates_MissingRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	orderRepo := NewOrderRepository(db)

	err := orderRepo.SetPaymentIntent(ctx, "nonexistent", "pi_1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderSetReferences(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	orderRepo := NewOrderRepository(db)

	user := seedUser(t, db, "c@example.com")
	order := &model.Order{CustomerID: &user.ID}
	require.NoError(t, orderRepo.Create(ctx, order))

	require.NoError(t, orderRepo.SetCheckoutSession(ctx, order.ID, "cs_1"))
	require.NoError(t, orderRepo.SetPaymentIntent(ctx, order.ID, "pi_1"))

	found, err := orderRepo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found.StripeCheckoutSession)
	assert.Equal(t, "cs_1", *found.StripeCheckoutSession)
	require.NotNil(t, found.StripePaymentIntent)
	assert.Equal(t, "pi_1", *found.StripePaymentIntent)
}

func TestOrderAddresses_FixedOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	orderRepo := NewOrderRepository(db)

	user := seedUser(t, db, "d@example.com")
	billing := &model.Address{Street: "1 Billing", City: "X", State: "Y", PostalCode: "1", Country: "US", CustomerID: user.ID}
	shipping := &model.Address{Street: "2 Shipping", City: "X", State: "Y", PostalCode: "2", Country: "US", CustomerID: user.ID}
	require.NoError(t, db.Create(billing).Error)
	require.NoError(t, db.Create(shipping).Error)

	order := &model.Order{
		CustomerID:        &user.ID,
		BillingAddressID:  &billing.ID,
		ShippingAddressID: &shipping.ID,
	}
	require.NoError(t, orderRepo.Create(ctx, order))

	addresses, err := orderRepo.Addresses(ctx, order)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, "1 Billing", addresses[0].Street)
	assert.Equal(t, "2 Shipping", addresses[1].Street)

	// No address references at all.
	bare := &model.Order{CustomerID: &user.ID}
	require.NoError(t, orderRepo.Create(ctx, bare))
	addresses, err = orderRepo.Addresses(ctx, bare)
	require.NoError(t, err)
	assert.Empty(t, addresses)
}

func TestCartDelete_CascadesItems(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	cartRepo := NewCartRepository(db)

	user := seedUser(t, db, "e@example.com")
	product := seedProduct(t, db, "mug")

	cart := &model.Cart{CustomerID: user.ID}
	require.NoError(t, cartRepo.Create(ctx, cart))
	require.NoError(t, cartRepo.AddItem(ctx, &model.CartItem{CartID: cart.ID, ProductID: &product.ID, Quantity: 3}))

	require.NoError(t, cartRepo.Delete(ctx, cart.ID))

	var count int64
	db.Model(&model.CartItem{}).Where("cart_id = ?", cart.ID).Count(&count)
	assert.Zero(t, count)
}

func TestWebhookEventDedupe(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	eventRepo := NewWebhookEventRepository(db)

	seen, err := eventRepo.Exists(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, eventRepo.MarkProcessed(ctx, "evt_1", "product.created"))

	seen, err = eventRepo.Exists(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	// Marking the same delivery twice violates the primary key.
	assert.Error(t, eventRepo.MarkProcessed(ctx, "evt_1", "product.created"))
}
