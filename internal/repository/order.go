package repository

import (
	"context"
	"time"

	"stripe-shop-backend/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, customerID string, offset, limit int) ([]*model.Order, int64, error)
	ListAll(ctx context.Context, offset, limit int) ([]*model.Order, int64, error)
	Updates(ctx context.Context, id string, fields map[string]interface{}) error
	SetCheckoutSession(ctx context.Context, id string, sessionID string) error
	SetPaymentIntent(ctx context.Context, id string, paymentIntentID string) error
	Delete(ctx context.Context, id string) error
	AddItem(ctx context.Context, item *model.OrderItem) error
	FindItem(ctx context.Context, itemID string) (*model.OrderItem, error)
	ListItems(ctx context.Context, orderID string) ([]*model.OrderItem, int64, error)
	DeleteItem(ctx context.Context, itemID string) error
	Addresses(ctx context.Context, order *model.Order) ([]*model.Address, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) List(ctx context.Context, customerID string, offset, limit int) ([]*model.Order, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("customer_id = ?", customerID), offset, limit)
}

func (r *orderRepoImpl) ListAll(ctx context.Context, offset, limit int) ([]*model.Order, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx), offset, limit)
}

func (r *orderRepoImpl) list(ctx context.Context, query *gorm.DB, offset, limit int) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var count int64

	if err := query.Model(&model.Order{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Items").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error

	if err != nil {
		return nil, 0, err
	}

	return orders, count, nil
}

func (r *orderRepoImpl) Updates(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) SetCheckoutSession(ctx context.Context, id string, sessionID string) error {
	return r.Updates(ctx, id, map[string]interface{}{
		"stripe_checkout_session": sessionID,
		"updated_at":              time.Now(),
	})
}

func (r *orderRepoImpl) SetPaymentIntent(ctx context.Context, id string, paymentIntentID string) error {
	return r.Updates(ctx, id, map[string]interface{}{
		"stripe_payment_intent": paymentIntentID,
		"updated_at":            time.Now(),
	})
}

// Delete removes the order together with its items. Addresses are shared
// with the customer and stay.
func (r *orderRepoImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Order{}).Error
	})
}

func (r *orderRepoImpl) AddItem(ctx context.Context, item *model.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *orderRepoImpl) FindItem(ctx context.Context, itemID string) (*model.OrderItem, error) {
	var item model.OrderItem
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *orderRepoImpl) ListItems(ctx context.Context, orderID string) ([]*model.OrderItem, int64, error) {
	var items []*model.OrderItem
	var count int64

	query := r.db.WithContext(ctx).Where("order_id = ?", orderID)
	if err := query.Model(&model.OrderItem{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, count, nil
}

func (r *orderRepoImpl) DeleteItem(ctx context.Context, itemID string) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&model.OrderItem{}).Error
}

// Addresses resolves the order's billing and shipping addresses through
// their foreign keys, in that fixed order.
func (r *orderRepoImpl) Addresses(ctx context.Context, order *model.Order) ([]*model.Address, error) {
	ids := make([]string, 0, 2)
	if order.BillingAddressID != nil {
		ids = append(ids, *order.BillingAddressID)
	}
	if order.ShippingAddressID != nil {
		ids = append(ids, *order.ShippingAddressID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var addresses []*model.Address
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&addresses).Error

	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Address, len(addresses))
	for _, a := range addresses {
		byID[a.ID] = a
	}

	ordered := make([]*model.Address, 0, 2)
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}
