package repository

import (
	"context"

	"stripe-shop-backend/internal/model"

	"gorm.io/gorm"
)

type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	FindByID(ctx context.Context, id string) (*model.Cart, error)
	List(ctx context.Context, customerID string, offset, limit int) ([]*model.Cart, int64, error)
	ListAll(ctx context.Context, offset, limit int) ([]*model.Cart, int64, error)
	Delete(ctx context.Context, id string) error
	AddItem(ctx context.Context, item *model.CartItem) error
	FindItem(ctx context.Context, itemID string) (*model.CartItem, error)
	ListItems(ctx context.Context, cartID string) ([]*model.CartItem, int64, error)
	DeleteItem(ctx context.Context, itemID string) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{
		db: db,
	}
}

func (r *cartRepoImpl) Create(ctx context.Context, cart *model.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *cartRepoImpl) FindByID(ctx context.Context, id string) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("CartItems").
		Where("id = ?", id).
		First(&cart).Error

	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) List(ctx context.Context, customerID string, offset, limit int) ([]*model.Cart, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("customer_id = ?", customerID), offset, limit)
}

func (r *cartRepoImpl) ListAll(ctx context.Context, offset, limit int) ([]*model.Cart, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx), offset, limit)
}

func (r *cartRepoImpl) list(ctx context.Context, query *gorm.DB, offset, limit int) ([]*model.Cart, int64, error) {
	var carts []*model.Cart
	var count int64

	if err := query.Model(&model.Cart{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("CartItems").
		Offset(offset).
		Limit(limit).
		Find(&carts).Error

	if err != nil {
		return nil, 0, err
	}

	return carts, count, nil
}

// Delete removes the cart together with its items.
func (r *cartRepoImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Cart{}).Error
	})
}

func (r *cartRepoImpl) AddItem(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartRepoImpl) FindItem(ctx context.Context, itemID string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error

	if err != nil {
		return nil, err
	}

	return &item, nil
}

func (r *cartRepoImpl) ListItems(ctx context.Context, cartID string) ([]*model.CartItem, int64, error) {
	var items []*model.CartItem
	var count int64

	query := r.db.WithContext(ctx).Where("cart_id = ?", cartID)
	if err := query.Model(&model.CartItem{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, count, nil
}

func (r *cartRepoImpl) DeleteItem(ctx context.Context, itemID string) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&model.CartItem{}).Error
}
