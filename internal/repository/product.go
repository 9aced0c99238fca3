package repository

import (
	"context"

	"stripe-shop-backend/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByStripeID(ctx context.Context, stripeID string) (*model.Product, error)
	List(ctx context.Context, offset, limit int) ([]*model.Product, int64, error)
	Updates(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	ReplaceCategories(ctx context.Context, product *model.Product, categories []model.Category) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Where("id = ?", id).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindByStripeID(ctx context.Context, stripeID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("stripe_id = ?", stripeID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) List(ctx context.Context, offset, limit int) ([]*model.Product, int64, error) {
	var products []*model.Product
	var count int64

	if err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Categories").
		Offset(offset).
		Limit(limit).
		Find(&products).Error

	if err != nil {
		return nil, 0, err
	}

	return products, count, nil
}

func (r *productRepoImpl) Updates(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&model.Product{}).
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

// Delete removes the product and reproduces the relationship graph
// explicitly: reviews and category links go with the product, cart and order
// items keep their rows with the product reference cleared.
func (r *productRepoImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.Review{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.CartItem{}).
			Where("product_id = ?", id).
			Update("product_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.OrderItem{}).
			Where("product_id = ?", id).
			Update("product_id", nil).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Product{Base: model.Base{ID: id}}).
			Association("Categories").Clear(); err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&model.Product{}).Error
	})
}

func (r *productRepoImpl) ReplaceCategories(ctx context.Context, product *model.Product, categories []model.Category) error {
	return r.db.WithContext(ctx).Model(product).
		Association("Categories").Replace(categories)
}
