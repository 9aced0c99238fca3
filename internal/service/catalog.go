package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stripe-shop-backend/internal/apperr"
	"stripe-shop-backend/internal/dto"
	"stripe-shop-backend/internal/model"
	"stripe-shop-backend/internal/repository"

	"gorm.io/datatypes"
)

type CatalogService interface {
	ListProducts(ctx context.Context, offset, limit int) ([]*model.Product, int64, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	CreateProduct(ctx context.Context, actor *model.User, req *dto.ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor *model.User, id string, req *dto.ProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, actor *model.User, id string) error

	ListCategories(ctx context.Context) ([]*model.Category, int64, error)
	CreateCategory(ctx context.Context, actor *model.User, req *dto.CategoryCreateRequest) (*model.Category, error)
	SetProductCategories(ctx context.Context, actor *model.User, productID string, categoryIDs []string) (*model.Product, error)

	ListReviews(ctx context.Context, productID string) ([]*model.Review, int64, error)
	CreateReview(ctx context.Context, actor *model.User, productID string, req *dto.ReviewRequest) (*model.Review, error)
	UpdateReview(ctx context.Context, actor *model.User, productID, reviewID string, req *dto.ReviewRequest) (*model.Review, error)
	DeleteReview(ctx context.Context, actor *model.User, productID, reviewID string) error
}

type catalogServiceImpl struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	reviewRepo   repository.ReviewRepository
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	reviewRepo repository.ReviewRepository,
) CatalogService {
	return &catalogServiceImpl{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		reviewRepo:   reviewRepo,
	}
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, offset, limit int) ([]*model.Product, int64, error) {
	products, count, err := s.productRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, apperr.Persistence("list products", err)
	}
	return products, count, nil
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "product not found")
	}
	return product, nil
}

func (s *catalogServiceImpl) CreateProduct(ctx context.Context, actor *model.User, req *dto.ProductRequest) (*model.Product, error) {
	if !actor.IsSuperuser {
		return nil, apperr.PermissionDenied("not enough permissions")
	}
	if req.Name == nil || *req.Name == "" {
		return nil, apperr.Validation("product name is required")
	}
	if req.Price == nil || req.Price.IsNegative() {
		return nil, apperr.Validation("product price must be non-negative")
	}
	images, err := encodeImages(req.Images)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:   *req.Name,
		Price:  req.Price.Round(2),
		Images: images,
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Currency != nil {
		product.Currency = *req.Currency
	}
	if req.AvailableQuantity != nil {
		product.AvailableQuantity = *req.AvailableQuantity
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, apperr.Persistence("create product", err)
	}
	return product, nil
}

func (s *catalogServiceImpl) UpdateProduct(ctx context.Context, actor *model.User, id string, req *dto.ProductRequest) (*model.Product, error) {
	if !actor.IsSuperuser {
		return nil, apperr.PermissionDenied("not enough permissions")
	}

	fields, err := productFields(req)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Updates(ctx, id, fields); err != nil {
		return nil, storeErr(err, "product not found")
	}
	return s.GetProduct(ctx, id)
}

func (s *catalogServiceImpl) DeleteProduct(ctx context.Context, actor *model.User, id string) error {
	if !actor.IsSuperuser {
		return apperr.PermissionDenied("not enough permissions")
	}
	if _, err := s.productRepo.FindByID(ctx, id); err != nil {
		return storeErr(err, "product not found")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return apperr.Persistence("delete product", err)
	}
	return nil
}

func (s *catalogServiceImpl) ListCategories(ctx context.Context) ([]*model.Category, int64, error) {
	categories, count, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, 0, apperr.Persistence("list categories", err)
	}
	return categories, count, nil
}

func (s *catalogServiceImpl) CreateCategory(ctx context.Context, actor *model.User, req *dto.CategoryCreateRequest) (*model.Category, error) {
	if !actor.IsSuperuser {
		return nil, apperr.PermissionDenied("not enough permissions")
	}
	if req.Name == "" {
		return nil, apperr.Validation("category name is required")
	}

	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, apperr.Persistence("create category", err)
	}
	return category, nil
}

func (s *catalogServiceImpl) SetProductCategories(ctx context.Context, actor *model.User, productID string, categoryIDs []string) (*model.Product, error) {
	if !actor.IsSuperuser {
		return nil, apperr.PermissionDenied("not enough permissions")
	}
	if len(categoryIDs) == 0 {
		return nil, apperr.Validation("no category ids provided")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, storeErr(err, fmt.Sprintf("product with id %s not found", productID))
	}

	categories, err := s.categoryRepo.FindMany(ctx, categoryIDs)
	if err != nil {
		return nil, apperr.Persistence("look up categories", err)
	}
	if len(categories) != len(categoryIDs) {
		return nil, apperr.Validation("one or more categories do not exist")
	}

	if err := s.productRepo.ReplaceCategories(ctx, product, categories); err != nil {
		return nil, apperr.Persistence("set product categories", err)
	}
	return s.GetProduct(ctx, productID)
}

func (s *catalogServiceImpl) ListReviews(ctx context.Context, productID string) ([]*model.Review, int64, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, 0, storeErr(err, "product not found")
	}

	reviews, count, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, 0, apperr.Persistence("list reviews", err)
	}
	return reviews, count, nil
}

func (s *catalogServiceImpl) CreateReview(ctx context.Context, actor *model.User, productID string, req *dto.ReviewRequest) (*model.Review, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, storeErr(err, "product not found")
	}
	if req.Rating == nil || *req.Rating > 5 || *req.Rating < 0 {
		return nil, apperr.Validation("rating must be between 0 and 5")
	}

	review := &model.Review{
		Rating:     *req.Rating,
		ProductID:  productID,
		CustomerID: &actor.ID,
	}
	if req.Content != nil {
		review.Content = *req.Content
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, apperr.Persistence("create review", err)
	}
	return review, nil
}

func (s *catalogServiceImpl) UpdateReview(ctx context.Context, actor *model.User, productID, reviewID string, req *dto.ReviewRequest) (*model.Review, error) {
	review, err := s.findProductReview(ctx, productID, reviewID)
	if err != nil {
		return nil, err
	}
	if !actor.IsSuperuser && (review.CustomerID == nil || *review.CustomerID != actor.ID) {
		return nil, apperr.PermissionDenied("not enough permissions")
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if req.Rating != nil {
		if *req.Rating > 5 || *req.Rating < 0 {
			return nil, apperr.Validation("rating must be between 0 and 5")
		}
		fields["rating"] = *req.Rating
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}

	if err := s.reviewRepo.Updates(ctx, reviewID, fields); err != nil {
		return nil, storeErr(err, "review not found")
	}

	review, err = s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, storeErr(err, "review not found")
	}
	return review, nil
}

func (s *catalogServiceImpl) DeleteReview(ctx context.Context, actor *model.User, productID, reviewID string) error {
	review, err := s.findProductReview(ctx, productID, reviewID)
	if err != nil {
		return err
	}
	if !actor.IsSuperuser && (review.CustomerID == nil || *review.CustomerID != actor.ID) {
		return apperr.PermissionDenied("not enough permissions")
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return apperr.Persistence("delete review", err)
	}
	return nil
}

func (s *catalogServiceImpl) findProductReview(ctx context.Context, productID, reviewID string) (*model.Review, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, storeErr(err, "product not found")
	}
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, storeErr(err, "review not found")
	}
	if review.ProductID != productID {
		return nil, apperr.NotFound("review not found")
	}
	return review, nil
}

func productFields(req *dto.ProductRequest) (map[string]interface{}, error) {
	fields := map[string]interface{}{"updated_at": time.Now()}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperr.Validation("product name must not be empty")
		}
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Currency != nil {
		fields["currency"] = *req.Currency
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, apperr.Validation("product price must be non-negative")
		}
		fields["price"] = req.Price.Round(2)
	}
	if req.AvailableQuantity != nil {
		fields["available_quantity"] = *req.AvailableQuantity
	}
	if req.Images != nil {
		images, err := encodeImages(req.Images)
		if err != nil {
			return nil, err
		}
		fields["images"] = images
	}
	return fields, nil
}

func encodeImages(images []string) (datatypes.JSON, error) {
	if len(images) > model.MaxProductImages {
		return nil, apperr.Validation(fmt.Sprintf("at most %d images allowed", model.MaxProductImages))
	}
	if images == nil {
		images = []string{}
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("encode product images: %w", err)
	}
	return datatypes.JSON(raw), nil
}
