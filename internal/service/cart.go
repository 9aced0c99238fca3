package service

import (
	"context"

	"stripe-shop-backend/internal/apperr"
	"stripe-shop-backend/internal/dto"
	"stripe-shop-backend/internal/model"
	"stripe-shop-backend/internal/repository"
)

type CartService interface {
	List(ctx context.Context, actor *model.User, offset, limit int) ([]*model.Cart, int64, error)
	Get(ctx context.Context, actor *model.User, id string) (*model.Cart, error)
	Create(ctx context.Context, actor *model.User) (*model.Cart, error)
	Delete(ctx context.Context, actor *model.User, id string) error
	ListItems(ctx context.Context, actor *model.User, cartID string) ([]*model.CartItem, int64, error)
	AddItem(ctx context.Context, actor *model.User, cartID string, req *dto.CartItemCreateRequest) (*model.CartItem, error)
	DeleteItem(ctx context.Context, actor *model.User, cartID, itemID string) error
}

type cartServiceImpl struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartServiceImpl{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartServiceImpl) List(ctx context.Context, actor *model.User, offset, limit int) ([]*model.Cart, int64, error) {
	var (
		carts []*model.Cart
		count int64
		err   error
	)
	if actor.IsSuperuser {
		carts, count, err = s.cartRepo.ListAll(ctx, offset, limit)
	} else {
		carts, count, err = s.cartRepo.List(ctx, actor.ID, offset, limit)
	}
	if err != nil {
		return nil, 0, apperr.Persistence("list carts", err)
	}
	return carts, count, nil
}

func (s *cartServiceImpl) Get(ctx context.Context, actor *model.User, id string) (*model.Cart, error) {
	return s.ownedCart(ctx, actor, id)
}

func (s *cartServiceImpl) Create(ctx context.Context, actor *model.User) (*model.Cart, error) {
	cart := &model.Cart{CustomerID: actor.ID}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, apperr.Persistence("create cart", err)
	}
	return cart, nil
}

func (s *cartServiceImpl) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.ownedCart(ctx, actor, id); err != nil {
		return err
	}
	if err := s.cartRepo.Delete(ctx, id); err != nil {
		return apperr.Persistence("delete cart", err)
	}
	return nil
}

func (s *cartServiceImpl) ListItems(ctx context.Context, actor *model.User, cartID string) ([]*model.CartItem, int64, error) {
	if _, err := s.ownedCart(ctx, actor, cartID); err != nil {
		return nil, 0, err
	}

	items, count, err := s.cartRepo.ListItems(ctx, cartID)
	if err != nil {
		return nil, 0, apperr.Persistence("list cart items", err)
	}
	return items, count, nil
}

func (s *cartServiceImpl) AddItem(ctx context.Context, actor *model.User, cartID string, req *dto.CartItemCreateRequest) (*model.CartItem, error) {
	if _, err := s.ownedCart(ctx, actor, cartID); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, apperr.Validation("item quantity must be positive")
	}
	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		return nil, storeErr(err, "product not found")
	}

	item := &model.CartItem{
		CartID:    cartID,
		ProductID: &req.ProductID,
		Quantity:  req.Quantity,
	}
	if err := s.cartRepo.AddItem(ctx, item); err != nil {
		return nil, apperr.Persistence("add cart item", err)
	}
	return item, nil
}

func (s *cartServiceImpl) DeleteItem(ctx context.Context, actor *model.User, cartID, itemID string) error {
	if _, err := s.ownedCart(ctx, actor, cartID); err != nil {
		return err
	}

	item, err := s.cartRepo.FindItem(ctx, itemID)
	if err != nil {
		return storeErr(err, "cart item not found")
	}
	if item.CartID != cartID {
		return apperr.NotFound("cart item not found")
	}

	if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
		return apperr.Persistence("delete cart item", err)
	}
	return nil
}

func (s *cartServiceImpl) ownedCart(ctx context.Context, actor *model.User, id string) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "cart not found")
	}
	if !actor.IsSuperuser && cart.CustomerID != actor.ID {
		return nil, apperr.PermissionDenied("not enough permissions")
	}
	return cart, nil
}
