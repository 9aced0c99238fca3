package service

import (
	"context"
	"time"

	"stripe-shop-backend/internal/apperr"
	"stripe-shop-backend/internal/dto"
	"stripe-shop-backend/internal/model"
	"stripe-shop-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderService interface {
	List(ctx context.Context, actor *model.User, offset, limit int) ([]*model.Order, int64, error)
	Get(ctx context.Context, actor *model.User, id string) (*model.Order, error)
	Create(ctx context.Context, actor *model.User, req *dto.OrderCreateRequest) (*model.Order, error)
	Update(ctx context.Context, actor *model.User, id string, req *dto.OrderUpdateRequest) (*model.Order, error)
	Delete(ctx context.Context, actor *model.User, id string) error
	ListItems(ctx context.Context, actor *model.User, orderID string) ([]*model.OrderItem, int64, error)
	AddItem(ctx context.Context, actor *model.User, orderID, productID string, req *dto.OrderItemCreateRequest) (*model.OrderItem, error)
	DeleteItem(ctx context.Context, actor *model.User, orderID, itemID string) error
	Addresses(ctx context.Context, actor *model.User, orderID string) ([]*model.Address, error)
}

type orderServiceImpl struct {
	orderRepo   repository.OrderRepository
	addressRepo repository.AddressRepository
	productRepo repository.ProductRepository
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	addressRepo repository.AddressRepository,
	productRepo repository.ProductRepository,
) OrderService {
	return &orderServiceImpl{
		orderRepo:   orderRepo,
		addressRepo: addressRepo,
		productRepo: productRepo,
	}
}

func (s *orderServiceImpl) List(ctx context.Context, actor *model.User, offset, limit int) ([]*model.Order, int64, error) {
	var (
		orders []*model.Order
		count  int64
		err    error
	)
	if actor.IsSuperuser {
		orders, count, err = s.orderRepo.ListAll(ctx, offset, limit)
	} else {
		orders, count, err = s.orderRepo.List(ctx, actor.ID, offset, limit)
	}
	if err != nil {
		return nil, 0, apperr.Persistence("list orders", err)
	}
	return orders, count, nil
}

func (s *orderServiceImpl) Get(ctx context.Context, actor *model.User, id string) (*model.Order, error) {
	return s.ownedOrder(ctx, actor, id)
}

func (s *orderServiceImpl) Create(ctx context.Context, actor *model.User, req *dto.OrderCreateRequest) (*model.Order, error) {
	order := &model.Order{
		Status:        model.OrderStatusPending,
		PaymentMethod: model.PaymentMethodStripe,
		TotalPrice:    decimal.Zero,
		CustomerID:    &actor.ID,
	}
	if req != nil && req.Currency != "" {
		order.Currency = req.Currency
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, apperr.Persistence("create order", err)
	}
	return order, nil
}

func (s *orderServiceImpl) Update(ctx context.Context, actor *model.User, id string, req *dto.OrderUpdateRequest) (*model.Order, error) {
	order, err := s.ownedOrder(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"updated_at": time.Now()}

	if req.Status != nil {
		next := model.OrderStatus(*req.Status)
		switch next {
		case model.OrderStatusPending, model.OrderStatusProcessing, model.OrderStatusShipped,
			model.OrderStatusDelivered, model.OrderStatusCancelled, model.OrderStatusStale:
		default:
			return nil, apperr.Validation("unknown order status")
		}
		if !order.Status.CanTransitionTo(next) {
			return nil, apperr.Validation("invalid status transition")
		}
		fields["status"] = next
		if next == model.OrderStatusStale {
			fields["stale"] = true
		}
	}
	if req.Stale != nil {
		fields["stale"] = *req.Stale
	}
	if req.BillingAddressID != nil {
		if _, err := s.addressRepo.FindByID(ctx, *req.BillingAddressID); err != nil {
			return nil, storeErr(err, "billing address not found")
		}
		fields["billing_address_id"] = *req.BillingAddressID
	}
	if req.ShippingAddressID != nil {
		if _, err := s.addressRepo.FindByID(ctx, *req.ShippingAddressID); err != nil {
			return nil, storeErr(err, "shipping address not found")
		}
		fields["shipping_address_id"] = *req.ShippingAddressID
	}

	if err := s.orderRepo.Updates(ctx, id, fields); err != nil {
		return nil, storeErr(err, "order not found")
	}

	updated, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "order not found")
	}
	return updated, nil
}

func (s *orderServiceImpl) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.ownedOrder(ctx, actor, id); err != nil {
		return err
	}
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return apperr.Persistence("delete order", err)
	}
	return nil
}

func (s *orderServiceImpl) ListItems(ctx context.Context, actor *model.User, orderID string) ([]*model.OrderItem, int64, error) {
	if _, err := s.ownedOrder(ctx, actor, orderID); err != nil {
		return nil, 0, err
	}

	items, count, err := s.orderRepo.ListItems(ctx, orderID)
	if err != nil {
		return nil, 0, apperr.Persistence("list order items", err)
	}
	return items, count, nil
}

func (s *orderServiceImpl) AddItem(ctx context.Context, actor *model.User, orderID, productID string, req *dto.OrderItemCreateRequest) (*model.OrderItem, error) {
	if _, err := s.ownedOrder(ctx, actor, orderID); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, apperr.Validation("item quantity must be positive")
	}
	if req.FinalPrice.IsNegative() {
		return nil, apperr.Validation("item price must be non-negative")
	}
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, storeErr(err, "product not found")
	}

	item := &model.OrderItem{
		OrderID:    orderID,
		ProductID:  &productID,
		Quantity:   req.Quantity,
		FinalPrice: req.FinalPrice.Round(2),
	}
	if err := s.orderRepo.AddItem(ctx, item); err != nil {
		return nil, apperr.Persistence("add order item", err)
	}
	return item, nil
}

func (s *orderServiceImpl) DeleteItem(ctx context.Context, actor *model.User, orderID, itemID string) error {
	if _, err := s.ownedOrder(ctx, actor, orderID); err != nil {
		return err
	}

	item, err := s.orderRepo.FindItem(ctx, itemID)
	if err != nil {
		return storeErr(err, "order item not found")
	}
	if item.OrderID != orderID {
		return apperr.NotFound("order item not found")
	}

	if err := s.orderRepo.DeleteItem(ctx, itemID); err != nil {
		return apperr.Persistence("delete order item", err)
	}
	return nil
}

func (s *orderServiceImpl) Addresses(ctx context.Context, actor *model.User, orderID string) ([]*model.Address, error) {
	order, err := s.ownedOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	addresses, err := s.orderRepo.Addresses(ctx, order)
	if err != nil {
		return nil, apperr.Persistence("load order addresses", err)
	}
	return addresses, nil
}

func (s *orderServiceImpl) ownedOrder(ctx context.Context, actor *model.User, id string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "order not found")
	}
	if !actor.IsSuperuser && (order.CustomerID == nil || *order.CustomerID != actor.ID) {
		return nil, apperr.PermissionDenied("not enough permissions")
	}
	return order, nil
}
