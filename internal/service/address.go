package service

import (
	"context"
	"time"

	"stripe-shop-backend/internal/apperr"
	"stripe-shop-backend/internal/dto"
	"stripe-shop-backend/internal/model"
	"stripe-shop-backend/internal/repository"
)

type AddressService interface {
	List(ctx context.Context, actor *model.User, offset, limit int) ([]*model.Address, int64, error)
	Get(ctx context.Context, actor *model.User, id string) (*model.Address, error)
	Create(ctx context.Context, actor *model.User, req *dto.AddressRequest) (*model.Address, error)
	Update(ctx context.Context, actor *model.User, id string, req *dto.AddressRequest) (*model.Address, error)
	Delete(ctx context.Context, actor *model.User, id string) error
}

type addressServiceImpl struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressServiceImpl{
		addressRepo: addressRepo,
	}
}

func (s *addressServiceImpl) List(ctx context.Context, actor *model.User, offset, limit int) ([]*model.Address, int64, error) {
	addresses, count, err := s.addressRepo.List(ctx, actor.ID, offset, limit)
	if err != nil {
		return nil, 0, apperr.Persistence("list addresses", err)
	}
	return addresses, count, nil
}

func (s *addressServiceImpl) Get(ctx context.Context, actor *model.User, id string) (*model.Address, error) {
	return s.ownedAddress(ctx, actor, id)
}

func (s *addressServiceImpl) Create(ctx context.Context, actor *model.User, req *dto.AddressRequest) (*model.Address, error) {
	for _, field := range []*string{req.Street, req.City, req.State, req.PostalCode, req.Country} {
		if field == nil || *field == "" {
			return nil, apperr.Validation("street, city, state, postal_code and country are required")
		}
	}
	if len(*req.Country) != 2 {
		return nil, apperr.Validation("country must be a two-letter code")
	}

	address := &model.Address{
		Street:     *req.Street,
		City:       *req.City,
		State:      *req.State,
		PostalCode: *req.PostalCode,
		Country:    *req.Country,
		CustomerID: actor.ID,
	}
	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, apperr.Persistence("create address", err)
	}
	return address, nil
}

func (s *addressServiceImpl) Update(ctx context.Context, actor *model.User, id string, req *dto.AddressRequest) (*model.Address, error) {
	if _, err := s.ownedAddress(ctx, actor, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if req.Street != nil {
		fields["street"] = *req.Street
	}
	if req.City != nil {
		fields["city"] = *req.City
	}
	if req.State != nil {
		fields["state"] = *req.State
	}
	if req.PostalCode != nil {
		fields["postal_code"] = *req.PostalCode
	}
	if req.Country != nil {
		if len(*req.Country) != 2 {
			return nil, apperr.Validation("country must be a two-letter code")
		}
		fields["country"] = *req.Country
	}

	if err := s.addressRepo.Updates(ctx, id, fields); err != nil {
		return nil, storeErr(err, "address not found")
	}

	address, err := s.addressRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "address not found")
	}
	return address, nil
}

func (s *addressServiceImpl) Delete(ctx context.Context, actor *model.User, id string) error {
	if _, err := s.ownedAddress(ctx, actor, id); err != nil {
		return err
	}
	if err := s.addressRepo.Delete(ctx, id); err != nil {
		return apperr.Persistence("delete address", err)
	}
	return nil
}

func (s *addressServiceImpl) ownedAddress(ctx context.Context, actor *model.User, id string) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "address not found")
	}
	if !actor.IsSuperuser && address.CustomerID != actor.ID {
		return nil, apperr.PermissionDenied("not enough permissions")
	}
	return address, nil
}
