package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"stripe-shop-backend/internal/apperr"
	"stripe-shop-backend/internal/dto"
	"stripe-shop-backend/internal/model"
	"stripe-shop-backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Get(ctx context.Context, actor *model.User, id string) (*model.User, error)
	List(ctx context.Context, actor *model.User, offset, limit int) ([]*model.User, int64, error)
	Update(ctx context.Context, actor *model.User, id string, req *dto.UserUpdateRequest) (*model.User, error)
	Delete(ctx context.Context, actor *model.User, id string) error
}

type userServiceImpl struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
	}
}

func (s *userServiceImpl) Get(ctx context.Context, actor *model.User, id string) (*model.User, error) {
	if !actor.IsSuperuser && actor.ID != id {
		return nil, apperr.PermissionDenied("not enough permissions")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	return user, nil
}

func (s *userServiceImpl) List(ctx context.Context, actor *model.User, offset, limit int) ([]*model.User, int64, error) {
	if !actor.IsSuperuser {
		return nil, 0, apperr.PermissionDenied("not enough permissions")
	}

	users, count, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, apperr.Persistence("list users", err)
	}
	return users, count, nil
}

func (s *userServiceImpl) Update(ctx context.Context, actor *model.User, id string, req *dto.UserUpdateRequest) (*model.User, error) {
	if !actor.IsSuperuser && actor.ID != id {
		return nil, apperr.PermissionDenied("not enough permissions")
	}
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return nil, storeErr(err, "user not found")
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return nil, apperr.Validation("invalid email address")
		}
		fields["email"] = *req.Email
	}
	if req.FullName != nil {
		fields["full_name"] = *req.FullName
	}
	if req.Password != nil {
		if len(*req.Password) < minPasswordLength {
			return nil, apperr.Validation("password too short")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["hashed_password"] = string(hashed)
	}
	if req.IsActive != nil {
		if !actor.IsSuperuser {
			return nil, apperr.PermissionDenied("not enough permissions")
		}
		fields["is_active"] = *req.IsActive
	}

	if err := s.userRepo.Updates(ctx, id, fields); err != nil {
		return nil, apperr.Persistence("update user", err)
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "user not found")
	}
	return user, nil
}

func (s *userServiceImpl) Delete(ctx context.Context, actor *model.User, id string) error {
	if !actor.IsSuperuser && actor.ID != id {
		return apperr.PermissionDenied("not enough permissions")
	}
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		return storeErr(err, "user not found")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return apperr.Persistence("delete user", err)
	}
	return nil
}
