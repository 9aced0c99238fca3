package handler

import (
	"net/http"

	"stripe-shop-backend/internal/dto"
	"stripe-shop-backend/internal/model"
	"stripe-shop-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	offset, limit := pagination(c)
	users, count, err := h.userService.List(ctx, user, offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.List[*model.User]{Data: users, Count: count})
}

func (h *UserHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	found, err := h.userService.Get(ctx, user, c.Param("userID"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, found)
}

func (h *UserHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.UserUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	updated, err := h.userService.Update(ctx, user, c.Param("userID"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *UserHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	if err := h.userService.Delete(ctx, user, c.Param("userID")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.Message{Message: "user deleted successfully"})
}
