package handler

import (
	"net/http"

	"stripe-shop-backend/internal/dto"
	"stripe-shop-backend/internal/model"
	"stripe-shop-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	addressService service.AddressService
}

func NewAddressHandler(addressService service.AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
	}
}

func (h *AddressHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	offset, limit := pagination(c)
	addresses, count, err := h.addressService.List(ctx, user, offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.List[*model.Address]{Data: addresses, Count: count})
}

func (h *AddressHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	address, err := h.addressService.Get(ctx, user, c.Param("addressID"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, address)
}

func (h *AddressHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.AddressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	address, err := h.addressService.Create(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, address)
}

func (h *AddressHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.AddressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	address, err := h.addressService.Update(ctx, user, c.Param("addressID"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, address)
}

func (h *AddressHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	if err := h.addressService.Delete(ctx, user, c.Param("addressID")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.Message{Message: "address deleted successfully"})
}
