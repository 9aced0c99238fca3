package handler

import (
	"net/http"

	"stripe-shop-backend/internal/dto"
	"stripe-shop-backend/internal/model"
	"stripe-shop-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	offset, limit := pagination(c)
	carts, count, err := h.cartService.List(ctx, user, offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.List[*model.Cart]{Data: carts, Count: count})
}

func (h *CartHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	cart, err := h.cartService.Get(ctx, user, c.Param("cartID"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	cart, err := h.cartService.Create(ctx, user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	if err := h.cartService.Delete(ctx, user, c.Param("cartID")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.Message{Message: "cart deleted successfully"})
}

func (h *CartHandler) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	items, count, err := h.cartService.ListItems(ctx, user, c.Param("cartID"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.List[*model.CartItem]{Data: items, Count: count})
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.CartItemCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.ProductID == "" {
		req.ProductID = c.Param("productID")
	}

	item, err := h.cartService.AddItem(ctx, user, c.Param("cartID"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	if err := h.cartService.DeleteItem(ctx, user, c.Param("cartID"), c.Param("itemID")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.Message{Message: "cart item deleted successfully"})
}
