package handler

import (
	"net/http"

	"stripe-shop-backend/internal/dto"
	"stripe-shop-backend/internal/model"
	"stripe-shop-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	offset, limit := pagination(c)
	orders, count, err := h.orderService.List(ctx, user, offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.List[*model.Order]{Data: orders, Count: count})
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	order, err := h.orderService.Get(ctx, user, c.Param("orderID"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.orderService.Create(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.OrderUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.orderService.Update(ctx, user, c.Param("orderID"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	if err := h.orderService.Delete(ctx, user, c.Param("orderID")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.Message{Message: "order deleted successfully"})
}

func (h *OrderHandler) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	items, count, err := h.orderService.ListItems(ctx, user, c.Param("orderID"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.List[*model.OrderItem]{Data: items, Count: count})
}

func (h *OrderHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.OrderItemCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	item, err := h.orderService.AddItem(ctx, user, c.Param("orderID"), c.Param("productID"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, item)
}

func (h *OrderHandler) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	if err := h.orderService.DeleteItem(ctx, user, c.Param("orderID"), c.Param("itemID")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.Message{Message: "order item deleted successfully"})
}

func (h *OrderHandler) Addresses(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	addresses, err := h.orderService.Addresses(ctx, user, c.Param("orderID"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.List[*model.Address]{Data: addresses, Count: int64(len(addresses))})
}
