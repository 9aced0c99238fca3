package handler

import (
	"net/http"

	"stripe-shop-backend/internal/dto"
	"stripe-shop-backend/internal/model"
	"stripe-shop-backend/internal/service"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// -------- products --------

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	offset, limit := pagination(c)
	products, count, err := h.catalogService.ListProducts(ctx, offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.List[*model.Product]{Data: products, Count: count})
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	product, err := h.catalogService.GetProduct(ctx, c.Param("productID"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	product, err := h.catalogService.CreateProduct(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	product, err := h.catalogService.UpdateProduct(ctx, user, c.Param("productID"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	if err := h.catalogService.DeleteProduct(ctx, user, c.Param("productID")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.Message{Message: "product deleted successfully"})
}

// -------- categories --------

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	categories, count, err := h.catalogService.ListCategories(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.List[*model.Category]{Data: categories, Count: count})
}

func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.CategoryCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	category, err := h.catalogService.CreateCategory(ctx, user, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) SetProductCategories(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req struct {
		CategoryIDs []string `json:"category_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	product, err := h.catalogService.SetProductCategories(ctx, user, c.Param("productID"), req.CategoryIDs)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, product)
}

// -------- reviews --------

func (h *CatalogHandler) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()

	reviews, count, err := h.catalogService.ListReviews(ctx, c.Param("productID"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.List[*model.Review]{Data: reviews, Count: count})
}

func (h *CatalogHandler) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	review, err := h.catalogService.CreateReview(ctx, user, c.Param("productID"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, review)
}

func (h *CatalogHandler) UpdateReview(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	var req dto.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	review, err := h.catalogService.UpdateReview(ctx, user, c.Param("productID"), c.Param("reviewID"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, review)
}

func (h *CatalogHandler) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := actor(c)
	if err != nil {
		return err
	}

	if err := h.catalogService.DeleteReview(ctx, user, c.Param("productID"), c.Param("reviewID")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.Message{Message: "review deleted successfully"})
}
