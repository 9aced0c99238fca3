package server

import (
	"errors"
	"log/slog"
	"net/http"

	"stripe-shop-backend/internal/apperr"
	"stripe-shop-backend/internal/handler"
	appmiddleware "stripe-shop-backend/internal/middleware"
	"stripe-shop-backend/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo           *echo.Echo
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	catalogHandler *handler.CatalogHandler
	cartHandler    *handler.CartHandler
	orderHandler   *handler.OrderHandler
	addressHandler *handler.AddressHandler
	paymentHandler *handler.PaymentHandler
	authService    service.AuthService
}

func NewServer(
	authService service.AuthService,
	userService service.UserService,
	catalogService service.CatalogService,
	cartService service.CartService,
	orderService service.OrderService,
	addressService service.AddressService,
	checkoutService service.CheckoutService,
	webhookService service.WebhookService,
	logger *slog.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:           e,
		authHandler:    handler.NewAuthHandler(authService),
		userHandler:    handler.NewUserHandler(userService),
		catalogHandler: handler.NewCatalogHandler(catalogService),
		cartHandler:    handler.NewCartHandler(cartService),
		orderHandler:   handler.NewOrderHandler(orderService),
		addressHandler: handler.NewAddressHandler(addressService),
		paymentHandler: handler.NewPaymentHandler(checkoutService, webhookService),
		authService:    authService,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")
	auth := appmiddleware.Auth(s.authService)

	api.GET("/utils/health-check", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// -------- auth --------
	api.POST("/login/access-token", s.authHandler.Login)
	api.POST("/login/test-token", s.authHandler.Me, auth)
	api.POST("/users/signup", s.authHandler.Register)
	api.GET("/users/me", s.authHandler.Me, auth)

	// -------- users --------
	users := api.Group("/users", auth)
	users.GET("", s.userHandler.List)
	users.POST("", s.authHandler.Register, appmiddleware.RequireSuperuser())
	users.GET("/:userID", s.userHandler.Get)
	users.PATCH("/:userID", s.userHandler.Update)
	users.DELETE("/:userID", s.userHandler.Delete)

	// -------- addresses --------
	addresses := api.Group("/addresses", auth)
	addresses.GET("", s.addressHandler.List)
	addresses.POST("", s.addressHandler.Create)
	addresses.GET("/:addressID", s.addressHandler.Get)
	addresses.PATCH("/:addressID", s.addressHandler.Update)
	addresses.DELETE("/:addressID", s.addressHandler.Delete)

	// -------- products / categories / reviews --------
	api.GET("/products", s.catalogHandler.ListProducts)
	api.GET("/products/:productID", s.catalogHandler.GetProduct)
	api.POST("/products", s.catalogHandler.CreateProduct, auth)
	api.PATCH("/products/:productID", s.catalogHandler.UpdateProduct, auth)
	api.DELETE("/products/:productID", s.catalogHandler.DeleteProduct, auth)
	api.PUT("/products/:productID/categories", s.catalogHandler.SetProductCategories, auth)

	api.GET("/products/categories", s.catalogHandler.ListCategories)
	api.POST("/products/categories", s.catalogHandler.CreateCategory, auth)

	api.GET("/products/:productID/reviews", s.catalogHandler.ListReviews)
	api.POST("/products/:productID/reviews", s.catalogHandler.CreateReview, auth)
	api.PATCH("/products/:productID/reviews/:reviewID", s.catalogHandler.UpdateReview, auth)
	api.DELETE("/products/:productID/reviews/:reviewID", s.catalogHandler.DeleteReview, auth)

	// -------- carts --------
	carts := api.Group("/carts", auth)
	carts.GET("", s.cartHandler.List)
	carts.POST("", s.cartHandler.Create)
	carts.GET("/:cartID", s.cartHandler.Get)
	carts.DELETE("/:cartID", s.cartHandler.Delete)
	carts.GET("/:cartID/items", s.cartHandler.ListItems)
	carts.POST("/:cartID/items", s.cartHandler.AddItem)
	carts.DELETE("/:cartID/items/:itemID", s.cartHandler.DeleteItem)

	// -------- orders --------
	orders := api.Group("/orders", auth)
	orders.GET("", s.orderHandler.List)
	orders.POST("", s.orderHandler.Create)
	orders.GET("/:orderID", s.orderHandler.Get)
	orders.PATCH("/:orderID", s.orderHandler.Update)
	orders.DELETE("/:orderID", s.orderHandler.Delete)
	orders.GET("/:orderID/items", s.orderHandler.ListItems)
	orders.POST("/:orderID/items/:productID", s.orderHandler.AddItem)
	orders.DELETE("/:orderID/items/:itemID", s.orderHandler.DeleteItem)
	orders.GET("/:orderID/addresses", s.orderHandler.Addresses)

	// -------- stripe --------
	api.POST("/create-checkout-session", s.paymentHandler.CreateCheckoutSession, auth)
	api.POST("/webhook", s.paymentHandler.StripeWebhook)
	api.POST("/utils/webhook", s.paymentHandler.StripeWebhook)
}

// errorHandler translates service errors into HTTP responses. Provider
// lookups that map to NotFound keep their 404; everything unclassified is a
// 500 with a generic body.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"

		var httpErr *echo.HTTPError
		var appErr *apperr.Error
		switch {
		case errors.As(err, &httpErr):
			status = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			}
		case errors.As(err, &appErr):
			message = appErr.Message
			switch appErr.Kind {
			case apperr.KindValidation:
				status = http.StatusBadRequest
			case apperr.KindNotFound:
				status = http.StatusNotFound
			case apperr.KindPermissionDenied:
				status = http.StatusForbidden
			case apperr.KindProvider:
				status = http.StatusBadGateway
			default:
				status = http.StatusInternalServerError
				message = "internal server error"
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "method", c.Request().Method, "uri", c.Request().RequestURI, "err", err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, map[string]string{"detail": message})
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
