package dto

import "github.com/shopspring/decimal"

type Message struct {
	Message string `json:"message"`
}

// List is the {data, count} collection envelope every list endpoint returns.
type List[T any] struct {
	Data  []T   `json:"data"`
	Count int64 `json:"count"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type UserUpdateRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	FullName *string `json:"full_name"`
	IsActive *bool   `json:"is_active"`
}

type AddressRequest struct {
	Street     *string `json:"street"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
}

type CategoryCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ProductRequest struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	Currency          *string          `json:"currency"`
	Price             *decimal.Decimal `json:"price"`
	AvailableQuantity *int32           `json:"available_quantity"`
	Images            []string         `json:"images"`
}

type ReviewRequest struct {
	Rating  *float32 `json:"rating"`
	Content *string  `json:"content"`
}

type CartItemCreateRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type OrderCreateRequest struct {
	Currency string `json:"currency"`
}

type OrderUpdateRequest struct {
	Status            *string `json:"status"`
	BillingAddressID  *string `json:"billing_address_id"`
	ShippingAddressID *string `json:"shipping_address_id"`
	Stale             *bool   `json:"stale"`
}

type OrderItemCreateRequest struct {
	Quantity   int32           `json:"quantity"`
	FinalPrice decimal.Decimal `json:"final_price"`
}

type CheckoutRequest struct {
	CartID string `json:"cart_id"`
}

type CheckoutResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type WebhookResponse struct {
	Success bool `json:"success"`
}
