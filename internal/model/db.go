package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaxProductImages caps the number of image references stored per product.
const MaxProductImages = 5

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusStale      OrderStatus = "stale"
)

// CanTransitionTo enforces the one-directional happy path
// pending -> processing -> shipped -> delivered, with cancelled and stale
// absorbing from pending or processing.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing || next == OrderStatusCancelled || next == OrderStatusStale
	case OrderStatusProcessing:
		return next == OrderStatusShipped || next == OrderStatusCancelled || next == OrderStatusStale
	case OrderStatusShipped:
		return next == OrderStatusDelivered
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
)

type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	Base
	Email          string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	HashedPassword string `gorm:"size:128;not null" json:"-"`
	FullName       string `gorm:"size:255" json:"full_name"`
	IsActive       bool   `gorm:"not null;default:true" json:"is_active"`
	IsSuperuser    bool   `gorm:"not null;default:false" json:"is_superuser"`
}

type Address struct {
	Base
	Street     string `gorm:"size:255;not null" json:"street"`
	City       string `gorm:"size:255;not null" json:"city"`
	State      string `gorm:"size:255;not null" json:"state"`
	PostalCode string `gorm:"size:32;not null" json:"postal_code"`
	// ISO 3166-1 alpha-2
	Country    string `gorm:"size:2;not null" json:"country"`
	CustomerID string `gorm:"size:36;index;not null" json:"customer_id"`
}

type Category struct {
	Base
	Name        string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`

	Products []Product `gorm:"many2many:product_categories" json:"-"`
}

type Product struct {
	Base
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"size:255" json:"description"`
	Currency    string          `gorm:"size:8;not null;default:'USD'" json:"currency"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	// Stock on hand; webhook-created products start at zero.
	AvailableQuantity int32          `gorm:"not null;default:0" json:"available_quantity"`
	Images            datatypes.JSON `json:"images"`
	// Stripe's identifier for this product. The stable join key webhook
	// reconciliation uses, since Stripe never learns the internal id.
	StripeID *string `gorm:"size:128;uniqueIndex" json:"stripe_id"`

	Categories []Category `gorm:"many2many:product_categories" json:"categories,omitempty"`
}

type Cart struct {
	Base
	CustomerID string `gorm:"size:36;index;not null" json:"customer_id"`

	CartItems []CartItem `json:"cart_items,omitempty"`
}

type CartItem struct {
	Base
	CartID    string  `gorm:"size:36;index;not null" json:"cart_id"`
	ProductID *string `gorm:"size:36;index" json:"product_id"`
	Quantity  int32   `gorm:"not null;default:1" json:"quantity"`
}

type Order struct {
	Base
	Status        OrderStatus     `gorm:"size:32;index;not null;default:'pending'" json:"status"`
	Currency      string          `gorm:"size:8;not null;default:'USD'" json:"currency"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(30,2);not null" json:"total_price"`
	PaymentMethod PaymentMethod   `gorm:"size:32;not null;default:'stripe'" json:"payment_method"`
	// Stripe references, linked by the checkout initiator and the
	// payment_intent.created reconciliation handler respectively.
	StripeCheckoutSession *string `gorm:"size:128" json:"stripe_checkout_session"`
	StripePaymentIntent   *string `gorm:"size:128" json:"stripe_payment_intent"`
	Stale                 bool    `gorm:"not null;default:false" json:"stale"`

	// Orders survive customer deletion (set null).
	CustomerID        *string `gorm:"size:36;index" json:"customer_id"`
	BillingAddressID  *string `gorm:"size:36" json:"billing_address_id"`
	ShippingAddressID *string `gorm:"size:36" json:"shipping_address_id"`

	Items []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	Base
	OrderID    string          `gorm:"size:36;index;not null" json:"order_id"`
	ProductID  *string         `gorm:"size:36;index" json:"product_id"`
	Quantity   int32           `gorm:"not null;default:1" json:"quantity"`
	FinalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"final_price"`
}

type Review struct {
	Base
	Rating     float32 `gorm:"not null" json:"rating"`
	Content    string  `gorm:"size:255" json:"content"`
	ProductID  string  `gorm:"size:36;index;not null" json:"product_id"`
	CustomerID *string `gorm:"size:36;index" json:"customer_id"`
}

// WebhookEvent records processed Stripe deliveries so retried or duplicated
// deliveries become no-ops.
type WebhookEvent struct {
	EventID     string    `gorm:"primaryKey;size:128;not null"`
	EventType   string    `gorm:"size:64;index"`
	ProcessedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}
