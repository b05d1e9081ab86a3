package order

import "time"

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the four known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses admit no further cancellation or deletion by users.
func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Order struct {
	ID              uint           `json:"id"`
	UserID          uint           `json:"userId"`
	TotalAmount     float64        `json:"total_amount"`
	Status          OrderStatus    `json:"status"`
	ShippingAddress *string        `json:"shipping_address"`
	PaymentMethod   *string        `json:"payment_method"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	Details         []*OrderDetail `json:"order_details,omitempty"`
	User            *Customer      `json:"user,omitempty"`
}

// OrderDetail freezes quantity and unit price at order time. Price and
// Subtotal never change after creation; Product carries the current catalog
// row for display only.
type OrderDetail struct {
	ID        uint             `json:"id"`
	OrderID   uint             `json:"orderId"`
	ProductID uint             `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     float64          `json:"price"`
	Subtotal  float64          `json:"subtotal"`
	Product   *ProductSnapshot `json:"product,omitempty"`
}

type ProductSnapshot struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image *string `json:"image"`
}

// Customer is the subset of user fields embedded in admin order listings.
type Customer struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CartItem is one line of the client-assembled cart.
type CartItem struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type CreateInput struct {
	Items           []CartItem `json:"items"`
	ShippingAddress *string    `json:"shipping_address"`
	PaymentMethod   *string    `json:"payment_method"`
}

// UpdateInput carries the edit-in-place fields; nil leaves a field unchanged.
// Status is honored for admins only.
type UpdateInput struct {
	ShippingAddress *string      `json:"shipping_address"`
	PaymentMethod   *string      `json:"payment_method"`
	Status          *OrderStatus `json:"status"`
}
