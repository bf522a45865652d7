package models

import "github.com/shopspring/decimal"

// OrderStatus represents the current position of an order in its lifecycle.
type OrderStatus string

const (
	OrderStatusPendingAdminApproval   OrderStatus = "pending_admin_approval"
	OrderStatusApprovedPendingPayment OrderStatus = "admin_approved_pending_payment"
	OrderStatusPaymentProcessing      OrderStatus = "payment_received_processing"
	OrderStatusShipped                OrderStatus = "shipped"
	OrderStatusDelivered              OrderStatus = "delivered"
	OrderStatusCompleted              OrderStatus = "completed"
	OrderStatusCancelledByUser        OrderStatus = "cancelled_by_user"
	OrderStatusRejectedByAdmin        OrderStatus = "rejected_by_admin"
)

// AllOrderStatuses lists every defined status, in lifecycle order.
var AllOrderStatuses = []OrderStatus{
	OrderStatusPendingAdminApproval,
	OrderStatusApprovedPendingPayment,
	OrderStatusPaymentProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelledByUser,
	OrderStatusRejectedByAdmin,
}

// Valid reports whether s is one of the defined statuses.
func (s OrderStatus) Valid() bool {
	for _, v := range AllOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// Order represents a purchase transaction with a one-to-many relation to OrderItem.
type Order struct {
	ID            int64           `db:"id" json:"id"`
	UserID        int64           `db:"user_id" json:"user_id"`
	Status        OrderStatus     `db:"status" json:"status"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	// Delivery fields and the final total are set only once delivery is
	// arranged. They are nullable in DB; use pointers to distinguish null vs zero.
	DeliveryMethod   *string          `db:"delivery_method" json:"delivery_method,omitempty"`
	DeliveryAddress  *string          `db:"delivery_address" json:"delivery_address,omitempty"`
	DeliveryCost     *decimal.Decimal `db:"delivery_cost" json:"delivery_cost,omitempty"`
	FinalTotalAmount *decimal.Decimal `db:"final_total_amount" json:"final_total_amount,omitempty"`
	// AdminNotes holds the latest admin annotation. A new note replaces the
	// previous one wholesale; history is not kept.
	AdminNotes *string     `db:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt  string      `db:"created_at" json:"created_at"`
	UpdatedAt  string      `db:"updated_at" json:"updated_at"`
	Items      []OrderItem `db:"-" json:"items,omitempty"`
}

// OrderItem is a line of an order, immutable once the order is placed.
type OrderItem struct {
	ID           int64           `db:"id" json:"id"`
	OrderID      int64           `db:"order_id" json:"order_id"`
	ProductID    int64           `db:"product_id" json:"product_id"`
	LocationID   int64           `db:"location_id" json:"location_id"`
	Quantity     int             `db:"quantity" json:"quantity"`
	PriceAtOrder decimal.Decimal `db:"price_at_order" json:"price_at_order"`
}
