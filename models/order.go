package models

import "time"

// Order statuses. The checkout flow only ever writes completed;
// pending and failed are reserved for reconciliation tooling.
const (
	OrderStatusCompleted = "completed"
	OrderStatusPending   = "pending"
	OrderStatusFailed    = "failed"
)

// OrderLine is a cart line snapshotted at order time, so later catalog
// edits cannot alter historical orders.
type OrderLine struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Title     string `json:"title" bson:"title"`
	Price     int64  `json:"price" bson:"price"`
	Quantity  int    `json:"quantity" bson:"quantity"`
	Image     string `json:"image,omitempty" bson:"image,omitempty"`
}

// OrderCustomer is the contact and address snapshot copied from the
// checkout draft when the order is written.
type OrderCustomer struct {
	Email      string `json:"email" bson:"email"`
	FirstName  string `json:"first_name" bson:"first_name"`
	LastName   string `json:"last_name" bson:"last_name"`
	Phone      string `json:"phone" bson:"phone"`
	Street     string `json:"street" bson:"street"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state" bson:"state"`
	PostalCode string `json:"postal_code" bson:"postal_code"`
	Country    string `json:"country" bson:"country"`
}

// PaymentRecord captures the gateway's view of a completed payment.
type PaymentRecord struct {
	PaymentID      string `json:"payment_id" bson:"payment_id"`
	GatewayOrderID string `json:"gateway_order_id,omitempty" bson:"gateway_order_id,omitempty"`
	Signature      string `json:"signature,omitempty" bson:"signature,omitempty"`
	Method         string `json:"method" bson:"method"`
	Currency       string `json:"currency" bson:"currency"`
}

// Order is immutable once written.
type Order struct {
	OrderNumber string        `json:"order_number" bson:"order_number"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	Status      string        `json:"status" bson:"status"`
	Total       int64         `json:"total" bson:"total"`
	Items       []OrderLine   `json:"items" bson:"items"`
	Customer    OrderCustomer `json:"customer" bson:"customer"`
	Payment     PaymentRecord `json:"payment" bson:"payment"`
}

// OrderHistory is the per-customer append-only order record, keyed by
// the customer's email.
type OrderHistory struct {
	Email       string    `json:"email" bson:"_id"`
	Orders      []Order   `json:"orders" bson:"orders"`
	TotalOrders int       `json:"total_orders" bson:"total_orders"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
