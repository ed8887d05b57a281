package domain

import "time"

// OrderStatus mirrors the payment gateway's order lifecycle.
type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "CREATED"
	OrderStatusPaid    OrderStatus = "PAID"
	OrderStatusClosed  OrderStatus = "CLOSED"
)

// BillingOrder is a locally stored order awaiting reconciliation against the
// payment gateway. Synced flips to true once the gateway has reported a
// definitive payment status.
type BillingOrder struct {
	ID            int64
	No            string
	PlanID        int64
	OrderStatus   *OrderStatus
	PaymentStatus *string
	IsExpired     *bool
	Synced        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
