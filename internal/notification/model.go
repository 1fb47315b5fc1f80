package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeOrderPaid      Type = "ORDER_PAID"
	TypeOrderFailed    Type = "ORDER_PAYMENT_FAILED"
	TypeOrderRefunded  Type = "ORDER_REFUNDED"
	TypeOrderCancelled Type = "ORDER_CANCELLED"
	TypeOrderShipped   Type = "ORDER_SHIPPED"
	TypeDisputeOpened  Type = "DISPUTE_OPENED"
	TypeNewOrder       Type = "NEW_ORDER"
	TypeNewEnquiry     Type = "NEW_ENQUIRY"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	StaffID   uint      `json:"staffId"`
	Type      Type      `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	OrderID   *string   `json:"orderId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
