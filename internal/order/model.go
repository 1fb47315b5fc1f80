package order

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

type ShippingStatus string

const (
	ShippingNotShipped ShippingStatus = "not_shipped"
	ShippingPreparing  ShippingStatus = "preparing"
	ShippingShipped    ShippingStatus = "shipped"
	ShippingInTransit  ShippingStatus = "in_transit"
	ShippingDelivered  ShippingStatus = "delivered"
)

type DisputeState string

const (
	DisputeNone     DisputeState = "none"
	DisputeOpen     DisputeState = "open"
	DisputeResolved DisputeState = "resolved"
)

// Order is a single customer purchase. Money fields are cents.
type Order struct {
	ID          uuid.UUID  `json:"id"`
	OrderNumber string     `json:"orderNumber"`
	CustomerID  *uuid.UUID `json:"customerId,omitempty"`

	// Snapshot of the customer at checkout time.
	CustomerEmail string `json:"customerEmail"`
	CustomerName  string `json:"customerName"`

	Status         Status         `json:"status"`
	PaymentStatus  PaymentStatus  `json:"paymentStatus"`
	ShippingStatus ShippingStatus `json:"shippingStatus"`

	Subtotal     int64 `json:"subtotal"`
	ShippingCost int64 `json:"shippingCost"`
	TaxAmount    int64 `json:"taxAmount"`
	Total        int64 `json:"total"`

	PayPalOrderID        *string    `json:"paypalOrderId,omitempty"`
	PayPalTransactionID  *string    `json:"paypalTransactionId,omitempty"`
	PaidAt               *time.Time `json:"paidAt,omitempty"`
	RefundedAt           *time.Time `json:"refundedAt,omitempty"`
	CancelledAt          *time.Time `json:"cancelledAt,omitempty"`
	PaymentFailureReason *string    `json:"paymentFailureReason,omitempty"`

	TrackingNumber *string `json:"trackingNumber,omitempty"`
	LabelURL       *string `json:"labelUrl,omitempty"`
	BoxSize        *string `json:"boxSize,omitempty"`
	BoxCost        int64   `json:"boxCost"`

	DisputeState DisputeState `json:"disputeState"`
	DisputeID    *string      `json:"disputeId,omitempty"`

	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Items     []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID          uint      `json:"id"`
	OrderID     uuid.UUID `json:"orderId"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
	SKU         string    `json:"sku"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unitPrice"`
	Subtotal    int64     `json:"subtotal"`
}

// StatusRecord is one entry in an order's status audit trail.
type StatusRecord struct {
	ID        uint      `json:"id"`
	OrderID   uuid.UUID `json:"orderId"`
	Field     string    `json:"field"`
	FromValue string    `json:"from"`
	ToValue   string    `json:"to"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"createdAt"`
}

type FilterInput struct {
	Search        *string
	Status        *Status
	PaymentStatus *PaymentStatus
	CustomerID    *uuid.UUID
	DateFrom      *time.Time
	DateTo        *time.Time
}

type SortField string

const (
	SortFieldCreatedAt SortField = "created_at"
	SortFieldTotal     SortField = "total"
)

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

type SortInput struct {
	Field     SortField
	Direction SortDirection
}
