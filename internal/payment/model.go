package payment

import (
	"encoding/json"
	"time"
)

type Payment struct {
	ID            uint
	OrderID       string
	Provider      string
	ProviderRef   string
	TransactionID string
	Amount        int64
	Currency      string
	Status        string
	ApproveURL    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProviderOrder is the provider-side order created ahead of buyer approval.
type ProviderOrder struct {
	ProviderOrderID string
	Status          string
	ApproveURL      string
}

// CaptureResult is the outcome of capturing an approved provider order.
type CaptureResult struct {
	ProviderOrderID string
	CaptureID       string
	Status          string
	AmountCents     int64
	Currency        string
}

// Amount mirrors PayPal's money shape ("value" is a decimal string).
type Amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// Event is the provider-signed webhook envelope.
type Event struct {
	ID           string   `json:"id"`
	EventType    string   `json:"event_type"`
	CreateTime   string   `json:"create_time"`
	ResourceType string   `json:"resource_type"`
	Resource     Resource `json:"resource"`
}

// Resource is the subset of PayPal webhook resources this system consumes.
type Resource struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	CustomID string  `json:"custom_id"`
	Amount   *Amount `json:"amount,omitempty"`

	StatusDetails *struct {
		Reason string `json:"reason"`
	} `json:"status_details,omitempty"`

	SupplementaryData *struct {
		RelatedIDs struct {
			OrderID string `json:"order_id"`
		} `json:"related_ids"`
	} `json:"supplementary_data,omitempty"`

	// Dispute resources correlate through the disputed transactions.
	DisputeID            string `json:"dispute_id"`
	DisputedTransactions []struct {
		SellerTransactionID string `json:"seller_transaction_id"`
		CustomID            string `json:"custom_id"`
	} `json:"disputed_transactions,omitempty"`
}

// CorrelationID returns the opaque custom_id carried through the original
// payment request, falling back to the disputed-transaction correlation for
// dispute events. Empty means the event cannot be matched to a local order.
func (e *Event) CorrelationID() string {
	if e.Resource.CustomID != "" {
		return e.Resource.CustomID
	}
	for _, dt := range e.Resource.DisputedTransactions {
		if dt.CustomID != "" {
			return dt.CustomID
		}
	}
	return ""
}

// ProviderOrderID returns the provider-side order id carried in
// supplementary_data. Capture events sometimes omit custom_id; the provider
// order id lets such events be matched against the stored paypal_order_id.
func (e *Event) ProviderOrderID() string {
	if e.Resource.SupplementaryData != nil {
		return e.Resource.SupplementaryData.RelatedIDs.OrderID
	}
	return ""
}

// FailureReason extracts the denial reason, if the provider sent one.
func (e *Event) FailureReason() string {
	if e.Resource.StatusDetails != nil && e.Resource.StatusDetails.Reason != "" {
		return e.Resource.StatusDetails.Reason
	}
	return "payment declined by provider"
}

// WebhookRecord is the durable dedupe/audit row for one delivered event.
type WebhookRecord struct {
	ID             int64
	Provider       string
	EventID        string
	EventType      string
	CorrelationID  string
	Payload        json.RawMessage
	SignatureValid bool
	Status         string
	FailureReason  *string
	ReceivedAt     time.Time
	ProcessedAt    *time.Time
}
