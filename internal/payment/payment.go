package payment

import (
	"context"
	"net/http"
)

// Gateway is the payment provider surface this system depends on.
type Gateway interface {
	// CreateOrder registers the purchase with the provider. correlationID is
	// carried as custom_id and echoed back in every webhook event.
	CreateOrder(ctx context.Context, correlationID string, amountCents int64, currency string) (*ProviderOrder, error)

	// CaptureOrder captures funds after buyer approval.
	CaptureOrder(ctx context.Context, providerOrderID string) (*CaptureResult, error)

	// RefundCapture refunds a completed capture, fully when amountCents is 0.
	RefundCapture(ctx context.Context, captureID string, amountCents int64, currency string) error

	// VerifyWebhookSignature performs full transmission-signature verification
	// of a webhook delivery before the payload may be trusted.
	VerifyWebhookSignature(ctx context.Context, r *http.Request, body []byte) error
}
