package mailer

import "fmt"

const (
	TemplateOrderConfirmation = "order_confirmation"
	TemplateRefund            = "refund_confirmation"
	TemplateShippingUpdate    = "shipping_update"
	TemplatePaymentFailed     = "payment_failed"
	TemplateDisputeAlert      = "dispute_alert"
	TemplatePasswordReset     = "password_reset"
)

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func OrderConfirmation(to, orderNumber string, totalCents int64) Message {
	return Message{
		To:       to,
		Template: TemplateOrderConfirmation,
		Subject:  fmt.Sprintf("Order %s confirmed", orderNumber),
		HTML: fmt.Sprintf(
			"<p>Thanks for your order!</p><p>Order <strong>%s</strong> for %s has been paid and is being processed.</p>",
			orderNumber, formatCents(totalCents),
		),
	}
}

func RefundConfirmation(to, orderNumber string, totalCents int64) Message {
	return Message{
		To:       to,
		Template: TemplateRefund,
		Subject:  fmt.Sprintf("Refund issued for order %s", orderNumber),
		HTML: fmt.Sprintf(
			"<p>A refund of %s has been issued for order <strong>%s</strong>. Funds usually arrive within 5 business days.</p>",
			formatCents(totalCents), orderNumber,
		),
	}
}

func ShippingUpdate(to, orderNumber, trackingNumber string) Message {
	return Message{
		To:       to,
		Template: TemplateShippingUpdate,
		Subject:  fmt.Sprintf("Order %s has shipped", orderNumber),
		HTML: fmt.Sprintf(
			"<p>Order <strong>%s</strong> is on its way.</p><p>Tracking number: <strong>%s</strong></p>",
			orderNumber, trackingNumber,
		),
	}
}

func PaymentFailed(to, orderNumber, reason string) Message {
	return Message{
		To:       to,
		Template: TemplatePaymentFailed,
		Subject:  fmt.Sprintf("Payment problem with order %s", orderNumber),
		HTML: fmt.Sprintf(
			"<p>We could not process payment for order <strong>%s</strong>: %s.</p><p>Please retry or contact support.</p>",
			orderNumber, reason,
		),
	}
}

func DisputeAlert(to, orderNumber, disputeID string) Message {
	return Message{
		To:       to,
		Template: TemplateDisputeAlert,
		Subject:  fmt.Sprintf("Dispute opened on order %s", orderNumber),
		HTML: fmt.Sprintf(
			"<p>PayPal dispute <strong>%s</strong> was opened against order <strong>%s</strong>. Review it in the PayPal resolution center.</p>",
			disputeID, orderNumber,
		),
	}
}

func PasswordReset(to, resetURL string) Message {
	return Message{
		To:       to,
		Template: TemplatePasswordReset,
		Subject:  "Reset your password",
		HTML: fmt.Sprintf(
			"<p>A password reset was requested for your account.</p><p><a href=\"%s\">Reset password</a> (link expires in 1 hour). If you did not request this, ignore this email.</p>",
			resetURL,
		),
	}
}
