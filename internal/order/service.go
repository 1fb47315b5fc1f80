package order

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"doorparts-be/internal/logger"
	"doorparts-be/internal/mailer"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// trackingRe is the carrier's tracking number format: exactly 12 digits.
var trackingRe = regexp.MustCompile(`^\d{12}$`)

// Free shipping above $200, otherwise a flat rate.
const (
	flatShippingCents     = 995
	freeShippingThreshold = 20000
)

// Event names pushed to the admin notification fan-out.
const (
	EventOrderPaid      = "ORDER_PAID"
	EventPaymentFailed  = "ORDER_PAYMENT_FAILED"
	EventOrderRefunded  = "ORDER_REFUNDED"
	EventOrderCancelled = "ORDER_CANCELLED"
	EventOrderShipped   = "ORDER_SHIPPED"
	EventDisputeOpened  = "DISPUTE_OPENED"
	EventNewOrder       = "NEW_ORDER"
)

// Notifier delivers an order event to connected admin sessions. Delivery is
// best-effort; implementations must not block on slow consumers.
type Notifier interface {
	OrderEvent(ctx context.Context, event, title, body string, orderID uuid.UUID)
}

// CatalogItem is the product snapshot captured onto an order line.
type CatalogItem struct {
	Name      string
	SKU       string
	UnitPrice int64
}

// Catalog resolves products at checkout time.
type Catalog interface {
	ItemForOrder(ctx context.Context, productID uuid.UUID) (*CatalogItem, error)
}

// Directory upserts the customer record behind a checkout. Optional; a nil
// directory leaves orders keyed by email only.
type Directory interface {
	EnsureCustomer(ctx context.Context, email, name string) (uuid.UUID, error)
}

type CheckoutItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type CheckoutInput struct {
	CustomerID    *uuid.UUID
	CustomerEmail string
	CustomerName  string
	Items         []CheckoutItemInput
}

type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, filter *FilterInput, sort *SortInput, limit, offset int32) ([]*Order, int64, error)
	StatusHistory(ctx context.Context, id uuid.UUID) ([]*StatusRecord, error)
	HardDelete(ctx context.Context, id uuid.UUID) error

	UpdateStatus(ctx context.Context, id uuid.UUID, to Status, actor string) error
	Ship(ctx context.Context, id uuid.UUID, trackingNumber string, labelURL *string, actor string) error

	AttachPayPalOrder(ctx context.Context, id uuid.UUID, paypalOrderID string) error
	ResolveByPayPalOrder(ctx context.Context, paypalOrderID string) (uuid.UUID, error)

	// Webhook-driven transitions. correlationID is the opaque custom_id echoed
	// back by the payment provider; it carries the local order id.
	MarkPaid(ctx context.Context, correlationID, transactionID string) error
	MarkPaymentPending(ctx context.Context, correlationID string) error
	MarkPaymentFailed(ctx context.Context, correlationID, reason string) error
	MarkRefunded(ctx context.Context, correlationID string) error
	MarkCancelled(ctx context.Context, correlationID string) error
	OpenDispute(ctx context.Context, correlationID, disputeID string) error
	ResolveDispute(ctx context.Context, correlationID string) error
}

type service struct {
	repo      Repository
	catalog   Catalog
	directory Directory
	sender    mailer.Sender
	notifier  Notifier

	adminAlertAddress string
}

func NewService(repo Repository, catalog Catalog, directory Directory, sender mailer.Sender, notifier Notifier, adminAlertAddress string) Service {
	return &service{
		repo:              repo,
		catalog:           catalog,
		directory:         directory,
		sender:            sender,
		notifier:          notifier,
		adminAlertAddress: adminAlertAddress,
	}
}

func newOrderNumber(id uuid.UUID) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:6]
	return fmt.Sprintf("GD-%s-%s", time.Now().Format("20060102"), short)
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "Checkout"),
		zap.String("customer_email", input.CustomerEmail),
		zap.Int("item_count", len(input.Items)),
	)

	if len(input.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	if input.CustomerID == nil && s.directory != nil {
		cid, err := s.directory.EnsureCustomer(ctx, input.CustomerEmail, input.CustomerName)
		if err != nil {
			log.Warn("failed to upsert customer", zap.Error(err))
		} else {
			input.CustomerID = &cid
		}
	}

	id := uuid.New()
	o := &Order{
		ID:             id,
		OrderNumber:    newOrderNumber(id),
		CustomerID:     input.CustomerID,
		CustomerEmail:  input.CustomerEmail,
		CustomerName:   input.CustomerName,
		Status:         StatusPending,
		PaymentStatus:  PaymentPending,
		ShippingStatus: ShippingNotShipped,
		DisputeState:   DisputeNone,
	}

	for _, in := range input.Items {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity for product %s", in.ProductID)
		}

		item, err := s.catalog.ItemForOrder(ctx, in.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product %s: %w", in.ProductID, err)
		}

		line := OrderItem{
			ProductID:   in.ProductID,
			ProductName: item.Name,
			SKU:         item.SKU,
			Quantity:    in.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.UnitPrice * int64(in.Quantity),
		}
		o.Items = append(o.Items, line)
		o.Subtotal += line.Subtotal
	}

	if o.Subtotal < freeShippingThreshold {
		o.ShippingCost = flatShippingCents
	}
	o.Total = o.Subtotal + o.ShippingCost + o.TaxAmount

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.Int64("total", o.Total),
	)

	s.notifier.OrderEvent(ctx, EventNewOrder,
		"New order "+o.OrderNumber,
		fmt.Sprintf("%s placed an order totalling $%d.%02d", o.CustomerEmail, o.Total/100, o.Total%100),
		o.ID,
	)

	return o, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter *FilterInput, sort *SortInput, limit, offset int32) ([]*Order, int64, error) {
	orders, err := s.repo.List(ctx, filter, sort, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (s *service) StatusHistory(ctx context.Context, id uuid.UUID) ([]*StatusRecord, error) {
	return s.repo.StatusHistory(ctx, id)
}

func (s *service) HardDelete(ctx context.Context, id uuid.UUID) error {
	return s.repo.HardDelete(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, to Status, actor string) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	from := o.Status
	if err := Transition(o, to); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, id, to); err != nil {
		return err
	}

	s.recordStatus(ctx, id, "status", string(from), string(to), actor)
	return nil
}

// Ship validates the tracking number before anything is persisted.
func (s *service) Ship(ctx context.Context, id uuid.UUID, trackingNumber string, labelURL *string, actor string) error {
	if !trackingRe.MatchString(trackingNumber) {
		return ErrInvalidTracking
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !CanTransition(o.Status, StatusShipped) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, o.Status, StatusShipped)
	}

	if err := s.repo.Ship(ctx, id, trackingNumber, labelURL); err != nil {
		return err
	}

	s.recordStatus(ctx, id, "status", string(o.Status), string(StatusShipped), actor)

	s.sendMail(ctx, mailer.ShippingUpdate(o.CustomerEmail, o.OrderNumber, trackingNumber))
	s.notifier.OrderEvent(ctx, EventOrderShipped,
		"Order "+o.OrderNumber+" shipped",
		"Tracking number "+trackingNumber,
		o.ID,
	)

	return nil
}

func (s *service) AttachPayPalOrder(ctx context.Context, id uuid.UUID, paypalOrderID string) error {
	return s.repo.SetPayPalOrderID(ctx, id, paypalOrderID)
}

// ResolveByPayPalOrder maps a provider order id back to the local order id,
// for webhook events that omit the custom_id correlation.
func (s *service) ResolveByPayPalOrder(ctx context.Context, paypalOrderID string) (uuid.UUID, error) {
	return s.repo.GetIDByPayPalOrderID(ctx, paypalOrderID)
}

// resolve maps a provider correlation id back to the local order.
func (s *service) resolve(ctx context.Context, correlationID string) (*Order, error) {
	id, err := uuid.Parse(correlationID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) MarkPaid(ctx context.Context, correlationID, transactionID string) error {
	if transactionID == "" {
		return ErrMissingTxnID
	}

	o, err := s.resolve(ctx, correlationID)
	if err != nil {
		return err
	}

	// Already captured with the same transaction: nothing to do, and no
	// second confirmation email.
	if o.PaymentStatus == PaymentPaid && o.PayPalTransactionID != nil && *o.PayPalTransactionID == transactionID {
		return nil
	}

	if err := s.repo.MarkPaid(ctx, o.ID, transactionID); err != nil {
		return err
	}

	s.recordStatus(ctx, o.ID, "payment_status", string(o.PaymentStatus), string(PaymentPaid), "paypal")

	s.sendMail(ctx, mailer.OrderConfirmation(o.CustomerEmail, o.OrderNumber, o.Total))
	s.notifier.OrderEvent(ctx, EventOrderPaid,
		"Order "+o.OrderNumber+" paid",
		"Payment captured by PayPal",
		o.ID,
	)

	return nil
}

func (s *service) MarkPaymentPending(ctx context.Context, correlationID string) error {
	o, err := s.resolve(ctx, correlationID)
	if err != nil {
		return err
	}

	if err := s.repo.MarkPaymentPending(ctx, o.ID); err != nil {
		return err
	}

	s.recordStatus(ctx, o.ID, "payment_status", string(o.PaymentStatus), string(PaymentPending), "paypal")
	return nil
}

func (s *service) MarkPaymentFailed(ctx context.Context, correlationID, reason string) error {
	o, err := s.resolve(ctx, correlationID)
	if err != nil {
		return err
	}

	if err := s.repo.MarkPaymentFailed(ctx, o.ID, reason); err != nil {
		return err
	}

	s.recordStatus(ctx, o.ID, "payment_status", string(o.PaymentStatus), string(PaymentFailed), "paypal")

	s.sendMail(ctx, mailer.PaymentFailed(o.CustomerEmail, o.OrderNumber, reason))
	s.notifier.OrderEvent(ctx, EventPaymentFailed,
		"Payment failed for "+o.OrderNumber,
		reason,
		o.ID,
	)

	return nil
}

func (s *service) MarkRefunded(ctx context.Context, correlationID string) error {
	o, err := s.resolve(ctx, correlationID)
	if err != nil {
		return err
	}

	if err := s.repo.MarkRefunded(ctx, o.ID); err != nil {
		return err
	}

	s.recordStatus(ctx, o.ID, "payment_status", string(o.PaymentStatus), string(PaymentRefunded), "paypal")

	s.sendMail(ctx, mailer.RefundConfirmation(o.CustomerEmail, o.OrderNumber, o.Total))
	s.notifier.OrderEvent(ctx, EventOrderRefunded,
		"Order "+o.OrderNumber+" refunded",
		"Refund completed by PayPal",
		o.ID,
	)

	return nil
}

func (s *service) MarkCancelled(ctx context.Context, correlationID string) error {
	o, err := s.resolve(ctx, correlationID)
	if err != nil {
		return err
	}

	if err := s.repo.MarkCancelled(ctx, o.ID); err != nil {
		return err
	}

	s.recordStatus(ctx, o.ID, "payment_status", string(o.PaymentStatus), string(PaymentCancelled), "paypal")
	s.notifier.OrderEvent(ctx, EventOrderCancelled,
		"Order "+o.OrderNumber+" cancelled",
		"Payment voided by PayPal",
		o.ID,
	)

	return nil
}

func (s *service) OpenDispute(ctx context.Context, correlationID, disputeID string) error {
	o, err := s.resolve(ctx, correlationID)
	if err != nil {
		return err
	}

	if err := s.repo.SetDispute(ctx, o.ID, DisputeOpen, &disputeID); err != nil {
		return err
	}

	if s.adminAlertAddress != "" {
		s.sendMail(ctx, mailer.DisputeAlert(s.adminAlertAddress, o.OrderNumber, disputeID))
	}
	s.notifier.OrderEvent(ctx, EventDisputeOpened,
		"Dispute opened on "+o.OrderNumber,
		"PayPal dispute "+disputeID,
		o.ID,
	)

	return nil
}

func (s *service) ResolveDispute(ctx context.Context, correlationID string) error {
	o, err := s.resolve(ctx, correlationID)
	if err != nil {
		return err
	}

	return s.repo.SetDispute(ctx, o.ID, DisputeResolved, nil)
}

// sendMail is best-effort: a failed send is logged and never propagated.
func (s *service) sendMail(ctx context.Context, msg mailer.Message) {
	if err := s.sender.Send(ctx, msg); err != nil {
		logger.FromCtx(ctx).Error("email send failed",
			zap.String("template", msg.Template),
			zap.String("to", msg.To),
			zap.Error(err),
		)
	}
}

// recordStatus is best-effort audit trail; failures are logged only.
func (s *service) recordStatus(ctx context.Context, orderID uuid.UUID, field, from, to, actor string) {
	rec := &StatusRecord{
		OrderID:   orderID,
		Field:     field,
		FromValue: from,
		ToValue:   to,
		Actor:     actor,
	}
	if err := s.repo.AppendStatusRecord(ctx, rec); err != nil {
		logger.FromCtx(ctx).Error("failed to append status history",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
	}
}
