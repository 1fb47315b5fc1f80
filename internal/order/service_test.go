package order

import (
	"context"
	"errors"
	"testing"

	"doorparts-be/internal/mailer"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter *FilterInput, sort *SortInput, limit, offset int32) ([]*Order, error) {
	args := m.Called(ctx, filter, sort, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, filter *FilterInput) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockRepository) Ship(ctx context.Context, id uuid.UUID, trackingNumber string, labelURL *string) error {
	args := m.Called(ctx, id, trackingNumber, labelURL)
	return args.Error(0)
}

func (m *MockRepository) SetPayPalOrderID(ctx context.Context, id uuid.UUID, paypalOrderID string) error {
	args := m.Called(ctx, id, paypalOrderID)
	return args.Error(0)
}

func (m *MockRepository) GetIDByPayPalOrderID(ctx context.Context, paypalOrderID string) (uuid.UUID, error) {
	args := m.Called(ctx, paypalOrderID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) error {
	args := m.Called(ctx, id, transactionID)
	return args.Error(0)
}

func (m *MockRepository) MarkPaymentPending(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) MarkPaymentFailed(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockRepository) MarkRefunded(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) SetDispute(ctx context.Context, id uuid.UUID, state DisputeState, disputeID *string) error {
	args := m.Called(ctx, id, state, disputeID)
	return args.Error(0)
}

func (m *MockRepository) AppendStatusRecord(ctx context.Context, rec *StatusRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRepository) StatusHistory(ctx context.Context, id uuid.UUID) ([]*StatusRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*StatusRecord), args.Error(1)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ItemForOrder(ctx context.Context, productID uuid.UUID) (*CatalogItem, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CatalogItem), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderEvent(ctx context.Context, event, title, body string, orderID uuid.UUID) {
	m.Called(ctx, event, title, body, orderID)
}

func newTestService(repo *MockRepository, catalog *MockCatalog, sender *MockSender, notifier *MockNotifier) Service {
	return NewService(repo, catalog, nil, sender, notifier, "alerts@example.com")
}

// --- Tests ---

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	t.Run("computes totals with flat shipping", func(t *testing.T) {
		repo := new(MockRepository)
		catalog := new(MockCatalog)
		sender := new(MockSender)
		notifier := new(MockNotifier)
		svc := newTestService(repo, catalog, sender, notifier)

		catalog.On("ItemForOrder", ctx, productID).
			Return(&CatalogItem{Name: "Torsion Spring", SKU: "TS-225", UnitPrice: 4500}, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
		notifier.On("OrderEvent", ctx, EventNewOrder, mock.Anything, mock.Anything, mock.Anything).Return()

		o, err := svc.Checkout(ctx, CheckoutInput{
			CustomerEmail: "buyer@example.com",
			Items:         []CheckoutItemInput{{ProductID: productID, Quantity: 2}},
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(9000), o.Subtotal)
		assert.Equal(t, int64(995), o.ShippingCost)
		assert.Equal(t, int64(9995), o.Total)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, PaymentPending, o.PaymentStatus)
		assert.NotEmpty(t, o.OrderNumber)
		repo.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("waives shipping above the threshold", func(t *testing.T) {
		repo := new(MockRepository)
		catalog := new(MockCatalog)
		sender := new(MockSender)
		notifier := new(MockNotifier)
		svc := newTestService(repo, catalog, sender, notifier)

		catalog.On("ItemForOrder", ctx, productID).
			Return(&CatalogItem{Name: "Opener", SKU: "OP-1", UnitPrice: 25000}, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
		notifier.On("OrderEvent", ctx, EventNewOrder, mock.Anything, mock.Anything, mock.Anything).Return()

		o, err := svc.Checkout(ctx, CheckoutInput{
			CustomerEmail: "buyer@example.com",
			Items:         []CheckoutItemInput{{ProductID: productID, Quantity: 1}},
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(0), o.ShippingCost)
		assert.Equal(t, int64(25000), o.Total)
	})

	t.Run("rejects an empty order", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCatalog), new(MockSender), new(MockNotifier))

		_, err := svc.Checkout(ctx, CheckoutInput{CustomerEmail: "buyer@example.com"})

		assert.ErrorIs(t, err, ErrEmptyOrder)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("applies an allowed transition and records history", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCatalog), new(MockSender), new(MockNotifier))

		repo.On("GetByID", ctx, orderID).Return(&Order{ID: orderID, Status: StatusPending}, nil)
		repo.On("UpdateStatus", ctx, orderID, StatusProcessing).Return(nil)
		repo.On("AppendStatusRecord", ctx, mock.AnythingOfType("*order.StatusRecord")).Return(nil)

		err := svc.UpdateStatus(ctx, orderID, StatusProcessing, "staff:1")

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects a skipped transition", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCatalog), new(MockSender), new(MockNotifier))

		repo.On("GetByID", ctx, orderID).Return(&Order{ID: orderID, Status: StatusPending}, nil)

		err := svc.UpdateStatus(ctx, orderID, StatusDelivered, "staff:1")

		assert.ErrorIs(t, err, ErrInvalidTransition)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("terminal states accept nothing", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCatalog), new(MockSender), new(MockNotifier))

		repo.On("GetByID", ctx, orderID).Return(&Order{ID: orderID, Status: StatusCancelled}, nil)

		err := svc.UpdateStatus(ctx, orderID, StatusProcessing, "staff:1")

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestShip(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("rejects a malformed tracking number before touching storage", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCatalog), new(MockSender), new(MockNotifier))

		for _, tracking := range []string{"", "12345", "1234567890123", "12345678901a"} {
			err := svc.Ship(ctx, orderID, tracking, nil, "staff:1")
			assert.ErrorIs(t, err, ErrInvalidTracking, tracking)
		}
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Ship", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ships a processing order and notifies the customer", func(t *testing.T) {
		repo := new(MockRepository)
		sender := new(MockSender)
		notifier := new(MockNotifier)
		svc := newTestService(repo, new(MockCatalog), sender, notifier)

		repo.On("GetByID", ctx, orderID).Return(&Order{
			ID: orderID, OrderNumber: "GD-20250101-ABCDEF",
			Status: StatusProcessing, CustomerEmail: "buyer@example.com",
		}, nil)
		repo.On("Ship", ctx, orderID, "123456789012", (*string)(nil)).Return(nil)
		repo.On("AppendStatusRecord", ctx, mock.AnythingOfType("*order.StatusRecord")).Return(nil)
		sender.On("Send", ctx, mock.AnythingOfType("mailer.Message")).Return(nil)
		notifier.On("OrderEvent", ctx, EventOrderShipped, mock.Anything, mock.Anything, orderID).Return()

		err := svc.Ship(ctx, orderID, "123456789012", nil, "staff:1")

		assert.NoError(t, err)
		repo.AssertExpectations(t)
		sender.AssertExpectations(t)
		notifier.AssertExpectations(t)
	})

	t.Run("refuses to ship a pending order", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCatalog), new(MockSender), new(MockNotifier))

		repo.On("GetByID", ctx, orderID).Return(&Order{ID: orderID, Status: StatusPending}, nil)

		err := svc.Ship(ctx, orderID, "123456789012", nil, "staff:1")

		assert.ErrorIs(t, err, ErrInvalidTransition)
		repo.AssertNotCalled(t, "Ship", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("marks the order paid and sends one confirmation", func(t *testing.T) {
		repo := new(MockRepository)
		sender := new(MockSender)
		notifier := new(MockNotifier)
		svc := newTestService(repo, new(MockCatalog), sender, notifier)

		repo.On("GetByID", ctx, orderID).Return(&Order{
			ID: orderID, OrderNumber: "GD-20250101-ABCDEF",
			PaymentStatus: PaymentPending, CustomerEmail: "buyer@example.com", Total: 9995,
		}, nil)
		repo.On("MarkPaid", ctx, orderID, "TXN-1").Return(nil)
		repo.On("AppendStatusRecord", ctx, mock.AnythingOfType("*order.StatusRecord")).Return(nil)
		sender.On("Send", ctx, mock.AnythingOfType("mailer.Message")).Return(nil)
		notifier.On("OrderEvent", ctx, EventOrderPaid, mock.Anything, mock.Anything, orderID).Return()

		err := svc.MarkPaid(ctx, orderID.String(), "TXN-1")

		assert.NoError(t, err)
		sender.AssertNumberOfCalls(t, "Send", 1)
		repo.AssertExpectations(t)
	})

	t.Run("is a no-op for a repeated capture of the same transaction", func(t *testing.T) {
		repo := new(MockRepository)
		sender := new(MockSender)
		svc := newTestService(repo, new(MockCatalog), sender, new(MockNotifier))

		txn := "TXN-1"
		repo.On("GetByID", ctx, orderID).Return(&Order{
			ID: orderID, PaymentStatus: PaymentPaid, PayPalTransactionID: &txn,
		}, nil)

		err := svc.MarkPaid(ctx, orderID.String(), "TXN-1")

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("rejects a missing transaction id", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCatalog), new(MockSender), new(MockNotifier))

		err := svc.MarkPaid(ctx, orderID.String(), "")

		assert.ErrorIs(t, err, ErrMissingTxnID)
	})

	t.Run("treats an unparseable correlation id as an unknown order", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockCatalog), new(MockSender), new(MockNotifier))

		err := svc.MarkPaid(ctx, "not-a-uuid", "TXN-1")

		assert.ErrorIs(t, err, ErrOrderNotFound)
		repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestMarkRefunded(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("refund survives an email failure", func(t *testing.T) {
		repo := new(MockRepository)
		sender := new(MockSender)
		notifier := new(MockNotifier)
		svc := newTestService(repo, new(MockCatalog), sender, notifier)

		repo.On("GetByID", ctx, orderID).Return(&Order{
			ID: orderID, OrderNumber: "GD-20250101-ABCDEF",
			PaymentStatus: PaymentPaid, CustomerEmail: "buyer@example.com", Total: 9995,
		}, nil)
		repo.On("MarkRefunded", ctx, orderID).Return(nil)
		repo.On("AppendStatusRecord", ctx, mock.AnythingOfType("*order.StatusRecord")).Return(nil)
		sender.On("Send", ctx, mock.AnythingOfType("mailer.Message")).Return(errors.New("smtp down"))
		notifier.On("OrderEvent", ctx, EventOrderRefunded, mock.Anything, mock.Anything, orderID).Return()

		err := svc.MarkRefunded(ctx, orderID.String())

		assert.NoError(t, err)
		sender.AssertNumberOfCalls(t, "Send", 1)
		repo.AssertExpectations(t)
	})
}

func TestOpenDispute(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("opens a dispute and alerts the admin inbox", func(t *testing.T) {
		repo := new(MockRepository)
		sender := new(MockSender)
		notifier := new(MockNotifier)
		svc := newTestService(repo, new(MockCatalog), sender, notifier)

		repo.On("GetByID", ctx, orderID).Return(&Order{
			ID: orderID, OrderNumber: "GD-20250101-ABCDEF", PaymentStatus: PaymentPaid,
		}, nil)
		disputeID := "PP-D-123"
		repo.On("SetDispute", ctx, orderID, DisputeOpen, &disputeID).Return(nil)
		sender.On("Send", ctx, mock.MatchedBy(func(msg mailer.Message) bool {
			return msg.To == "alerts@example.com"
		})).Return(nil)
		notifier.On("OrderEvent", ctx, EventDisputeOpened, mock.Anything, mock.Anything, orderID).Return()

		err := svc.OpenDispute(ctx, orderID.String(), disputeID)

		assert.NoError(t, err)
		sender.AssertExpectations(t)
	})
}
