package customer

import (
	"context"
	"errors"
	"testing"

	"doorparts-be/internal/mailer"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Upsert(ctx context.Context, email, name string) (uuid.UUID, error) {
	args := m.Called(ctx, email, name)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Customer), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Customer), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter *FilterInput, limit, offset int32) ([]*Customer, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Customer), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, filter *FilterInput) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) CreateNote(ctx context.Context, n *Note) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockRepository) ListNotes(ctx context.Context, customerID uuid.UUID) ([]*Note, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Note), args.Error(1)
}

func (m *MockRepository) LogEmail(ctx context.Context, e *EmailLogEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockRepository) EmailHistory(ctx context.Context, recipient string, limit int32) ([]*EmailLogEntry, error) {
	args := m.Called(ctx, recipient, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*EmailLogEntry), args.Error(1)
}

type stubSender struct {
	err  error
	sent []mailer.Message
}

func (s *stubSender) Send(ctx context.Context, msg mailer.Message) error {
	s.sent = append(s.sent, msg)
	return s.err
}

func TestRecordingSender(t *testing.T) {
	ctx := context.Background()
	msg := mailer.Message{To: "buyer@example.com", Subject: "Order confirmed", Template: "order_confirmation"}

	t.Run("records a delivered send", func(t *testing.T) {
		repo := new(MockRepository)
		inner := &stubSender{}
		sender := NewRecordingSender(inner, repo)

		repo.On("LogEmail", ctx, mock.MatchedBy(func(e *EmailLogEntry) bool {
			return e.Recipient == "buyer@example.com" && e.Delivered && e.Template == "order_confirmation"
		})).Return(nil)

		assert.NoError(t, sender.Send(ctx, msg))
		assert.Len(t, inner.sent, 1)
		repo.AssertExpectations(t)
	})

	t.Run("records a failed send and surfaces the send error", func(t *testing.T) {
		repo := new(MockRepository)
		inner := &stubSender{err: errors.New("provider rejected")}
		sender := NewRecordingSender(inner, repo)

		repo.On("LogEmail", ctx, mock.MatchedBy(func(e *EmailLogEntry) bool {
			return !e.Delivered
		})).Return(nil)

		assert.Error(t, sender.Send(ctx, msg))
		repo.AssertExpectations(t)
	})

	t.Run("a logging failure never masks a successful send", func(t *testing.T) {
		repo := new(MockRepository)
		inner := &stubSender{}
		sender := NewRecordingSender(inner, repo)

		repo.On("LogEmail", ctx, mock.Anything).Return(errors.New("insert failed"))

		assert.NoError(t, sender.Send(ctx, msg))
	})
}

func TestEnsureCustomer(t *testing.T) {
	ctx := context.Background()

	repo := new(MockRepository)
	svc := NewService(repo)

	id := uuid.New()
	repo.On("Upsert", ctx, "buyer@example.com", "Pat Doe").Return(id, nil)

	got, err := svc.EnsureCustomer(ctx, "buyer@example.com", "Pat Doe")

	assert.NoError(t, err)
	assert.Equal(t, id, got)
}
