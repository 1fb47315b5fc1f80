package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, n *Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockRepository) ListForStaff(ctx context.Context, staffID uint, unreadOnly bool, limit int32) ([]*Notification, error) {
	args := m.Called(ctx, staffID, unreadOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Notification), args.Error(1)
}

func (m *MockRepository) MarkRead(ctx context.Context, id uuid.UUID, staffID uint) error {
	return m.Called(ctx, id, staffID).Error(0)
}

func (m *MockRepository) MarkAllRead(ctx context.Context, staffID uint) error {
	return m.Called(ctx, staffID).Error(0)
}

func TestNotify(t *testing.T) {
	ctx := context.Background()

	t.Run("persists before broadcasting, even with no listeners", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, NewHub())

		n := &Notification{StaffID: 7, Type: TypeOrderPaid, Title: "Order paid"}
		repo.On("Create", ctx, n).Return(nil)

		err := svc.Notify(ctx, n)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("does not broadcast when persistence fails", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, NewHub())

		n := &Notification{StaffID: 7, Type: TypeOrderPaid}
		repo.On("Create", ctx, n).Return(errors.New("insert failed"))

		err := svc.Notify(ctx, n)

		assert.Error(t, err)
	})
}

func TestNotifyAll(t *testing.T) {
	ctx := context.Background()

	t.Run("one record per staff member, failures do not stop the fan-out", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, NewHub())

		repo.On("Create", ctx, mock.MatchedBy(func(n *Notification) bool { return n.StaffID == 1 })).
			Return(errors.New("insert failed"))
		repo.On("Create", ctx, mock.MatchedBy(func(n *Notification) bool { return n.StaffID == 2 })).
			Return(nil)

		svc.NotifyAll(ctx, []uint{1, 2}, func(staffID uint) *Notification {
			return &Notification{StaffID: staffID, Type: TypeNewOrder, Title: "New order"}
		})

		repo.AssertNumberOfCalls(t, "Create", 2)
	})
}
