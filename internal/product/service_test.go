package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, p *Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter *FilterInput, limit, offset int32) ([]*Product, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Product), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, filter *FilterInput) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, p *Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Torsion Spring 225":          "torsion-spring-225",
		"  Heavy-Duty Roller  ":       "heavy-duty-roller",
		"Opener (Chain Drive) 1/2 HP": "opener-chain-drive-1-2-hp",
		"--weird--input--":            "weird-input",
	}

	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), input)
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("fills the slug from the name", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("Create", ctx, mock.MatchedBy(func(p *Product) bool {
			return p.Slug == "torsion-spring-225"
		})).Return(nil)

		err := svc.Create(ctx, &Product{Name: "Torsion Spring 225", SKU: "TS-225", Price: 4500})

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects a non-positive price", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		err := svc.Create(ctx, &Product{Name: "Freebie", SKU: "FR-1", Price: 0})

		assert.ErrorIs(t, err, ErrInvalidPrice)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestItemForOrder(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	t.Run("snapshots name, sku and price", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", ctx, productID).Return(&Product{
			ID: productID, Name: "Torsion Spring", SKU: "TS-225", Price: 4500,
		}, nil)

		item, err := svc.ItemForOrder(ctx, productID)

		assert.NoError(t, err)
		assert.Equal(t, "Torsion Spring", item.Name)
		assert.Equal(t, "TS-225", item.SKU)
		assert.Equal(t, int64(4500), item.UnitPrice)
	})

	t.Run("propagates a missing product", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo)

		repo.On("GetByID", ctx, productID).Return(nil, ErrProductNotFound)

		_, err := svc.ItemForOrder(ctx, productID)

		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}
