package order

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_MarkPaid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	orderID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders").
			WithArgs(PaymentPaid, "CAP-1", orderID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkPaid(context.Background(), orderID, "CAP-1")
		assert.NoError(t, err)
	})

	t.Run("UnknownOrder", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders").
			WithArgs(PaymentPaid, "CAP-1", orderID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkPaid(context.Background(), orderID, "CAP-1")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	orderID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders").
			WithArgs(StatusProcessing, orderID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(context.Background(), orderID, StatusProcessing)
		assert.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE orders").
			WithArgs(StatusProcessing, orderID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), orderID, StatusProcessing)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("InsertsOrderAndItemsInOneTransaction", func(t *testing.T) {
		orderID := uuid.New()
		productID := uuid.New()

		o := &Order{
			ID:             orderID,
			OrderNumber:    "GD-20250101-ABCDEF",
			CustomerEmail:  "buyer@example.com",
			Status:         StatusPending,
			PaymentStatus:  PaymentPending,
			ShippingStatus: ShippingNotShipped,
			Subtotal:       4500,
			ShippingCost:   995,
			Total:          5495,
			Items: []OrderItem{{
				ProductID:   productID,
				ProductName: "Torsion Spring",
				SKU:         "TS-225",
				Quantity:    1,
				UnitPrice:   4500,
				Subtotal:    4500,
			}},
		}

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectQuery("INSERT INTO order_items").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectCommit()

		err := repo.Create(context.Background(), o)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackWhenAnItemInsertFails", func(t *testing.T) {
		orderID := uuid.New()
		o := &Order{
			ID:          orderID,
			OrderNumber: "GD-20250101-ABCDEG",
			Items: []OrderItem{{
				ProductID: uuid.New(), ProductName: "Roller", SKU: "RL-1",
				Quantity: 1, UnitPrice: 100, Subtotal: 100,
			}},
		}

		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectQuery("INSERT INTO order_items").
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := repo.Create(context.Background(), o)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Ship(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	orderID := uuid.New()

	mock.ExpectExec("UPDATE orders").
		WithArgs(StatusShipped, ShippingShipped, "123456789012", nil, orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Ship(context.Background(), orderID, "123456789012", nil)
	assert.NoError(t, err)
}

func TestRepository_GetIDByPayPalOrderID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	orderID := uuid.New()

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id FROM orders WHERE paypal_order_id").
			WithArgs("PP-ORDER-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderID.String()))

		got, err := repo.GetIDByPayPalOrderID(context.Background(), "PP-ORDER-1")
		assert.NoError(t, err)
		assert.Equal(t, orderID, got)
	})

	t.Run("Unknown", func(t *testing.T) {
		mock.ExpectQuery("SELECT id FROM orders WHERE paypal_order_id").
			WithArgs("PP-ORDER-2").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetIDByPayPalOrderID(context.Background(), "PP-ORDER-2")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
