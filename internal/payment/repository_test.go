package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_SaveWebhookEvent(t *testing.T) {
	payload := json.RawMessage(`{"id":"WH-1"}`)

	t.Run("FirstDelivery", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery("INSERT INTO webhook_events").
			WithArgs("paypal", "WH-1", "PAYMENT.CAPTURE.COMPLETED", "order-1", []byte(payload), true).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))

		id, dup, err := repo.SaveWebhookEvent(context.Background(),
			"paypal", "WH-1", "PAYMENT.CAPTURE.COMPLETED", "order-1", payload, true)

		assert.NoError(t, err)
		assert.False(t, dup)
		assert.Equal(t, int64(10), id)
	})

	t.Run("DuplicateOfProcessedEvent", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery("INSERT INTO webhook_events").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT id, status FROM webhook_events").
			WithArgs("WH-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(int64(10), "processed"))

		_, dup, err := repo.SaveWebhookEvent(context.Background(),
			"paypal", "WH-1", "PAYMENT.CAPTURE.COMPLETED", "order-1", payload, true)

		assert.NoError(t, err)
		assert.True(t, dup)
	})

	t.Run("RedeliveryOfFailedEventIsReprocessed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectQuery("INSERT INTO webhook_events").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("SELECT id, status FROM webhook_events").
			WithArgs("WH-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(int64(10), "failed"))
		mock.ExpectExec("UPDATE webhook_events").
			WithArgs(int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		id, dup, err := repo.SaveWebhookEvent(context.Background(),
			"paypal", "WH-1", "PAYMENT.CAPTURE.COMPLETED", "order-1", payload, true)

		assert.NoError(t, err)
		assert.False(t, dup)
		assert.Equal(t, int64(10), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_MarkWebhookStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepository(db)

	t.Run("Processed", func(t *testing.T) {
		mock.ExpectExec("UPDATE webhook_events").
			WithArgs(int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkWebhookProcessed(context.Background(), 10))
	})

	t.Run("Failed", func(t *testing.T) {
		mock.ExpectExec("UPDATE webhook_events").
			WithArgs(int64(10), "db down").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkWebhookFailed(context.Background(), 10, "db down"))
	})
}
