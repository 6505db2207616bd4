package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/codeforge/backend/internal/domain/billing"
	"github.com/codeforge/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockOrderRepository creates a GormOrderRepository with a mocked SQL connection
func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormOrderRepository(gormDB), mock, mockDB
}

func TestGormOrderRepository_FindByPaymentIntentID(t *testing.T) {
	t.Run("finds order for payment intent", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		orderID := uuid.New()
		userID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "user_id", "amount", "currency", "status", "payment_intent_id"}).
			AddRow(orderID, userID, decimal.NewFromFloat(19.99), "usd", "completed", "pi_123")

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE payment_intent_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("pi_123", 1).
			WillReturnRows(rows)

		order, err := repo.FindByPaymentIntentID(context.Background(), "pi_123")

		assert.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, orderID, order.ID)
		assert.Equal(t, billing.OrderStatusCompleted, order.Status)
		assert.True(t, order.Amount.Equal(decimal.NewFromFloat(19.99)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty intent id short-circuits to not found", func(t *testing.T) {
		repo, _, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		order, err := repo.FindByPaymentIntentID(context.Background(), "")

		assert.Nil(t, order)
		assert.Equal(t, shared.ErrNotFound, err)
	})

	t.Run("unknown intent returns not found", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE payment_intent_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("pi_missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		order, err := repo.FindByPaymentIntentID(context.Background(), "pi_missing")

		assert.Nil(t, order)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_Create(t *testing.T) {
	t.Run("inserts order row", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		order, err := billing.NewOrder(uuid.New(), decimal.NewFromFloat(19.99), "usd", billing.OrderStatusPending)
		require.NoError(t, err)
		order.PaymentIntentID = "pi_123"

		mock.ExpectExec(`INSERT INTO "orders"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err = repo.Create(context.Background(), order)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_FindByUser(t *testing.T) {
	t.Run("returns page of the user's orders with total", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		userID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows([]string{"id", "user_id", "amount", "currency", "status", "payment_intent_id"}).
			AddRow(uuid.New(), userID, decimal.NewFromFloat(9.99), "usd", "completed", "pi_1").
			AddRow(uuid.New(), userID, decimal.NewFromFloat(4.99), "usd", "pending", "pi_2")

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE user_id = \$1 ORDER BY created_at DESC LIMIT .*`).
			WithArgs(userID, 20).
			WillReturnRows(rows)

		orders, total, err := repo.FindByUser(context.Background(), userID, billing.NewOrderFilter())

		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, orders, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status filter narrows the query", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		status := billing.OrderStatusCompleted
		filter := billing.NewOrderFilter()
		filter.Status = &status

		mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE user_id = \$1 AND status = \$2`).
			WithArgs(userID, status).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows([]string{"id", "user_id", "amount", "currency", "status", "payment_intent_id"}).
			AddRow(uuid.New(), userID, decimal.NewFromFloat(9.99), "usd", "completed", "pi_1")

		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE user_id = \$1 AND status = \$2 ORDER BY created_at DESC LIMIT .*`).
			WithArgs(userID, status, 20).
			WillReturnRows(rows)

		orders, total, err := repo.FindByUser(context.Background(), userID, filter)

		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, orders, 1)
		assert.Equal(t, billing.OrderStatusCompleted, orders[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
