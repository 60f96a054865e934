package handler

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	invhandler "stockwise-system/internal/services/inventory/handler"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gdb, mock
}

func productRow(stock int32) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "sku", "name", "category", "stock", "unit_price", "is_active", "created_at", "updated_at"}).
		AddRow(1, "SKU-1", "Sony Headphones", "Electronics", stock, "299", true, now, now)
}

func TestRecordSale(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewSalesHandler(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE is_active`).
		WillReturnRows(productRow(20))
	mock.ExpectExec(`UPDATE "products" SET`).
		WithArgs(int32(17), sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`INSERT INTO "stock_movements"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	txn, err := s.RecordSale(context.Background(), RecordSaleRequest{ProductID: 1, Quantity: 3}, 42)
	require.NoError(t, err)

	assert.Equal(t, int64(1), txn.ProductID)
	assert.Equal(t, int32(3), txn.Quantity)
	assert.Equal(t, "299", txn.UnitPrice)
	assert.Equal(t, "897", txn.TotalAmount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSaleWithStore(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewSalesHandler(db, nil)

	now := time.Now()
	storeID := int64(2)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE is_active`).
		WillReturnRows(productRow(20))
	mock.ExpectQuery(`SELECT \* FROM "stores" WHERE is_active`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "location", "is_active", "created_at", "updated_at"}).
			AddRow(storeID, "ST-02", "Airport", nil, true, now, now))
	mock.ExpectExec(`UPDATE "products" SET`).
		WithArgs(int32(17), sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`INSERT INTO "stock_movements"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	txn, err := s.RecordSale(context.Background(), RecordSaleRequest{ProductID: 1, StoreID: &storeID, Quantity: 3}, 42)
	require.NoError(t, err)

	require.NotNil(t, txn.StoreID)
	assert.Equal(t, storeID, *txn.StoreID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSaleUnknownStore(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewSalesHandler(db, nil)

	storeID := int64(99)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE is_active`).
		WillReturnRows(productRow(20))
	mock.ExpectQuery(`SELECT \* FROM "stores" WHERE is_active`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := s.RecordSale(context.Background(), RecordSaleRequest{ProductID: 1, StoreID: &storeID, Quantity: 3}, 42)
	assert.ErrorIs(t, err, invhandler.ErrStoreNotFound)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewSalesHandler(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE is_active`).
		WillReturnRows(productRow(2))
	mock.ExpectRollback()

	_, err := s.RecordSale(context.Background(), RecordSaleRequest{ProductID: 1, Quantity: 5}, 42)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestRecordSaleUnknownProduct(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewSalesHandler(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE is_active`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := s.RecordSale(context.Background(), RecordSaleRequest{ProductID: 99, Quantity: 1}, 42)
	assert.ErrorIs(t, err, invhandler.ErrProductNotFound)
}

func TestRecordSaleRejectsNonPositiveQuantity(t *testing.T) {
	db, _ := newTestDB(t)
	s := NewSalesHandler(db, nil)

	_, err := s.RecordSale(context.Background(), RecordSaleRequest{ProductID: 1, Quantity: 0}, 42)
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestDailySummary(t *testing.T) {
	db, mock := newTestDB(t)
	s := NewSalesHandler(db, nil)

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "product_id", "quantity", "unit_price", "total_amount", "sold_at", "created_by", "created_at"}).
		AddRow(1, 1, 2, "299", "598", day.Add(9*time.Hour), 42, day).
		AddRow(2, 3, 1, "1800", "1800", day.Add(15*time.Hour), 42, day)

	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE sold_at`).
		WillReturnRows(rows)

	summary, err := s.DailySummary(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-30", summary.Date)
	assert.Equal(t, 2, summary.Transactions)
	assert.Equal(t, int64(3), summary.UnitsSold)
	assert.True(t, summary.Revenue.Equal(decimal.NewFromInt(2398)))
}
