package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"stockwise-system/internal/database/models"
	invhandler "stockwise-system/internal/services/inventory/handler"
)

var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

type RecordSaleRequest struct {
	ProductID int64      `json:"product_id"`
	StoreID   *int64     `json:"store_id"`
	Quantity  int32      `json:"quantity"`
	SoldAt    *time.Time `json:"sold_at"`
}

type ListTransactionsFilter struct {
	ProductID *int64
	StoreID   *int64
	From      *time.Time
	To        *time.Time
}

// SalesSummary aggregates a day of transactions for the dashboard.
type SalesSummary struct {
	Date         string          `json:"date"`
	Transactions int             `json:"transactions"`
	UnitsSold    int64           `json:"units_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

type SalesHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewSalesHandler(db *gorm.DB, redisClient *redis.Client) *SalesHandler {
	return &SalesHandler{
		db:    db,
		redis: redisClient,
	}
}

func (s *SalesHandler) invalidateInventoryCaches(ctx context.Context, productID int64) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx,
		invhandler.SNAPSHOT_CACHE_KEY,
		invhandler.PRODUCTS_CACHE_KEY,
		invhandler.CATEGORY_CACHE_KEY,
		fmt.Sprintf("%s%d", invhandler.INVENTORY_CACHE_PREFIX, productID),
	)
}

// RecordSale decrements product stock and writes the transaction plus its
// stock movement in one database transaction. Selling more than the
// available stock is rejected, stock never goes negative.
func (s *SalesHandler) RecordSale(ctx context.Context, req RecordSaleRequest, userID int64) (*models.Transaction, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrInvalidTransaction)
	}

	soldAt := time.Now().UTC()
	if req.SoldAt != nil {
		soldAt = req.SoldAt.UTC()
	}

	var transaction models.Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("is_active = ?", true).First(&product, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invhandler.ErrProductNotFound
			}
			return err
		}

		if req.StoreID != nil {
			var store models.Store
			if err := tx.Where("is_active = ?", true).First(&store, *req.StoreID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return invhandler.ErrStoreNotFound
				}
				return err
			}
		}

		if product.Stock < req.Quantity {
			return fmt.Errorf("%w: product %d has %d units, requested %d", ErrInsufficientStock, product.ID, product.Stock, req.Quantity)
		}

		price, err := decimal.NewFromString(product.UnitPrice)
		if err != nil {
			return fmt.Errorf("%w: product %d has unparseable unit price %q", invhandler.ErrInvalidProduct, product.ID, product.UnitPrice)
		}

		newStock := product.Stock - req.Quantity
		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Update("stock", newStock).Error; err != nil {
			return fmt.Errorf("failed to decrement stock for product %d: %w", product.ID, err)
		}

		transaction = models.Transaction{
			ProductID:   product.ID,
			StoreID:     req.StoreID,
			Quantity:    req.Quantity,
			UnitPrice:   price.String(),
			TotalAmount: price.Mul(decimal.NewFromInt32(req.Quantity)).String(),
			SoldAt:      soldAt,
			CreatedBy:   userID,
		}
		if err := tx.Create(&transaction).Error; err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}

		movement := models.StockMovement{
			ProductID:    product.ID,
			MovementType: models.MovementSale,
			Quantity:     -req.Quantity,
			UnitPrice:    price.String(),
			ReferenceID:  fmt.Sprintf("txn-%d", transaction.ID),
			CreatedBy:    userID,
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return nil, err
	}

	s.invalidateInventoryCaches(ctx, transaction.ProductID)
	logrus.WithFields(logrus.Fields{
		"transaction_id": transaction.ID,
		"product_id":     transaction.ProductID,
		"quantity":       transaction.Quantity,
	}).Info("Sale recorded")

	return &transaction, nil
}

func (s *SalesHandler) ListTransactions(ctx context.Context, filter ListTransactionsFilter) ([]models.Transaction, error) {
	query := s.db.WithContext(ctx).Order("sold_at DESC")

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.StoreID != nil {
		query = query.Where("store_id = ?", *filter.StoreID)
	}
	if filter.From != nil {
		query = query.Where("sold_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sold_at < ?", *filter.To)
	}

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// DailySummary totals one calendar day of sales (UTC).
func (s *SalesHandler) DailySummary(ctx context.Context, day time.Time) (*SalesSummary, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	transactions, err := s.ListTransactions(ctx, ListTransactionsFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	summary := &SalesSummary{
		Date:    from.Format("2006-01-02"),
		Revenue: decimal.Zero,
	}
	for _, txn := range transactions {
		total, err := decimal.NewFromString(txn.TotalAmount)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %d has unparseable total %q", ErrInvalidTransaction, txn.ID, txn.TotalAmount)
		}
		summary.Transactions++
		summary.UnitsSold += int64(txn.Quantity)
		summary.Revenue = summary.Revenue.Add(total)
	}
	return summary, nil
}
