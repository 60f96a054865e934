package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"stockwise-system/internal/database/models"
	"stockwise-system/internal/reorder"
)

const (
	INVENTORY_CACHE_PREFIX = "inventory:"
	SNAPSHOT_CACHE_KEY     = "inventory:snapshot"
	PRODUCTS_CACHE_KEY     = "inventory:products"
	CATEGORY_CACHE_KEY     = "inventory:categories"
	STORES_CACHE_KEY       = "inventory:stores"
	CACHE_TTL_SHORT        = 5 * time.Minute
	CACHE_TTL_MEDIUM       = 30 * time.Minute
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrStoreNotFound   = errors.New("store not found")
	ErrInvalidStore    = errors.New("invalid store")
)

// --- Requests ---

type CreateProductRequest struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Stock     int32  `json:"stock"`
	UnitPrice string `json:"unit_price"`
}

type UpdateProductRequest struct {
	Name      *string `json:"name"`
	Category  *string `json:"category"`
	Stock     *int32  `json:"stock"`
	UnitPrice *string `json:"unit_price"`
	IsActive  *bool   `json:"is_active"`
}

type ListProductsFilter struct {
	Category        *string
	SearchTerm      *string
	IncludeInactive bool
}

// RestockResult is the applied plan plus the movement reference that ties
// the written StockMovement rows back to this application.
type RestockResult struct {
	Plan        reorder.Plan `json:"plan"`
	ReferenceID string       `json:"reference_id"`
	AppliedAt   time.Time    `json:"applied_at"`
}

// --- Handler ---

type InventoryHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewInventoryHandler(db *gorm.DB, redisClient *redis.Client) *InventoryHandler {
	return &InventoryHandler{
		db:    db,
		redis: redisClient,
	}
}

// --- Cache helpers ---

func (s *InventoryHandler) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.redis == nil {
		return false
	}
	cached, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		logrus.Warnf("Failed to decode cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (s *InventoryHandler) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = s.redis.Set(ctx, key, payload, ttl).Err()
}

func (s *InventoryHandler) InvalidateInventoryCaches(ctx context.Context, productID ...int64) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, SNAPSHOT_CACHE_KEY, PRODUCTS_CACHE_KEY, CATEGORY_CACHE_KEY, STORES_CACHE_KEY)

	for _, id := range productID {
		cacheKey := fmt.Sprintf("%s%d", INVENTORY_CACHE_PREFIX, id)
		_ = s.redis.Del(ctx, cacheKey)
	}
}

// --- Snapshot ---

func itemFromProduct(product models.Product) (reorder.Item, error) {
	price, err := decimal.NewFromString(product.UnitPrice)
	if err != nil {
		return reorder.Item{}, fmt.Errorf("%w: product %d has unparseable unit price %q", ErrInvalidProduct, product.ID, product.UnitPrice)
	}
	return reorder.Item{
		ID:        fmt.Sprintf("%d", product.ID),
		Name:      product.Name,
		Category:  product.Category,
		Stock:     int(product.Stock),
		UnitPrice: price,
	}, nil
}

func snapshotFromProducts(products []models.Product) ([]reorder.Item, error) {
	items := make([]reorder.Item, 0, len(products))
	for _, product := range products {
		item, err := itemFromProduct(product)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Snapshot loads the active products as an ordered engine snapshot. A stored
// record that fails conversion fails the whole call: serving a partial or
// fabricated snapshot would mask a data-integrity problem.
func (s *InventoryHandler) Snapshot(ctx context.Context) ([]reorder.Item, error) {
	var items []reorder.Item
	if s.cacheGet(ctx, SNAPSHOT_CACHE_KEY, &items) {
		return items, nil
	}

	products, err := s.loadActiveProducts(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	items, err = snapshotFromProducts(products)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, SNAPSHOT_CACHE_KEY, items, CACHE_TTL_SHORT)
	return items, nil
}

func (s *InventoryHandler) loadActiveProducts(tx *gorm.DB) ([]models.Product, error) {
	var products []models.Product
	if err := tx.Where("is_active = ?", true).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

// --- Product CRUD ---

func validateCreateProduct(req CreateProductRequest) (decimal.Decimal, error) {
	if strings.TrimSpace(req.Name) == "" {
		return decimal.Zero, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if req.Stock < 0 {
		return decimal.Zero, fmt.Errorf("%w: stock must be >= 0", ErrInvalidProduct)
	}
	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: unit price %q is not a number", ErrInvalidProduct, req.UnitPrice)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: unit price must be >= 0", ErrInvalidProduct)
	}
	return price, nil
}

func (s *InventoryHandler) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	price, err := validateCreateProduct(req)
	if err != nil {
		return nil, err
	}

	product := models.Product{
		SKU:       strings.TrimSpace(req.SKU),
		Name:      strings.TrimSpace(req.Name),
		Category:  strings.TrimSpace(req.Category),
		Stock:     req.Stock,
		UnitPrice: price.String(),
		IsActive:  true,
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.InvalidateInventoryCaches(ctx, product.ID)
	return &product, nil
}

func (s *InventoryHandler) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	cacheKey := fmt.Sprintf("%s%d", INVENTORY_CACHE_PREFIX, id)

	var product models.Product
	if s.cacheGet(ctx, cacheKey, &product) {
		return &product, nil
	}

	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, product, CACHE_TTL_MEDIUM)
	return &product, nil
}

func (s *InventoryHandler) ListProducts(ctx context.Context, filter ListProductsFilter) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Order("id")

	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.SearchTerm != nil {
		term := "%" + strings.ToLower(*filter.SearchTerm) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", term, term)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *InventoryHandler) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
		}
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must be >= 0", ErrInvalidProduct)
		}
		product.Stock = *req.Stock
	}
	if req.UnitPrice != nil {
		price, err := decimal.NewFromString(*req.UnitPrice)
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("%w: unit price must be a non-negative number", ErrInvalidProduct)
		}
		product.UnitPrice = price.String()
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.InvalidateInventoryCaches(ctx, product.ID)
	return &product, nil
}

// DeleteProduct deactivates a product. Rows are kept so movement history
// stays resolvable.
func (s *InventoryHandler) DeleteProduct(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	s.InvalidateInventoryCaches(ctx, id)
	return nil
}

// --- Store CRUD ---

type CreateStoreRequest struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Location *string `json:"location"`
}

type UpdateStoreRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	IsActive *bool   `json:"is_active"`
}

func (s *InventoryHandler) CreateStore(ctx context.Context, req CreateStoreRequest) (*models.Store, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidStore)
	}

	store := models.Store{
		Code:     strings.TrimSpace(req.Code),
		Name:     strings.TrimSpace(req.Name),
		Location: req.Location,
		IsActive: true,
	}

	if err := s.db.WithContext(ctx).Create(&store).Error; err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	s.InvalidateInventoryCaches(ctx)
	return &store, nil
}

func (s *InventoryHandler) GetStore(ctx context.Context, id int64) (*models.Store, error) {
	var store models.Store
	if err := s.db.WithContext(ctx).First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return &store, nil
}

func (s *InventoryHandler) ListStores(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	if s.cacheGet(ctx, STORES_CACHE_KEY, &stores) {
		return stores, nil
	}

	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	s.cacheSet(ctx, STORES_CACHE_KEY, stores, CACHE_TTL_MEDIUM)
	return stores, nil
}

func (s *InventoryHandler) UpdateStore(ctx context.Context, id int64, req UpdateStoreRequest) (*models.Store, error) {
	var store models.Store
	if err := s.db.WithContext(ctx).First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidStore)
		}
		store.Name = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		store.Location = req.Location
	}
	if req.IsActive != nil {
		store.IsActive = *req.IsActive
	}

	if err := s.db.WithContext(ctx).Save(&store).Error; err != nil {
		return nil, fmt.Errorf("failed to update store: %w", err)
	}

	s.InvalidateInventoryCaches(ctx)
	return &store, nil
}

// DeleteStore deactivates a store. Transactions keep their store reference.
func (s *InventoryHandler) DeleteStore(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to delete store: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStoreNotFound
	}

	s.InvalidateInventoryCaches(ctx)
	return nil
}

// --- Reorder operations ---

// ReorderPlan evaluates the current snapshot against the policy. Nothing is
// persisted; the plan is only valid until the next stock mutation.
func (s *InventoryHandler) ReorderPlan(ctx context.Context, policy reorder.Policy) (reorder.Plan, error) {
	items, err := s.Snapshot(ctx)
	if err != nil {
		return reorder.Plan{}, err
	}
	return reorder.EvaluateReorder(items, policy)
}

// ApplyRestock re-derives the plan from a fresh snapshot inside the write
// transaction and brings every under-target product up to the target level.
// Deriving and applying under the same transaction is what makes a stale
// plan unusable: callers never hand a previously computed plan back in.
func (s *InventoryHandler) ApplyRestock(ctx context.Context, policy reorder.Policy, userID int64) (*RestockResult, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	result := &RestockResult{
		ReferenceID: uuid.NewString(),
		AppliedAt:   time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.loadActiveProducts(tx)
		if err != nil {
			return err
		}

		items, err := snapshotFromProducts(products)
		if err != nil {
			return err
		}

		plan, err := reorder.EvaluateReorder(items, policy)
		if err != nil {
			return err
		}
		result.Plan = plan

		byID := make(map[string]*models.Product, len(products))
		for i := range products {
			byID[fmt.Sprintf("%d", products[i].ID)] = &products[i]
		}

		for _, rec := range plan.Recommendations {
			product := byID[rec.ItemID]
			product.Stock += int32(rec.OrderQuantity)

			if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Update("stock", product.Stock).Error; err != nil {
				return fmt.Errorf("failed to restock product %d: %w", product.ID, err)
			}

			movement := models.StockMovement{
				ProductID:    product.ID,
				MovementType: models.MovementRestock,
				Quantity:     int32(rec.OrderQuantity),
				UnitPrice:    rec.UnitPrice.String(),
				ReferenceID:  result.ReferenceID,
				CreatedBy:    userID,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return fmt.Errorf("failed to record stock movement for product %d: %w", product.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.InvalidateInventoryCaches(ctx)
	logrus.WithFields(logrus.Fields{
		"reference_id": result.ReferenceID,
		"products":     len(result.Plan.Recommendations),
		"total_cost":   result.Plan.TotalCost.String(),
	}).Info("Restock applied")

	return result, nil
}

// LowStockAlerts classifies the current snapshot against the policy.
func (s *InventoryHandler) LowStockAlerts(ctx context.Context, policy reorder.Policy) ([]reorder.Alert, error) {
	items, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return reorder.ClassifyLowStock(items, policy)
}

// CategorySummary counts active products per normalized category label.
func (s *InventoryHandler) CategorySummary(ctx context.Context) (map[string]int, error) {
	var counts map[string]int
	if s.cacheGet(ctx, CATEGORY_CACHE_KEY, &counts) {
		return counts, nil
	}

	items, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	counts = reorder.CountByCategory(items)
	s.cacheSet(ctx, CATEGORY_CACHE_KEY, counts, CACHE_TTL_MEDIUM)
	return counts, nil
}

// Movements lists the stock movements recorded for one restock reference.
func (s *InventoryHandler) Movements(ctx context.Context, referenceID string) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := s.db.WithContext(ctx).Where("reference_id = ?", referenceID).Order("id").Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to load stock movements: %w", err)
	}
	return movements, nil
}
