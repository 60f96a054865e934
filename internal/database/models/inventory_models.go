package models

import "time"

// Product is the persisted inventory record. UnitPrice is stored as a
// string and parsed to a decimal at the service boundary so the database
// never truncates monetary precision.
type Product struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	SKU       string `gorm:"size:100;uniqueIndex"`
	Name      string `gorm:"size:255;not null"`
	Category  string `gorm:"size:100"`
	Stock     int32  `gorm:"not null;default:0"`
	UnitPrice string `gorm:"size:50;not null"`
	IsActive  bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Movements []StockMovement `gorm:"foreignKey:ProductID"`
}

// Store is a sales location. Stock is tracked on the product itself; the
// store dimension is carried on transactions so per-location sales stay
// reportable.
type Store struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Code      string  `gorm:"size:100;uniqueIndex"`
	Name      string  `gorm:"size:255;not null"`
	Location  *string `gorm:"size:255"`
	IsActive  bool    `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Transactions []Transaction `gorm:"foreignKey:StoreID"`
}

// Movement types recorded against a product.
const (
	MovementRestock    int32 = 1
	MovementAdjustment int32 = 2
	MovementSale       int32 = 3
)

// StockMovement is the audit row written for every stock change. Restocks
// applied from one reorder plan share a single ReferenceID.
type StockMovement struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	ProductID    int64   `gorm:"not null;index"`
	MovementType int32   `gorm:"not null"`
	Quantity     int32   `gorm:"not null"`
	UnitPrice    string  `gorm:"size:50"`
	ReferenceID  string  `gorm:"size:100;index"`
	Notes        *string `gorm:"size:255"`
	CreatedBy    int64
	CreatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
