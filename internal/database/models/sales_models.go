package models

import "time"

// Transaction is one recorded sale. UnitPrice is copied from the product at
// the time of sale so later price changes never rewrite history.
type Transaction struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	ProductID   int64  `gorm:"not null;index"`
	StoreID     *int64 `gorm:"index"`
	Quantity    int32  `gorm:"not null"`
	UnitPrice   string `gorm:"size:50;not null"`
	TotalAmount string `gorm:"size:50;not null"`
	SoldAt      time.Time
	CreatedBy   int64
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Store   *Store   `gorm:"foreignKey:StoreID"`
}
