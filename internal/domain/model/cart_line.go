package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細
// (user_id, product_id) で1行。Quantityは常に1以上。
type CartLine struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ProductID int64 `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	Quantity  int64 `gorm:"not null" json:"quantity"`

	//割引率（10 = 10%）。注文確定時にそのまま明細へコピーする
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
