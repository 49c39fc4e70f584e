package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文ヘッダ。作成後は変更しない。
// 住所はプロフィールからのコピー（参照ではない）。
type Order struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64           `gorm:"not null;index" json:"user_id"`
	Date           time.Time       `gorm:"not null" json:"date"`
	Address        string          `gorm:"type:varchar(255);not null" json:"address"`
	City           string          `gorm:"type:varchar(100);not null" json:"city"`
	State          string          `gorm:"type:varchar(50);not null" json:"state"`
	Zip            string          `gorm:"type:varchar(20);not null" json:"zip"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_amount"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`

	Lines []OrderLine `gorm:"-" json:"lines"`
}
