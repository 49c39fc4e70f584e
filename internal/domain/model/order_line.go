package model

import "github.com/shopspring/decimal"

// 注文明細
// SalesPrice / Discount は確定時点のコピー。
type OrderLine struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64           `gorm:"not null;index" json:"order_id"`
	ProductID  int64           `gorm:"not null;index" json:"product_id"`
	SalesPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"sales_price"`
	Quantity   int64           `gorm:"not null" json:"quantity"`
	Discount   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount"`
}
