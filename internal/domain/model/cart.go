package model

import "time"

// ユーザーごとのカートの親行。
// 明細の書き込み前に必ずこの行をFOR UPDATEで取る（同一ユーザーの書き込みを直列化）。
type Cart struct {
	UserID    int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
