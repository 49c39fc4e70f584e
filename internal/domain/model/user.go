package model

import "time"

type Role string

const RoleUser Role = "USER"

// 認証側が管理するユーザー。
// ここでは「トークンがまだ有効か」を確かめるためだけに読む。
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'USER'"`
	TokenVersion int    `gorm:"not null;default:0"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
