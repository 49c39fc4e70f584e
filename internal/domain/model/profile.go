package model

// 配送先プロフィール
// プロフィール管理側が書き、ここでは注文確定時に読むだけ。
type Profile struct {
	UserID    int64  `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	FirstName string `gorm:"type:varchar(50)" json:"first_name"`
	LastName  string `gorm:"type:varchar(50)" json:"last_name"`
	Phone     string `gorm:"type:varchar(20)" json:"phone"`
	Email     string `gorm:"type:varchar(200)" json:"email"`

	Address string `gorm:"type:varchar(255);not null" json:"address"`
	City    string `gorm:"type:varchar(100);not null" json:"city"`
	State   string `gorm:"type:varchar(50);not null" json:"state"`
	Zip     string `gorm:"type:varchar(20);not null" json:"zip"`
}
