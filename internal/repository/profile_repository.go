package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 配送先プロフィールの読み取り
type ProfileReader interface {
	FindByUserID(ctx context.Context, userID int64) (model.Profile, error)
}
