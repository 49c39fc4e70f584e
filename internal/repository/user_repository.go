package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 認証ミドルウェアがtoken_versionの照合に使う
type UserReader interface {
	FindByID(ctx context.Context, userID int64) (*model.User, error)
}
