package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// カタログの読み取りだけを約束。
// 書き込みはカタログ管理側の責務。
type CatalogReader interface {
	FindByID(ctx context.Context, productID int64) (model.Product, error)
}
