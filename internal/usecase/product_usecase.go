package usecase

import (
	"context"
	"errors"

	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// 商品の参照だけ（検索・管理はカタログ側）
type ProductUsecase struct {
	products repo.CatalogReader
}

func NewProductUsecase(products repo.CatalogReader) *ProductUsecase {
	return &ProductUsecase{products: products}
}

type ProductOutput struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// 非公開は404
func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, NewError(KindNotFound, "product not found")
	}
	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return ProductOutput{}, NewError(KindNotFound, "product not found")
	}
	if err != nil {
		return ProductOutput{}, WrapError(KindInternal, "db error", err)
	}
	return ProductOutput{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
	}, nil
}
