package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// CartUsecase は /cart の業務ロジックです。
type CartUsecase struct {
	carts    repo.CartStore
	products repo.CatalogReader
	log      *zap.Logger
}

func NewCartUsecase(carts repo.CartStore, products repo.CatalogReader, log *zap.Logger) *CartUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartUsecase{carts: carts, products: products, log: log}
}

// price は現在のカタログ価格（確定前なので参照値）
type CartLineResponse struct {
	ProductID       int64           `json:"product_id"`
	Name            string          `json:"name"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int64           `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

// GetCart はカート取得（無ければ空）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, errUnauthenticated
	}
	return u.buildCartResponse(ctx, userID)
}

// AddProduct は1個追加（同一商品は数量+1）。
func (u *CartUsecase) AddProduct(ctx context.Context, userID, productID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, errUnauthenticated
	}
	if err := u.requireProduct(ctx, productID); err != nil {
		return CartResponse{}, err
	}

	if err := u.carts.AddOne(ctx, userID, productID); err != nil {
		u.log.Error("cart add failed", zap.Int64("user_id", userID), zap.Int64("product_id", productID), zap.Error(err))
		return CartResponse{}, WrapError(KindInternal, "db error", err)
	}
	return u.buildCartResponse(ctx, userID)
}

// SetQuantity は数量を上書き（0で削除）。
func (u *CartUsecase) SetQuantity(ctx context.Context, userID, productID, qty int64) error {
	if userID <= 0 {
		return errUnauthenticated
	}
	if qty < 0 {
		return NewError(KindInvalidArgument, "quantity must be >= 0")
	}
	if productID <= 0 {
		return NewError(KindInvalidArgument, "invalid product id")
	}
	//削除は商品が消えていても通す
	if qty > 0 {
		if err := u.requireProduct(ctx, productID); err != nil {
			return err
		}
	}

	err := u.carts.SetQuantity(ctx, userID, productID, qty)
	if errors.Is(err, repo.ErrInvalidQuantity) {
		return NewError(KindInvalidArgument, "quantity must be >= 0")
	}
	if err != nil {
		u.log.Error("cart update failed", zap.Int64("user_id", userID), zap.Int64("product_id", productID), zap.Error(err))
		return WrapError(KindInternal, "db error", err)
	}
	return nil
}

// ClearCart は全削除して空のカートを返す。
func (u *CartUsecase) ClearCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, errUnauthenticated
	}
	if err := u.carts.Clear(ctx, userID); err != nil {
		u.log.Error("cart clear failed", zap.Int64("user_id", userID), zap.Error(err))
		return CartResponse{}, WrapError(KindInternal, "db error", err)
	}
	return u.buildCartResponse(ctx, userID)
}

// 公開中の商品だけカートに入れられる
func (u *CartUsecase) requireProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return NewError(KindNotFound, "product not found")
	}
	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewError(KindNotFound, "product not found")
	}
	if err != nil {
		return WrapError(KindInternal, "db error", err)
	}
	if !p.IsActive {
		return NewError(KindNotFound, "product not found")
	}
	return nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, userID int64) (CartResponse, error) {
	lines, err := u.carts.Get(ctx, userID)
	if err != nil {
		return CartResponse{}, WrapError(KindInternal, "db error", err)
	}

	out := CartResponse{Items: make([]CartLineResponse, 0, len(lines)), Total: decimal.Zero}
	for _, l := range lines {
		p, err := u.products.FindByID(ctx, l.ProductID)
		//カタログから消えた商品は表示しない（明細は残す）
		if errors.Is(err, repo.ErrNotFound) {
			continue
		}
		if err != nil {
			return CartResponse{}, WrapError(KindInternal, "db error", err)
		}

		item := toCartLineResponse(l, p)
		out.Items = append(out.Items, item)
		out.Total = out.Total.Add(item.LineTotal)
	}
	return out, nil
}

func toCartLineResponse(l model.CartLine, p model.Product) CartLineResponse {
	return CartLineResponse{
		ProductID:       l.ProductID,
		Name:            p.Name,
		Price:           p.Price,
		Quantity:        l.Quantity,
		DiscountPercent: l.DiscountPercent,
		LineTotal:       lineTotal(p.Price, l.Quantity, l.DiscountPercent),
	}
}

// price * qty * (100 - discount) / 100 を2桁に丸める
func lineTotal(price decimal.Decimal, qty int64, discountPercent decimal.Decimal) decimal.Decimal {
	gross := price.Mul(decimal.NewFromInt(qty))
	return gross.Mul(hundred.Sub(discountPercent)).Div(hundred).Round(2)
}
