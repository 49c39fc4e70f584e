package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

// 数量が負
var ErrInvalidQuantity = errors.New("invalid quantity")

// ユーザーごとのカート。
// 同一ユーザーへの書き込みは親行(carts)のロックで直列化する。
type CartStore interface {
	// product_id順。空なら空スライス（エラーにしない）
	Get(ctx context.Context, userID int64) ([]model.CartLine, error)

	// 既存なら+1、無ければ数量1で作る（1文で原子的に）
	AddOne(ctx context.Context, userID, productID int64) error

	// 0なら削除、正なら上書き（無ければ作る）、負はErrInvalidQuantity
	SetQuantity(ctx context.Context, userID, productID, qty int64) error

	// 明細を全削除。空でもエラーにしない
	Clear(ctx context.Context, userID int64) error

	// 注文確定用。トランザクション内で親行を排他ロックしてから明細を読む
	LockLines(ctx context.Context, userID int64) ([]model.CartLine, error)
}
