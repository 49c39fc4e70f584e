package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

var _ repo.CartStore = (*CartGormRepository)(nil)

// 明細をproduct_id順で取得
func (r *CartGormRepository) Get(ctx context.Context, userID int64) ([]model.CartLine, error) {
	var lines []model.CartLine

	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("product_id asc").
		Find(&lines).Error; err != nil {
		return []model.CartLine{}, err
	}
	return lines, nil
}

// 同一商品は数量+1
func (r *CartGormRepository) AddOne(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, userID); err != nil {
			return err
		}

		now := time.Now()
		line := model.CartLine{
			UserID:    userID,
			ProductID: productID,
			Quantity:  1,
			CreatedAt: now,
			UpdatedAt: now,
		}

		//INSERT ... ON CONFLICT DO UPDATE で読み→書きの隙間を作らない
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_lines.quantity + ?", 1),
				"updated_at": now,
			}),
		}).Create(&line).Error
	})
}

// 数量を上書き。0は削除
func (r *CartGormRepository) SetQuantity(ctx context.Context, userID, productID, qty int64) error {
	if qty < 0 {
		return repo.ErrInvalidQuantity
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, userID); err != nil {
			return err
		}

		if qty == 0 {
			return tx.
				Where("user_id = ? AND product_id = ?", userID, productID).
				Delete(&model.CartLine{}).Error
		}

		now := time.Now()
		line := model.CartLine{
			UserID:    userID,
			ProductID: productID,
			Quantity:  qty,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).Create(&line).Error
	})
}

// 明細を全削除
func (r *CartGormRepository) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockCart(tx, userID); err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&model.CartLine{}).Error
	})
}

// 注文確定用。呼び出し側のトランザクションが終わるまでロックを持つ
func (r *CartGormRepository) LockLines(ctx context.Context, userID int64) ([]model.CartLine, error) {
	tx := r.db.WithContext(ctx)
	if err := lockCart(tx, userID); err != nil {
		return nil, err
	}

	var lines []model.CartLine
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("product_id asc").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// 親行(carts)を無ければ作り、FOR UPDATEで取る。
// 明細が0件でもロック対象が必ずあるので、空カートへの同時追加も直列になる
func lockCart(tx *gorm.DB, userID int64) error {
	if err := tx.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Cart{UserID: userID}).Error; err != nil {
		return err
	}

	var cart model.Cart
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repo.ErrNotFound
	}
	return err
}
