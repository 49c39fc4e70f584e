package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

// 商品の読み取り（論理削除済みはgormが除外する）
type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", productID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

type ProfileGormRepository struct {
	db *gorm.DB
}

func NewProfileGormRepository(db *gorm.DB) *ProfileGormRepository {
	return &ProfileGormRepository{db: db}
}

func (r *ProfileGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Profile{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}
	return p, nil
}
