package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&orders).Error
	if err != nil {
		return []model.Order{}, err
	}
	return orders, nil
}

type OrderLineGormRepository struct {
	db *gorm.DB
}

func NewOrderLineGormRepository(db *gorm.DB) *OrderLineGormRepository {
	return &OrderLineGormRepository{db: db}
}

func (r *OrderLineGormRepository) CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].OrderID = orderID
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *OrderLineGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	var lines []model.OrderLine
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id asc").Find(&lines).Error
	if err != nil {
		return []model.OrderLine{}, err
	}
	return lines, nil
}
