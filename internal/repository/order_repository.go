package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type OrderRepository interface {
	// order.IDは採番されて埋まる
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	// 新しい順
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
}

type OrderLineRepository interface {
	// lines[i].OrderID / ID を埋める
	CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error)
}
