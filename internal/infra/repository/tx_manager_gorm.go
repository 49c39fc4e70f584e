package repository

import (
	"context"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders     repo.OrderRepository
	orderLines repo.OrderLineRepository
	carts      repo.CartStore
	products   repo.CatalogReader
	profiles   repo.ProfileReader
}

func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderLines() repo.OrderLineRepository { return r.orderLines }
func (r *txReposGorm) Carts() repo.CartStore                { return r.carts }
func (r *txReposGorm) Products() repo.CatalogReader         { return r.products }
func (r *txReposGorm) Profiles() repo.ProfileReader         { return r.profiles }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

var _ repo.TransactionManager = (*TxManagerGorm)(nil)

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:     NewOrderGormRepository(tx),
			orderLines: NewOrderLineGormRepository(tx),
			carts:      NewCartGormRepository(tx),
			products:   NewProductGormRepository(tx),
			profiles:   NewProfileGormRepository(tx),
		}
		return fn(r)
	})
}
