package usecase_test

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// Repository mocks
// =====================

type CartStoreMock struct{ mock.Mock }

func (m *CartStoreMock) Get(ctx context.Context, userID int64) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]model.CartLine)
	return lines, args.Error(1)
}

func (m *CartStoreMock) AddOne(ctx context.Context, userID, productID int64) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *CartStoreMock) SetQuantity(ctx context.Context, userID, productID, qty int64) error {
	return m.Called(ctx, userID, productID, qty).Error(0)
}

func (m *CartStoreMock) Clear(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *CartStoreMock) LockLines(ctx context.Context, userID int64) ([]model.CartLine, error) {
	args := m.Called(ctx, userID)
	lines, _ := args.Get(0).([]model.CartLine)
	return lines, args.Error(1)
}

type CatalogMock struct{ mock.Mock }

func (m *CatalogMock) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

type ProfileMock struct{ mock.Mock }

func (m *ProfileMock) FindByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(model.Profile)
	return p, args.Error(1)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	if args.Error(0) == nil {
		order.ID = 100
	}
	return args.Error(0)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	o, _ := args.Get(0).([]model.Order)
	return o, args.Error(1)
}

type OrderLineRepoMock struct{ mock.Mock }

func (m *OrderLineRepoMock) CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error {
	return m.Called(ctx, orderID, lines).Error(0)
}

func (m *OrderLineRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	args := m.Called(ctx, orderID)
	l, _ := args.Get(0).([]model.OrderLine)
	return l, args.Error(1)
}

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderLines repo.OrderLineRepository
	carts      repo.CartStore
	products   repo.CatalogReader
	profiles   repo.ProfileReader
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderLines() repo.OrderLineRepository { return r.orderLines }
func (r *TxReposMock) Carts() repo.CartStore                { return r.carts }
func (r *TxReposMock) Products() repo.CatalogReader         { return r.products }
func (r *TxReposMock) Profiles() repo.ProfileReader         { return r.profiles }

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) PublishOrderPlaced(ctx context.Context, order model.Order) error {
	return m.Called(ctx, order).Error(0)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
