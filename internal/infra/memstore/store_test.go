package memstore

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New()
	require.NoError(t, err)
	return s
}

func TestCartStore_AddOneAccumulates(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Carts().AddOne(ctx, 1, 7))
	}

	lines, err := s.Carts().Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(5), lines[0].Quantity)
}

func TestCartStore_ConcurrentAddOne(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error { return s.Carts().AddOne(ctx, 1, 7) })
	}
	require.NoError(t, g.Wait())

	lines, err := s.Carts().Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(50), lines[0].Quantity)
}

func TestCartStore_SetQuantity(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	carts := s.Carts()

	require.NoError(t, carts.SetQuantity(ctx, 1, 9, 3))
	require.NoError(t, carts.SetQuantity(ctx, 1, 7, 4))
	require.NoError(t, carts.SetQuantity(ctx, 1, 7, 2))

	lines, err := carts.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, int64(7), lines[0].ProductID)
	assert.Equal(t, int64(2), lines[0].Quantity)

	require.NoError(t, carts.SetQuantity(ctx, 1, 7, 0))
	require.NoError(t, carts.SetQuantity(ctx, 1, 7, 0))
	lines, err = carts.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(9), lines[0].ProductID)

	assert.ErrorIs(t, carts.SetQuantity(ctx, 1, 9, -1), repo.ErrInvalidQuantity)
}

func TestCartStore_SetQuantityKeepsDiscount(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutCartLine(model.CartLine{UserID: 1, ProductID: 7, Quantity: 1, DiscountPercent: decimal.NewFromInt(15)}))

	require.NoError(t, s.Carts().SetQuantity(ctx, 1, 7, 3))
	require.NoError(t, s.Carts().AddOne(ctx, 1, 7))

	lines, err := s.Carts().Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(4), lines[0].Quantity)
	assert.Equal(t, "15", lines[0].DiscountPercent.String())
}

func TestCartStore_ClearIsPerUserAndIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	carts := s.Carts()

	require.NoError(t, carts.AddOne(ctx, 1, 7))
	require.NoError(t, carts.AddOne(ctx, 2, 7))

	require.NoError(t, carts.Clear(ctx, 1))
	require.NoError(t, carts.Clear(ctx, 1))

	lines, err := carts.Get(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)

	other, err := carts.Get(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Carts().AddOne(ctx, 1, 7))

	boom := errors.New("boom")
	err := s.TxManager().WithinTx(ctx, func(r repo.TxRepos) error {
		o := model.Order{UserID: 1, Address: "1 Main St"}
		if err := r.Orders().Create(ctx, &o); err != nil {
			return err
		}
		if err := r.OrderLines().CreateBulk(ctx, o.ID, []model.OrderLine{{ProductID: 7, Quantity: 1}}); err != nil {
			return err
		}
		if err := r.Carts().Clear(ctx, 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	orders, err := s.Orders().ListByUserID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, orders)

	lines, err := s.Carts().Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestTxManager_CommitsAndAssignsIDs(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	var orderID int64
	err := s.TxManager().WithinTx(ctx, func(r repo.TxRepos) error {
		o := model.Order{UserID: 1}
		if err := r.Orders().Create(ctx, &o); err != nil {
			return err
		}
		orderID = o.ID
		lines := []model.OrderLine{{ProductID: 7, Quantity: 2}, {ProductID: 8, Quantity: 1}}
		return r.OrderLines().CreateBulk(ctx, o.ID, lines)
	})
	require.NoError(t, err)
	assert.NotZero(t, orderID)

	o, err := s.Orders().FindByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.UserID)

	lines, err := s.OrderLines().ListByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, orderID, lines[0].OrderID)
	assert.Less(t, lines[0].ID, lines[1].ID)

	_, err = s.Orders().FindByID(ctx, orderID+1)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestSeedDemo(t *testing.T) {
	s := newStore(t)
	require.NoError(t, SeedDemo(s))

	p, err := s.Products().FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "19.99", p.Price.StringFixed(2))

	prof, err := s.Profiles().FindByUserID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", prof.City)

	u, err := s.Users().FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, u.IsActive)
}
