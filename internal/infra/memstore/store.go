// Package memstore はgo-memdbを使ったインメモリ実装。
// 書き込みトランザクションはmemdbが1本ずつしか許さないので、
// WithinTx中は他の書き込みが全部待つ（= ユーザー単位のロックより強い）。
package memstore

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	memdb "github.com/hashicorp/go-memdb"
)

type Store struct {
	db       *memdb.MemDB
	orderSeq atomic.Int64
	lineSeq  atomic.Int64
}

func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// 単体で使うとき（Tx外）は呼び出しごとにmemdbのトランザクションを張る
func (s *Store) Carts() *CartStore           { return &CartStore{scope{s: s}} }
func (s *Store) Orders() *OrderStore         { return &OrderStore{scope{s: s}} }
func (s *Store) OrderLines() *OrderLineStore { return &OrderLineStore{scope{s: s}} }
func (s *Store) Products() *ProductStore     { return &ProductStore{scope{s: s}} }
func (s *Store) Profiles() *ProfileStore     { return &ProfileStore{scope{s: s}} }
func (s *Store) Users() *UserStore           { return &UserStore{scope{s: s}} }
func (s *Store) TxManager() *TxManager       { return &TxManager{s: s} }

// カタログ・プロフィール・ユーザーは他サービスの持ち物なので投入口だけ用意する

func (s *Store) PutProduct(p model.Product) error   { return s.put(tableProducts, &p) }
func (s *Store) PutProfile(p model.Profile) error   { return s.put(tableProfiles, &p) }
func (s *Store) PutUser(u model.User) error         { return s.put(tableUsers, &u) }
func (s *Store) PutCartLine(l model.CartLine) error { return s.put(tableCartLines, &l) }

func (s *Store) put(table string, obj interface{}) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(table, obj); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// scope はTx内ならそのtxnを、Tx外なら都度txnを使う
type scope struct {
	s   *Store
	txn *memdb.Txn
}

func (sc scope) write(fn func(txn *memdb.Txn) error) error {
	if sc.txn != nil {
		return fn(sc.txn)
	}
	txn := sc.s.db.Txn(true)
	defer txn.Abort()
	if err := fn(txn); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (sc scope) read(fn func(txn *memdb.Txn) error) error {
	if sc.txn != nil {
		return fn(sc.txn)
	}
	txn := sc.s.db.Txn(false)
	defer txn.Abort()
	return fn(txn)
}

type txRepos struct {
	sc scope
}

func (r *txRepos) Orders() repo.OrderRepository         { return &OrderStore{r.sc} }
func (r *txRepos) OrderLines() repo.OrderLineRepository { return &OrderLineStore{r.sc} }
func (r *txRepos) Carts() repo.CartStore                { return &CartStore{r.sc} }
func (r *txRepos) Products() repo.CatalogReader         { return &ProductStore{r.sc} }
func (r *txRepos) Profiles() repo.ProfileReader         { return &ProfileStore{r.sc} }

type TxManager struct {
	s *Store
}

var _ repo.TransactionManager = (*TxManager)(nil)

// fnが失敗したらAbortで全部捨てる
func (tm *TxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := tm.s.db.Txn(true)
	defer txn.Abort()

	if err := fn(&txRepos{sc: scope{s: tm.s, txn: txn}}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// CartStore

type CartStore struct {
	sc scope
}

var _ repo.CartStore = (*CartStore)(nil)

func (c *CartStore) Get(ctx context.Context, userID int64) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := c.sc.read(func(txn *memdb.Txn) error {
		var err error
		lines, err = cartLines(txn, userID)
		return err
	})
	if err != nil {
		return []model.CartLine{}, err
	}
	return lines, nil
}

func (c *CartStore) AddOne(ctx context.Context, userID, productID int64) error {
	return c.sc.write(func(txn *memdb.Txn) error {
		now := time.Now().UTC()
		line := model.CartLine{UserID: userID, ProductID: productID, Quantity: 1, CreatedAt: now, UpdatedAt: now}

		raw, err := txn.First(tableCartLines, "id", userID, productID)
		if err != nil {
			return err
		}
		if raw != nil {
			cur := raw.(*model.CartLine)
			line = *cur
			line.Quantity++
			line.UpdatedAt = now
		}
		return txn.Insert(tableCartLines, &line)
	})
}

func (c *CartStore) SetQuantity(ctx context.Context, userID, productID, qty int64) error {
	if qty < 0 {
		return repo.ErrInvalidQuantity
	}
	return c.sc.write(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableCartLines, "id", userID, productID)
		if err != nil {
			return err
		}
		if qty == 0 {
			if raw == nil {
				return nil
			}
			return txn.Delete(tableCartLines, raw)
		}

		now := time.Now().UTC()
		line := model.CartLine{UserID: userID, ProductID: productID, CreatedAt: now}
		if raw != nil {
			line = *raw.(*model.CartLine)
		}
		line.Quantity = qty
		line.UpdatedAt = now
		return txn.Insert(tableCartLines, &line)
	})
}

func (c *CartStore) Clear(ctx context.Context, userID int64) error {
	return c.sc.write(func(txn *memdb.Txn) error {
		_, err := txn.DeleteAll(tableCartLines, "user", userID)
		return err
	})
}

// memdbの書き込みtxnは排他なので、読むだけでロックを持っていることになる
func (c *CartStore) LockLines(ctx context.Context, userID int64) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := c.sc.write(func(txn *memdb.Txn) error {
		var err error
		lines, err = cartLines(txn, userID)
		return err
	})
	return lines, err
}

func cartLines(txn *memdb.Txn, userID int64) ([]model.CartLine, error) {
	it, err := txn.Get(tableCartLines, "user", userID)
	if err != nil {
		return nil, err
	}
	lines := []model.CartLine{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		lines = append(lines, *obj.(*model.CartLine))
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

// Orders

type OrderStore struct {
	sc scope
}

func (o *OrderStore) Create(ctx context.Context, order *model.Order) error {
	return o.sc.write(func(txn *memdb.Txn) error {
		row := *order
		row.ID = o.sc.s.orderSeq.Add(1)
		row.Lines = nil
		if row.CreatedAt.IsZero() {
			row.CreatedAt = time.Now().UTC()
		}
		if err := txn.Insert(tableOrders, &row); err != nil {
			return err
		}
		order.ID = row.ID
		order.CreatedAt = row.CreatedAt
		return nil
	})
}

func (o *OrderStore) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var out model.Order
	err := o.sc.read(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableOrders, "id", orderID)
		if err != nil {
			return err
		}
		if raw == nil {
			return repo.ErrNotFound
		}
		out = *raw.(*model.Order)
		return nil
	})
	return out, err
}

func (o *OrderStore) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	orders := []model.Order{}
	err := o.sc.read(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableOrders, "user", userID)
		if err != nil {
			return err
		}
		for obj := it.Next(); obj != nil; obj = it.Next() {
			orders = append(orders, *obj.(*model.Order))
		}
		return nil
	})
	if err != nil {
		return []model.Order{}, err
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}

type OrderLineStore struct {
	sc scope
}

func (o *OrderLineStore) CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error {
	return o.sc.write(func(txn *memdb.Txn) error {
		for i := range lines {
			lines[i].OrderID = orderID
			lines[i].ID = o.sc.s.lineSeq.Add(1)
			row := lines[i]
			if err := txn.Insert(tableOrderLines, &row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (o *OrderLineStore) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	lines := []model.OrderLine{}
	err := o.sc.read(func(txn *memdb.Txn) error {
		it, err := txn.Get(tableOrderLines, "order", orderID)
		if err != nil {
			return err
		}
		for obj := it.Next(); obj != nil; obj = it.Next() {
			lines = append(lines, *obj.(*model.OrderLine))
		}
		return nil
	})
	if err != nil {
		return []model.OrderLine{}, err
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

// 読み取り専用

type ProductStore struct {
	sc scope
}

func (p *ProductStore) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	var out model.Product
	err := p.sc.read(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableProducts, "id", productID)
		if err != nil {
			return err
		}
		if raw == nil {
			return repo.ErrNotFound
		}
		out = *raw.(*model.Product)
		return nil
	})
	return out, err
}

type ProfileStore struct {
	sc scope
}

func (p *ProfileStore) FindByUserID(ctx context.Context, userID int64) (model.Profile, error) {
	var out model.Profile
	err := p.sc.read(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableProfiles, "id", userID)
		if err != nil {
			return err
		}
		if raw == nil {
			return repo.ErrNotFound
		}
		out = *raw.(*model.Profile)
		return nil
	})
	return out, err
}

type UserStore struct {
	sc scope
}

var _ repo.UserReader = (*UserStore)(nil)

func (u *UserStore) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	var out model.User
	err := u.sc.read(func(txn *memdb.Txn) error {
		raw, err := txn.First(tableUsers, "id", userID)
		if err != nil {
			return err
		}
		if raw == nil {
			return repo.ErrNotFound
		}
		out = *raw.(*model.User)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
