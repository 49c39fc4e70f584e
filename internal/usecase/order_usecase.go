package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Clock interface {
	Now() time.Time
}

// 確定後に通知する先（失敗しても注文は成立済み）
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, order model.Order) error
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	clock     Clock
	publisher OrderPublisher
	shipping  decimal.Decimal
	metrics   *metrics.CheckoutMetrics
	log       *zap.Logger
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	clock Clock,
	publisher OrderPublisher,
	shipping decimal.Decimal,
	m *metrics.CheckoutMetrics,
	log *zap.Logger,
) *OrderUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderUsecase{
		tx:        tx,
		clock:     clock,
		publisher: publisher,
		shipping:  shipping,
		metrics:   m,
		log:       log,
	}
}

type OrderLineOutput struct {
	ID         int64           `json:"id"`
	ProductID  int64           `json:"product_id"`
	SalesPrice decimal.Decimal `json:"sales_price"`
	Quantity   int64           `json:"quantity"`
	Discount   decimal.Decimal `json:"discount"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	UserID         int64             `json:"user_id"`
	Date           time.Time         `json:"date"`
	Address        string            `json:"address"`
	City           string            `json:"city"`
	State          string            `json:"state"`
	Zip            string            `json:"zip"`
	ShippingAmount decimal.Decimal   `json:"shipping_amount"`
	Subtotal       decimal.Decimal   `json:"subtotal"`
	Total          decimal.Decimal   `json:"total"`
	Lines          []OrderLineOutput `json:"lines"`
}

// Checkout はカートを注文に変換する。
// ヘッダ作成・明細作成・カートクリアは1トランザクション。どこで失敗しても何も残らない。
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, errUnauthenticated
	}

	start := time.Now()
	var placed model.Order

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//親行をロックしてから読む（確定中の追加は待たされる）
		cartLines, err := r.Carts().LockLines(ctx, userID)
		if err != nil {
			return WrapError(KindTransactionFailed, "checkout failed", err)
		}
		//価格はここで一度だけ読んでコピーする。
		//カタログから消えた商品はカート表示と同じく数えない
		orderLines := make([]model.OrderLine, 0, len(cartLines))
		for _, cl := range cartLines {
			p, err := r.Products().FindByID(ctx, cl.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				continue
			}
			if err != nil {
				return WrapError(KindTransactionFailed, "checkout failed", err)
			}
			if !p.IsActive {
				return NewError(KindInvalidState, fmt.Sprintf("product %d is no longer available", cl.ProductID))
			}

			orderLines = append(orderLines, model.OrderLine{
				ProductID:  cl.ProductID,
				SalesPrice: p.Price,
				Quantity:   cl.Quantity,
				Discount:   cl.DiscountPercent,
			})
		}
		if len(orderLines) == 0 {
			return NewError(KindInvalidState, "cart is empty")
		}

		profile, err := r.Profiles().FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "no shipping profile")
		}
		if err != nil {
			return WrapError(KindTransactionFailed, "checkout failed", err)
		}

		order := model.Order{
			UserID:         userID,
			Date:           today(u.clock.Now()),
			Address:        profile.Address,
			City:           profile.City,
			State:          profile.State,
			Zip:            profile.Zip,
			ShippingAmount: u.shipping,
		}
		if err := r.Orders().Create(ctx, &order); err != nil {
			return WrapError(KindTransactionFailed, "checkout failed", err)
		}

		if err := r.OrderLines().CreateBulk(ctx, order.ID, orderLines); err != nil {
			return WrapError(KindTransactionFailed, "checkout failed", err)
		}

		if err := r.Carts().Clear(ctx, userID); err != nil {
			return WrapError(KindTransactionFailed, "checkout failed", err)
		}

		order.Lines = orderLines
		placed = order
		return nil
	})

	//commit自体の失敗など、*Error以外はまとめてTransactionFailed
	if err != nil {
		if _, ok := AsError(err); !ok {
			err = WrapError(KindTransactionFailed, "checkout failed", err)
		}
		u.metrics.Observe(KindOf(err).String(), time.Since(start))
		u.logCheckoutFailure(userID, err)
		return OrderOutput{}, err
	}
	u.metrics.Observe("ok", time.Since(start))

	u.log.Info("order placed",
		zap.Int64("user_id", userID),
		zap.Int64("order_id", placed.ID),
		zap.Int("lines", len(placed.Lines)))

	if u.publisher != nil {
		if err := u.publisher.PublishOrderPlaced(ctx, placed); err != nil {
			u.log.Warn("order placed event not published", zap.Int64("order_id", placed.ID), zap.Error(err))
		}
	}

	return toOrderOutput(placed, placed.Lines), nil
}

func (u *OrderUsecase) logCheckoutFailure(userID int64, err error) {
	switch KindOf(err) {
	case KindTransactionFailed, KindInternal:
		u.log.Error("checkout failed", zap.Int64("user_id", userID), zap.Error(err))
	default:
		u.log.Info("checkout rejected", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// ListOrders は自分の注文を新しい順に返す。
func (u *OrderUsecase) ListOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, errUnauthenticated
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByUserID(ctx, userID)
		if err != nil {
			return WrapError(KindInternal, "db error", err)
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
			if err != nil {
				return WrapError(KindInternal, "db error", err)
			}
			outs = append(outs, toOrderOutput(o, lines))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// GetOrder は注文1件。他人の注文は存在しない扱い。
func (u *OrderUsecase) GetOrder(ctx context.Context, userID, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, errUnauthenticated
	}
	if orderID <= 0 {
		return OrderOutput{}, NewError(KindInvalidArgument, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewError(KindNotFound, "order not found")
		}
		if err != nil {
			return WrapError(KindInternal, "db error", err)
		}
		if o.UserID != userID {
			return NewError(KindNotFound, "order not found")
		}

		lines, err := r.OrderLines().ListByOrderID(ctx, orderID)
		if err != nil {
			return WrapError(KindInternal, "db error", err)
		}

		out = toOrderOutput(o, lines)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, lines []model.OrderLine) OrderOutput {
	outLines := make([]OrderLineOutput, 0, len(lines))
	subtotal := decimal.Zero
	for _, l := range lines {
		total := lineTotal(l.SalesPrice, l.Quantity, l.Discount)
		subtotal = subtotal.Add(total)
		outLines = append(outLines, OrderLineOutput{
			ID:         l.ID,
			ProductID:  l.ProductID,
			SalesPrice: l.SalesPrice,
			Quantity:   l.Quantity,
			Discount:   l.Discount,
			LineTotal:  total,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		UserID:         o.UserID,
		Date:           o.Date,
		Address:        o.Address,
		City:           o.City,
		State:          o.State,
		Zip:            o.Zip,
		ShippingAmount: o.ShippingAmount,
		Subtotal:       subtotal,
		Total:          subtotal.Add(o.ShippingAmount),
		Lines:          outLines,
	}
}

// 注文日は日付のみ
func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
