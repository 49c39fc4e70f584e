package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/domain/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const OrderPlacedQueue = "order.placed"

type OrderPlaced struct {
	EventType      string          `json:"eventType"`
	OrderID        int64           `json:"orderId"`
	UserID         int64           `json:"userId"`
	Date           string          `json:"date"`
	ShippingAmount decimal.Decimal `json:"shippingAmount"`
	Lines          []OrderLine     `json:"lines"`
	Timestamp      time.Time       `json:"timestamp"`
}

type OrderLine struct {
	ProductID  int64           `json:"productId"`
	Quantity   int64           `json:"quantity"`
	SalesPrice decimal.Decimal `json:"salesPrice"`
	Discount   decimal.Decimal `json:"discount"`
}

func NewOrderPlaced(o model.Order, now time.Time) OrderPlaced {
	ev := OrderPlaced{
		EventType:      "OrderPlaced",
		OrderID:        o.ID,
		UserID:         o.UserID,
		Date:           o.Date.Format("2006-01-02"),
		ShippingAmount: o.ShippingAmount,
		Lines:          make([]OrderLine, 0, len(o.Lines)),
		Timestamp:      now.UTC(),
	}
	for _, l := range o.Lines {
		ev.Lines = append(ev.Lines, OrderLine{
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			SalesPrice: l.SalesPrice,
			Discount:   l.Discount,
		})
	}
	return ev
}

type Publisher struct {
	ch *amqp.Channel
}

func Dial(url string) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(10 * time.Second),
	})
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// 送信前にキューが無いと捨てられるので先に宣言
	_, err = ch.QueueDeclare(OrderPlacedQueue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare %s: %w", OrderPlacedQueue, err)
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, o model.Order) error {
	body, err := json.Marshal(NewOrderPlaced(o, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",               // default exchange
		OrderPlacedQueue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// RABBITMQ_URL未設定のとき
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, model.Order) error { return nil }
