//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/events"
	"storefront/internal/infra/db"
	"storefront/internal/infra/repository"
	"storefront/internal/usecase"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestCheckoutIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pgC, dsn := startPostgres(ctx, t)
	defer terminateContainer(t, pgC)

	rabbitC, rabbitURL := startRabbitMQ(ctx, t)
	defer terminateContainer(t, rabbitC)

	gdb := connect(t, dsn)
	seedCatalog(t, gdb)

	conn, err := events.Dial(rabbitURL)
	require.NoError(t, err)
	defer conn.Close()

	pub, err := events.NewPublisher(conn)
	require.NoError(t, err)
	defer pub.Close()

	carts := repository.NewCartGormRepository(gdb)
	products := repository.NewProductGormRepository(gdb)
	cartUC := usecase.NewCartUsecase(carts, products, nil)
	orderUC := usecase.NewOrderUsecase(
		repository.NewTxManagerGorm(gdb),
		fixedClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)},
		pub,
		decimal.RequireFromString("5.00"),
		nil,
		nil,
	)

	// 同時に積んでも取りこぼさない
	const adds = 10
	var g errgroup.Group
	for i := 0; i < adds; i++ {
		g.Go(func() error {
			return carts.AddOne(ctx, 1, 7)
		})
	}
	require.NoError(t, g.Wait())

	lines, err := carts.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, int64(adds), lines[0].Quantity)

	require.NoError(t, cartUC.SetQuantity(ctx, 1, 7, 2))

	deliveries := consume(ctx, t, conn)

	order, err := orderUC.Checkout(ctx, 1)
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)
	require.Equal(t, int64(7), order.Lines[0].ProductID)
	require.Equal(t, int64(2), order.Lines[0].Quantity)
	require.True(t, decimal.RequireFromString("19.99").Equal(order.Lines[0].SalesPrice))
	require.Equal(t, "1 Main St", order.Address)
	require.Equal(t, "Springfield", order.City)

	lines, err = carts.Get(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, lines)

	select {
	case d := <-deliveries:
		var ev events.OrderPlaced
		require.NoError(t, json.Unmarshal(d.Body, &ev))
		require.Equal(t, order.ID, ev.OrderID)
		require.Equal(t, "2026-03-14", ev.Date)
		require.Len(t, ev.Lines, 1)
		require.Equal(t, int64(2), ev.Lines[0].Quantity)
	case <-ctx.Done():
		t.Fatal("timed out waiting for OrderPlaced")
	}

	// 空カートの再チェックアウトは注文を作らない
	_, err = orderUC.Checkout(ctx, 1)
	require.Equal(t, usecase.KindInvalidState, usecase.KindOf(err))

	var count int64
	require.NoError(t, gdb.Model(&model.Order{}).Where("user_id = ?", 1).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCheckoutRollbackIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	pgC, dsn := startPostgres(ctx, t)
	defer terminateContainer(t, pgC)

	gdb := connect(t, dsn)
	seedCatalog(t, gdb)

	carts := repository.NewCartGormRepository(gdb)
	require.NoError(t, carts.AddOne(ctx, 1, 7))
	require.NoError(t, carts.AddOne(ctx, 1, 7))

	// ヘッダ挿入後に明細の挿入を落とす
	require.NoError(t, gdb.Callback().Create().Before("gorm:create").Register("it:fail_order_lines", func(tx *gorm.DB) {
		if tx.Statement.Schema != nil && tx.Statement.Schema.Table == "order_lines" {
			_ = tx.AddError(errors.New("order_lines unavailable"))
		}
	}))

	orderUC := usecase.NewOrderUsecase(
		repository.NewTxManagerGorm(gdb),
		fixedClock{t: time.Now()},
		events.NopPublisher{},
		decimal.Zero,
		nil,
		nil,
	)

	_, err := orderUC.Checkout(ctx, 1)
	require.Equal(t, usecase.KindTransactionFailed, usecase.KindOf(err))

	var count int64
	require.NoError(t, gdb.Model(&model.Order{}).Count(&count).Error)
	require.Zero(t, count)

	lines, err := carts.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, int64(2), lines[0].Quantity)
}

func connect(t *testing.T, dsn string) *gorm.DB {
	t.Helper()

	gdb, err := db.Connect(config.Config{
		GoEnv:       "prod",
		StoreDriver: config.DriverPostgres,
		DatabaseURL: dsn,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func seedCatalog(t *testing.T, gdb *gorm.DB) {
	t.Helper()

	require.NoError(t, gdb.Create(&model.Product{
		ID:       7,
		Name:     "Wireless Mouse",
		Price:    decimal.RequireFromString("19.99"),
		IsActive: true,
	}).Error)
	require.NoError(t, gdb.Create(&model.Profile{
		UserID:  1,
		Address: "1 Main St",
		City:    "Springfield",
		State:   "IL",
		Zip:     "62701",
	}).Error)
}

func consume(ctx context.Context, t *testing.T, conn *amqp.Connection) <-chan amqp.Delivery {
	t.Helper()

	ch, err := conn.Channel()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })

	_, err = ch.QueueDeclare(events.OrderPlacedQueue, true, false, false, false, nil)
	require.NoError(t, err)

	deliveries, err := ch.ConsumeWithContext(ctx, events.OrderPlacedQueue, "", true, false, false, false, nil)
	require.NoError(t, err)
	return deliveries
}

func startPostgres(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "storefront"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/storefront?sslmode=disable", host, mappedPort.Port())
	return container, dsn
}

func startRabbitMQ(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{"5672/tcp", "15672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	return container, fmt.Sprintf("amqp://guest:guest@%s:%s/", host, mappedPort.Port())
}

func terminateContainer(t *testing.T, c testcontainers.Container) {
	t.Helper()
	terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.Terminate(terminateCtx))
}
