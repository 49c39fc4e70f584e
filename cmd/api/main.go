package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/memstore"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// 永続化の実装をまとめたもの
type stores struct {
	tx       repository.TransactionManager
	carts    repository.CartStore
	products repository.CatalogReader
	profiles repository.ProfileReader
	users    repository.UserReader
}

func openStores(cfg config.Config, log *zap.Logger) (stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		s, err := memstore.New()
		if err != nil {
			return stores{}, err
		}
		if err := memstore.SeedDemo(s); err != nil {
			return stores{}, err
		}
		log.Warn("using in-memory store; data is lost on exit")
		return stores{
			tx:       s.TxManager(),
			carts:    s.Carts(),
			products: s.Products(),
			profiles: s.Profiles(),
			users:    s.Users(),
		}, nil
	}

	gormDB, err := db.Connect(cfg)
	if err != nil {
		return stores{}, fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return stores{}, fmt.Errorf("migrate: %w", err)
	}
	return stores{
		tx:       infraRepo.NewTxManagerGorm(gormDB),
		carts:    infraRepo.NewCartGormRepository(gormDB),
		products: infraRepo.NewProductGormRepository(gormDB),
		profiles: infraRepo.NewProfileGormRepository(gormDB),
		users:    infraRepo.NewUserGormRepository(gormDB),
	}, nil
}

func main() {
	//.envは無くてもよい（環境変数を直接渡す運用もある）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.GoEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(reg, "api")
	checkoutMetrics := metrics.NewCheckoutMetrics(reg, "orders")

	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}

	//RabbitMQは任意。つながらなくても注文は受ける
	var publisher usecase.OrderPublisher = events.NopPublisher{}
	var brokerClosed chan *amqp.Error
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			return fmt.Errorf("dial rabbitmq: %w", err)
		}
		defer conn.Close()
		brokerClosed = conn.NotifyClose(make(chan *amqp.Error, 1))

		pub, err := events.NewPublisher(conn)
		if err != nil {
			return err
		}
		defer pub.Close()
		publisher = pub
	}

	//Usecase生成
	cartUC := usecase.NewCartUsecase(st.carts, st.products, log)
	orderUC := usecase.NewOrderUsecase(st.tx, &realClock{}, publisher, cfg.ShippingAmount, checkoutMetrics, log)
	productUC := usecase.NewProductUsecase(st.products)
	profileUC := usecase.NewProfileUsecase(st.profiles)

	e := server.New(log, serverMetrics, cfg.RequestTimeout)
	server.RegisterRoutes(e, cfg, st.users, server.Handlers{
		Products: handler.NewProductHandler(productUC),
		Profiles: handler.NewProfileHandler(profileUC),
		Carts:    handler.NewCartHandler(cartUC),
		Orders:   handler.NewOrderHandler(orderUC),
	}, metrics.Handler(reg))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx, e, cfg.Addr(), log)
	})
	if brokerClosed != nil {
		g.Go(func() error {
			return events.WatchClose(gctx, brokerClosed, log)
		})
	}
	return g.Wait()
}
