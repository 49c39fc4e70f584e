package db

import (
	"fmt"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はSTORE_DRIVERに応じてDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:  logger.Default.LogMode(gormLogLevel(cfg.GoEnv)),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return gorm.Open(postgres.Open(cfg.PostgresDSN()), gcfg)
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath, gcfg)
	default:
		return nil, fmt.Errorf("store driver %q has no gorm dialect", cfg.StoreDriver)
	}
}

// OpenSQLite はSQLiteを開く。
// 書き込みロックはDB単位なので接続は1本に絞る
func OpenSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}
	gdb, err := gorm.Open(sqlite.Open(path), gcfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return gdb, nil
}

// Migrate はテーブルを作る（products / profiles / users は他サービスの持ち物だが、開発用に同じスキーマで作る）
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Profile{},
		&model.Cart{},
		&model.CartLine{},
		&model.Order{},
		&model.OrderLine{},
	)
}

func gormLogLevel(env string) logger.LogLevel {
	if env == "prod" {
		return logger.Error
	}
	return logger.Warn
}
