package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// 永続化の実装
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod

	StoreDriver string // postgres / sqlite / memory

	DatabaseURL      string // あれば最優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	SQLitePath string

	JWTSecret string // JWT署名シークレット

	ShippingAmount decimal.Decimal // 注文ヘッダの送料
	RabbitMQURL    string          // 空ならイベント送信しない
	RequestTimeout time.Duration
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}

	shipping := decimal.Zero
	if v := os.Getenv("SHIPPING_AMOUNT"); v != "" {
		shipping, err = decimal.NewFromString(v)
		if err != nil {
			return Config{}, fmt.Errorf("SHIPPING_AMOUNT must be decimal: %w", err)
		}
	}

	timeout := 10 * time.Second
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		timeout, err = time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("REQUEST_TIMEOUT must be duration: %w", err)
		}
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		StoreDriver: getenv("STORE_DRIVER", DriverPostgres),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "storefront"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		SQLitePath: getenv("SQLITE_PATH", "storefront.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		ShippingAmount: shipping,
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		RequestTimeout: timeout,
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.StoreDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be one of postgres, sqlite, memory: %q", cfg.StoreDriver)
	}
	if cfg.ShippingAmount.IsNegative() {
		return Config{}, fmt.Errorf("SHIPPING_AMOUNT must be >= 0")
	}

	return cfg, nil
}

// PostgresDSN はDATABASE_URLが無ければPOSTGRES_*から組み立てる
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// Addr は ":8080" 形式
func (c Config) Addr() string {
	if len(c.Port) > 0 && c.Port[0] == ':' {
		return c.Port
	}
	return ":" + c.Port
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
