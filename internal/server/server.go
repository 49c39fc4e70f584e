package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// New は共通ミドルウェア付きのechoを返す（ルートは RegisterRoutes で）
func New(log *zap.Logger, m *metrics.ServerMetrics, timeout time.Duration) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	if m != nil {
		e.Use(middleware.Metrics(m))
	}
	e.Use(middleware.RequestLogger(log))
	if timeout > 0 {
		e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{Timeout: timeout}))
	}
	return e
}

// Start はctxが終わるまで待ち受けて、終わったらgraceful shutdown
func Start(ctx context.Context, e *echo.Echo, addr string, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
