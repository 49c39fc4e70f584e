package server

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Products *handler.ProductHandler
	Profiles *handler.ProfileHandler
	Carts    *handler.CartHandler
	Orders   *handler.OrderHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, users repository.UserReader, h Handlers, metricsHandler http.Handler) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}

	h.Products.RegisterRoutes(e)
	h.Profiles.RegisterRoutes(e, cfg, users)
	h.Carts.RegisterRoutes(e, cfg, users)
	h.Orders.RegisterRoutes(e, cfg, users)
}
