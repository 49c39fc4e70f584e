package middleware

import (
	"strconv"
	"time"

	"storefront/internal/metrics"

	"github.com/labstack/echo/v4"
)

// ルート（/cart/products/:id など）単位で数える
func Metrics(m *metrics.ServerMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.Requests.WithLabelValues(route, strconv.Itoa(c.Response().Status)).Inc()
			m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
			return nil
		}
	}
}
