package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const headerRequestID = "X-Request-ID"

// アクセスログ。X-Request-IDが無ければ振る
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(headerRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(headerRequestID, rid)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("request_id", rid),
				zap.String("method", req.Method),
				zap.String("path", c.Path()),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
			}
			if uid, ok := c.Get(CtxUserIDKey).(int64); ok {
				fields = append(fields, zap.Int64("user_id", uid))
			}
			if c.Response().Status >= 500 {
				log.Error("request", fields...)
			} else {
				log.Info("request", fields...)
			}
			return nil
		}
	}
}
