package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecaseのエラー種別 → ステータス
// 500系は中身（DBエラー等）を返さない
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	ue, ok := usecase.AsError(err)
	if !ok {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	switch ue.Kind {
	case usecase.KindUnauthenticated:
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case usecase.KindNotFound:
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: ue.Message})
	case usecase.KindInvalidArgument, usecase.KindInvalidState:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ue.Message})
	case usecase.KindTransactionFailed:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "checkout failed"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// AuthJWTが入れたuser_id
func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	id, ok := v.(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}
