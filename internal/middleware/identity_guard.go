package middleware

import (
	"errors"
	"net/http"

	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

// IdentityGuard はトークンのユーザーが今も有効かをDBで確かめる。
// 見つからない・無効化・token_version不一致は401（fail closed）。
// 引けなかった（DB障害など）ときは500で、資格情報の問題とは分ける
func IdentityGuard(users repository.UserReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(CtxUserIDKey).(int64)
			if !ok || userID <= 0 {
				return unauthorized(c)
			}
			tv, ok := c.Get(CtxTokenVersionKey).(int)
			if !ok {
				return unauthorized(c)
			}

			user, err := users.FindByID(c.Request().Context(), userID)
			if errors.Is(err, repository.ErrNotFound) || (err == nil && user == nil) {
				return unauthorized(c)
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
			}
			if !user.IsActive || user.TokenVersion != tv {
				return unauthorized(c)
			}

			return next(c)
		}
	}
}
