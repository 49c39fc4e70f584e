package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // int64
	CtxTokenVersionKey = "token_version" // int
)

// bearerAuth用のJWT検証ミドルウェア。
// 発行は認証サービス側。ここではsub / tvを取り出すだけ（roleは見ない）
func AuthJWT(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.JWTSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawToken, ok := bearerToken(c.Request().Header.Get("Authorization"))
			if !ok {
				return unauthorized(c)
			}

			token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return secret, nil
			})
			if err != nil || token == nil || !token.Valid {
				return unauthorized(c)
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c)
			}

			userID, err := parseUserID(claims["sub"])
			if err != nil || userID <= 0 {
				return unauthorized(c)
			}

			//tvが無い古いトークンは0扱い
			tv := 0
			if raw, exists := claims["tv"]; exists {
				tv, err = parseInt(raw)
				if err != nil || tv < 0 {
					return unauthorized(c)
				}
			}

			c.Set(CtxUserIDKey, userID)
			c.Set(CtxTokenVersionKey, tv)

			return next(c)
		}
	}
}

// "Bearer xxx" からxxxを取り出す
func bearerToken(authz string) (string, bool) {
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

type errorResponse struct {
	Error string `json:"error"`
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
}

// subをint64に変換する。小数は切り捨てずに弾く
func parseUserID(v interface{}) (int64, error) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, errors.New("invalid sub")
		}
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, errors.New("invalid sub")
	}
}

func parseInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, errors.New("invalid int")
		}
		return int(t), nil
	case string:
		i64, err := strconv.ParseInt(t, 10, 32)
		if err != nil {
			return 0, err
		}
		return int(i64), nil
	default:
		return 0, errors.New("invalid int")
	}
}
