package identity

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const ContextKey = "identity"

// Identity is the caller resolved by the token provider. Token issuance
// lives in a separate service; this package only verifies and extracts.
type Identity struct {
	UserID   uint
	Username string
	Role     string
}

func (id Identity) IsAdmin() bool {
	return id.Role == "admin"
}

// Middleware resolves the access token into an Identity and stores it on
// the request context. Requests without a valid token are rejected.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := Resolve(c, secret)
			if err != nil {
				return err
			}
			c.Set(ContextKey, id)
			return next(c)
		}
	}
}

// AdminOnly requires an already-resolved identity with the admin role.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := FromEcho(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
			}
			if !id.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "admin only")
			}
			return next(c)
		}
	}
}

func FromEcho(c echo.Context) (Identity, bool) {
	id, ok := c.Get(ContextKey).(Identity)
	return id, ok
}

func Resolve(c echo.Context, secret []byte) (Identity, error) {
	tokenString := tokenFromRequest(c)
	if tokenString == "" {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token: "+err.Error())
	}
	if !token.Valid {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	subRaw, ok := claims["sub"].(float64)
	if !ok {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid subject claim")
	}
	username, _ := claims["username"].(string)
	if username == "" {
		return Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing username claim")
	}
	role, _ := claims["role"].(string)

	return Identity{UserID: uint(subRaw), Username: username, Role: role}, nil
}

func tokenFromRequest(c echo.Context) string {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := c.Cookie("accessToken"); err == nil {
		return cookie.Value
	}
	return ""
}
