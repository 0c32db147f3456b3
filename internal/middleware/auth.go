package middleware

import (
	"encoding/json"
	"net/http"
	"storefront/internal/config"
	"storefront/internal/pricing"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	customerKey = "customer"
	userIDKey   = "user_id"
)

// wordPressClaims covers the WordPress JWT plugins: roles live either under
// data.user or at the top level.
type wordPressClaims struct {
	Data struct {
		User struct {
			ID    json.Number `json:"id"`
			Roles []string    `json:"roles"`
		} `json:"user"`
	} `json:"data"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

func (c *wordPressClaims) hasRole(role string) bool {
	for _, roles := range [][]string{c.Data.User.Roles, c.Roles} {
		for _, r := range roles {
			if strings.EqualFold(r, role) {
				return true
			}
		}
	}
	return false
}

func (c *wordPressClaims) userID() string {
	if id := c.Data.User.ID.String(); id != "" {
		return id
	}
	return c.Subject
}

// CustomerMiddleware resolves the customer type from an optional WordPress
// bearer token. Requests without a token are guests and priced as consumers.
func CustomerMiddleware(cfg config.Auth) echo.MiddlewareFunc {
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(customerKey, pricing.CustomerB2C)

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || cfg.JWTSecret == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := &wordPressClaims{}
			if _, err := jwt.ParseWithClaims(raw, claims, keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
				c.Logger().Debugf("reject token: %v", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			if claims.hasRole(cfg.B2BRole) {
				c.Set(customerKey, pricing.CustomerB2B)
			}
			c.Set(userIDKey, claims.userID())
			return next(c)
		}
	}
}

// Customer returns the customer type resolved for the request.
func Customer(c echo.Context) pricing.Customer {
	if customer, ok := c.Get(customerKey).(pricing.Customer); ok {
		return customer
	}
	return pricing.CustomerB2C
}

func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
