package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"uk.co.dudmesh.courier/internal/model"
)

const tenantContextKey = "courier.tenant"

type AuthConfig interface {
	OperatorUsername() string
	OperatorPasswordHash() string
	JWTSecret() string
	TokenTTL() time.Duration
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates the operator credential and mints a bearer token for
// the tenant management API.
func Login(config AuthConfig) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &loginRequest{}
		if err := c.Bind(params); err != nil {
			return httpError(c, model.ErrorInvalidInput)
		}
		if params.Username != config.OperatorUsername() {
			return httpError(c, model.ErrorInvalidUsernameOrPassword)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(config.OperatorPasswordHash()), []byte(params.Password)); err != nil {
			return httpError(c, model.ErrorInvalidUsernameOrPassword)
		}

		claims := jwt.StandardClaims{
			Subject:   params.Username,
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(config.TokenTTL()).Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(config.JWTSecret()))
		if err != nil {
			return httpError(c, err)
		}
		return c.JSON(http.StatusOK, map[string]string{"access_token": token})
	}
}

// OperatorAuth guards the tenant management routes with the operator JWT.
func OperatorAuth(config AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw := strings.TrimPrefix(header, "Bearer ")
			if raw == "" || raw == header {
				return httpError(c, model.ErrorUnauthorized)
			}

			claims := &jwt.StandardClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, model.ErrorUnauthorized
				}
				return []byte(config.JWTSecret()), nil
			})
			if err != nil || !token.Valid || claims.Subject != config.OperatorUsername() {
				return httpError(c, model.ErrorUnauthorized)
			}
			return next(c)
		}
	}
}

// TenantAuth resolves the X-API-Key header to exactly one tenant and stashes
// it on the request context. Every tenant-scoped handler reads the tenant
// from here, so queries are implicitly filtered to the caller's own data.
func TenantAuth(tenants TenantService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get("X-API-Key")
			tenant, err := tenants.ResolveByAPIKey(key)
			if err != nil {
				return httpError(c, model.ErrorUnauthorized)
			}
			c.Set(tenantContextKey, tenant)
			return next(c)
		}
	}
}

func tenantFromContext(c echo.Context) (*model.Tenant, error) {
	tenant, ok := c.Get(tenantContextKey).(*model.Tenant)
	if !ok || tenant == nil {
		return nil, model.ErrorUnauthorized
	}
	return tenant, nil
}
