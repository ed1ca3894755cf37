package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"uk.co.dudmesh.courier/internal/model"
)

type testAuthConfig struct {
	passwordHash string
}

func (c testAuthConfig) OperatorUsername() string     { return "operator" }
func (c testAuthConfig) OperatorPasswordHash() string { return c.passwordHash }
func (c testAuthConfig) JWTSecret() string            { return "test-secret" }
func (c testAuthConfig) TokenTTL() time.Duration      { return time.Hour }

type fakeTenantService struct {
	TenantService
	tenant *model.Tenant
}

func (s *fakeTenantService) ResolveByAPIKey(key string) (*model.Tenant, error) {
	if s.tenant != nil && key == s.tenant.APIKey {
		return s.tenant, nil
	}
	return nil, model.ErrorUnauthorized
}

func newAuthConfig(t *testing.T) testAuthConfig {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	return testAuthConfig{passwordHash: string(hash)}
}

func TestLogin(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	config := newAuthConfig(t)
	server := echo.New()

	login := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		require.NoError(Login(config)(server.NewContext(req, rec)))
		return rec
	}

	t.Run("valid credentials", func(t *testing.T) {
		rec := login(`{"username":"operator","password":"password"}`)
		assert.Equal(http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(body["access_token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := login(`{"username":"operator","password":"nope"}`)
		assert.Equal(http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong username", func(t *testing.T) {
		rec := login(`{"username":"intruder","password":"password"}`)
		assert.Equal(http.StatusUnauthorized, rec.Code)
	})
}

func TestOperatorAuth(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	config := newAuthConfig(t)
	server := echo.New()

	protected := OperatorAuth(config)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	request := func(authorization string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/tenants", nil)
		if authorization != "" {
			req.Header.Set(echo.HeaderAuthorization, authorization)
		}
		rec := httptest.NewRecorder()
		require.NoError(protected(server.NewContext(req, rec)))
		return rec
	}

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"operator","password":"password"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		require.NoError(Login(config)(server.NewContext(req, rec)))

		var body map[string]string
		require.NoError(json.Unmarshal(rec.Body.Bytes(), &body))

		assert.Equal(http.StatusOK, request("Bearer "+body["access_token"]).Code)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(http.StatusUnauthorized, request("").Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(http.StatusUnauthorized, request("Bearer not-a-token").Code)
	})
}

func TestTenantAuth(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	server := echo.New()

	tenant := &model.Tenant{ID: "t1", Name: "Acme", APIKey: "K1"}
	tenants := &fakeTenantService{tenant: tenant}

	var seen *model.Tenant
	protected := TenantAuth(tenants)(func(c echo.Context) error {
		var err error
		seen, err = tenantFromContext(c)
		require.NoError(err)
		return c.NoContent(http.StatusOK)
	})

	request := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		rec := httptest.NewRecorder()
		require.NoError(protected(server.NewContext(req, rec)))
		return rec
	}

	t.Run("valid key resolves the tenant", func(t *testing.T) {
		assert.Equal(http.StatusOK, request("K1").Code)
		require.NotNil(seen)
		assert.Equal(tenant.ID, seen.ID)
	})

	t.Run("bad key", func(t *testing.T) {
		assert.Equal(http.StatusUnauthorized, request("K2").Code)
	})

	t.Run("missing key", func(t *testing.T) {
		assert.Equal(http.StatusUnauthorized, request("").Code)
	})
}
