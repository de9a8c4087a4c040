package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"libraryhub/internal/microservices/http-api/models"
	"libraryhub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roleLedger answers ResolveCaller from a fixed role table; other methods are unused here.
type roleLedger struct {
	service.LedgerService
	roles map[string]string
	err   error
}

func (l roleLedger) ResolveCaller(_ context.Context, userID string) (service.Caller, *models.Profile, error) {
	if l.err != nil {
		return service.Caller{}, nil, l.err
	}
	role, ok := l.roles[userID]
	if !ok {
		role = models.RoleMember
	}
	return service.Caller{UserID: userID, Role: role}, nil, nil
}

func setupRouter(auth service.AuthService, ledger service.LedgerService, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handlers := append([]gin.HandlerFunc{OptionalAuth(auth), LoadCaller(ledger)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		caller := CallerFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": caller.UserID, "role": caller.Role})
	})
	r.GET("/", handlers...)
	return r
}

func bearer(t *testing.T, auth service.AuthService, userID string) string {
	t.Helper()
	token, err := auth.IssueToken(userID, "", time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOptionalAuth(t *testing.T) {
	auth := service.NewAuthService("test-secret")
	r := setupRouter(auth, roleLedger{roles: map[string]string{"boss": models.RoleAdmin}})

	t.Run("anonymous passes", func(t *testing.T) {
		w := serve(r, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"","role":"member"}`, w.Body.String())
	})

	t.Run("valid token resolves role", func(t *testing.T) {
		w := serve(r, bearer(t, auth, "boss"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user_id":"boss","role":"admin"}`, w.Body.String())
	})

	t.Run("malformed header", func(t *testing.T) {
		w := serve(r, "Token abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		w := serve(r, "Bearer abc.def.ghi")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthMiddleware_RequiresHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService("test-secret")
	r := gin.New()
	r.GET("/", AuthMiddleware(auth), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(KeyUserID))
	})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)

	w := serve(r, bearer(t, auth, "user-1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
}

func TestLoadCaller_LookupFailure(t *testing.T) {
	auth := service.NewAuthService("test-secret")
	r := setupRouter(auth, roleLedger{err: errors.New("db down")})

	w := serve(r, bearer(t, auth, "user-1"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireRole(t *testing.T) {
	auth := service.NewAuthService("test-secret")
	ledger := roleLedger{roles: map[string]string{"boss": models.RoleAdmin, "lib": models.RoleLibrarian}}
	r := setupRouter(auth, ledger, RequireRole(models.RoleAdmin, models.RoleLibrarian))

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, bearer(t, auth, "reader")).Code)
	assert.Equal(t, http.StatusOK, serve(r, bearer(t, auth, "boss")).Code)
	assert.Equal(t, http.StatusOK, serve(r, bearer(t, auth, "lib")).Code)
}
