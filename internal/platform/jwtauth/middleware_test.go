package jwtauth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoMiddleware_AllowsValidBearerToken(t *testing.T) {
	svc := NewService("super-secret-signing-key", "socialmesh", "socialmesh-clients")
	token, err := svc.Issue("user-1", time.Hour)
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seenClaims Claims
	handler := svc.EchoMiddleware()(func(c echo.Context) error {
		claims, ok := ClaimsFromEcho(c)
		require.True(t, ok)
		seenClaims = claims
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", seenClaims.Subject)
}

func TestEchoMiddleware_RejectsMissingHeader(t *testing.T) {
	svc := NewService("super-secret-signing-key", "socialmesh", "socialmesh-clients")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := svc.EchoMiddleware()(func(c echo.Context) error {
		t.Fatal("next handler must not run")
		return nil
	})

	err := handler(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestEchoMiddleware_RejectsInvalidToken(t *testing.T) {
	svc := NewService("super-secret-signing-key", "socialmesh", "socialmesh-clients")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := svc.EchoMiddleware()(func(c echo.Context) error {
		t.Fatal("next handler must not run")
		return nil
	})

	err := handler(c)
	require.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
