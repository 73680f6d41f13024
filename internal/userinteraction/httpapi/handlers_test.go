package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusfeed/socialmesh/internal/platform/apperr"
)

func TestCreateReply_RejectsMalformedBodyWithoutTouchingService(t *testing.T) {
	h := NewHandlers(nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/posts/post-1/replies", strings.NewReader("{not-json"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("postId")
	c.SetParamValues("post-1")

	require.NoError(t, h.createReply(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateReply_RejectsMalformedBody(t *testing.T) {
	h := NewHandlers(nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/posts/post-1/replies/reply-1", strings.NewReader("{not-json"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.updateReply(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProblem_RendersConflictAs409(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/users/user-1/likes/posts/post-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := problem(c, apperr.New(apperr.KindConflict, "already liked"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
