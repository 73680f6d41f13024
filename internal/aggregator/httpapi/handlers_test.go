package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusfeed/socialmesh/internal/platform/apperr"
)

func TestParsePerPage(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want uint32
	}{
		{"empty falls back to default", "", defaultPerPage},
		{"zero falls back to default", "0", defaultPerPage},
		{"unparsable falls back to default", "not-a-number", defaultPerPage},
		{"valid value is used as-is", "50", 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parsePerPage(tc.raw))
		})
	}
}

func TestProblem_RendersUpstreamFailureAs502(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/posts/post-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := problem(c, apperr.New(apperr.KindUpstream, "post service unavailable"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "post service unavailable")
}
