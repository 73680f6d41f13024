// Package httpapi is the aggregator's HTTP surface: thin handlers that
// delegate to the composition engine and render its result (or a
// downstream failure) as JSON.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nimbusfeed/socialmesh/internal/aggregator/composer"
	"github.com/nimbusfeed/socialmesh/internal/platform/apperr"
	"github.com/nimbusfeed/socialmesh/internal/platform/tracing"
)

const defaultPerPage = 20

type Handlers struct {
	engine *composer.Composer
}

func NewHandlers(engine *composer.Composer) *Handlers {
	return &Handlers{engine: engine}
}

func (h *Handlers) Register(group *echo.Group) {
	group.GET("/posts", h.getPosts)
	group.GET("/posts/:postId", h.getPost)
	group.GET("/users/:userId", h.getUser)
	group.GET("/users/:userId/feed", h.getUserFeed)
}

func (h *Handlers) getPosts(c echo.Context) error {
	perPage := parsePerPage(c.QueryParam("perPage"))
	cursor := c.QueryParam("next")
	interactionUserID := c.QueryParam("userInteractionId")

	view, err := h.engine.GetPaginatedPosts(c.Request().Context(), perPage, cursor, interactionUserID)
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handlers) getPost(c echo.Context) error {
	interactionUserID := c.QueryParam("userInteractionId")

	post, stale, err := h.engine.GetPostByID(c.Request().Context(), c.Param("postId"), interactionUserID)
	if err != nil {
		return problem(c, err)
	}
	if stale {
		c.Response().Header().Set("X-Stale", "true")
	}
	return c.JSON(http.StatusOK, post)
}

func (h *Handlers) getUser(c echo.Context) error {
	interactionUserID := c.QueryParam("interactionUserId")

	view, err := h.engine.GetUserByID(c.Request().Context(), c.Param("userId"), interactionUserID)
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handlers) getUserFeed(c echo.Context) error {
	perPage := parsePerPage(c.QueryParam("perPage"))
	cursor := c.QueryParam("next")

	view, err := h.engine.GetUserFeed(c.Request().Context(), c.Param("userId"), perPage, cursor)
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func parsePerPage(raw string) uint32 {
	if raw == "" {
		return defaultPerPage
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return defaultPerPage
	}
	return uint32(n)
}

func problem(c echo.Context, err error) error {
	traceID := tracing.TraceIDFromContext(c.Request().Context())
	p := apperr.ToProblem(err, c.Request().URL.Path, traceID)
	return c.JSON(p.Status, p)
}
