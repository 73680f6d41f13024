// Package httpapi exposes the user-interaction service's HTTP surface:
// reply CRUD plus like/view endpoints, as a thin transport adapter over
// service.Service.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nimbusfeed/socialmesh/internal/platform/apperr"
	"github.com/nimbusfeed/socialmesh/internal/platform/tracing"
	"github.com/nimbusfeed/socialmesh/internal/userinteraction/service"
)

type Handlers struct {
	svc *service.Service
}

func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

func (h *Handlers) Register(group *echo.Group) {
	group.POST("/posts/:postId/replies", h.createReply)
	group.PUT("/posts/:postId/replies/:replyId", h.updateReply)
	group.DELETE("/posts/:postId/replies/:replyId", h.deleteReply)
	group.GET("/posts/:postId/replies", h.getReplies)
	group.POST("/users/:userId/likes/posts/:postId", h.like)
	group.DELETE("/users/:userId/likes/posts/:postId", h.unlike)
	group.POST("/users/:userId/views/posts/:postId", h.view)
}

type createReplyBody struct {
	ParentID string `json:"parentId"`
	AuthorID string `json:"authorId"`
	Content  string `json:"content"`
}

func (h *Handlers) createReply(c echo.Context) error {
	var body createReplyBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return problem(c, apperr.New(apperr.KindValidation, "invalid request body"))
	}

	parentID := body.ParentID
	if parentID == "" {
		parentID = c.Param("postId")
	}

	reply, err := h.svc.CreateReply(c.Request().Context(), c.Param("postId"), parentID, body.AuthorID, body.Content)
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusCreated, reply)
}

type updateReplyBody struct {
	Content string `json:"content"`
}

func (h *Handlers) updateReply(c echo.Context) error {
	var body updateReplyBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return problem(c, apperr.New(apperr.KindValidation, "invalid request body"))
	}

	reply, err := h.svc.UpdateReply(c.Request().Context(), c.Param("replyId"), body.Content)
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, reply)
}

func (h *Handlers) deleteReply(c echo.Context) error {
	if err := h.svc.DeleteReply(c.Request().Context(), c.Param("replyId")); err != nil {
		return problem(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) getReplies(c echo.Context) error {
	viewer := c.QueryParam("userInteractionId")
	interaction, err := h.svc.GetPostInteractions(c.Request().Context(), c.Param("postId"), viewer)
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, interaction)
}

func (h *Handlers) like(c echo.Context) error {
	added, err := h.svc.Like(c.Request().Context(), c.Param("postId"), c.Param("userId"))
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"added": added})
}

func (h *Handlers) unlike(c echo.Context) error {
	removed, err := h.svc.Unlike(c.Request().Context(), c.Param("postId"), c.Param("userId"))
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"removed": removed})
}

func (h *Handlers) view(c echo.Context) error {
	grew, err := h.svc.View(c.Request().Context(), c.Param("postId"), c.Param("userId"))
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"grew": grew})
}

func problem(c echo.Context, err error) error {
	traceID := tracing.TraceIDFromContext(c.Request().Context())
	p := apperr.ToProblem(err, c.Request().URL.Path, traceID)
	return c.JSON(p.Status, p)
}
