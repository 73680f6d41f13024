// Package httpapi exposes the media service's HTTP surface: GET/POST
// /api/posts, GET /api/posts/{postId}, POST/GET /api/users/{userId}/posts,
// PUT/DELETE /api/users/{userId}/posts/{postId}. It is a thin transport
// adapter over service.Service.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nimbusfeed/socialmesh/internal/media/service"
	"github.com/nimbusfeed/socialmesh/internal/platform/apperr"
	"github.com/nimbusfeed/socialmesh/internal/platform/tracing"
)

// Handlers binds service.Service methods to echo routes.
type Handlers struct {
	svc *service.Service
}

func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// Register mounts every route on group.
func (h *Handlers) Register(group *echo.Group) {
	group.POST("/posts", h.createPost)
	group.GET("/posts", h.listByOwner)
	group.GET("/posts/:postId", h.getPost)
	group.POST("/users/:userId/posts", h.createPost)
	group.GET("/users/:userId/posts", h.listByOwner)
	group.PUT("/users/:userId/posts/:postId", h.addFiles)
	group.DELETE("/users/:userId/posts/:postId", h.deletePost)
}

func (h *Handlers) createPost(c echo.Context) error {
	ownerID := c.Param("userId")
	if ownerID == "" {
		ownerID = c.FormValue("userId")
	}
	content := c.FormValue("text")

	files, err := parseMultipartFiles(c, "media")
	if err != nil {
		return problem(c, apperr.New(apperr.KindValidation, "invalid multipart payload"))
	}

	post, err := h.svc.CreatePost(c.Request().Context(), ownerID, content, files)
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

func (h *Handlers) getPost(c echo.Context) error {
	post, err := h.svc.GetPost(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (h *Handlers) listByOwner(c echo.Context) error {
	perPage, _ := strconv.ParseUint(c.QueryParam("perPage"), 10, 32)
	page, err := h.svc.ListByOwner(c.Request().Context(), c.Param("userId"), uint32(perPage), c.QueryParam("next"))
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *Handlers) addFiles(c echo.Context) error {
	files, err := parseMultipartFiles(c, "media")
	if err != nil {
		return problem(c, apperr.New(apperr.KindValidation, "invalid multipart payload"))
	}

	if err := h.svc.AddFiles(c.Request().Context(), c.Param("postId"), files); err != nil {
		return problem(c, err)
	}
	post, err := h.svc.GetPost(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return problem(c, err)
	}
	return c.JSON(http.StatusOK, post)
}

func (h *Handlers) deletePost(c echo.Context) error {
	if err := h.svc.DeletePost(c.Request().Context(), c.Param("postId")); err != nil {
		return problem(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseMultipartFiles(c echo.Context, field string) ([]service.NewFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body (e.g. a JSON-only request in tests) is not an
		// error; it just means zero files were attached.
		return nil, nil
	}

	headers := form.File[field]
	files := make([]service.NewFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		body := make([]byte, fh.Size)
		if _, err := f.Read(body); err != nil {
			f.Close()
			return nil, err
		}
		f.Close()
		files = append(files, service.NewFile{
			OriginalName: fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			Body:         body,
		})
	}
	return files, nil
}

func problem(c echo.Context, err error) error {
	traceID := tracing.TraceIDFromContext(c.Request().Context())
	p := apperr.ToProblem(err, c.Request().URL.Path, traceID)
	return c.JSON(p.Status, p)
}
