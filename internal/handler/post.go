package handler

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ssizenet/intranet-api/internal/middleware"
	"github.com/ssizenet/intranet-api/internal/model"
	"github.com/ssizenet/intranet-api/internal/storage"
)

// PostStore is the persistence capability consumed by PostHandler.
type PostStore interface {
	Create(ctx context.Context, p model.Post) error
	List(ctx context.Context, page, count int) ([]model.Post, error)
	GetByID(ctx context.Context, id string) (model.Post, error)
	Update(ctx context.Context, p model.Post) error
	Delete(ctx context.Context, id string) error

	CreateComment(ctx context.Context, c model.Comment) error
	ListComments(ctx context.Context, noticeID string) ([]model.Comment, error)
	GetComment(ctx context.Context, id string) (model.Comment, error)
	UpdateComment(ctx context.Context, id, body string) error
	DeleteComment(ctx context.Context, id string) error
}

// PostHandler implements the board endpoints: posts with file attachments
// plus their comments.
type PostHandler struct {
	Posts PostStore
	Blobs storage.BlobStore
}

func NewPostHandler(p PostStore, b storage.BlobStore) *PostHandler {
	return &PostHandler{Posts: p, Blobs: b}
}

type updatePostReq struct {
	TopCategory *string `json:"topCategory"`
	SubCategory *string `json:"subCategory"`
	Title       *string `json:"title"`
	Body        *string `json:"body"`
}

type commentReq struct {
	Body string `json:"body"`
}

// canMutatePost: board admins may touch any post, everyone else only posts
// they registered.
func canMutatePost(ident middleware.Identity, p model.Post) bool {
	return ident.HasAuthority(model.AuthorityBoardAdmin) || p.RegistrantID == ident.ID
}

func canMutateComment(ident middleware.Identity, cm model.Comment) bool {
	return ident.HasAuthority(model.AuthorityBoardAdmin) || cm.UserID == ident.ID
}

// storeAttachments saves every "files" part to the blob store and returns
// the resulting keys. On any failure the already-stored blobs are removed.
func (h *PostHandler) storeAttachments(c echo.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return []string{}, nil // no attachments is fine
	}
	keys := []string{}
	for _, fh := range form.File["files"] {
		src, err := fh.Open()
		if err != nil {
			h.dropAttachments(keys)
			return nil, err
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			h.dropAttachments(keys)
			return nil, err
		}
		key, err := h.Blobs.Put(fh.Filename, data)
		if err != nil {
			h.dropAttachments(keys)
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (h *PostHandler) dropAttachments(keys []string) {
	for _, k := range keys {
		_ = h.Blobs.Delete(k)
	}
}

// Create registers a board post. Accepts multipart form data so file
// attachments can ride along with the fields.
func (h *PostHandler) Create(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	files, err := h.storeAttachments(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store attachment failed"})
	}

	post := model.Post{
		ID:             uuid.NewString(),
		TopCategory:    c.FormValue("topCategory"),
		SubCategory:    c.FormValue("subCategory"),
		Title:          title,
		Body:           c.FormValue("body"),
		FilePaths:      files,
		RegistrantID:   ident.ID,
		RegistrantName: ident.Name,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Posts.Create(ctx, post); err != nil {
		h.dropAttachments(files)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create post failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "post created", "post": post})
}

// List returns one page of posts; 204 when the page is empty.
func (h *PostHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	count, _ := strconv.Atoi(c.QueryParam("count"))
	if page < 1 {
		page = 1
	}
	if count < 1 {
		count = 10
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	posts, err := h.Posts.List(ctx, page, count)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(posts) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetByID returns one post with its comments.
func (h *PostHandler) GetByID(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	post, err := h.Posts.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	comments, err := h.Posts.ListComments(ctx, post.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"post": post, "comments": comments})
}

// Update modifies a post's fields. Attachments are unchanged here; new
// files replace old ones only through Create/Delete of the post itself.
func (h *PostHandler) Update(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	var req updatePostReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	post, err := h.Posts.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canMutatePost(ident, post) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the registrant may modify this post"})
	}

	if req.TopCategory != nil {
		post.TopCategory = *req.TopCategory
	}
	if req.SubCategory != nil {
		post.SubCategory = *req.SubCategory
	}
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Body != nil {
		post.Body = *req.Body
	}

	if err := h.Posts.Update(ctx, post); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "post updated"})
}

// Delete removes a post and its stored attachments (best effort).
func (h *PostHandler) Delete(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	post, err := h.Posts.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canMutatePost(ident, post) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the registrant may delete this post"})
	}
	if err := h.Posts.Delete(ctx, post.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.dropAttachments(post.FilePaths)
	return c.JSON(http.StatusOK, echo.Map{"message": "post deleted"})
}

// CreateComment attaches a comment to a post.
func (h *PostHandler) CreateComment(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	// The post must exist before we hang a comment off it.
	if _, err := h.Posts.GetByID(ctx, c.Param("id")); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	comment := model.Comment{
		ID:       uuid.NewString(),
		NoticeID: c.Param("id"),
		UserID:   ident.ID,
		UserName: ident.Name,
		Body:     req.Body,
	}
	if err := h.Posts.CreateComment(ctx, comment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "comment created", "comment": comment})
}

// UpdateComment rewrites a comment body; board admins or the author only.
func (h *PostHandler) UpdateComment(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	var req commentReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	comment, err := h.Posts.GetComment(ctx, c.Param("commentId"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canMutateComment(ident, comment) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the author may modify this comment"})
	}
	if err := h.Posts.UpdateComment(ctx, comment.ID, req.Body); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "comment updated"})
}

// DeleteComment removes a comment; board admins or the author only.
func (h *PostHandler) DeleteComment(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	comment, err := h.Posts.GetComment(ctx, c.Param("commentId"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canMutateComment(ident, comment) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the author may delete this comment"})
	}
	if err := h.Posts.DeleteComment(ctx, comment.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "comment deleted"})
}
