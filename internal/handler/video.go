package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ssizenet/intranet-api/internal/middleware"
	"github.com/ssizenet/intranet-api/internal/model"
)

// VideoStore is the persistence capability consumed by VideoHandler.
type VideoStore interface {
	Create(ctx context.Context, v model.Video) error
	List(ctx context.Context, page, count int) ([]model.Video, error)
	GetByID(ctx context.Context, id string) (model.Video, error)
	Update(ctx context.Context, v model.Video) error
	SetApproved(ctx context.Context, id string, approved int) error
	Delete(ctx context.Context, id string) error
}

// VideoHandler implements the video registry endpoints.
type VideoHandler struct {
	Videos VideoStore
}

func NewVideoHandler(v VideoStore) *VideoHandler { return &VideoHandler{Videos: v} }

type registerVideoReq struct {
	Category   string `json:"category"`
	Title      string `json:"title"`
	UploadDate string `json:"uploadDate"`
	Thumbnail  string `json:"thumbnail"`
	Link       string `json:"link"`
	Caption    string `json:"caption"`
}

type updateVideoReq struct {
	Category   *string `json:"category"`
	Title      *string `json:"title"`
	UploadDate *string `json:"uploadDate"`
	Thumbnail  *string `json:"thumbnail"`
	Link       *string `json:"link"`
	Caption    *string `json:"caption"`
}

type approveVideoReq struct {
	ID       string `json:"id"`
	Approved int    `json:"approved"`
}

// canMutateVideo: video admins may touch any entry, everyone else only
// entries they wrote.
func canMutateVideo(ident middleware.Identity, v model.Video) bool {
	return ident.HasAuthority(model.AuthorityVideoAdmin) || v.Writer == ident.ID
}

// Register creates a pending video entry attributed to the caller.
func (h *VideoHandler) Register(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	var req registerVideoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Link) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/link required"})
	}

	video := model.Video{
		ID:         uuid.NewString(),
		Category:   req.Category,
		Title:      req.Title,
		UploadDate: req.UploadDate,
		Thumbnail:  req.Thumbnail,
		Link:       req.Link,
		Caption:    req.Caption,
		Writer:     ident.ID,
		Approved:   model.ApprovalPending,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Videos.Create(ctx, video); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "register video failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "video registered", "video": video})
}

// List returns one page of videos; 204 when the page is empty.
func (h *VideoHandler) List(c echo.Context) error {
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

	videos, err := h.Videos.List(ctx, page, count)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if len(videos) == 0 {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, videos)
}

// GetByID: one video, 404 when absent.
func (h *VideoHandler) GetByID(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	video, err := h.Videos.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, video)
}

// Update modifies a video's metadata. Admins may edit anything; other
// callers only entries they wrote.
func (h *VideoHandler) Update(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	var req updateVideoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	video, err := h.Videos.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canMutateVideo(ident, video) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the writer may modify this video"})
	}

	if req.Category != nil {
		video.Category = *req.Category
	}
	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.UploadDate != nil {
		video.UploadDate = *req.UploadDate
	}
	if req.Thumbnail != nil {
		video.Thumbnail = *req.Thumbnail
	}
	if req.Link != nil {
		video.Link = *req.Link
	}
	if req.Caption != nil {
		video.Caption = *req.Caption
	}

	if err := h.Videos.Update(ctx, video); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "video updated"})
}

// Approve records the approval decision. Route is gated to video admins.
func (h *VideoHandler) Approve(c echo.Context) error {
	var req approveVideoReq
	if err := c.Bind(&req); err != nil || req.ID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Videos.SetApproved(ctx, req.ID, req.Approved); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "video approval updated"})
}

// Delete removes a video. Same ownership rule as Update.
func (h *VideoHandler) Delete(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	video, err := h.Videos.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "video not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !canMutateVideo(ident, video) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the writer may delete this video"})
	}
	if err := h.Videos.Delete(ctx, video.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "video deleted"})
}
