package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ssizenet/intranet-api/internal/model"
	"github.com/ssizenet/intranet-api/internal/repository"
)

// SettingStore is the catalog persistence consumed by SettingHandler.
type SettingStore interface {
	Create(ctx context.Context, s model.Setting) error
	Get(ctx context.Context, categoryType, category string) (model.Setting, error)
	Update(ctx context.Context, categoryType, category string, items []model.SettingItem) error
	Delete(ctx context.Context, categoryType, category string) error
}

// SettingHandler manages the (categoryType, category) → items catalog.
// All routes are admin-gated in the router.
type SettingHandler struct {
	Settings SettingStore
}

func NewSettingHandler(s SettingStore) *SettingHandler { return &SettingHandler{Settings: s} }

type settingReq struct {
	CategoryType string              `json:"categoryType"`
	Category     string              `json:"category"`
	Items        []model.SettingItem `json:"items"`
}

func (r settingReq) valid() bool {
	return strings.TrimSpace(r.CategoryType) != "" && strings.TrimSpace(r.Category) != ""
}

// Create registers a new catalog entry; duplicates are a 409.
func (h *SettingHandler) Create(c echo.Context) error {
	var req settingReq
	if err := c.Bind(&req); err != nil || !req.valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "categoryType/category required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.Settings.Create(ctx, model.Setting{
		CategoryType: req.CategoryType,
		Category:     req.Category,
		Items:        req.Items,
	})
	if err != nil {
		if errors.Is(err, repository.ErrIDExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "setting already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create setting failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "setting created"})
}

// Get reads one catalog entry by its composite key.
func (h *SettingHandler) Get(c echo.Context) error {
	categoryType := c.QueryParam("categoryType")
	category := c.QueryParam("category")
	if categoryType == "" || category == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "categoryType/category required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Settings.Get(ctx, categoryType, category)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "setting not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, s)
}

// Update replaces the item list of an existing entry.
func (h *SettingHandler) Update(c echo.Context) error {
	var req settingReq
	if err := c.Bind(&req); err != nil || !req.valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "categoryType/category required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Settings.Update(ctx, req.CategoryType, req.Category, req.Items); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "setting not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update setting failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "setting updated"})
}

// Delete removes a catalog entry; deleting a missing entry still succeeds.
func (h *SettingHandler) Delete(c echo.Context) error {
	categoryType := c.QueryParam("categoryType")
	category := c.QueryParam("category")
	if categoryType == "" || category == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "categoryType/category required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Settings.Delete(ctx, categoryType, category); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete setting failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "setting deleted"})
}
