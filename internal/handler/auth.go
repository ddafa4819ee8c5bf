package handler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ssizenet/intranet-api/internal/config"
	"github.com/ssizenet/intranet-api/internal/middleware"
	"github.com/ssizenet/intranet-api/internal/model"
	"github.com/ssizenet/intranet-api/internal/repository"
	"github.com/ssizenet/intranet-api/internal/storage"
	"github.com/ssizenet/intranet-api/internal/utils"
)

// Store interfaces consumed by AuthHandler. The concrete repository types
// satisfy them; tests substitute stubs.

type UserStore interface {
	Create(ctx context.Context, u model.User, password string, cost int) error
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdateProfile(ctx context.Context, id string, upd repository.ProfileUpdate) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdatePhoto(ctx context.Context, id, photo string) error
	Delete(ctx context.Context, id string) error
}

type SessionStore interface {
	Upsert(ctx context.Context, s model.RefreshSession) error
	Get(ctx context.Context, userID string) (model.RefreshSession, error)
	Rotate(ctx context.Context, oldToken string, s model.RefreshSession) error
	Delete(ctx context.Context, userID string) error
}

type CatalogStore interface {
	AuthorityItems(ctx context.Context, category string) ([]string, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Users   UserStore
	Tokens  SessionStore
	Catalog CatalogStore
	Blobs   storage.BlobStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t SessionStore, cat CatalogStore, b storage.BlobStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Catalog: cat, Blobs: b}
}

// ----- DTOs -----

type signupReq struct {
	ID          string `json:"id"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
	Birthday    string `json:"birthday"`
	Comments    string `json:"comments"`
}

type signinReq struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	ChangedPassword string `json:"changedPassword"`
}

type updateProfileReq struct {
	Name        *string `json:"name"`
	Department  *string `json:"department"`
	PhoneNumber *string `json:"phoneNumber"`
	Email       *string `json:"email"`
	Birthday    *string `json:"birthday"`
	Comments    *string `json:"comments"`
}

type tokenPairResp struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type profileResp struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Approval       bool      `json:"approval"`
	Department     string    `json:"department"`
	Responsibility []string  `json:"responsibility"`
	PhoneNumber    string    `json:"phoneNumber"`
	Email          string    `json:"email"`
	Birthday       string    `json:"birthday"`
	Comments       string    `json:"comments"`
	Photo          string    `json:"photo,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toProfile(u model.User) profileResp {
	resp := u.Responsibility
	if resp == nil {
		resp = []string{}
	}
	return profileResp{
		ID: u.ID, Name: u.Name, Approval: u.Approval, Department: u.Department,
		Responsibility: resp, PhoneNumber: u.PhoneNumber, Email: u.Email,
		Birthday: u.Birthday, Comments: u.Comments, Photo: u.Photo,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// CheckID: probe whether a user id is still available.
func (h *AuthHandler) CheckID(c echo.Context) error {
	id := strings.TrimSpace(c.QueryParam("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	_, err := h.Users.GetByID(ctx, id)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusOK, echo.Map{"message": "id available"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusConflict, echo.Map{"error": "id already taken"})
}

// Signup: create a member account. The insert itself enforces id
// uniqueness, so two racing signups cannot both succeed.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id/password/name required"})
	}
	if !utils.IsPasswordStrong(req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too weak"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u := model.User{
		ID:             req.ID,
		Name:           req.Name,
		Approval:       true, // deployment policy: auto-approved for now
		Department:     req.Department,
		Responsibility: []string{},
		PhoneNumber:    req.PhoneNumber,
		Email:          req.Email,
		Birthday:       req.Birthday,
		Comments:       req.Comments,
	}
	if err := h.Users.Create(ctx, u, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrIDExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "id already taken"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "signup complete", "id": req.ID})
}

// resolveAuthorities expands responsibility tags through the settings
// catalog into a flat authority list. Missing catalog entries contribute
// nothing.
func (h *AuthHandler) resolveAuthorities(ctx context.Context, tags []string) ([]string, error) {
	authorities := []string{}
	for _, tag := range tags {
		items, err := h.Catalog.AuthorityItems(ctx, tag)
		if err != nil {
			return nil, err
		}
		authorities = append(authorities, items...)
	}
	return authorities, nil
}

// issuePair signs a new access+refresh pair and stores the refresh session,
// replacing any prior one.
func (h *AuthHandler) issuePair(ctx context.Context, id, name string, authority []string, rotateFrom string) (tokenPairResp, error) {
	access, _, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, name, authority, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPairResp{}, err
	}
	refresh, refreshExp, err := utils.NewRefreshToken(h.Cfg.JWTSecret, id, h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPairResp{}, err
	}
	sess := model.RefreshSession{
		UserID:    id,
		Token:     refresh,
		Authority: authority,
		Name:      name,
		IssuedAt:  time.Now().UTC(),
		ExpiresAt: refreshExp,
	}
	if rotateFrom != "" {
		err = h.Tokens.Rotate(ctx, rotateFrom, sess)
	} else {
		err = h.Tokens.Upsert(ctx, sess)
	}
	if err != nil {
		return tokenPairResp{}, err
	}
	return tokenPairResp{Access: access, Refresh: refresh}, nil
}

// Signin: verify credentials, resolve authorities and return a fresh token
// pair. Unknown id and wrong password produce the identical response so
// callers cannot enumerate valid ids.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, req.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid credentials"})
	}

	authorities, err := h.resolveAuthorities(ctx, u.Responsibility)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authority lookup failed"})
	}

	pair, err := h.issuePair(ctx, u.ID, u.Name, authorities, "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	log.Printf("auth: user %s signed in", u.ID)
	return c.JSON(http.StatusOK, pair)
}

// Refresh: rotate the refresh token. Only the most recently issued token
// is valid; presenting an older one deletes the whole session, forcing a
// new signin on every device.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Refresh) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh required"})
	}
	raw := strings.TrimSpace(req.Refresh)

	claims, err := utils.ParseTokenOfType(h.Cfg.JWTSecret, raw, utils.TokenTypeRefresh)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	stored, err := h.Tokens.Get(ctx, claims.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if stored.Token != raw {
		// Reuse of a superseded token is a theft signal: revoke the session.
		log.Printf("auth: stale refresh token presented for user %s, revoking session", claims.ID)
		_ = h.Tokens.Delete(ctx, claims.ID)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}

	pair, err := h.issuePair(ctx, stored.UserID, stored.Name, stored.Authority, raw)
	if err != nil {
		if errors.Is(err, repository.ErrTokenMismatch) {
			// Lost the rotation race to a concurrent refresh.
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	log.Printf("auth: user %s refreshed tokens", stored.UserID)
	return c.JSON(http.StatusOK, pair)
}

// Logout: drop the caller's refresh session. Idempotent; requires a valid
// access token (the guard enforces the token type).
func (h *AuthHandler) Logout(c echo.Context) error {
	ident, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tokens.Delete(ctx, ident.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	log.Printf("auth: user %s logged out", ident.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Profile: return the caller's account sans password hash.
func (h *AuthHandler) Profile(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toProfile(u))
}

// UpdateProfile: apply the provided profile fields to the caller's own
// account. Cross-user mutation is impossible by construction.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.Users.UpdateProfile(ctx, ident.ID, repository.ProfileUpdate{
		Name:        req.Name,
		Department:  req.Department,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Birthday:    req.Birthday,
		Comments:    req.Comments,
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated"})
}

// ChangePassword: verify the current password, enforce the strength
// policy, then store the new hash.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	var req changePasswordReq
	if err := c.Bind(&req); err != nil || req.CurrentPassword == "" || req.ChangedPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "currentPassword/changedPassword required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "password mismatch"})
	}
	if !utils.IsPasswordStrong(req.ChangedPassword) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too weak"})
	}
	hash, err := utils.HashPassword(req.ChangedPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
	}
	if err := h.Users.UpdatePassword(ctx, ident.ID, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// UploadPhoto: store a new profile photo blob and point the account at it.
// An existing photo blob is deleted best-effort first.
func (h *AuthHandler) UploadPhoto(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	fh, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo file required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo file unreadable"})
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo file unreadable"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.Photo != "" {
		if err := h.Blobs.Delete(u.Photo); err != nil {
			log.Printf("auth: delete old photo %q for user %s failed: %v", u.Photo, u.ID, err)
		}
	}

	key, err := h.Blobs.Put(fh.Filename, data)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store photo failed"})
	}
	if err := h.Users.UpdatePhoto(ctx, ident.ID, key); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"photo": key})
}

// DeletePhoto: remove the stored photo blob and clear the reference.
func (h *AuthHandler) DeletePhoto(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.Photo == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no profile photo"})
	}
	if err := h.Blobs.Delete(u.Photo); err != nil {
		log.Printf("auth: delete photo %q for user %s failed: %v", u.Photo, u.ID, err)
	}
	if err := h.Users.UpdatePhoto(ctx, ident.ID, ""); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "photo deleted"})
}

// DeleteAccount: remove the user row and session. The photo blob delete is
// best-effort; a blob store failure must not block account deletion.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	ident, _ := middleware.IdentityFrom(c)
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, ident.ID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if u.Photo != "" {
		if err := h.Blobs.Delete(u.Photo); err != nil {
			log.Printf("auth: delete photo %q for user %s failed: %v", u.Photo, u.ID, err)
		}
	}
	if err := h.Users.Delete(ctx, ident.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	_ = h.Tokens.Delete(ctx, ident.ID)
	log.Printf("auth: user %s deleted account", ident.ID)
	return c.JSON(http.StatusOK, echo.Map{"message": "account deleted"})
}
