package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssizenet/intranet-api/internal/config"
	"github.com/ssizenet/intranet-api/internal/middleware"
	"github.com/ssizenet/intranet-api/internal/model"
	"github.com/ssizenet/intranet-api/internal/repository"
	"github.com/ssizenet/intranet-api/internal/utils"
)

// ----- stub stores -----

type stubUsers struct {
	users map[string]model.User
}

func newStubUsers() *stubUsers { return &stubUsers{users: map[string]model.User{}} }

func (s *stubUsers) Create(_ context.Context, u model.User, password string, cost int) error {
	if _, ok := s.users[u.ID]; ok {
		return repository.ErrIDExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	s.users[u.ID] = u
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id string) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *stubUsers) UpdateProfile(_ context.Context, id string, upd repository.ProfileUpdate) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Department != nil {
		u.Department = *upd.Department
	}
	s.users[id] = u
	return nil
}

func (s *stubUsers) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.PasswordHash = hash
	s.users[id] = u
	return nil
}

func (s *stubUsers) UpdatePhoto(_ context.Context, id, photo string) error {
	u, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Photo = photo
	s.users[id] = u
	return nil
}

func (s *stubUsers) Delete(_ context.Context, id string) error {
	delete(s.users, id)
	return nil
}

type stubSessions struct {
	sessions map[string]model.RefreshSession
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: map[string]model.RefreshSession{}}
}

func (s *stubSessions) Upsert(_ context.Context, sess model.RefreshSession) error {
	s.sessions[sess.UserID] = sess
	return nil
}

func (s *stubSessions) Get(_ context.Context, userID string) (model.RefreshSession, error) {
	sess, ok := s.sessions[userID]
	if !ok {
		return model.RefreshSession{}, sql.ErrNoRows
	}
	return sess, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldToken string, sess model.RefreshSession) error {
	cur, ok := s.sessions[sess.UserID]
	if !ok || cur.Token != oldToken {
		return repository.ErrTokenMismatch
	}
	s.sessions[sess.UserID] = sess
	return nil
}

func (s *stubSessions) Delete(_ context.Context, userID string) error {
	delete(s.sessions, userID)
	return nil
}

type stubCatalog struct {
	authorities map[string][]string
}

func (s *stubCatalog) AuthorityItems(_ context.Context, category string) ([]string, error) {
	return s.authorities[category], nil
}

type stubBlobs struct {
	deleted []string
}

func (s *stubBlobs) Put(name string, _ []byte) (string, error) { return "blob-" + name, nil }
func (s *stubBlobs) Delete(key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

// ----- helpers -----

type authEnv struct {
	h        *AuthHandler
	users    *stubUsers
	sessions *stubSessions
	catalog  *stubCatalog
	blobs    *stubBlobs
}

func newAuthEnv() authEnv {
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   30,
		RefreshTTLDays: 3,
		BcryptCost:     4,
	}
	users := newStubUsers()
	sessions := newStubSessions()
	catalog := &stubCatalog{authorities: map[string][]string{}}
	blobs := &stubBlobs{}
	return authEnv{
		h:        NewAuthHandler(cfg, users, sessions, catalog, blobs),
		users:    users,
		sessions: sessions,
		catalog:  catalog,
		blobs:    blobs,
	}
}

func doJSON(t *testing.T, fn echo.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, fn(c))
	return rec
}

func (env authEnv) signup(t *testing.T, id, password, name string) {
	t.Helper()
	rec := doJSON(t, env.h.Signup, http.MethodPost, "/v1/auth/signup",
		map[string]string{"id": id, "password": password, "name": name})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func (env authEnv) signin(t *testing.T, id, password string) tokenPairResp {
	t.Helper()
	rec := doJSON(t, env.h.Signin, http.MethodPost, "/v1/auth/signin",
		map[string]string{"id": id, "password": password})
	require.Equal(t, http.StatusOK, rec.Code)
	var pair tokenPairResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	return pair
}

// ----- tests -----

func TestSignupDuplicateID(t *testing.T) {
	env := newAuthEnv()
	env.signup(t, "hong", "Abcd123!", "홍길동")

	rec := doJSON(t, env.h.Signup, http.MethodPost, "/v1/auth/signup",
		map[string]string{"id": "hong", "password": "Abcd123!", "name": "다른사람"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	env := newAuthEnv()
	rec := doJSON(t, env.h.Signup, http.MethodPost, "/v1/auth/signup",
		map[string]string{"id": "hong", "password": "abcdefgh", "name": "홍길동"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckID(t *testing.T) {
	env := newAuthEnv()
	env.signup(t, "hong", "Abcd123!", "홍길동")

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/check-id?id=hong", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, env.h.CheckID(echo.New().NewContext(req, rec)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/auth/check-id?id=free", nil)
	rec = httptest.NewRecorder()
	require.NoError(t, env.h.CheckID(echo.New().NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSigninFailuresAreIndistinguishable(t *testing.T) {
	env := newAuthEnv()
	env.signup(t, "hong", "Abcd123!", "홍길동")

	unknown := doJSON(t, env.h.Signin, http.MethodPost, "/v1/auth/signin",
		map[string]string{"id": "nobody", "password": "Abcd123!"})
	wrongPass := doJSON(t, env.h.Signin, http.MethodPost, "/v1/auth/signin",
		map[string]string{"id": "hong", "password": "Wrong123!"})

	assert.Equal(t, http.StatusNotFound, unknown.Code)
	assert.Equal(t, http.StatusNotFound, wrongPass.Code)
	assert.Equal(t, unknown.Body.String(), wrongPass.Body.String())
}

func TestSigninEmbedsResolvedAuthorities(t *testing.T) {
	env := newAuthEnv()
	env.signup(t, "hong", "Abcd123!", "홍길동")

	u := env.users.users["hong"]
	u.Responsibility = []string{"영상팀"}
	env.users.users["hong"] = u
	env.catalog.authorities["영상팀"] = []string{model.AuthorityUser, model.AuthorityVideoAdmin}

	pair := env.signin(t, "hong", "Abcd123!")

	claims, err := utils.ParseTokenOfType("test-secret", pair.Access, utils.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "hong", claims.ID)
	assert.Equal(t, "홍길동", claims.Name)
	assert.Equal(t, []string{model.AuthorityUser, model.AuthorityVideoAdmin}, claims.Authority)

	// Refresh tokens never carry authority.
	refreshClaims, err := utils.ParseTokenOfType("test-secret", pair.Refresh, utils.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Empty(t, refreshClaims.Authority)
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newAuthEnv()
	env.signup(t, "hong", "Abcd123!", "홍길동")
	pair := env.signin(t, "hong", "Abcd123!")

	rec := doJSON(t, env.h.Refresh, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)

	var next tokenPairResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
	assert.NotEqual(t, pair.Refresh, next.Refresh)
	assert.Equal(t, next.Refresh, env.sessions.sessions["hong"].Token)
}

func TestRefreshReuseRevokesSession(t *testing.T) {
	env := newAuthEnv()
	env.signup(t, "hong", "Abcd123!", "홍길동")
	pair := env.signin(t, "hong", "Abcd123!")

	rec := doJSON(t, env.h.Refresh, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	var next tokenPairResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))

	// Presenting the superseded token must revoke the whole session.
	rec = doJSON(t, env.h.Refresh, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh": pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	_, ok := env.sessions.sessions["hong"]
	assert.False(t, ok)

	// Even the latest token is dead after the revocation.
	rec = doJSON(t, env.h.Refresh, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh": next.Refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	env := newAuthEnv()
	env.signup(t, "hong", "Abcd123!", "홍길동")
	pair := env.signin(t, "hong", "Abcd123!")

	rec := doJSON(t, env.h.Refresh, http.MethodPost, "/v1/auth/refresh",
		map[string]string{"refresh": pair.Access})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutIsIdempotent(t *testing.T) {
	env := newAuthEnv()
	env.signup(t, "hong", "Abcd123!", "홍길동")
	pair := env.signin(t, "hong", "Abcd123!")

	guarded := middleware.JWTAuth("test-secret")(env.h.Logout)
	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+pair.Access)
		rec := httptest.NewRecorder()
		require.NoError(t, guarded(echo.New().NewContext(req, rec)))
		return rec
	}

	assert.Equal(t, http.StatusOK, call().Code)
	_, ok := env.sessions.sessions["hong"]
	assert.False(t, ok)
	assert.Equal(t, http.StatusOK, call().Code)
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	env := newAuthEnv()
	env.signup(t, "hong", "Abcd123!", "홍길동")
	pair := env.signin(t, "hong", "Abcd123!")

	guarded := middleware.JWTAuth("test-secret")(env.h.ChangePassword)
	call := func(current, changed string) *httptest.ResponseRecorder {
		raw, err := json.Marshal(map[string]string{
			"currentPassword": current, "changedPassword": changed,
		})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPatch, "/v1/auth/password", strings.NewReader(string(raw)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set("Authorization", "Bearer "+pair.Access)
		rec := httptest.NewRecorder()
		require.NoError(t, guarded(echo.New().NewContext(req, rec)))
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, call("Wrong123!", "Efgh456!").Code)
	assert.Equal(t, http.StatusBadRequest, call("Abcd123!", "weak").Code)
	assert.Equal(t, http.StatusOK, call("Abcd123!", "Efgh456!").Code)
	assert.True(t, utils.VerifyPassword(env.users.users["hong"].PasswordHash, "Efgh456!"))
}
