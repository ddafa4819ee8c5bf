package handler

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssizenet/intranet-api/internal/model"
)

type stubVideos struct {
	videos map[string]model.Video
}

func newStubVideos() *stubVideos { return &stubVideos{videos: map[string]model.Video{}} }

func (s *stubVideos) Create(_ context.Context, v model.Video) error {
	s.videos[v.ID] = v
	return nil
}

func (s *stubVideos) List(_ context.Context, page, count int) ([]model.Video, error) {
	out := []model.Video{}
	for _, v := range s.videos {
		out = append(out, v)
	}
	return out, nil
}

func (s *stubVideos) GetByID(_ context.Context, id string) (model.Video, error) {
	v, ok := s.videos[id]
	if !ok {
		return model.Video{}, sql.ErrNoRows
	}
	return v, nil
}

func (s *stubVideos) Update(_ context.Context, v model.Video) error {
	if _, ok := s.videos[v.ID]; !ok {
		return sql.ErrNoRows
	}
	s.videos[v.ID] = v
	return nil
}

func (s *stubVideos) SetApproved(_ context.Context, id string, approved int) error {
	v, ok := s.videos[id]
	if !ok {
		return sql.ErrNoRows
	}
	v.Approved = approved
	s.videos[id] = v
	return nil
}

func (s *stubVideos) Delete(_ context.Context, id string) error {
	delete(s.videos, id)
	return nil
}

func TestVideoRegisterStartsPending(t *testing.T) {
	videos := newStubVideos()
	h := NewVideoHandler(videos)
	writer := accessToken(t, "hong", "홍길동", model.AuthorityUser)

	rec := callGuarded(t, h.Register, writer, http.MethodPost, "/v1/videos",
		map[string]string{"title": "신입 환영회", "link": "https://example.com/v/1"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, videos.videos, 1)
	for _, v := range videos.videos {
		assert.Equal(t, "hong", v.Writer)
		assert.Equal(t, model.ApprovalPending, v.Approved)
	}
}

func TestVideoUpdateAllowsWriterAndAdminOnly(t *testing.T) {
	videos := newStubVideos()
	h := NewVideoHandler(videos)
	videos.videos["v1"] = model.Video{ID: "v1", Title: "원본", Writer: "hong"}

	// A different plain user cannot touch it.
	stranger := accessToken(t, "kim", "김철수", model.AuthorityUser)
	rec := callGuarded(t, h.Update, stranger, http.MethodPatch, "/v1/videos/v1",
		map[string]string{"title": "무단 수정"}, map[string]string{"id": "v1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "원본", videos.videos["v1"].Title)

	// The writer can.
	writer := accessToken(t, "hong", "홍길동", model.AuthorityUser)
	rec = callGuarded(t, h.Update, writer, http.MethodPatch, "/v1/videos/v1",
		map[string]string{"title": "작성자 수정"}, map[string]string{"id": "v1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "작성자 수정", videos.videos["v1"].Title)

	// A video admin who is not the writer can too.
	admin := accessToken(t, "admin", "관리자", model.AuthorityVideoAdmin)
	rec = callGuarded(t, h.Update, admin, http.MethodPatch, "/v1/videos/v1",
		map[string]string{"title": "관리자 수정"}, map[string]string{"id": "v1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "관리자 수정", videos.videos["v1"].Title)
}

func TestVideoDeleteOwnership(t *testing.T) {
	videos := newStubVideos()
	h := NewVideoHandler(videos)
	videos.videos["v1"] = model.Video{ID: "v1", Writer: "hong"}

	stranger := accessToken(t, "kim", "김철수", model.AuthorityUser)
	rec := callGuarded(t, h.Delete, stranger, http.MethodDelete, "/v1/videos/v1",
		nil, map[string]string{"id": "v1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := accessToken(t, "admin", "관리자", model.AuthorityVideoAdmin)
	rec = callGuarded(t, h.Delete, admin, http.MethodDelete, "/v1/videos/v1",
		nil, map[string]string{"id": "v1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, videos.videos)
}

func TestVideoApprove(t *testing.T) {
	videos := newStubVideos()
	h := NewVideoHandler(videos)
	videos.videos["v1"] = model.Video{ID: "v1", Writer: "hong"}

	admin := accessToken(t, "admin", "관리자", model.AuthorityVideoAdmin)
	rec := callGuarded(t, h.Approve, admin, http.MethodPost, "/v1/videos/approve",
		map[string]interface{}{"id": "v1", "approved": model.ApprovalApproved}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ApprovalApproved, videos.videos["v1"].Approved)

	rec = callGuarded(t, h.Approve, admin, http.MethodPost, "/v1/videos/approve",
		map[string]interface{}{"id": "missing", "approved": model.ApprovalApproved}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
