package repository

import (
	"context"
	"database/sql"

	"github.com/ssizenet/intranet-api/internal/model"
)

// VideoRepo persists registered videos and their approval state.
type VideoRepo struct{ DB *sql.DB }

func NewVideoRepo(db *sql.DB) *VideoRepo { return &VideoRepo{DB: db} }

const videoColumns = `id, category, title, upload_date, thumbnail, link, caption,
	writer, approved, created_at, updated_at`

func scanVideo(row interface{ Scan(...interface{}) error }) (model.Video, error) {
	var v model.Video
	err := row.Scan(&v.ID, &v.Category, &v.Title, &v.UploadDate, &v.Thumbnail, &v.Link,
		&v.Caption, &v.Writer, &v.Approved, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// Create inserts a video entry (pending approval).
func (r *VideoRepo) Create(ctx context.Context, v model.Video) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO videos
		 (id, category, title, upload_date, thumbnail, link, caption, writer, approved)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		v.ID, v.Category, v.Title, v.UploadDate, v.Thumbnail, v.Link, v.Caption, v.Writer, v.Approved)
	return err
}

// List returns one page of videos, newest first. Page is 1-based.
func (r *VideoRepo) List(ctx context.Context, page, count int) ([]model.Video, error) {
	if page < 1 {
		page = 1
	}
	if count < 1 {
		count = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+videoColumns+" FROM videos ORDER BY created_at DESC LIMIT ? OFFSET ?",
		count, (page-1)*count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetByID fetches a video. sql.ErrNoRows when absent.
func (r *VideoRepo) GetByID(ctx context.Context, id string) (model.Video, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+videoColumns+" FROM videos WHERE id=? LIMIT 1", id)
	return scanVideo(row)
}

// Update rewrites the mutable metadata fields.
func (r *VideoRepo) Update(ctx context.Context, v model.Video) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE videos
		 SET category=?, title=?, upload_date=?, thumbnail=?, link=?, caption=?, updated_at=NOW()
		 WHERE id=?`,
		v.Category, v.Title, v.UploadDate, v.Thumbnail, v.Link, v.Caption, v.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetApproved stores the approval decision.
func (r *VideoRepo) SetApproved(ctx context.Context, id string, approved int) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE videos SET approved=?, updated_at=NOW() WHERE id=?", approved, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a video entry.
func (r *VideoRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM videos WHERE id=?", id)
	return err
}
