package repository

import (
	"context"
	"database/sql"

	"github.com/ssizenet/intranet-api/internal/model"
)

// PostRepo persists board posts and their comments.
type PostRepo struct{ DB *sql.DB }

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{DB: db} }

const postColumns = `id, top_category, sub_category, title, body, file_paths,
	registrant_id, registrant_name, download_count, created_at, updated_at`

func scanPost(row interface{ Scan(...interface{}) error }) (model.Post, error) {
	var (
		p     model.Post
		files []byte
	)
	err := row.Scan(&p.ID, &p.TopCategory, &p.SubCategory, &p.Title, &p.Body, &files,
		&p.RegistrantID, &p.RegistrantName, &p.DownloadCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Post{}, err
	}
	if err := scanJSON(files, &p.FilePaths); err != nil {
		return model.Post{}, err
	}
	return p, nil
}

// Create inserts a post.
func (r *PostRepo) Create(ctx context.Context, p model.Post) error {
	files, err := jsonColumn(p.FilePaths)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO posts
		 (id, top_category, sub_category, title, body, file_paths, registrant_id, registrant_name, download_count)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		p.ID, p.TopCategory, p.SubCategory, p.Title, p.Body, files,
		p.RegistrantID, p.RegistrantName, p.DownloadCount)
	return err
}

// List returns one page of posts, newest first. Page is 1-based.
func (r *PostRepo) List(ctx context.Context, page, count int) ([]model.Post, error) {
	if page < 1 {
		page = 1
	}
	if count < 1 {
		count = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posts ORDER BY created_at DESC LIMIT ? OFFSET ?",
		count, (page-1)*count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID fetches a post. sql.ErrNoRows when absent.
func (r *PostRepo) GetByID(ctx context.Context, id string) (model.Post, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+postColumns+" FROM posts WHERE id=? LIMIT 1", id)
	return scanPost(row)
}

// Update rewrites the mutable fields of a post.
func (r *PostRepo) Update(ctx context.Context, p model.Post) error {
	files, err := jsonColumn(p.FilePaths)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE posts
		 SET top_category=?, sub_category=?, title=?, body=?, file_paths=?, updated_at=NOW()
		 WHERE id=?`,
		p.TopCategory, p.SubCategory, p.Title, p.Body, files, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a post. Its comments stay addressable by notice id.
func (r *PostRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM posts WHERE id=?", id)
	return err
}

// CreateComment inserts a comment under a post.
func (r *PostRepo) CreateComment(ctx context.Context, c model.Comment) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (id, notice_id, user_id, user_name, body) VALUES (?,?,?,?,?)",
		c.ID, c.NoticeID, c.UserID, c.UserName, c.Body)
	return err
}

// ListComments returns all comments of a post in ascending creation order.
func (r *PostRepo) ListComments(ctx context.Context, noticeID string) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, notice_id, user_id, user_name, body, created_at, updated_at
		 FROM comments WHERE notice_id=? ORDER BY created_at ASC`, noticeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.NoticeID, &c.UserID, &c.UserName, &c.Body,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetComment fetches one comment. sql.ErrNoRows when absent.
func (r *PostRepo) GetComment(ctx context.Context, id string) (model.Comment, error) {
	var c model.Comment
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, notice_id, user_id, user_name, body, created_at, updated_at
		 FROM comments WHERE id=? LIMIT 1`, id).
		Scan(&c.ID, &c.NoticeID, &c.UserID, &c.UserName, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// UpdateComment rewrites a comment body.
func (r *PostRepo) UpdateComment(ctx context.Context, id, body string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET body=?, updated_at=NOW() WHERE id=?", body, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteComment removes a comment.
func (r *PostRepo) DeleteComment(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	return err
}
