package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ssizenet/intranet-api/internal/model"
	"github.com/ssizenet/intranet-api/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password and inserts the user. The primary key insert
// doubles as the uniqueness check: a duplicate-key error from a racing
// signup surfaces as ErrIDExists instead of relying on a separate lookup.
func (r *UserRepo) Create(ctx context.Context, u model.User, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	resp, err := jsonColumn(u.Responsibility)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO users
		 (id, name, password_hash, approval, department, responsibility, phone_number, email, birthday, comments)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		u.ID, u.Name, hash, u.Approval, u.Department, resp, u.PhoneNumber, u.Email, u.Birthday, u.Comments)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrIDExists
		}
		return err
	}
	return nil
}

// GetByID fetches a user by id. sql.ErrNoRows when absent.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	var (
		u     model.User
		resp  []byte
		photo sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, password_hash, approval, department, responsibility,
		        phone_number, email, birthday, comments, photo, created_at, updated_at
		 FROM users WHERE id=? LIMIT 1`, id).
		Scan(&u.ID, &u.Name, &u.PasswordHash, &u.Approval, &u.Department, &resp,
			&u.PhoneNumber, &u.Email, &u.Birthday, &u.Comments, &photo, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	if err := scanJSON(resp, &u.Responsibility); err != nil {
		return model.User{}, err
	}
	u.Photo = photo.String
	return u, nil
}

// ProfileUpdate carries the optional profile fields of an update request.
// Nil pointers leave the stored value untouched.
type ProfileUpdate struct {
	Name        *string
	Department  *string
	PhoneNumber *string
	Email       *string
	Birthday    *string
	Comments    *string
}

// UpdateProfile applies the non-nil fields of upd to the user row.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) error {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	add := func(col string, v *string) {
		if v != nil {
			set = append(set, col+"=?")
			args = append(args, *v)
		}
	}
	add("name", upd.Name)
	add("department", upd.Department)
	add("phone_number", upd.PhoneNumber)
	add("email", upd.Email)
	add("birthday", upd.Birthday)
	add("comments", upd.Comments)
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ", ")+", updated_at=NOW() WHERE id=?", args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=NOW() WHERE id=?", hash, id)
	return err
}

// UpdatePhoto sets the profile photo reference; an empty string clears it.
func (r *UserRepo) UpdatePhoto(ctx context.Context, id, photo string) error {
	var v interface{}
	if photo != "" {
		v = photo
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET photo=?, updated_at=NOW() WHERE id=?", v, id)
	return err
}

// Delete removes the user row. Associated blobs are cleaned up by the
// caller best-effort; rentals and posts are deliberately left in place.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}
