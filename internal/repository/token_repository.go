package repository

import (
	"context"
	"database/sql"

	"github.com/ssizenet/intranet-api/internal/model"
)

// TokenRepo persists the single-slot refresh session per user. Issuing a
// new token overwrites the row; the previous refresh token is thereby
// revoked without needing a revocation list.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Upsert stores the session for a user, replacing any prior one.
func (r *TokenRepo) Upsert(ctx context.Context, s model.RefreshSession) error {
	auth, err := jsonColumn(s.Authority)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO refresh_sessions (user_id, token, authority, name, issued_at, expires_at)
		 VALUES (?,?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE
		   token=VALUES(token), authority=VALUES(authority), name=VALUES(name),
		   issued_at=VALUES(issued_at), expires_at=VALUES(expires_at)`,
		s.UserID, s.Token, auth, s.Name, s.IssuedAt, s.ExpiresAt)
	return err
}

// Get loads the session for a user. sql.ErrNoRows when absent.
func (r *TokenRepo) Get(ctx context.Context, userID string) (model.RefreshSession, error) {
	var (
		s    model.RefreshSession
		auth []byte
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT user_id, token, authority, name, issued_at, expires_at
		 FROM refresh_sessions WHERE user_id=? LIMIT 1`, userID).
		Scan(&s.UserID, &s.Token, &auth, &s.Name, &s.IssuedAt, &s.ExpiresAt)
	if err != nil {
		return model.RefreshSession{}, err
	}
	if err := scanJSON(auth, &s.Authority); err != nil {
		return model.RefreshSession{}, err
	}
	return s, nil
}

// Rotate swaps the stored token for a new session atomically: the UPDATE
// only matches while the stored token still equals oldToken, so of two
// concurrent refreshes presenting the same token exactly one wins. The
// loser gets ErrTokenMismatch.
func (r *TokenRepo) Rotate(ctx context.Context, oldToken string, s model.RefreshSession) error {
	auth, err := jsonColumn(s.Authority)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE refresh_sessions
		 SET token=?, authority=?, name=?, issued_at=?, expires_at=?
		 WHERE user_id=? AND token=?`,
		s.Token, auth, s.Name, s.IssuedAt, s.ExpiresAt, s.UserID, oldToken)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTokenMismatch
	}
	return nil
}

// Delete removes the session row. Deleting an absent row is not an error,
// which keeps logout idempotent.
func (r *TokenRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_sessions WHERE user_id=?", userID)
	return err
}
