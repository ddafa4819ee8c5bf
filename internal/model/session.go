package model

import "time"

// RefreshSession is the single-slot refresh record in the
// `refresh_sessions` table. Each user owns at most one row; issuing a new
// refresh token overwrites it, which implicitly revokes the previous token.
// A presented refresh token is valid only while it textually matches Token.
//
// Authority and Name are denormalized snapshots taken at signin so that a
// refresh can issue a new access token without re-deriving authorities.
type RefreshSession struct {
	UserID    string    // refresh_sessions.user_id (primary key)
	Token     string    // refresh_sessions.token (the full JWT string)
	Authority []string  // refresh_sessions.authority (JSON column)
	Name      string    // refresh_sessions.name
	IssuedAt  time.Time // refresh_sessions.issued_at
	ExpiresAt time.Time // refresh_sessions.expires_at
}
