package repository

import (
	"context"
	"database/sql"
	"time"
)

// RefreshSession mirrors the 'refresh_sessions' table: one row per login or
// rotation, keyed by the token's jti. Rows are revoked, never deleted, so
// the ledger doubles as an audit trail.
type RefreshSession struct {
	ID        int64
	UserID    int64
	JTI       string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// SessionRepo persists refresh sessions.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a ledger row for a freshly issued refresh token and
// returns its id.
func (r *SessionRepo) Create(ctx context.Context, userID int64, jti, tokenHash string, expiresAt time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_sessions (user_id, jti, token_hash, expires_at) VALUES (?,?,?,?)",
		userID, jti, tokenHash, expiresAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FindByJTI loads the ledger row for a jti. Returns sql.ErrNoRows when no
// session was ever issued under that identifier.
func (r *SessionRepo) FindByJTI(ctx context.Context, jti string) (RefreshSession, error) {
	var (
		s       RefreshSession
		revoked sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, jti, token_hash, expires_at, revoked_at, created_at FROM refresh_sessions WHERE jti=? LIMIT 1",
		jti).Scan(&s.ID, &s.UserID, &s.JTI, &s.TokenHash, &s.ExpiresAt, &revoked, &s.CreatedAt)
	if err != nil {
		return RefreshSession{}, err
	}
	if revoked.Valid {
		t := revoked.Time
		s.RevokedAt = &t
	}
	return s, nil
}

// Revoke marks a session revoked if and only if it is still live, and
// reports whether this call won the update. Rotation relies on the
// conditional write: two concurrent replays of one token race here and at
// most one proceeds.
func (r *SessionRepo) Revoke(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_sessions SET revoked_at=NOW() WHERE id=? AND revoked_at IS NULL",
		id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// RevokeByJTI revokes the live session for a jti. Used by logout; tolerant
// of already-revoked or missing rows.
func (r *SessionRepo) RevokeByJTI(ctx context.Context, jti string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_sessions SET revoked_at=NOW() WHERE jti=? AND revoked_at IS NULL",
		jti)
	return err
}
