package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateSession stores a new session token for a staff user.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if session.ID == "" || session.StaffID == "" || strings.TrimSpace(session.Token) == "" {
		return persistence.Session{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.helper.Exec(ctx, `
		INSERT INTO sessions (id, staff_id, token, expires_at, revoked_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.StaffID,
		session.Token,
		formatTime(session.ExpiresAt),
		nullTime(session.RevokedAt),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}

	return session, nil
}

// GetSession retrieves a session by its token value.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	var session persistence.Session
	var revokedAt sql.NullString
	var expiresAtStr, createdAtStr, updatedAtStr string

	err := r.helper.QueryRow(ctx, `
		SELECT id, staff_id, token, expires_at, revoked_at, created_at, updated_at
		FROM sessions WHERE token = ?
	`, token).Scan(
		&session.ID,
		&session.StaffID,
		&session.Token,
		&expiresAtStr,
		&revokedAt,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, r.mapper.MapError(err)
	}

	if revokedAt.Valid {
		ts, err := parseTime(revokedAt.String)
		if err != nil {
			return persistence.Session{}, fmt.Errorf("failed to parse revoked_at: %w", err)
		}
		session.RevokedAt = &ts
	}
	if session.ExpiresAt, err = parseTime(expiresAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return session, nil
}

// RevokeSession marks the session revoked and returns the updated row.
func (r *SessionRepository) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE sessions SET revoked_at = ?, updated_at = ? WHERE token = ? AND revoked_at IS NULL
	`, formatTime(revokedAt), formatTime(time.Now().UTC()), token)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.Session{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.Session{}, persistence.ErrNotFound
	}

	return r.GetSession(ctx, token)
}

// DeleteExpiredSessions removes sessions whose expiry precedes the reference
// time and reports the number of rows removed.
func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int, error) {
	result, err := r.helper.Exec(ctx, `DELETE FROM sessions WHERE expires_at < ?`, formatTime(reference))
	if err != nil {
		return 0, r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(affected), nil
}
