package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mbjewelry/appraisal-server/internal/domain"
	"github.com/mbjewelry/appraisal-server/internal/store"
)

const authSessionColumns = `id, user_id, refresh_token_hash, expires_at, created_at, last_seen_at`

func scanAuthSession(scanner interface{ Scan(dest ...any) error }) (*domain.AuthSession, error) {
	var session domain.AuthSession
	var expiresAt, createdAt, lastSeenAt string

	err := scanner.Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshTokenHash,
		&expiresAt,
		&createdAt,
		&lastSeenAt,
	)
	if err != nil {
		return nil, err
	}

	session.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	session.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	session.LastSeenAt, err = parseTime(lastSeenAt)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateAuthSession inserts a new auth session.
func (s *Store) CreateAuthSession(ctx context.Context, session *domain.AuthSession) error {
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.LastSeenAt.IsZero() {
		session.LastSeenAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_sessions (id, user_id, refresh_token_hash, expires_at, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.RefreshTokenHash,
		formatTime(session.ExpiresAt),
		formatTime(session.CreatedAt),
		formatTime(session.LastSeenAt),
	)
	return err
}

// GetAuthSessionByRefreshToken looks up a session by refresh token hash and
// bumps its last_seen_at. Returns store.ErrNotFound if no session matches.
func (s *Store) GetAuthSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+authSessionColumns+` FROM auth_sessions WHERE refresh_token_hash = ?`,
		tokenHash)

	session, err := scanAuthSession(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE auth_sessions SET last_seen_at = ? WHERE id = ?`,
		formatTime(now), session.ID,
	); err != nil {
		return nil, err
	}
	session.LastSeenAt = now

	return session, nil
}

// DeleteAuthSession removes a session by id. Deleting a session that does
// not exist is not an error.
func (s *Store) DeleteAuthSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE id = ?`, id)
	return err
}

// DeleteExpiredAuthSessions removes all sessions past their expiry and
// returns how many were deleted.
func (s *Store) DeleteExpiredAuthSessions(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM auth_sessions WHERE expires_at < ?`,
		formatTime(time.Now()))
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Debug("Expired auth sessions removed", "count", n)
	}
	return int(n), nil
}
