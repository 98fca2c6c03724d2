package auth

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session is expired")
)

// Session is one refresh-token lineage. Only a hash of the current refresh
// token is stored; rotation overwrites it, which invalidates the old token.
type Session struct {
	ID               string
	UserID           string
	RefreshTokenHash string
	ExpiresAt        time.Time
	CreatedAt        time.Time
}

func (s *Session) MatchesRefreshToken(refreshToken string) bool {
	return s.RefreshTokenHash == hashRefreshToken(refreshToken)
}

type SessionStoreInterface interface {
	CreateSession(sessionID, userID, refreshToken string, expiresAt time.Time) error
	GetSession(sessionID string) (*Session, error)
	RotateRefreshToken(sessionID, refreshToken string, expiresAt time.Time) error
	DeleteSession(sessionID string) error
	DeleteExpiredSessions() (int64, error)
}

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) SessionStoreInterface {
	return &SessionStore{db: db}
}

func hashRefreshToken(refreshToken string) string {
	sum := sha256.Sum256([]byte(refreshToken))
	return hex.EncodeToString(sum[:])
}

func (s *SessionStore) CreateSession(sessionID, userID, refreshToken string, expiresAt time.Time) error {
	query := `
		INSERT INTO auth_sessions (id, user_id, refresh_token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := s.db.Exec(query, sessionID, userID, hashRefreshToken(refreshToken), expiresAt)
	if err != nil {
		return ErrInternalError
	}
	return nil
}

func (s *SessionStore) GetSession(sessionID string) (*Session, error) {
	query := `
		SELECT id, user_id, refresh_token_hash, expires_at, created_at
		FROM auth_sessions
		WHERE id = $1
	`
	var session Session
	err := s.db.QueryRow(query, sessionID).Scan(&session.ID, &session.UserID, &session.RefreshTokenHash, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, ErrInternalError
	}

	if time.Now().UTC().After(session.ExpiresAt) {
		return nil, ErrSessionExpired
	}

	return &session, nil
}

func (s *SessionStore) RotateRefreshToken(sessionID, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE auth_sessions
		SET refresh_token_hash = $1, expires_at = $2
		WHERE id = $3
	`
	result, err := s.db.Exec(query, hashRefreshToken(refreshToken), expiresAt, sessionID)
	if err != nil {
		return ErrInternalError
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ErrInternalError
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) DeleteSession(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM auth_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return ErrInternalError
	}
	return nil
}

func (s *SessionStore) DeleteExpiredSessions() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM auth_sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, ErrInternalError
	}
	return result.RowsAffected()
}
