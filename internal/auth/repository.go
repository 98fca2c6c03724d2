package auth

import (
	"database/sql"
	"errors"
	"fmt"
)

type UserRepository interface {
	GetTwoFactorSecret(userID string) (string, error)
	SaveTwoFactorSecret(userID string, secret string) error
	EnableTwoFactor(userID string) error
	DisableTwoFactor(userID string) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) GetTwoFactorSecret(userID string) (string, error) {
	var secret sql.NullString
	query := `
		SELECT two_factor_secret
		FROM users
		WHERE id = $1
	`
	err := r.db.QueryRow(query, userID).Scan(&secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", ErrInternalError
	}
	if !secret.Valid || secret.String == "" {
		return "", ErrUser2FANotEnabled
	}
	return secret.String, nil
}

// SaveTwoFactorSecret stores the TOTP secret without enabling it; the flag
// only flips once the user confirms a valid code.
func (r *userRepository) SaveTwoFactorSecret(userID string, secret string) error {
	query := `
		UPDATE users
		SET two_factor_secret = $1,
		    updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(query, secret, userID)
	if err != nil {
		return ErrInternalError
	}
	return nil
}

func (r *userRepository) EnableTwoFactor(userID string) error {
	query := `
		UPDATE users
		SET two_factor_enabled = TRUE,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(query, userID)
	if err != nil {
		return ErrInternalError
	}
	return nil
}

func (r *userRepository) DisableTwoFactor(userID string) error {
	query := `
		UPDATE users
		SET two_factor_enabled = FALSE,
		    two_factor_secret = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("could not disable two-factor authentication: %v", err)
	}
	return nil
}
