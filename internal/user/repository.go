package user

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrNoVerificationCode = errors.New("no verification code generated")
)

type Repository interface {
	createUser(user *User) error
	getUserByEmail(email string) (*User, error)
	getUserByUsernameOrEmail(usernameOrEmail string) (*User, error)
	userExistsByUsernameOrEmail(username, email string) (*User, error)
	getUserByID(id string) (*User, error)
	saveVerificationCode(userID, codeHash string, expiresAt time.Time) error
	getVerificationCode(userID string) (string, time.Time, time.Time, error)
	deleteVerificationCode(userID string) error
	markVerified(userID string) error
	updatePassword(userID, newPasswordHash string) error
	deleteUnverifiedBefore(cutoff time.Time) (int64, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) Repository {
	return &userRepository{
		db: db,
	}
}

const userColumns = "id, email, username, password_hash, is_verified, two_factor_enabled, created_at, updated_at"

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.IsVerified, &user.TwoFactorEnabled, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not find user: %v", err)
	}
	return &user, nil
}

func (r *userRepository) createUser(user *User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(query, user.ID, user.Email, user.Username, user.PasswordHash).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("could not create user: %v", err)
	}
	return nil
}

func (r *userRepository) getUserByEmail(email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return scanUser(r.db.QueryRow(query, email))
}

func (r *userRepository) getUserByUsernameOrEmail(usernameOrEmail string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 OR email = $1`, userColumns)
	return scanUser(r.db.QueryRow(query, usernameOrEmail))
}

func (r *userRepository) userExistsByUsernameOrEmail(username, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 OR email = $2`, userColumns)
	return scanUser(r.db.QueryRow(query, username, email))
}

func (r *userRepository) getUserByID(id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return scanUser(r.db.QueryRow(query, id))
}

func (r *userRepository) saveVerificationCode(userID, codeHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO verification_codes (user_id, code_hash, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET code_hash = $2, expires_at = $3, created_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.Exec(query, userID, codeHash, expiresAt)
	if err != nil {
		return fmt.Errorf("could not save verification code: %v", err)
	}
	return nil
}

func (r *userRepository) getVerificationCode(userID string) (string, time.Time, time.Time, error) {
	query := `
		SELECT code_hash, expires_at, created_at
		FROM verification_codes
		WHERE user_id = $1
	`

	var codeHash string
	var expiresAt time.Time
	var createdAt time.Time
	err := r.db.QueryRow(query, userID).Scan(&codeHash, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, time.Time{}, ErrNoVerificationCode
		}
		return "", time.Time{}, time.Time{}, fmt.Errorf("could not retrieve verification code: %v", err)
	}

	return codeHash, expiresAt, createdAt, nil
}

func (r *userRepository) deleteVerificationCode(userID string) error {
	_, err := r.db.Exec(`DELETE FROM verification_codes WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("could not delete verification code: %v", err)
	}
	return nil
}

func (r *userRepository) markVerified(userID string) error {
	query := `
		UPDATE users
		SET is_verified = TRUE,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("could not update email verification status: %v", err)
	}
	return nil
}

func (r *userRepository) updatePassword(userID, newPasswordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1,
		    updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(query, newPasswordHash, userID)
	return err
}

func (r *userRepository) deleteUnverifiedBefore(cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM users
		WHERE is_verified = FALSE AND created_at < $1
	`
	result, err := r.db.Exec(query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("could not delete unverified users: %v", err)
	}
	return result.RowsAffected()
}
