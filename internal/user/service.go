package user

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	emailService "github.com/sebuszqo/ExpenseTracker/internal/email"
)

const (
	maxEmailLength    = 255
	minEmailLength    = 3
	maxUsernameLength = 30
	minUsernameLength = 5
	minPasswordLength = 8
	bcryptCost        = 12
	codeResendWindow  = 2 * time.Minute
	codeTTL           = 10 * time.Minute
)

var (
	ErrInvalidEmail             = fmt.Errorf("email address is not valid")
	ErrEmailLength              = fmt.Errorf("email address is too long or too short, max length: %d, min length: %d", maxEmailLength, minEmailLength)
	ErrUsernameLength           = fmt.Errorf("username is too long or too short, max length: %d, min length: %d", maxUsernameLength, minUsernameLength)
	ErrPasswordTooShort         = fmt.Errorf("password must have at least %d characters", minPasswordLength)
	ErrEmailAlreadyExists       = errors.New("email already exists")
	ErrUsernameAlreadyExists    = errors.New("username already exists")
	ErrInternalError            = errors.New("internal Server Error")
	ErrUserAlreadyVerified      = errors.New("user already verified")
	ErrInvalidVerificationCode  = errors.New("invalid verification code")
	ErrVerificationCodeExpired  = errors.New("verification code expired")
	ErrTooManyEmailCodeRequests = errors.New("too many email code requests")
	ErrInvalidOldPassword       = errors.New("invalid old password")
)

type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	IsVerified       bool      `json:"is_verified"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Service interface {
	Register(email, username, password string) (*User, error)
	VerifyEmail(email, code string) error
	SendVerificationCode(user *User) error
	ResendVerificationCode(email string) error
	GetUserByID(userID string) (*User, error)
	GetUserByLoginOrEmail(loginOrEmail string) (*User, error)
	ChangePassword(userID, oldPassword, newPassword string) error
	DeleteUnverifiedUsers(olderThan time.Duration) (int64, error)
}

type service struct {
	repo         Repository
	emailService emailService.EmailSender
}

func NewUserService(repo Repository, emailService emailService.EmailSender) Service {
	return &service{
		repo:         repo,
		emailService: emailService,
	}
}

func hashPassword(password string) (string, error) {
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashedPasswordBytes), err
}

func GenerateVerificationCode() (string, error) {
	code := make([]byte, 6)
	_, err := rand.Read(code)
	if err != nil {
		return "", fmt.Errorf("could not generate verification code: %v", err)
	}
	for i := range code {
		code[i] = '0' + (code[i] % 10)
	}

	return string(code), nil
}

// hashVerificationCode keeps the table free of plaintext codes. SHA-256 is
// enough here, the codes live for ten minutes.
func hashVerificationCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func validateEmailAddress(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return ErrInvalidEmail
	}

	if err := checkmail.ValidateHost(email); err != nil {
		if !strings.Contains(err.Error(), "timeout") {
			return ErrInvalidEmail
		}
		log.Warn("email host check timed out, continuing without it")
	}
	if len(email) > maxEmailLength || len(email) <= minEmailLength {
		return ErrEmailLength
	}
	return nil
}

func (s *service) Register(email, username, password string) (*User, error) {
	if err := validateEmailAddress(email); err != nil {
		return nil, err
	}

	if len(username) == 0 {
		parts := strings.Split(email, "@")
		if len(parts) < 2 {
			return nil, ErrInvalidEmail
		}
		username = parts[0]
	} else if len(username) > maxUsernameLength || len(username) < minUsernameLength {
		return nil, ErrUsernameLength
	}

	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existingUser, err := s.repo.userExistsByUsernameOrEmail(username, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		log.Errorf("error checking user existence: %v", err)
		return nil, ErrInternalError
	}

	if existingUser != nil {
		if existingUser.Email == email {
			return nil, ErrEmailAlreadyExists
		}
		return nil, ErrUsernameAlreadyExists
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		log.Errorf("error during hashing the password: %v", err)
		return nil, ErrInternalError
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
	}

	if err := s.repo.createUser(user); err != nil {
		log.Errorf("error during creating the user: %v", err)
		return nil, ErrInternalError
	}

	if err := s.SendVerificationCode(user); err != nil {
		log.Errorf("error during sending verification email: %v", err)
		return nil, ErrInternalError
	}

	return user, nil
}

func (s *service) SendVerificationCode(user *User) error {
	_, _, createdAt, err := s.repo.getVerificationCode(user.ID)
	if err == nil && time.Now().UTC().Sub(createdAt.UTC()) < codeResendWindow {
		return ErrTooManyEmailCodeRequests
	}

	newCode, err := GenerateVerificationCode()
	if err != nil {
		return fmt.Errorf("could not generate verification code: %v", err)
	}

	expirationTime := time.Now().UTC().Add(codeTTL)
	if err := s.repo.saveVerificationCode(user.ID, hashVerificationCode(newCode), expirationTime); err != nil {
		return fmt.Errorf("could not save verification code: %v", err)
	}

	s.emailService.QueueEmail(user.Email, emailService.RegistrationConfirmationData{
		UserName: user.Username,
		Code:     newCode,
	})

	return nil
}

func (s *service) ResendVerificationCode(email string) error {
	user, err := s.repo.getUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if user.IsVerified {
		return ErrUserAlreadyVerified
	}

	return s.SendVerificationCode(user)
}

func (s *service) VerifyEmail(email, code string) error {
	user, err := s.repo.getUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if user.IsVerified {
		return ErrUserAlreadyVerified
	}

	storedHash, expiresAt, _, err := s.repo.getVerificationCode(user.ID)
	if err != nil {
		return ErrInvalidVerificationCode
	}

	if storedHash != hashVerificationCode(code) {
		return ErrInvalidVerificationCode
	}

	if time.Now().UTC().After(expiresAt) {
		return ErrVerificationCodeExpired
	}

	if err := s.repo.markVerified(user.ID); err != nil {
		log.Errorf("error during marking user verified: %v", err)
		return ErrInternalError
	}

	if err := s.repo.deleteVerificationCode(user.ID); err != nil {
		log.Errorf("error during deleting verification code: %v", err)
	}
	return nil
}

func (s *service) ChangePassword(userID, oldPassword, newPassword string) error {
	user, err := s.repo.getUserByID(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if !doPasswordsMatch(user.PasswordHash, oldPassword) {
		return ErrInvalidOldPassword
	}

	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	newPasswordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("could not hash password: %v", err)
	}

	return s.repo.updatePassword(userID, newPasswordHash)
}

func doPasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword(
		[]byte(hashedPassword), []byte(currPassword))
	return err == nil
}

func (s *service) GetUserByID(userID string) (*User, error) {
	return s.repo.getUserByID(userID)
}

func (s *service) GetUserByLoginOrEmail(loginOrEmail string) (*User, error) {
	return s.repo.getUserByUsernameOrEmail(loginOrEmail)
}

// DeleteUnverifiedUsers drops accounts that never confirmed their email.
// They cannot log in, so they own no ledger rows beyond the cascade.
func (s *service) DeleteUnverifiedUsers(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	return s.repo.deleteUnverifiedBefore(cutoff)
}
