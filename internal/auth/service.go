package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/sebuszqo/ExpenseTracker/internal/user"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInternalError         = errors.New("internal Server Error")
	ErrUserNotVerified       = errors.New("user has not been verified")
	ErrTwoFactorRequired     = errors.New("two-factor authentication code required")
	ErrInvalid2FACode        = errors.New("2fa code is invalid")
	ErrUser2FANotEnabled     = errors.New("two factor auth is not enabled")
	ErrUser2FAAlreadyEnabled = errors.New("2fa auth already enabled")
)

type TwoFactorAuthenticator interface {
	GenerateSecret(accountName string) (string, string, error)
	VerifyCode(secret, code string) bool
}

type Service interface {
	Login(loginOrEmail, password, code string) (*user.User, string, string, error)
	RefreshTokens(userID, sessionID string) (string, string, error)
	Logout(refreshToken string) error
	EnableTwoFactor(userID string) (string, error)
	ConfirmTwoFactor(userID, code string) error
	DisableTwoFactor(userID, code string) error
	DeleteExpiredSessions() (int64, error)
	JWTAccessTokenMiddleware() func(http.Handler) http.Handler
	JWTRefreshTokenMiddleware() func(http.Handler) http.Handler
}

type service struct {
	repo          UserRepository
	userService   user.Service
	sessions      SessionStoreInterface
	jwtManager    JWTManagerInterface
	authenticator TwoFactorAuthenticator
}

func NewAuthService(repo UserRepository, userService user.Service, sessions SessionStoreInterface, jwtManager JWTManagerInterface, authenticator TwoFactorAuthenticator) Service {
	return &service{
		repo:          repo,
		userService:   userService,
		sessions:      sessions,
		jwtManager:    jwtManager,
		authenticator: authenticator,
	}
}

func (s *service) Login(loginOrEmail, password, code string) (*user.User, string, string, error) {
	existingUser, err := s.userService.GetUserByLoginOrEmail(loginOrEmail)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		log.Errorf("error when getting user from database: %v", err)
		return nil, "", "", ErrInternalError
	}

	if !doPasswordsMatch(existingUser.PasswordHash, password) {
		return nil, "", "", ErrInvalidCredentials
	}

	if !existingUser.IsVerified {
		// Nudge the user with a fresh code; rate limiting inside the
		// user service keeps this from spamming.
		if err := s.userService.SendVerificationCode(existingUser); err != nil && !errors.Is(err, user.ErrTooManyEmailCodeRequests) {
			log.Errorf("error during sending verification email: %v", err)
		}
		return nil, "", "", ErrUserNotVerified
	}

	if existingUser.TwoFactorEnabled {
		if code == "" {
			return nil, "", "", ErrTwoFactorRequired
		}
		secret, err := s.repo.GetTwoFactorSecret(existingUser.ID)
		if err != nil {
			log.Errorf("error when getting two-factor secret: %v", err)
			return nil, "", "", ErrInternalError
		}
		if !s.authenticator.VerifyCode(secret, code) {
			return nil, "", "", ErrInvalid2FACode
		}
	}

	accessToken, refreshToken, err := s.issueTokens(existingUser.ID)
	if err != nil {
		return nil, "", "", ErrInternalError
	}

	return existingUser, accessToken, refreshToken, nil
}

// issueTokens opens a new session row and mints the token pair bound to it.
func (s *service) issueTokens(userID string) (string, string, error) {
	sessionID := uuid.NewString()
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(userID, sessionID, defaultJWTRefreshDuration)
	if err != nil {
		log.Errorf("error during refresh token generation: %v", err)
		return "", "", ErrInternalError
	}

	expiresAt := time.Now().UTC().Add(defaultJWTRefreshDuration)
	if err := s.sessions.CreateSession(sessionID, userID, refreshToken, expiresAt); err != nil {
		log.Errorf("error during session creation: %v", err)
		return "", "", ErrInternalError
	}

	accessToken, err := s.jwtManager.GenerateAccessJWT(userID, defaultJWTDuration)
	if err != nil {
		log.Errorf("error during JWT generation: %v", err)
		return "", "", ErrInternalError
	}

	return accessToken, refreshToken, nil
}

// RefreshTokens rotates the session's refresh token. The refresh middleware
// has already matched the presented token against the stored hash.
func (s *service) RefreshTokens(userID, sessionID string) (string, string, error) {
	refreshToken, err := s.jwtManager.GenerateRefreshJWT(userID, sessionID, defaultJWTRefreshDuration)
	if err != nil {
		return "", "", ErrInternalError
	}

	expiresAt := time.Now().UTC().Add(defaultJWTRefreshDuration)
	if err := s.sessions.RotateRefreshToken(sessionID, refreshToken, expiresAt); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return "", "", ErrSessionNotFound
		}
		return "", "", ErrInternalError
	}

	accessToken, err := s.jwtManager.GenerateAccessJWT(userID, defaultJWTDuration)
	if err != nil {
		return "", "", ErrInternalError
	}

	return accessToken, refreshToken, nil
}

func (s *service) Logout(refreshToken string) error {
	claims, err := s.jwtManager.ParseRefreshToken(refreshToken)
	if err != nil {
		// An expired or garbled token has no session worth keeping anyway.
		return nil
	}
	return s.sessions.DeleteSession(claims.SessionID)
}

func (s *service) EnableTwoFactor(userID string) (string, error) {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", ErrInternalError
	}

	if existingUser.TwoFactorEnabled {
		return "", ErrUser2FAAlreadyEnabled
	}

	otpURI, secret, err := s.authenticator.GenerateSecret(existingUser.Email)
	if err != nil {
		return "", ErrInternalError
	}
	if err := s.repo.SaveTwoFactorSecret(userID, secret); err != nil {
		return "", ErrInternalError
	}

	return otpURI, nil
}

func (s *service) ConfirmTwoFactor(userID, code string) error {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if existingUser.TwoFactorEnabled {
		return ErrUser2FAAlreadyEnabled
	}

	secret, err := s.repo.GetTwoFactorSecret(userID)
	if err != nil {
		if errors.Is(err, ErrUser2FANotEnabled) {
			return ErrUser2FANotEnabled
		}
		return ErrInternalError
	}

	if !s.authenticator.VerifyCode(secret, code) {
		return ErrInvalid2FACode
	}

	if err := s.repo.EnableTwoFactor(userID); err != nil {
		return ErrInternalError
	}

	return nil
}

func (s *service) DisableTwoFactor(userID, code string) error {
	existingUser, err := s.userService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return ErrInternalError
	}

	if !existingUser.TwoFactorEnabled {
		return ErrUser2FANotEnabled
	}

	secret, err := s.repo.GetTwoFactorSecret(userID)
	if err != nil {
		return ErrInternalError
	}

	if !s.authenticator.VerifyCode(secret, code) {
		return ErrInvalid2FACode
	}

	if err := s.repo.DisableTwoFactor(userID); err != nil {
		return ErrInternalError
	}

	return nil
}

func (s *service) DeleteExpiredSessions() (int64, error) {
	return s.sessions.DeleteExpiredSessions()
}

func doPasswordsMatch(hashedPassword, currPassword string) bool {
	err := bcrypt.CompareHashAndPassword(
		[]byte(hashedPassword), []byte(currPassword))
	return err == nil
}
