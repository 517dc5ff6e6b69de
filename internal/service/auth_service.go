package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-runner/internal/config"
	"quiz-runner/internal/domain"
	"quiz-runner/internal/dto"
	"quiz-runner/internal/logger"
	"quiz-runner/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const tokenTypeBearer = "Bearer"

// ErrInvalidJWTToken wraps every token validation failure.
var ErrInvalidJWTToken = errors.New("invalid jwt token")

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Register(ctx context.Context, username, password string) error
	Verify(ctx context.Context, username, password string) (bool, error)
	Login(ctx context.Context, username, password string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, sessionID string) error
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	Authenticate(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type authServiceImpl struct {
	accounts domain.AccountRepository
	hasher   domain.PasswordHasher
	sessions domain.SessionStore
	authCfg  config.AuthConfig
	now      func() time.Time
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(accounts domain.AccountRepository, hasher domain.PasswordHasher, sessions domain.SessionStore, authCfg config.AuthConfig) (AuthService, error) {
	if authCfg.JWT.SecretKey == "" {
		return nil, errors.New("auth.jwt.secret_key is not configured")
	}
	if authCfg.JWT.AccessTokenTTL <= 0 {
		authCfg.JWT.AccessTokenTTL = 12 * time.Hour
	}
	return &authServiceImpl{
		accounts: accounts,
		hasher:   hasher,
		sessions: sessions,
		authCfg:  authCfg,
		now:      time.Now,
	}, nil
}

func validateCredentials(username, password string) error {
	var errs domain.ValidationErrors
	if strings.TrimSpace(username) == "" {
		errs = append(errs, domain.NewMissingFieldError("username"))
	}
	if password == "" {
		errs = append(errs, domain.NewMissingFieldError("password"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Register stores a new account. An existing username is never overwritten.
func (s *authServiceImpl) Register(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}

	existing, err := s.accounts.GetAccount(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.NewDuplicateAccountError(username)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	if err := s.accounts.CreateAccount(ctx, domain.NewAccount(username, hash)); err != nil {
		return err
	}

	logger.Get().Info("Account registered", zap.String("username", username))
	return nil
}

// Verify reports whether the username exists and the password matches.
func (s *authServiceImpl) Verify(ctx context.Context, username, password string) (bool, error) {
	account, err := s.accounts.GetAccount(ctx, username)
	if err != nil {
		return false, err
	}
	if account == nil {
		return false, nil
	}
	return s.hasher.Verify(account.PasswordHash, password), nil
}

// Login verifies the credentials, opens a player session and signs a token bound to it.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*dto.TokenResponse, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	ok, err := s.Verify(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Get().Info("Login rejected", zap.String("username", username))
		return nil, domain.NewInvalidCredentialsError()
	}

	admin := username == s.authCfg.AdminUsername
	session := domain.NewPlayerSession(util.NewULID(), username, admin)
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, err
	}

	token, err := s.createJWT(session)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, domain.NewInternalError("failed to create access token", err)
	}

	logger.Get().Info("User logged in",
		zap.String("username", username),
		zap.String("session_id", session.ID),
		zap.Bool("admin", admin))

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(s.authCfg.JWT.AccessTokenTTL / time.Second),
		SessionID:   session.ID,
		Username:    username,
		Admin:       admin,
	}, nil
}

// Logout discards the player session; tokens bound to it stop working.
func (s *authServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	logger.Get().Info("User logged out", zap.String("session_id", sessionID))
	return nil
}

func (s *authServiceImpl) createJWT(session *domain.PlayerSession) (string, error) {
	role := dto.RolePlayer
	if session.Admin {
		role = dto.RoleAdmin
	}
	now := s.now()
	claims := dto.AuthClaims{
		Username:  session.Username,
		Role:      role,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.authCfg.JWT.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   session.Username,
			ID:        session.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.authCfg.JWT.SecretKey))
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.authCfg.JWT.SecretKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidJWTToken
	}
	return claims, nil
}

// Authenticate validates the token and checks that its player session is still open.
func (s *authServiceImpl) Authenticate(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	claims, err := s.ValidateJWT(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.Get(ctx, claims.SessionID); err != nil {
		return nil, err
	}
	return claims, nil
}
