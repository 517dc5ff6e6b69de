package dto

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin  = "admin"
	RolePlayer = "player"
)

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// CredentialsRequest is the body of both register and login.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	SessionID   string `json:"session_id"`
	Username    string `json:"username"`
	Admin       bool   `json:"admin"`
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}
