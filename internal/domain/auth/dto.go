package auth

import (
	"github.com/adearn/adearn-api/internal/domain/account"
)

// LoginRequest for POST /auth/login. Every field is optional; blanks fall
// back to the demo identity. Password is accepted for form compatibility
// and ignored.
type LoginRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Phone    string `json:"phone" validate:"omitempty,min=6,max=20"`
	Password string `json:"password" validate:"omitempty,max=128"`
}

// TokensResponse represents tokens in API response
type TokensResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// AuthResponse returned after login
type AuthResponse struct {
	Account account.AccountResponse `json:"account"`
	Tokens  TokensResponse          `json:"tokens"`
}
