// Package auth validates the access tokens that identify the calling user.
// Tokens are issued by the account service; GenerateToken exists for tooling
// and tests that need a token signed with the shared secret.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService signs and validates access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for userID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken validates an access token and returns its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of an access token.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	TokenType string    `json:"type,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
