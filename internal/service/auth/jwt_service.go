// Package auth issues and validates the JWTs that identify a task owner.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing owner access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the owner.
	GenerateToken(ctx context.Context, ownerID uuid.UUID) (string, error)

	// ValidateToken verifies the signature and time claims of an access
	// token and returns its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of an access token.
type Claims struct {
	// UserID identifies the task owner the token was issued for.
	UserID    uuid.UUID `json:"uid,omitempty"`
	TokenType string    `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
