package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	SubjectID string   `json:"subject_id,omitempty"`
	Email     string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Principal projects the claims onto the caller identity used by services.
func (c *JWTClaims) Principal() Principal {
	return Principal{UserID: c.UserID, Role: c.Role, SubjectID: c.SubjectID}
}
