package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the JWT claims
type JWTClaims struct {
	UserID   string     `json:"user_id"`
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Roles    []UserRole `json:"roles"`

	jwt.RegisteredClaims
}

// Identity is what a verified token tells the API about its bearer
type Identity struct {
	UserID   string     `json:"userId"`
	Email    string     `json:"email"`
	Username string     `json:"username"`
	Roles    []UserRole `json:"roles"`
}

// Identity extracts the caller identity from the claims
func (c *JWTClaims) Identity() Identity {
	return Identity{
		UserID:   c.UserID,
		Email:    c.Email,
		Username: c.Username,
		Roles:    c.Roles,
	}
}

// HasRole reports whether the token carries any of the given roles
func (c *JWTClaims) HasRole(roles ...UserRole) bool {
	for _, have := range c.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
