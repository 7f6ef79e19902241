package models

import "time"

// UserRole represents a role a user can hold
type UserRole string

const (
	UserRoleUser   UserRole = "user"
	UserRoleEditor UserRole = "editor"
	UserRoleAdmin  UserRole = "admin"
)

// IsValid reports whether r is a known role
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleUser, UserRoleEditor, UserRoleAdmin:
		return true
	}
	return false
}

// User is an account allowed to use the contacts API
type User struct {
	ID           string     `json:"id" dynamodbav:"id"`
	Email        string     `json:"email" dynamodbav:"email"`
	Name         string     `json:"name" dynamodbav:"name"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Roles        []UserRole `json:"roles" dynamodbav:"roles"`
	CreatedAt    time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
}

// HasRole reports whether the user holds any of the given roles
func (u *User) HasRole(roles ...UserRole) bool {
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// RegisterUser represents the request structure for user registration
// @Description User registration request with account details
type RegisterUser struct {
	Email    string `json:"email" binding:"required,email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required,min=8" validate:"required,min=8" example:"securePassword123"`
	Name     string `json:"name" binding:"required" validate:"required" example:"Jane Doe"`
}

// LoginRequest represents the request body for user login
// @Description Login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" validate:"required" example:"password123"`
}

// LoginResponse is returned by POST /auth/login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        *User  `json:"user"`
}
