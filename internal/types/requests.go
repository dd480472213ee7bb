package types

import "github.com/google/uuid"

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned after a successful register or login
type AuthResponse struct {
	Token string    `json:"token"`
	User  *Identity `json:"user"`
}

// RecipeMutationResponse is returned by the REST recipe mutations
type RecipeMutationResponse struct {
	ID uuid.UUID `json:"id"`
}
