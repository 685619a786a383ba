// Package models defines the client-side data shapes exchanged with the
// book-review backend and the catalog API.
package models

import "strconv"

// User is the backend's user record (GET /users/{id}, GET /user/me).
type User struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	Username       string  `json:"username"`
	IsActive       bool    `json:"is_active"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

// IDString renders the id the way it travels in a JWT subject.
func (u User) IDString() string {
	return strconv.FormatInt(u.ID, 10)
}

// RegisterInput is the registration form. ConfirmPassword never leaves the
// client.
type RegisterInput struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// TokenResponse is the body of a successful POST /login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
