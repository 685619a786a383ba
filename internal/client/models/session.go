package models

import "time"

// Session is the client-side view of the logged-in user. It is derived from
// a credential plus a backend lookup and is never persisted.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`

	// Token is the credential the session was resolved from.
	Token string `json:"-"`
	// ExpiresAt is the credential's exp; zero when it has none.
	ExpiresAt time.Time `json:"-"`
}

// IsAuthenticated reports whether s represents a logged-in user.
// A nil session is anonymous.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Token != ""
}

// Expired reports whether the credential behind s has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// NewSession binds the profile u to token. The user id is the credential's
// subject, not whatever the profile body carries.
func NewSession(userID string, u *User, token string) *Session {
	return &Session{
		UserID:   userID,
		Username: u.Username,
		Email:    u.Email,
		Token:    token,
	}
}
