// Package services contains application services for the bookcase client.
// This file defines the authentication service: password login, account
// registration, the OAuth entry point and the backend liveness probe.
package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/bookcase/internal/client/client"
	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/common"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - PasswordLogin: exchange email/password for a bearer credential.
//   - Register: validate the form locally, then create the account.
//   - OAuthLoginURL: where the browser goes to start Google sign-in.
//   - Profile: the current backend record of the logged-in user.
//   - Ping: check backend liveness.
//   - Close: release underlying client resources.
//
// Validation failures wrap common.ErrValidation and never reach the network.
type AuthService interface {
	PasswordLogin(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, in models.RegisterInput) (*models.User, error)
	OAuthLoginURL() string
	Profile(ctx context.Context, s *models.Session) (*models.User, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
}

// NewAuthService constructs an AuthService bound to the given API client.
func NewAuthService(client client.Client) AuthService {
	return &authService{client: client}
}

// PasswordLogin returns the access token issued by POST /login. The token
// is not stored here; the session context owns persistence.
func (a *authService) PasswordLogin(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", common.NewValidationError("email", "is required")
	}
	if password == "" {
		return "", common.NewValidationError("password", "is required")
	}

	token, err := a.client.Login(ctx, email, password)
	if err != nil {
		return "", fmt.Errorf("login error: %w", err)
	}
	return token, nil
}

func (a *authService) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	u, err := a.client.Register(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return u, nil
}

func validateRegistration(in models.RegisterInput) error {
	switch {
	case in.Email == "":
		return common.NewValidationError("email", "is required")
	case !validEmail(in.Email):
		return common.NewValidationError("email", "is not a valid address")
	case in.Username == "":
		return common.NewValidationError("username", "is required")
	case in.Password == "":
		return common.NewValidationError("password", "is required")
	case in.Password != in.ConfirmPassword:
		return common.NewValidationError("confirm_password", "passwords do not match")
	}
	return nil
}

// validEmail accepts a bare addr-spec only ("a@x.com", not "A <a@x.com>").
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && addr.Name == ""
}

func (a *authService) OAuthLoginURL() string {
	return a.client.OAuthLoginURL()
}

func (a *authService) Profile(ctx context.Context, s *models.Session) (*models.User, error) {
	if !s.IsAuthenticated() {
		return nil, common.ErrNotAuthenticated
	}
	u, err := a.client.Me(ctx, s.Token)
	if err != nil {
		return nil, fmt.Errorf("profile error: %w", err)
	}
	return u, nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
