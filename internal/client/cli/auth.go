package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the registration form and creates the account.
// It does not log the user in.
func (a *App) Register(ctx context.Context) error {
	var (
		in  models.RegisterInput
		err error
	)

	if in.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}
	if in.Username, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
		return err
	}
	if in.Password, err = getPassword(a.out, "Enter password"); err != nil {
		return err
	}
	if in.ConfirmPassword, err = getPassword(a.out, "Confirm password"); err != nil {
		return err
	}

	u, err := a.authService.Register(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account %s created, you can log in now\n", u.Username)
	return nil
}

// Login prompts for email and password, exchanges them for a credential
// and hands it to the session context.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}

	token, err := a.authService.PasswordLogin(ctx, email, password)
	if err != nil {
		return err
	}

	return a.establish(ctx, token)
}

// OAuth prints the Google sign-in URL. The browser ends up with a
// credential the user pastes back with "token".
func (a *App) OAuth(_ context.Context) error {
	fmt.Fprintln(a.out, "Open this URL in a browser to sign in with Google:")
	fmt.Fprintln(a.out, a.authService.OAuthLoginURL())
	fmt.Fprintln(a.out, "Then paste the access_token value with: token <credential>")
	return nil
}

// Token logs in with a credential obtained elsewhere (the OAuth flow).
func (a *App) Token(ctx context.Context, args []string) error {
	var (
		token string
		err   error
	)
	if len(args) > 0 {
		token = args[0]
	} else if token, err = getPassword(a.out, "Paste credential"); err != nil {
		return err
	}

	return a.establish(ctx, token)
}

func (a *App) establish(ctx context.Context, token string) error {
	s, err := a.session.Login(ctx, token)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", s.Username, s.Email)
	return nil
}

// WhoAmI prints the logged-in user. The profile is refreshed from the
// backend when it answers; offline the session's copy is shown.
func (a *App) WhoAmI(ctx context.Context) error {
	s := a.session.Session()
	if !s.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	username, email := s.Username, s.Email
	if u, err := a.authService.Profile(ctx, s); err != nil {
		a.logger.Warn(ctx, "profile not refreshed", "error", err)
	} else {
		username, email = u.Username, u.Email
	}
	fmt.Fprintf(a.out, "%s <%s> (id %s)\n", username, email, s.UserID)

	at, ok, err := a.tokens.SavedAt(ctx)
	if err != nil {
		a.logger.Warn(ctx, "credential timestamp unreadable", "error", err)
	}
	if ok {
		fmt.Fprintf(a.out, "Credential stored in %s since %s\n", a.tokens.Primary(), at.Local().Format(time.DateTime))
	}
	return nil
}

// Logout forgets the stored credential. No network call is made.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
