package session

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the part of a credential the client reads locally.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp
}

// Decode reads sub and exp from a JWT without verifying its signature; the
// signing secret lives on the backend only. A token that cannot be decoded,
// has no subject, or expired at or before now is malformed.
func Decode(token string, now time.Time) (Claims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", common.ErrMalformedCredential, err)
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing sub", common.ErrMalformedCredential)
	}

	out := Claims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
		if !now.Before(out.ExpiresAt) {
			return Claims{}, fmt.Errorf("%w: %w", common.ErrMalformedCredential, common.ErrCredentialExpired)
		}
	}
	return out, nil
}
