// Package session turns a stored credential into the client's notion of the
// logged-in user and keeps that state for the rest of the application.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/common"
	"github.com/dmitrijs2005/bookcase/internal/logging"
)

// UserLookup is the backend call the resolver needs; client.Client has it.
type UserLookup interface {
	User(ctx context.Context, token, id string) (*models.User, error)
}

type Resolver struct {
	lookup UserLookup
	logger logging.Logger
	now    func() time.Time
}

func NewResolver(lookup UserLookup, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Resolver{lookup: lookup, logger: logger, now: time.Now}
}

// Resolve decodes token locally and fetches the user it names. Undecodable
// or expired tokens fail with ErrMalformedCredential before any network
// call; a failed lookup, or one that answers for a different user, fails
// with ErrSessionUnresolvable. No retries.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.Session, error) {
	claims, err := Decode(token, r.now())
	if err != nil {
		r.logger.Info(ctx, "credential rejected locally", "error", err)
		return nil, err
	}

	u, err := r.lookup.User(ctx, token, claims.Subject)
	if err != nil {
		r.logger.Warn(ctx, "session lookup failed", "sub", claims.Subject, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrSessionUnresolvable, err)
	}

	if u.ID != 0 && u.IDString() != claims.Subject {
		r.logger.Warn(ctx, "session lookup returned another user", "sub", claims.Subject, "user_id", u.ID)
		return nil, fmt.Errorf("%w: lookup for %s returned user %d", common.ErrSessionUnresolvable, claims.Subject, u.ID)
	}

	s := models.NewSession(claims.Subject, u, token)
	s.ExpiresAt = claims.ExpiresAt
	return s, nil
}
