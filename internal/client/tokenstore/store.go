// Package tokenstore persists the bearer credential across runs.
//
// A Store consults an ordered list of sources: durable storage first, the
// cookie jar second. It performs no validation of what it stores.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/logging"
)

// Source is one place a credential can live.
type Source interface {
	Name() string
	// Load returns ("", false, nil) when the source holds no credential.
	Load(ctx context.Context) (string, bool, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Store struct {
	sources []Source
	logger  logging.Logger
}

// New builds a Store. sources[0] is the primary source that receives Save.
func New(logger logging.Logger, sources ...Source) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{sources: sources, logger: logger}
}

// savedAtSource is a Source that records when it was last written.
type savedAtSource interface {
	SavedAt(ctx context.Context) (time.Time, bool, error)
}

// Primary names the source that receives Save.
func (s *Store) Primary() string {
	if len(s.sources) == 0 {
		return ""
	}
	return s.sources[0].Name()
}

// SavedAt reports when the primary source last stored a credential. It is
// false when the primary does not track that.
func (s *Store) SavedAt(ctx context.Context) (time.Time, bool, error) {
	if len(s.sources) == 0 {
		return time.Time{}, false, nil
	}
	ts, ok := s.sources[0].(savedAtSource)
	if !ok {
		return time.Time{}, false, nil
	}
	return ts.SavedAt(ctx)
}

// Save writes token to the primary source.
func (s *Store) Save(ctx context.Context, token string) error {
	if len(s.sources) == 0 {
		return errors.New("token store has no sources")
	}
	primary := s.sources[0]
	if err := primary.Save(ctx, token); err != nil {
		return fmt.Errorf("save token to %s: %w", primary.Name(), err)
	}
	return nil
}

// Load returns the first credential found, walking sources in order. A
// failing source is skipped; its error is only returned when no later source
// has a credential either.
func (s *Store) Load(ctx context.Context) (string, bool, error) {
	var errs []error
	for _, src := range s.sources {
		token, ok, err := src.Load(ctx)
		if err != nil {
			s.logger.Warn(ctx, "token source failed", "source", src.Name(), "error", err)
			errs = append(errs, fmt.Errorf("load token from %s: %w", src.Name(), err))
			continue
		}
		if ok && token != "" {
			return token, true, nil
		}
	}
	return "", false, errors.Join(errs...)
}

// Clear removes the credential from every source.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, src := range s.sources {
		if err := src.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear token in %s: %w", src.Name(), err))
		}
	}
	return errors.Join(errs...)
}
