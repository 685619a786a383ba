// Package favorites caches the logged-in user's favorite book ids and keeps
// the cache consistent with the backend under optimistic toggling.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/common"
	"github.com/dmitrijs2005/bookcase/internal/logging"
)

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=mocks/api_mock.go github.com/dmitrijs2005/bookcase/internal/client/favorites API

// API is the slice of the backend client the favorites cache talks to.
type API interface {
	Favorites(ctx context.Context, s *models.Session) ([]int64, error)
	AddFavorite(ctx context.Context, s *models.Session, bookID int64) error
	RemoveFavorite(ctx context.Context, s *models.Session, bookID int64) error
}

var (
	ErrNotLoaded = errors.New("favorites not loaded")
	// ErrReset is returned when the session changed while a call was in flight.
	ErrReset = errors.New("favorites reset during call")
)

type Outcome int

const (
	// Failed means the toggle was rejected before any change.
	Failed Outcome = iota
	Applied
	RolledBack
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case RolledBack:
		return "rolled back"
	default:
		return "failed"
	}
}

// keyLock serializes toggles of one book id. It is dropped from the map
// once nobody holds or waits for it.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

type State struct {
	api    API
	logger logging.Logger

	mu      sync.Mutex
	session *models.Session
	ids     map[int64]struct{}
	loaded  bool
	gen     uint64
	locks   map[int64]*keyLock
	pending chan struct{} // closed when the background load finishes
}

func New(api API, logger logging.Logger) *State {
	if logger == nil {
		logger = logging.Discard()
	}
	return &State{api: api, logger: logger, locks: map[int64]*keyLock{}}
}

// Load replaces the cache with the favorites of s. A result that arrives
// after Reset or a newer Load is discarded.
func (st *State) Load(ctx context.Context, s *models.Session) error {
	if !s.IsAuthenticated() {
		st.Reset()
		return common.ErrNotAuthenticated
	}
	return st.fetch(ctx, st.begin(s), s)
}

// Prefetch starts loading the favorites of s in the background and returns
// at once. Wait blocks until it is done.
func (st *State) Prefetch(ctx context.Context, s *models.Session) {
	if !s.IsAuthenticated() {
		st.Reset()
		return
	}

	gen := st.begin(s)
	done := make(chan struct{})
	st.mu.Lock()
	if st.gen == gen {
		st.pending = done
	}
	st.mu.Unlock()

	go func() {
		defer func() {
			st.mu.Lock()
			if st.pending == done {
				st.pending = nil
			}
			st.mu.Unlock()
			close(done)
		}()
		if err := st.fetch(ctx, gen, s); err != nil && !errors.Is(err, ErrReset) {
			st.logger.Warn(ctx, "favorites not loaded after login", "error", err)
		}
	}()
}

// Wait blocks until no background load is pending or ctx is done.
func (st *State) Wait(ctx context.Context) error {
	for {
		st.mu.Lock()
		ch := st.pending
		st.mu.Unlock()
		if ch == nil {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (st *State) begin(s *models.Session) uint64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.gen++
	st.session = s
	st.ids = nil
	st.loaded = false
	st.pending = nil
	return st.gen
}

func (st *State) fetch(ctx context.Context, gen uint64, s *models.Session) error {
	ids, err := st.api.Favorites(ctx, s)

	st.mu.Lock()
	defer st.mu.Unlock()
	if gen != st.gen {
		return ErrReset
	}
	if err != nil {
		st.logger.Warn(ctx, "favorites load failed", "user_id", s.UserID, "error", err)
		return fmt.Errorf("%w: load: %w", common.ErrFavoriteSync, err)
	}

	st.ids = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		st.ids[id] = struct{}{}
	}
	st.loaded = true
	return nil
}

// IsFavorited is false for every id until the cache is loaded.
func (st *State) IsFavorited(bookID int64) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.loaded {
		return false
	}
	_, ok := st.ids[bookID]
	return ok
}

func (st *State) Loaded() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.loaded
}

// IDs returns the cached favorite ids in ascending order.
func (st *State) IDs() []int64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]int64, 0, len(st.ids))
	for id := range st.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Reset forgets the cache and the session it belonged to.
func (st *State) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.gen++
	st.session = nil
	st.ids = nil
	st.loaded = false
	st.pending = nil
}

// Toggle flips bookID locally, then asks the backend to do the same. When
// the backend refuses, the local bit is restored and the error wraps
// common.ErrFavoriteSync. Toggles of the same id run one at a time.
func (st *State) Toggle(ctx context.Context, bookID int64) (Outcome, error) {
	unlock := st.lock(bookID)
	defer unlock()

	st.mu.Lock()
	if !st.session.IsAuthenticated() {
		st.mu.Unlock()
		return Failed, common.ErrNotAuthenticated
	}
	if !st.loaded {
		st.mu.Unlock()
		return Failed, ErrNotLoaded
	}
	gen, s := st.gen, st.session
	_, was := st.ids[bookID]
	st.set(bookID, !was)
	st.mu.Unlock()

	var err error
	if was {
		err = st.api.RemoveFavorite(ctx, s, bookID)
	} else {
		err = st.api.AddFavorite(ctx, s, bookID)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if gen != st.gen {
		return Failed, ErrReset
	}
	if err != nil {
		st.set(bookID, was)
		st.logger.Warn(ctx, "favorite toggle rolled back", "book_id", bookID, "error", err)
		return RolledBack, fmt.Errorf("%w: book %d: %w", common.ErrFavoriteSync, bookID, err)
	}
	return Applied, nil
}

func (st *State) set(bookID int64, on bool) {
	if on {
		st.ids[bookID] = struct{}{}
		return
	}
	delete(st.ids, bookID)
}

func (st *State) lock(bookID int64) (unlock func()) {
	st.mu.Lock()
	l, ok := st.locks[bookID]
	if !ok {
		l = &keyLock{}
		st.locks[bookID] = l
	}
	l.refs++
	st.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		st.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(st.locks, bookID)
		}
		st.mu.Unlock()
	}
}
