package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/common"
	"github.com/dmitrijs2005/bookcase/internal/logging"
)

// ErrSuperseded is returned by Init and Login when a later Login, Logout or
// Close overtook them; their result was discarded.
var ErrSuperseded = errors.New("session change superseded")

// State is a snapshot of the authentication state.
type State struct {
	Session   *models.Session
	IsLoading bool
	Err       error
}

func (s State) IsAuthenticated() bool {
	return s.Session.IsAuthenticated()
}

type Subscriber func(State)

type TokenStore interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, bool, error)
	Clear(ctx context.Context) error
}

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Session, error)
}

type subscription struct {
	id int
	fn Subscriber
}

// Context owns the authentication state of one application instance.
//
// Every transition bumps a generation counter; a resolution that finishes
// after a newer transition is dropped. Subscribers run synchronously, in
// subscription order, after the state has changed. They must not call back
// into Init, Login or Logout, and must not block on the network.
//
// Lock order is storeMu, notifyMu, mu.
type Context struct {
	store    TokenStore
	resolver SessionResolver
	logger   logging.Logger
	now      func() time.Time

	storeMu  sync.Mutex // serializes store writes against generation changes
	notifyMu sync.Mutex // serializes broadcasts

	mu      sync.Mutex
	state   State
	gen     uint64
	subs    []subscription
	nextSub int
	closed  bool
}

func NewContext(store TokenStore, resolver SessionResolver, logger logging.Logger) *Context {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Context{store: store, resolver: resolver, logger: logger, now: time.Now}
}

// State returns the current snapshot. A session whose credential has
// expired reads as anonymous even before DropExpired demotes it.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Session.Expired(c.now()) {
		return State{Err: common.ErrCredentialExpired}
	}
	return c.state
}

func (c *Context) Session() *models.Session {
	return c.State().Session
}

// Subscribe registers fn and returns a function that removes it.
func (c *Context) Subscribe(fn Subscriber) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscription{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Init restores the session from the token store.
func (c *Context) Init(ctx context.Context) error {
	gen, ok := c.begin()
	if !ok {
		return ErrSuperseded
	}

	token, found, err := c.store.Load(ctx)
	if err != nil {
		c.logger.Warn(ctx, "token store unreadable", "error", err)
		c.finish(gen, State{Err: err}, false)
		return err
	}
	if !found {
		if !c.finish(gen, State{}, false) {
			return ErrSuperseded
		}
		return nil
	}

	_, err = c.resolve(ctx, gen, token)
	return err
}

// Login persists token and resolves it. On failure the session is cleared
// along with the stored credential.
func (c *Context) Login(ctx context.Context, token string) (*models.Session, error) {
	gen, ok := c.begin()
	if !ok {
		return nil, ErrSuperseded
	}

	saved, err := c.save(ctx, gen, token)
	if !saved {
		return nil, ErrSuperseded
	}
	if err != nil {
		c.finish(gen, State{Err: err}, false)
		return nil, err
	}

	return c.resolve(ctx, gen, token)
}

// save writes token only while gen is current. A Logout that got in first
// has already moved the generation on, so its clear is never undone.
func (c *Context) save(ctx context.Context, gen uint64, token string) (bool, error) {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()

	c.mu.Lock()
	current := !c.closed && gen == c.gen
	c.mu.Unlock()
	if !current {
		return false, nil
	}
	return true, c.store.Save(ctx, token)
}

// Logout clears the stored credential and the session. It makes no network
// call.
func (c *Context) Logout(ctx context.Context) error {
	return c.drop(ctx, State{}, func() bool { return true })
}

// DropExpired demotes a session whose credential has expired to anonymous
// and clears the stored credential. It reports whether it did so.
func (c *Context) DropExpired(ctx context.Context) bool {
	dropped := false
	_ = c.drop(ctx, State{Err: common.ErrCredentialExpired}, func() bool {
		dropped = c.state.Session.Expired(c.now())
		return dropped
	})
	if dropped {
		c.logger.Info(ctx, "session expired")
	}
	return dropped
}

// drop clears the store and publishes next when cond, evaluated under mu,
// holds. No transition can start while it runs.
func (c *Context) drop(ctx context.Context, next State, cond func() bool) error {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if !cond() {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	c.state = next
	snap, subs := c.state, c.subscribers()
	c.mu.Unlock()

	err := c.store.Clear(ctx)
	if err != nil {
		c.logger.Warn(ctx, "token store clear failed", "error", err)
	}

	broadcast(subs, snap)
	return err
}

// Close drops every in-flight resolution and all subscribers.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.gen++
	c.subs = nil
}

func (c *Context) resolve(ctx context.Context, gen uint64, token string) (*models.Session, error) {
	s, err := c.resolver.Resolve(ctx, token)
	if err != nil {
		if !c.finish(gen, State{Err: err}, true) {
			return nil, ErrSuperseded
		}
		return nil, err
	}

	if !c.finish(gen, State{Session: s}, false) {
		return nil, ErrSuperseded
	}
	c.logger.Info(ctx, "session established", "user_id", s.UserID)
	return s, nil
}

// begin starts a transition: loading state, new generation.
func (c *Context) begin() (uint64, bool) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, false
	}
	c.gen++
	gen := c.gen
	c.state = State{Session: c.state.Session, IsLoading: true}
	snap, subs := c.state, c.subscribers()
	c.mu.Unlock()

	broadcast(subs, snap)
	return gen, true
}

// finish applies next if gen is still current. With clearStore the stored
// credential is removed under the same check, so a newer Login's token is
// never wiped by an older failure.
func (c *Context) finish(gen uint64, next State, clearStore bool) bool {
	if clearStore {
		c.storeMu.Lock()
		defer c.storeMu.Unlock()
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return false
	}
	if clearStore {
		if err := c.store.Clear(context.Background()); err != nil {
			c.logger.Warn(context.Background(), "token store clear failed", "error", err)
		}
	}
	c.state = next
	snap, subs := c.state, c.subscribers()
	c.mu.Unlock()

	broadcast(subs, snap)
	return true
}

func (c *Context) subscribers() []Subscriber {
	out := make([]Subscriber, len(c.subs))
	for i, s := range c.subs {
		out[i] = s.fn
	}
	return out
}

func broadcast(subs []Subscriber, s State) {
	for _, fn := range subs {
		fn(s)
	}
}
