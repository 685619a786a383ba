package favorites

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/client/client"
	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/client/session"
	"github.com/dmitrijs2005/bookcase/internal/client/tokenstore"
	"github.com/dmitrijs2005/bookcase/internal/common"
	"github.com/dmitrijs2005/bookcase/internal/testutil/fakebackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttach_FollowsSession(t *testing.T) {
	fb := fakebackend.New()
	t.Cleanup(fb.Close)
	fb.AddUser(7, "a@x.com", "ana", "pw")
	fb.SetFavorites(7, 42)

	c, err := client.NewHTTPClient(fb.BaseURL())
	require.NoError(t, err)
	store := tokenstore.New(nil, tokenstore.NewCookieSource(c.Jar(), c.BaseURL(), common.AccessTokenCookieName))
	sc := session.NewContext(store, session.NewResolver(c, nil), nil)
	t.Cleanup(sc.Close)

	st := New(c, nil)
	detach := st.Attach(context.Background(), sc)
	defer detach()

	ctx := context.Background()
	_, err = sc.Login(ctx, fakebackend.Token(7, time.Hour))
	require.NoError(t, err)
	require.NoError(t, st.Wait(ctx))

	assert.True(t, st.Loaded(), "loaded once the session is published")
	assert.True(t, st.IsFavorited(42))
	assert.Equal(t, 1, fb.Calls("GET /favoritos"))

	require.NoError(t, sc.Logout(ctx))
	assert.False(t, st.Loaded())
	assert.False(t, st.IsFavorited(42))
}

func TestAttach_FailedLoginNeverLoads(t *testing.T) {
	fb := fakebackend.New()
	t.Cleanup(fb.Close)

	c, err := client.NewHTTPClient(fb.BaseURL())
	require.NoError(t, err)
	store := tokenstore.New(nil, tokenstore.NewCookieSource(c.Jar(), c.BaseURL(), common.AccessTokenCookieName))
	sc := session.NewContext(store, session.NewResolver(c, nil), nil)

	st := New(c, nil)
	st.Attach(context.Background(), sc)

	_, err = sc.Login(context.Background(), fakebackend.Token(404, time.Hour))
	require.Error(t, err)
	require.NoError(t, st.Wait(context.Background()))
	assert.Zero(t, fb.Calls("GET /favoritos"))
	assert.False(t, st.Loaded())
}

// slowAPI holds every Favorites call until release is closed.
type slowAPI struct {
	release chan struct{}

	FavoritesCalls atomic.Int32
}

func (a *slowAPI) Favorites(ctx context.Context, _ *models.Session) ([]int64, error) {
	a.FavoritesCalls.Add(1)
	select {
	case <-a.release:
		return []int64{42}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *slowAPI) AddFavorite(context.Context, *models.Session, int64) error    { return nil }
func (a *slowAPI) RemoveFavorite(context.Context, *models.Session, int64) error { return nil }

func TestAttach_LogoutDoesNotWaitForLoad(t *testing.T) {
	fb := fakebackend.New()
	t.Cleanup(fb.Close)
	fb.AddUser(7, "a@x.com", "ana", "pw")

	c, err := client.NewHTTPClient(fb.BaseURL())
	require.NoError(t, err)
	store := tokenstore.New(nil, tokenstore.NewCookieSource(c.Jar(), c.BaseURL(), common.AccessTokenCookieName))
	sc := session.NewContext(store, session.NewResolver(c, nil), nil)
	t.Cleanup(sc.Close)

	api := &slowAPI{release: make(chan struct{})}
	st := New(api, nil)
	detach := st.Attach(context.Background(), sc)

	ctx := context.Background()
	_, err = sc.Login(ctx, fakebackend.Token(7, time.Hour))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return api.FavoritesCalls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- sc.Logout(ctx) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("logout waited for the favorites fetch")
	}
	assert.Nil(t, sc.Session())

	close(api.release)
	require.NoError(t, st.Wait(ctx))
	assert.False(t, st.Loaded(), "a load that finishes after logout is dropped")

	detach()
}
