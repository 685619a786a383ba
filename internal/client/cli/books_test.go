package cli

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/common"
	"github.com/dmitrijs2005/bookcase/internal/testutil/fakebackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggedIn(t *testing.T, env *testEnv, script string) (*App, *bytes.Buffer) {
	t.Helper()
	env.backend.AddUser(7, "a@x.com", "alice", "pw")
	a, out := env.open(t, script)
	require.NoError(t, a.Token(context.Background(), []string{fakebackend.Token(7, time.Hour)}))
	out.Reset()
	return a, out
}

func TestSearch_ListsHitsAndRemembersThem(t *testing.T) {
	env := newTestEnv(t)
	a, out := env.open(t, "")

	require.NoError(t, a.Search(context.Background(), []string{"dune"}))

	assert.Contains(t, out.String(), " 1. Dune by Frank Herbert (1965) [g-dune]")
	assert.Contains(t, out.String(), " 2. Emma by Jane Austen [g-emma]")
	require.Len(t, a.lastSearch, 2)
}

func TestSearch_PromptsForQuery(t *testing.T) {
	env := newTestEnv(t)
	a, out := env.open(t, "dune\n")

	require.NoError(t, a.Search(context.Background(), nil))
	assert.Contains(t, out.String(), "Search for")
	assert.Contains(t, out.String(), "Dune by Frank Herbert")
}

func TestShow_KnownBook(t *testing.T) {
	env := newTestEnv(t)
	env.backend.AddBook(models.Book{ID: 42, GoogleID: "g-dune", Title: "Dune", Author: "Frank Herbert"})
	a, out := env.open(t, "")

	require.NoError(t, a.Show(context.Background(), []string{"g-dune"}))

	assert.Contains(t, out.String(), "Dune\n  by Frank Herbert")
	assert.Contains(t, out.String(), "book id: 42")
	assert.Equal(t, 0, env.backend.Calls("POST /books/"))
}

func TestShow_ByPositionImportsWhenLoggedIn(t *testing.T) {
	env := newTestEnv(t)
	a, out := loggedIn(t, env, "")

	require.NoError(t, a.Search(context.Background(), []string{"dune"}))
	out.Reset()
	require.NoError(t, a.Show(context.Background(), []string{"1"}))

	assert.Equal(t, 1, env.backend.Calls("POST /books/"))
	assert.Contains(t, out.String(), "Dune")
	assert.Contains(t, out.String(), "genre: Fiction")
	assert.Contains(t, out.String(), "book id: ")
}

func TestShow_Usage(t *testing.T) {
	env := newTestEnv(t)
	a, _ := env.open(t, "")

	require.Error(t, a.Show(context.Background(), nil))
}

func TestToggleFavorite_AddThenRemove(t *testing.T) {
	env := newTestEnv(t)
	env.backend.SetFavorites(7, 1)
	a, out := loggedIn(t, env, "")

	require.NoError(t, a.ToggleFavorite(context.Background(), []string{"42"}))
	assert.Contains(t, out.String(), "Book 42 added to favorites")
	assert.Equal(t, []int64{1, 42}, env.backend.FavoriteIDs(7))

	require.NoError(t, a.ToggleFavorite(context.Background(), []string{"42"}))
	assert.Contains(t, out.String(), "Book 42 removed from favorites")
	assert.Equal(t, []int64{1}, env.backend.FavoriteIDs(7))
}

func TestToggleFavorite_RollsBackOnBackendError(t *testing.T) {
	env := newTestEnv(t)
	a, out := loggedIn(t, env, "")
	env.backend.Fail("POST /favoritar/{id}", http.StatusInternalServerError)

	err := a.ToggleFavorite(context.Background(), []string{"42"})

	assert.ErrorIs(t, err, common.ErrFavoriteSync)
	assert.Contains(t, out.String(), "change reverted")
	assert.False(t, a.favs.IsFavorited(42))
	assert.True(t, a.isLoggedIn(), "a favorite failure keeps the session")
}

func TestToggleFavorite_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	a, _ := env.open(t, "")

	err := a.ToggleFavorite(context.Background(), []string{"42"})
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestToggleFavorite_BadID(t *testing.T) {
	env := newTestEnv(t)
	a, _ := loggedIn(t, env, "")

	require.Error(t, a.ToggleFavorite(context.Background(), []string{"forty-two"}))
	require.Error(t, a.ToggleFavorite(context.Background(), []string{"-1"}))
	require.Error(t, a.ToggleFavorite(context.Background(), nil))
}

func TestFavorites_ListsBooks(t *testing.T) {
	env := newTestEnv(t)
	env.backend.AddBook(models.Book{ID: 42, GoogleID: "g-dune", Title: "Dune", Author: "Frank Herbert"})
	env.backend.SetFavorites(7, 42, 99)
	a, out := loggedIn(t, env, "")

	require.NoError(t, a.Favorites(context.Background()))

	assert.Contains(t, out.String(), "42  Dune by Frank Herbert")
	assert.Contains(t, out.String(), "99  (unavailable)")
}

func TestFavorites_Empty(t *testing.T) {
	env := newTestEnv(t)
	a, out := loggedIn(t, env, "")

	require.NoError(t, a.Favorites(context.Background()))
	assert.Contains(t, out.String(), "No favorites yet")
}

func TestFavorites_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	a, _ := env.open(t, "")

	assert.ErrorIs(t, a.Favorites(context.Background()), common.ErrNotAuthenticated)
}

func TestShow_AsksBackendWhenFavoritesNotLoaded(t *testing.T) {
	env := newTestEnv(t)
	env.backend.AddBook(models.Book{ID: 42, GoogleID: "g-dune", Title: "Dune", Author: "Frank Herbert"})
	env.backend.SetFavorites(7, 42)
	env.backend.Fail("GET /favoritos", http.StatusInternalServerError)
	a, out := loggedIn(t, env, "")

	require.NoError(t, a.Show(context.Background(), []string{"g-dune"}))

	assert.False(t, a.favs.Loaded())
	assert.Contains(t, out.String(), "book id: 42 ★")
	assert.Equal(t, 1, env.backend.Calls("GET /favoritos/{id}"))
}

func TestBooks_ListsBackendBooks(t *testing.T) {
	env := newTestEnv(t)
	env.backend.AddBook(models.Book{ID: 42, GoogleID: "g-dune", Title: "Dune", Author: "Frank Herbert", PublishedYear: 1965})
	env.backend.AddBook(models.Book{ID: 7, GoogleID: "g-emma", Title: "Emma", Author: "Jane Austen"})
	a, out := env.open(t, "")

	require.NoError(t, a.Books(context.Background()))

	assert.Equal(t, "     7  Emma by Jane Austen\n    42  Dune by Frank Herbert (1965)\n", out.String())
}

func TestBooks_Empty(t *testing.T) {
	env := newTestEnv(t)
	a, out := env.open(t, "")

	require.NoError(t, a.Books(context.Background()))
	assert.Contains(t, out.String(), "No books yet")
}
