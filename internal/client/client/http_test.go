package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/common"
	"github.com/dmitrijs2005/bookcase/internal/testutil/fakebackend"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*HTTPClient, *fakebackend.Backend) {
	t.Helper()
	fb := fakebackend.New()
	t.Cleanup(fb.Close)

	c, err := NewHTTPClient(fb.BaseURL())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, fb
}

func sessionFor(id int64) *models.Session {
	return &models.Session{UserID: itoa(id), Token: fakebackend.Token(id, time.Hour)}
}

func TestNewHTTPClient_RejectsBadScheme(t *testing.T) {
	for _, raw := range []string{"ftp://example.com", "localhost:8000", "://bad"} {
		_, err := NewHTTPClient(raw)
		assert.Error(t, err, raw)
	}
}

func TestNewHTTPClient_AttachesJar(t *testing.T) {
	c, err := NewHTTPClient("http://localhost:8000/api/v1/")
	require.NoError(t, err)
	assert.NotNil(t, c.Jar())
	assert.Equal(t, "/api/v1", c.BaseURL().Path)
}

func TestHTTPClient_OAuthLoginURL(t *testing.T) {
	c, err := NewHTTPClient("https://books.example.com/api/v1")
	require.NoError(t, err)
	assert.Equal(t, "https://books.example.com/api/v1/auth/google/login", c.OAuthLoginURL())
}

func TestHTTPClient_Ping(t *testing.T) {
	c, fb := newTestClient(t)

	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, 1, fb.Calls("GET /"))

	fb.Close()
	err := c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_LoginAndMe(t *testing.T) {
	c, fb := newTestClient(t)
	fb.AddUser(7, "ana@example.com", "ana", "s3cret")
	ctx := context.Background()

	token, err := c.Login(ctx, "ana@example.com", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	u, err := c.Me(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "ana", u.Username)
	assert.Equal(t, "Bearer "+token, fb.LastAuthorization)

	_, err = uuid.Parse(fb.LastRequestID)
	assert.NoError(t, err, "every request carries a uuid request id")
}

func TestHTTPClient_LoginWrongPassword(t *testing.T) {
	c, fb := newTestClient(t)
	fb.AddUser(7, "ana@example.com", "ana", "s3cret")

	_, err := c.Login(context.Background(), "ana@example.com", "nope")
	require.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Incorrect email or password", apiErr.Detail)
}

func TestHTTPClient_Register(t *testing.T) {
	c, fb := newTestClient(t)
	fb.AddUser(1, "taken@example.com", "taken", "pw")
	ctx := context.Background()

	u, err := c.Register(ctx, models.RegisterInput{Email: "new@example.com", Username: "newbie", Password: "pw123456"})
	require.NoError(t, err)
	assert.Equal(t, "newbie", u.Username)

	_, err = c.Register(ctx, models.RegisterInput{Email: "taken@example.com", Username: "other", Password: "pw"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestHTTPClient_UserNotFound(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.User(context.Background(), fakebackend.Token(1, time.Hour), "404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPClient_ExpiredTokenIsUnauthorized(t *testing.T) {
	c, fb := newTestClient(t)
	fb.AddUser(7, "ana@example.com", "ana", "pw")

	_, err := c.Me(context.Background(), fakebackend.Token(7, -time.Minute))
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestHTTPClient_FavoritesRoundTrip(t *testing.T) {
	c, fb := newTestClient(t)
	s := sessionFor(7)
	ctx := context.Background()

	ids, err := c.Favorites(ctx, s)
	require.NoError(t, err, "404 for an empty list is not an error")
	assert.Empty(t, ids)
	assert.Equal(t, "7", fb.LastUserIDQuery)

	require.NoError(t, c.AddFavorite(ctx, s, 42))
	require.NoError(t, c.AddFavorite(ctx, s, 99))

	ids, err = c.Favorites(ctx, s)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{42, 99}, ids)

	fav, err := c.IsFavorite(ctx, s, 42)
	require.NoError(t, err)
	assert.True(t, fav)

	require.NoError(t, c.RemoveFavorite(ctx, s, 42))
	assert.Equal(t, []int64{99}, fb.FavoriteIDs(7))

	err = c.RemoveFavorite(ctx, s, 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPClient_FavoritesServerError(t *testing.T) {
	c, fb := newTestClient(t)
	fb.Fail("GET /favoritos", http.StatusInternalServerError)

	_, err := c.Favorites(context.Background(), sessionFor(7))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestHTTPClient_RequiresSession(t *testing.T) {
	c, fb := newTestClient(t)
	ctx := context.Background()

	_, err := c.Favorites(ctx, nil)
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.ErrorIs(t, c.AddFavorite(ctx, &models.Session{}, 1), common.ErrNotAuthenticated)
	_, err = c.CreateReview(ctx, nil, models.ReviewInput{})
	assert.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.ErrorIs(t, c.DeleteReview(ctx, nil, 1, 2), common.ErrNotAuthenticated)

	assert.Zero(t, fb.Calls("GET /favoritos"))
	assert.Zero(t, fb.Calls("POST /favoritar/{id}"))
}

func TestHTTPClient_Books(t *testing.T) {
	c, fb := newTestClient(t)
	fb.AddBook(models.Book{ID: 1, GoogleID: "g1", Title: "Dune", Author: "Frank Herbert"})
	ctx := context.Background()

	books, err := c.Books(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)

	b, err := c.Book(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)

	b, err = c.BookByGoogleID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.ID)

	_, err = c.BookByGoogleID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	created, err := c.CreateBook(ctx, sessionFor(7), models.Book{GoogleID: "g2", Title: "Emma", Author: "Jane Austen"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestHTTPClient_ReviewLifecycle(t *testing.T) {
	c, fb := newTestClient(t)
	s := sessionFor(7)
	ctx := context.Background()

	in := models.ReviewInput{BookID: 1, UserID: 7, Title: "Great", Body: "Loved it", StoryRating: 5, StyleRating: 4, CharacterRating: 3}
	in.OverallRating = in.Overall()

	r, err := c.CreateReview(ctx, s, in)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, r.OverallRating, 0.001)

	in.Title = "Still great"
	updated, err := c.UpdateReview(ctx, s, 1, r.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Still great", updated.Title)
	assert.NotNil(t, updated.UpdatedAt)

	reviews, err := c.Reviews(ctx, 1)
	require.NoError(t, err)
	require.Len(t, reviews, 1)

	err = c.DeleteReview(ctx, sessionFor(8), 1, r.ID)
	require.ErrorIs(t, err, ErrUnauthorized, "403 maps to unauthorized")

	require.NoError(t, c.DeleteReview(ctx, s, 1, r.ID))
	assert.Equal(t, 2, fb.Calls("DELETE /books/{bookID}/reviews/{reviewID}"))
}

func TestHTTPClient_ContextCanceled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(block) })

	c, err := NewHTTPClient(srv.URL + "/api/v1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Books(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestAPIError_Unwrap(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadGateway, ErrUnavailable},
		{http.StatusServiceUnavailable, ErrUnavailable},
		{http.StatusGatewayTimeout, ErrUnavailable},
		{http.StatusInternalServerError, nil},
		{http.StatusUnprocessableEntity, nil},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := &APIError{StatusCode: tt.status}
			assert.Equal(t, tt.want, err.Unwrap())
			assert.Contains(t, err.Error(), itoa(int64(tt.status)))
		})
	}
}

func TestDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":"Book not found"}`, "Book not found"},
		{"validation list", `{"detail":[{"msg":"field required"},{"msg":"too short"}]}`, "field required; too short"},
		{"plain body", "Bad Gateway\n", "Bad Gateway"},
		{"other shape", `{"detail":{"code":1}}`, `{"code":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detail([]byte(tt.body)))
		})
	}
}

func TestEndpoint_EncodesQuery(t *testing.T) {
	c, err := NewHTTPClient("http://localhost:8000/api/v1")
	require.NoError(t, err)

	got := c.endpoint("/favoritos", url.Values{"user_id": []string{"7"}})
	assert.Equal(t, "http://localhost:8000/api/v1/favoritos?user_id=7", got)
}
