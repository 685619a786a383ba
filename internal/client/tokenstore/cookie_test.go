package tokenstore

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/dmitrijs2005/bookcase/internal/client/client"
	"github.com/dmitrijs2005/bookcase/internal/common"
	"github.com/dmitrijs2005/bookcase/internal/testutil/fakebackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieSource_RoundTrip(t *testing.T) {
	for _, raw := range []string{"http://localhost:8000/api/v1", "https://books.example.com/api/v1"} {
		t.Run(raw, func(t *testing.T) {
			jar, err := cookiejar.New(nil)
			require.NoError(t, err)
			api, err := url.Parse(raw)
			require.NoError(t, err)

			s := NewCookieSource(jar, api, common.AccessTokenCookieName)
			ctx := context.Background()

			require.NoError(t, s.Save(ctx, "T"))
			token, found, err := s.Load(ctx)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "T", token)

			// visible to API requests under the base path
			var sent []*http.Cookie
			for _, c := range jar.Cookies(api) {
				if c.Name == common.AccessTokenCookieName {
					sent = append(sent, c)
				}
			}
			assert.Len(t, sent, 1)

			require.NoError(t, s.Clear(ctx))
			_, found, err = s.Load(ctx)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestCookieSource_SeesBackendCookie(t *testing.T) {
	fb := fakebackend.New()
	t.Cleanup(fb.Close)

	c, err := client.NewHTTPClient(fb.BaseURL())
	require.NoError(t, err)

	hc := &http.Client{Jar: c.Jar()}
	resp, err := hc.Get(fb.BaseURL() + "/auth/google/callback?user=7")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	s := NewCookieSource(c.Jar(), c.BaseURL(), common.AccessTokenCookieName)
	token, found, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.NotEmpty(t, token)
}
