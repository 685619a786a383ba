package tokenstore

import (
	"context"
	"net/http"
	"net/url"
)

// CookieSource reads and writes the credential cookie in a jar shared with
// the API client, so a cookie set by the backend is picked up here.
type CookieSource struct {
	jar  http.CookieJar
	root *url.URL
	name string
}

var _ Source = (*CookieSource)(nil)

// NewCookieSource scopes the cookie to the host of apiURL with Path=/.
func NewCookieSource(jar http.CookieJar, apiURL *url.URL, name string) *CookieSource {
	root := &url.URL{Scheme: apiURL.Scheme, Host: apiURL.Host, Path: "/"}
	return &CookieSource{jar: jar, root: root, name: name}
}

func (s *CookieSource) Name() string { return "cookie" }

func (s *CookieSource) Load(_ context.Context) (string, bool, error) {
	for _, c := range s.jar.Cookies(s.root) {
		if c.Name == s.name && c.Value != "" {
			return c.Value, true, nil
		}
	}
	return "", false, nil
}

func (s *CookieSource) Save(_ context.Context, token string) error {
	s.jar.SetCookies(s.root, []*http.Cookie{s.cookie(token, 0)})
	return nil
}

// Clear expires the cookie; the jar drops cookies with a negative MaxAge.
func (s *CookieSource) Clear(_ context.Context) error {
	s.jar.SetCookies(s.root, []*http.Cookie{s.cookie("", -1)})
	return nil
}

func (s *CookieSource) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   s.root.Scheme == "https",
		SameSite: http.SameSiteStrictMode,
	}
}
