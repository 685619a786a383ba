package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/common"
	"github.com/dmitrijs2005/bookcase/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
)

const maxErrorBody = 4 << 10

// HTTPClient implements Client over the backend's REST API.
//
// Bearer credentials are attached per call through an oauth2.Transport
// wrapping the shared base transport; the cookie jar is shared with the
// token store so cookies set by the backend are visible there.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	logger  logging.Logger
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. If it has no Jar a
// fresh one is attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// NewHTTPClient builds a client for the API rooted at baseURL
// (e.g. http://localhost:8000/api/v1).
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: 12 * time.Second},
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}

	return c, nil
}

// BaseURL returns a copy of the API root.
func (c *HTTPClient) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Jar is the cookie jar shared by every request of this client.
func (c *HTTPClient) Jar() http.CookieJar {
	return c.http.Jar
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) OAuthLoginURL() string {
	return c.endpoint("/auth/google/login", nil)
}

// Ping checks the backend root ("/" on the API host).
func (c *HTTPClient) Ping(ctx context.Context) error {
	root := url.URL{Scheme: c.baseURL.Scheme, Host: c.baseURL.Host, Path: "/"}
	return c.send(ctx, request{method: http.MethodGet, rawURL: root.String()}, nil)
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var resp models.TokenResponse
	err := c.send(ctx, request{
		method:      http.MethodPost,
		path:        "/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New("login response carries no access_token")
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	var u models.User
	if err := c.sendJSON(ctx, http.MethodPost, "/register", "", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Me(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := c.send(ctx, request{method: http.MethodGet, path: "/user/me", token: token}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) User(ctx context.Context, token, id string) (*models.User, error) {
	var u models.User
	err := c.send(ctx, request{method: http.MethodGet, path: "/users/" + url.PathEscape(id), token: token}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Favorites returns the ids of the session user's favorite books. The
// backend answers 404 when the list is empty; that is reported as an empty
// slice.
func (c *HTTPClient) Favorites(ctx context.Context, s *models.Session) ([]int64, error) {
	if !s.IsAuthenticated() {
		return nil, common.ErrNotAuthenticated
	}

	var refs []models.FavoriteRef
	err := c.send(ctx, request{method: http.MethodGet, path: "/favoritos", token: s.Token, query: userQuery(s)}, &refs)
	if errors.Is(err, ErrNotFound) {
		return []int64{}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(refs))
	for _, r := range refs {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (c *HTTPClient) IsFavorite(ctx context.Context, s *models.Session, bookID int64) (bool, error) {
	if !s.IsAuthenticated() {
		return false, common.ErrNotAuthenticated
	}

	var resp struct {
		IsFavorite bool `json:"isFavorito"`
	}
	err := c.send(ctx, request{method: http.MethodGet, path: "/favoritos/" + itoa(bookID), token: s.Token, query: userQuery(s)}, &resp)
	if err != nil {
		return false, err
	}
	return resp.IsFavorite, nil
}

func (c *HTTPClient) AddFavorite(ctx context.Context, s *models.Session, bookID int64) error {
	if !s.IsAuthenticated() {
		return common.ErrNotAuthenticated
	}
	return c.send(ctx, request{method: http.MethodPost, path: "/favoritar/" + itoa(bookID), token: s.Token, query: userQuery(s)}, nil)
}

func (c *HTTPClient) RemoveFavorite(ctx context.Context, s *models.Session, bookID int64) error {
	if !s.IsAuthenticated() {
		return common.ErrNotAuthenticated
	}
	return c.send(ctx, request{method: http.MethodDelete, path: "/desfavoritar/" + itoa(bookID), token: s.Token, query: userQuery(s)}, nil)
}

func (c *HTTPClient) Books(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	if err := c.send(ctx, request{method: http.MethodGet, path: "/books/"}, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *HTTPClient) Book(ctx context.Context, id int64) (*models.Book, error) {
	var b models.Book
	if err := c.send(ctx, request{method: http.MethodGet, path: "/books/" + itoa(id)}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *HTTPClient) BookByGoogleID(ctx context.Context, googleID string) (*models.Book, error) {
	var b models.Book
	err := c.send(ctx, request{method: http.MethodGet, path: "/books/google/" + url.PathEscape(googleID)}, &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *HTTPClient) CreateBook(ctx context.Context, s *models.Session, b models.Book) (*models.Book, error) {
	if !s.IsAuthenticated() {
		return nil, common.ErrNotAuthenticated
	}
	var created models.Book
	if err := c.sendJSON(ctx, http.MethodPost, "/books/", s.Token, b, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) Reviews(ctx context.Context, bookID int64) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.send(ctx, request{method: http.MethodGet, path: "/reviews/books/" + itoa(bookID)}, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *HTTPClient) CreateReview(ctx context.Context, s *models.Session, in models.ReviewInput) (*models.Review, error) {
	if !s.IsAuthenticated() {
		return nil, common.ErrNotAuthenticated
	}
	var r models.Review
	if err := c.sendJSON(ctx, http.MethodPost, "/reviews", s.Token, in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) UpdateReview(ctx context.Context, s *models.Session, bookID, reviewID int64, in models.ReviewInput) (*models.Review, error) {
	if !s.IsAuthenticated() {
		return nil, common.ErrNotAuthenticated
	}
	var r models.Review
	if err := c.sendJSON(ctx, http.MethodPut, reviewPath(bookID, reviewID), s.Token, in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) DeleteReview(ctx context.Context, s *models.Session, bookID, reviewID int64) error {
	if !s.IsAuthenticated() {
		return common.ErrNotAuthenticated
	}
	return c.send(ctx, request{method: http.MethodDelete, path: reviewPath(bookID, reviewID), token: s.Token}, nil)
}

type request struct {
	method      string
	path        string
	rawURL      string
	token       string
	query       url.Values
	body        io.Reader
	contentType string
}

func (c *HTTPClient) sendJSON(ctx context.Context, method, path, token string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.send(ctx, request{
		method:      method,
		path:        path,
		token:       token,
		body:        bytes.NewReader(b),
		contentType: "application/json",
	}, out)
}

// send performs one request. Transport failures become ErrUnavailable,
// non-2xx answers become *APIError; out (if non-nil) receives the decoded
// JSON body.
func (c *HTTPClient) send(ctx context.Context, r request, out any) error {
	target := r.rawURL
	if target == "" {
		target = c.endpoint(r.path, r.query)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	log := c.logger.With("request_id", requestID, "method", r.method, "path", req.URL.Path)

	hc := c.http
	if r.token != "" {
		hc = c.authorized(r.token)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn(ctx, "backend unreachable", "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	log.Debug(ctx, "backend call", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// authorized returns a client that sends "Authorization: Bearer <token>" on
// every request while sharing transport, jar and timeout with c.http.
func (c *HTTPClient) authorized(token string) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return &http.Client{
		Transport:     &oauth2.Transport{Source: src, Base: c.http.Transport},
		Jar:           c.http.Jar,
		Timeout:       c.http.Timeout,
		CheckRedirect: c.http.CheckRedirect,
	}
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func mapError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{StatusCode: resp.StatusCode, Detail: detail(body)}
}

// detail extracts FastAPI's "detail" which is either a string or a list of
// validation problems.
func detail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			msgs = append(msgs, it.Msg)
		}
		return strings.Join(msgs, "; ")
	}

	return string(payload.Detail)
}

func userQuery(s *models.Session) url.Values {
	return url.Values{"user_id": []string{s.UserID}}
}

func reviewPath(bookID, reviewID int64) string {
	return "/books/" + itoa(bookID) + "/reviews/" + itoa(reviewID)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
