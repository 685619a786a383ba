// Package fakebackend is an in-process stand-in for the book-review REST API,
// used by tests across the client packages. It issues real HS256 tokens,
// enforces bearer auth, and lets tests inject failures per route.
package fakebackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

const APIPrefix = "/api/v1"

var secret = []byte("fakebackend-secret")

type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	nextID    int64
	users     map[int64]*models.User
	passwords map[string]string
	favorites map[int64]map[int64]struct{}
	books     map[int64]*models.Book
	reviews   map[int64]*models.Review
	calls     map[string]int
	failures  map[string]int

	LastAuthorization string
	LastRequestID     string
	LastUserIDQuery   string
}

// New starts the server; it is closed by t.Cleanup through the caller.
func New() *Backend {
	b := &Backend{
		nextID:    100,
		users:     map[int64]*models.User{},
		passwords: map[string]string{},
		favorites: map[int64]map[int64]struct{}{},
		books:     map[int64]*models.Book{},
		reviews:   map[int64]*models.Review{},
		calls:     map[string]int{},
		failures:  map[string]int{},
	}
	b.Server = httptest.NewServer(b.routes())
	return b
}

func (b *Backend) Close() { b.Server.Close() }

// BaseURL is the API root to hand to client.NewHTTPClient.
func (b *Backend) BaseURL() string { return b.Server.URL + APIPrefix }

// AddUser registers a user with a password and returns it.
func (b *Backend) AddUser(id int64, email, username, password string) *models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := &models.User{ID: id, Email: email, Username: username, IsActive: true}
	b.users[id] = u
	b.passwords[email] = password
	return u
}

// DeleteUser simulates an account removed server side.
func (b *Backend) DeleteUser(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.users, id)
}

func (b *Backend) AddBook(book models.Book) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := book
	b.books[book.ID] = &cp
}

func (b *Backend) AddReview(r models.Review) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := r
	b.reviews[r.ID] = &cp
}

// SetFavorites replaces the favorite set of a user.
func (b *Backend) SetFavorites(userID int64, bookIDs ...int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := map[int64]struct{}{}
	for _, id := range bookIDs {
		set[id] = struct{}{}
	}
	b.favorites[userID] = set
}

// FavoriteIDs returns the server-side favorite set of a user, sorted.
func (b *Backend) FavoriteIDs(userID int64) []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]int64, 0, len(b.favorites[userID]))
	for id := range b.favorites[userID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Fail makes every request to route answer status until Fail(route, 0).
// Routes are named "METHOD /pattern", e.g. "POST /favoritar/{id}".
func (b *Backend) Fail(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, route)
		return
	}
	b.failures[route] = status
}

// Calls reports how many requests hit route.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// Token mints a credential for userID valid for ttl (negative = expired).
func Token(userID int64, ttl time.Duration) string {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})
	s, err := t.SignedString(secret)
	if err != nil {
		panic(err)
	}
	return s
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", b.track("GET /", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the BookReview API"})
	}))

	r.Route(APIPrefix, func(r chi.Router) {
		r.Post("/login", b.track("POST /login", b.login))
		r.Post("/register", b.track("POST /register", b.register))
		r.Get("/auth/google/callback", b.track("GET /auth/google/callback", b.oauthCallback))

		r.Get("/books/", b.track("GET /books/", b.listBooks))
		r.Get("/books/{id}", b.track("GET /books/{id}", b.getBook))
		r.Get("/books/google/{gid}", b.track("GET /books/google/{gid}", b.getBookByGoogleID))
		r.Get("/reviews/books/{id}", b.track("GET /reviews/books/{id}", b.listReviews))

		r.Group(func(r chi.Router) {
			r.Use(b.requireAuth)
			r.Get("/user/me", b.track("GET /user/me", b.me))
			r.Get("/users/{id}", b.track("GET /users/{id}", b.getUser))
			r.Get("/favoritos", b.track("GET /favoritos", b.listFavorites))
			r.Get("/favoritos/{id}", b.track("GET /favoritos/{id}", b.checkFavorite))
			r.Post("/favoritar/{id}", b.track("POST /favoritar/{id}", b.addFavorite))
			r.Delete("/desfavoritar/{id}", b.track("DELETE /desfavoritar/{id}", b.removeFavorite))
			r.Post("/books/", b.track("POST /books/", b.createBook))
			r.Post("/reviews", b.track("POST /reviews", b.createReview))
			r.Put("/books/{bookID}/reviews/{reviewID}", b.track("PUT /books/{bookID}/reviews/{reviewID}", b.updateReview))
			r.Delete("/books/{bookID}/reviews/{reviewID}", b.track("DELETE /books/{bookID}/reviews/{reviewID}", b.deleteReview))
		})
	})

	return r
}

type ctxKey struct{}

func (b *Backend) track(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[route]++
		b.LastAuthorization = r.Header.Get("Authorization")
		b.LastRequestID = r.Header.Get("X-Request-ID")
		b.LastUserIDQuery = r.URL.Query().Get("user_id")
		status, failing := b.failures[route]
		b.mu.Unlock()

		if failing {
			writeJSON(w, status, map[string]string{"detail": "injected failure"})
			return
		}
		h(w, r)
	}
}

func (b *Backend) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			if c, err := r.Cookie("access_token"); err == nil {
				raw = c.Value
			}
		}
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return secret, nil })
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token"})
			return
		}
		id, _ := strconv.ParseInt(claims.Subject, 10, 64)
		next.ServeHTTP(w, r.WithContext(withUser(r, id)))
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	b.mu.Lock()
	var found *models.User
	if pw, ok := b.passwords[email]; ok && pw == password {
		for _, u := range b.users {
			if u.Email == email {
				found = u
			}
		}
	}
	b.mu.Unlock()

	if found == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: Token(found.ID, time.Hour), TokenType: "bearer"})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Email == in.Email || u.Username == in.Username {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email or username already registered"})
			return
		}
	}
	b.nextID++
	u := &models.User{ID: b.nextID, Email: in.Email, Username: in.Username, IsActive: true}
	b.users[u.ID] = u
	b.passwords[in.Email] = in.Password
	writeJSON(w, http.StatusCreated, u)
}

// oauthCallback mimics the end of the backend-hosted Google flow: it sets
// the access_token cookie for ?user=<id>.
func (b *Backend) oauthCallback(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get("user"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad user"})
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    Token(id, time.Hour),
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	b.writeUser(w, userFrom(r))
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b.writeUser(w, id)
}

func (b *Backend) writeUser(w http.ResponseWriter, id int64) {
	b.mu.Lock()
	u, ok := b.users[id]
	var cp models.User
	if ok {
		cp = *u
	}
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (b *Backend) listFavorites(w http.ResponseWriter, r *http.Request) {
	ids := b.FavoriteIDs(userFrom(r))
	if len(ids) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Nenhum livro favorito encontrado"})
		return
	}
	out := make([]models.Book, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Book{ID: id, Title: "book " + strconv.FormatInt(id, 10)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) checkFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	_, fav := b.favorites[userFrom(r)][id]
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"isFavorito": fav})
}

func (b *Backend) addFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := userFrom(r)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.favorites[user] == nil {
		b.favorites[user] = map[int64]struct{}{}
	}
	if _, exists := b.favorites[user][id]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Você já favoritou este livro"})
		return
	}
	b.favorites[user][id] = struct{}{}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Livro favoritado com sucesso!"})
}

func (b *Backend) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user := userFrom(r)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.favorites[user][id]; !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Favorito não encontrado"})
		return
	}
	delete(b.favorites[user], id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Livro desfavoritado com sucesso!"})
}

func (b *Backend) listBooks(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	out := make([]models.Book, 0, len(b.books))
	for _, bk := range b.books {
		out = append(out, *bk)
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getBook(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	bk, found := b.books[id]
	var cp models.Book
	if found {
		cp = *bk
	}
	b.mu.Unlock()
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Book not found"})
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (b *Backend) getBookByGoogleID(w http.ResponseWriter, r *http.Request) {
	gid := chi.URLParam(r, "gid")
	b.mu.Lock()
	var cp *models.Book
	for _, bk := range b.books {
		if bk.GoogleID == gid {
			c := *bk
			cp = &c
		}
	}
	b.mu.Unlock()
	if cp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Book not found"})
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

func (b *Backend) createBook(w http.ResponseWriter, r *http.Request) {
	var in models.Book
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	b.nextID++
	in.ID = b.nextID
	cp := in
	b.books[in.ID] = &cp
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, in)
}

func (b *Backend) listReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b.mu.Lock()
	out := []models.Review{}
	for _, rv := range b.reviews {
		if rv.BookID == id {
			out = append(out, *rv)
		}
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createReview(w http.ResponseWriter, r *http.Request) {
	var in models.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}
	b.mu.Lock()
	b.nextID++
	rv := reviewFrom(b.nextID, in)
	b.reviews[rv.ID] = &rv
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, rv)
}

func (b *Backend) updateReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}
	var in models.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	existing, found := b.reviews[reviewID]
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Review not found"})
		return
	}
	rv := reviewFrom(reviewID, in)
	rv.CreatedAt = existing.CreatedAt
	now := time.Now().UTC()
	rv.UpdatedAt = &now
	b.reviews[reviewID] = &rv
	writeJSON(w, http.StatusOK, rv)
}

func (b *Backend) deleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	rv, found := b.reviews[reviewID]
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Review not found"})
		return
	}
	if rv.UserID != userFrom(r) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Not the review owner"})
		return
	}
	delete(b.reviews, reviewID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Review deleted"})
}

func reviewFrom(id int64, in models.ReviewInput) models.Review {
	return models.Review{
		ID:              id,
		BookID:          in.BookID,
		UserID:          in.UserID,
		Title:           in.Title,
		Body:            in.Body,
		StoryRating:     in.StoryRating,
		StyleRating:     in.StyleRating,
		CharacterRating: in.CharacterRating,
		OverallRating:   in.OverallRating,
		Recommendation:  in.Recommendation,
		CreatedAt:       time.Now().UTC(),
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
