package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{
  "totalItems": 2,
  "items": [
    {
      "id": "zyTCAlFPjgYC",
      "volumeInfo": {
        "title": "The Google Story",
        "authors": ["David A. Vise", "Mark Malseed"],
        "description": "Inside the company.",
        "publishedDate": "2005-11-15",
        "categories": ["Business & Economics"],
        "imageLinks": {"thumbnail": "http://books.google.com/t.jpg"}
      }
    },
    {"id": "bare", "volumeInfo": {}}
  ]
}`

func newCatalogServer(t *testing.T) (*httptest.Server, *url.Values) {
	t.Helper()
	last := &url.Values{}

	r := chi.NewRouter()
	r.Get("/volumes", func(w http.ResponseWriter, req *http.Request) {
		*last = req.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		if req.URL.Query().Get("q") == "nothing" {
			_, _ = w.Write([]byte(`{"kind":"books#volumes","totalItems":0}`))
			return
		}
		_, _ = w.Write([]byte(searchBody))
	})
	r.Get("/volumes/{id}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "id") != "zyTCAlFPjgYC" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"zyTCAlFPjgYC","volumeInfo":{"title":"The Google Story","publishedDate":"2005"}}`))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, last
}

func TestSearch_MapsItemsWithFallbacks(t *testing.T) {
	srv, last := newCatalogServer(t)
	c := New(srv.URL+"/volumes", 5, time.Second, nil)

	books, err := c.Search(context.Background(), "  google  ")
	require.NoError(t, err)

	want := []models.Book{
		{
			GoogleID:      "zyTCAlFPjgYC",
			Title:         "The Google Story",
			Author:        "David A. Vise, Mark Malseed",
			Description:   "Inside the company.",
			Genre:         "Business & Economics",
			PublishedYear: 2005,
			Thumbnail:     "http://books.google.com/t.jpg",
		},
		{
			GoogleID:    "bare",
			Title:       UnknownTitle,
			Author:      UnknownAuthor,
			Description: NoDescription,
		},
	}
	if diff := cmp.Diff(want, books); diff != "" {
		t.Errorf("Search mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "google", last.Get("q"))
	assert.Equal(t, "5", last.Get("maxResults"))
}

func TestSearch_NoItems(t *testing.T) {
	srv, _ := newCatalogServer(t)
	c := New(srv.URL+"/volumes", 0, time.Second, nil)

	books, err := c.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.NotNil(t, books)
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := New("http://127.0.0.1:1/volumes", 0, time.Second, nil)
	_, err := c.Search(context.Background(), "   ")
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.URL, 0, time.Second, nil).Search(context.Background(), "go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestVolume(t *testing.T) {
	srv, _ := newCatalogServer(t)
	c := New(srv.URL+"/volumes", 0, time.Second, nil)

	b, err := c.Volume(context.Background(), "zyTCAlFPjgYC")
	require.NoError(t, err)
	assert.Equal(t, "The Google Story", b.Title)
	assert.Equal(t, 2005, b.PublishedYear)
	assert.Equal(t, UnknownAuthor, b.Author)

	_, err = c.Volume(context.Background(), "missing")
	require.Error(t, err)
}

func TestYear(t *testing.T) {
	tests := map[string]int{"2005": 2005, "2005-06": 2005, "1999-01-01": 1999, "": 0, "19": 0, "abcd": 0}
	for in, want := range tests {
		assert.Equal(t, want, year(in), in)
	}
}
