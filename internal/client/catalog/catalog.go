// Package catalog searches the public Google Books volumes API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/logging"
)

const (
	DefaultURL        = "https://www.googleapis.com/books/v1/volumes"
	DefaultMaxResults = 10

	UnknownTitle  = "Unknown title"
	UnknownAuthor = "Unknown author"
	NoDescription = "No description."
)

var ErrEmptyQuery = errors.New("empty search query")

type Client struct {
	endpoint   string
	maxResults int
	http       *http.Client
	logger     logging.Logger
}

func New(endpoint string, maxResults int, timeout time.Duration, logger logging.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		maxResults: maxResults,
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Authors       []string `json:"authors"`
		Description   string   `json:"description"`
		PublishedDate string   `json:"publishedDate"`
		Categories    []string `json:"categories"`
		ImageLinks    struct {
			Thumbnail string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

// Search returns up to maxResults books matching q. A response without
// items is an empty result.
func (c *Client) Search(ctx context.Context, q string) ([]models.Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("maxResults", strconv.Itoa(c.maxResults))

	var resp struct {
		TotalItems int      `json:"totalItems"`
		Items      []volume `json:"items"`
	}
	if err := c.get(ctx, c.endpoint+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	books := make([]models.Book, 0, len(resp.Items))
	for _, v := range resp.Items {
		books = append(books, v.toBook())
	}
	c.logger.Debug(ctx, "catalog search", "q", q, "total", resp.TotalItems, "returned", len(books))
	return books, nil
}

// Volume fetches a single volume by its Google id.
func (c *Client) Volume(ctx context.Context, googleID string) (*models.Book, error) {
	var v volume
	if err := c.get(ctx, c.endpoint+"/"+url.PathEscape(googleID), &v); err != nil {
		return nil, err
	}
	b := v.toBook()
	return &b, nil
}

func (c *Client) get(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}

func (v volume) toBook() models.Book {
	info := v.VolumeInfo
	b := models.Book{
		GoogleID:      v.ID,
		Title:         info.Title,
		Author:        strings.Join(info.Authors, ", "),
		Description:   info.Description,
		Thumbnail:     info.ImageLinks.Thumbnail,
		PublishedYear: year(info.PublishedDate),
	}
	if len(info.Categories) > 0 {
		b.Genre = info.Categories[0]
	}
	if b.Title == "" {
		b.Title = UnknownTitle
	}
	if b.Author == "" {
		b.Author = UnknownAuthor
	}
	if b.Description == "" {
		b.Description = NoDescription
	}
	return b
}

// year reads the leading year of "2005", "2005-06" or "2005-06-01".
func year(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
