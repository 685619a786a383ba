package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookcase/internal/client/client"
	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/common"
)

// Catalog is the external book search; catalog.Client implements it.
type Catalog interface {
	Search(ctx context.Context, q string) ([]models.Book, error)
	Volume(ctx context.Context, googleID string) (*models.Book, error)
}

type BookService interface {
	Search(ctx context.Context, q string) ([]models.Book, error)
	// Show returns the backend record for googleID. Unknown books are
	// fetched from the catalog and, for a logged-in user, imported.
	Show(ctx context.Context, s *models.Session, googleID string) (*models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	Get(ctx context.Context, id int64) (*models.Book, error)
	// IsFavorite asks the backend directly, bypassing any local cache.
	IsFavorite(ctx context.Context, s *models.Session, id int64) (bool, error)
}

type bookService struct {
	client  client.Client
	catalog Catalog
}

func NewBookService(client client.Client, catalog Catalog) BookService {
	return &bookService{client: client, catalog: catalog}
}

func (b *bookService) Search(ctx context.Context, q string) ([]models.Book, error) {
	books, err := b.catalog.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search error: %w", err)
	}
	return books, nil
}

func (b *bookService) Show(ctx context.Context, s *models.Session, googleID string) (*models.Book, error) {
	if googleID == "" {
		return nil, common.NewValidationError("google_id", "is required")
	}

	book, err := b.client.BookByGoogleID(ctx, googleID)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, client.ErrNotFound) {
		return nil, fmt.Errorf("get book error: %w", err)
	}

	found, err := b.catalog.Volume(ctx, googleID)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup error: %w", err)
	}
	if !s.IsAuthenticated() {
		return found, nil
	}

	created, err := b.client.CreateBook(ctx, s, *found)
	if err != nil {
		return nil, fmt.Errorf("import book error: %w", err)
	}
	return created, nil
}

func (b *bookService) List(ctx context.Context) ([]models.Book, error) {
	return b.client.Books(ctx)
}

func (b *bookService) Get(ctx context.Context, id int64) (*models.Book, error) {
	return b.client.Book(ctx, id)
}

func (b *bookService) IsFavorite(ctx context.Context, s *models.Session, id int64) (bool, error) {
	if !s.IsAuthenticated() {
		return false, common.ErrNotAuthenticated
	}
	return b.client.IsFavorite(ctx, s, id)
}
