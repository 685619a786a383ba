package client

import (
	"context"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
)

// Client is the transport-agnostic contract to the book-review backend.
// Methods that take a *models.Session authenticate with its token and fail
// with common.ErrNotAuthenticated when the session is nil.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	OAuthLoginURL() string

	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, in models.RegisterInput) (*models.User, error)
	Me(ctx context.Context, token string) (*models.User, error)
	User(ctx context.Context, token, id string) (*models.User, error)
	Usernames(ctx context.Context, token string, ids []int64) (map[int64]string, error)

	Favorites(ctx context.Context, s *models.Session) ([]int64, error)
	IsFavorite(ctx context.Context, s *models.Session, bookID int64) (bool, error)
	AddFavorite(ctx context.Context, s *models.Session, bookID int64) error
	RemoveFavorite(ctx context.Context, s *models.Session, bookID int64) error

	Books(ctx context.Context) ([]models.Book, error)
	Book(ctx context.Context, id int64) (*models.Book, error)
	BookByGoogleID(ctx context.Context, googleID string) (*models.Book, error)
	CreateBook(ctx context.Context, s *models.Session, b models.Book) (*models.Book, error)

	Reviews(ctx context.Context, bookID int64) ([]models.Review, error)
	CreateReview(ctx context.Context, s *models.Session, in models.ReviewInput) (*models.Review, error)
	UpdateReview(ctx context.Context, s *models.Session, bookID, reviewID int64, in models.ReviewInput) (*models.Review, error)
	DeleteReview(ctx context.Context, s *models.Session, bookID, reviewID int64) error
}
