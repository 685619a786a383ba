package services

import (
	"context"

	"github.com/dmitrijs2005/bookcase/internal/client/client"
	"github.com/dmitrijs2005/bookcase/internal/client/models"
)

// fakeClient implements client.Client for service unit tests. Each method
// records its arguments and returns the configured result.
type fakeClient struct {
	CloseErr error
	PingErr  error
	OAuthURL string

	LoginRet string
	LoginErr error

	RegisterRet *models.User
	RegisterErr error

	MeRet *models.User
	MeErr error

	IsFavoriteRet bool

	UsernamesRet map[int64]string
	UsernamesErr error

	BookByGoogleIDRet *models.Book
	BookByGoogleIDErr error
	CreateBookErr     error
	BooksRet          []models.Book
	BookRet           *models.Book

	ReviewsRet      []models.Review
	ReviewsErr      error
	CreateReviewErr error
	DeleteReviewErr error

	Calls int

	LastLoginEmail    string
	LastLoginPassword string
	LastRegister      models.RegisterInput
	LastToken         string
	LastUsernameIDs   []int64
	LastCreateBook    models.Book
	LastReviewInput   models.ReviewInput
	LastBookID        int64
	LastReviewID      int64
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Close() error          { return f.CloseErr }
func (f *fakeClient) OAuthLoginURL() string { return f.OAuthURL }

func (f *fakeClient) Ping(ctx context.Context) error {
	f.Calls++
	return f.PingErr
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (string, error) {
	f.Calls++
	f.LastLoginEmail, f.LastLoginPassword = username, password
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	f.Calls++
	f.LastRegister = in
	return f.RegisterRet, f.RegisterErr
}

func (f *fakeClient) Me(ctx context.Context, token string) (*models.User, error) {
	f.Calls++
	f.LastToken = token
	if f.MeRet == nil && f.MeErr == nil {
		return nil, client.ErrNotFound
	}
	return f.MeRet, f.MeErr
}

func (f *fakeClient) User(ctx context.Context, token, id string) (*models.User, error) {
	f.Calls++
	return nil, client.ErrNotFound
}

func (f *fakeClient) Usernames(ctx context.Context, token string, ids []int64) (map[int64]string, error) {
	f.Calls++
	f.LastUsernameIDs = append([]int64(nil), ids...)
	return f.UsernamesRet, f.UsernamesErr
}

func (f *fakeClient) Favorites(ctx context.Context, s *models.Session) ([]int64, error) {
	f.Calls++
	return nil, nil
}

func (f *fakeClient) IsFavorite(ctx context.Context, s *models.Session, bookID int64) (bool, error) {
	f.Calls++
	f.LastBookID = bookID
	return f.IsFavoriteRet, nil
}

func (f *fakeClient) AddFavorite(ctx context.Context, s *models.Session, bookID int64) error {
	f.Calls++
	return nil
}

func (f *fakeClient) RemoveFavorite(ctx context.Context, s *models.Session, bookID int64) error {
	f.Calls++
	return nil
}

func (f *fakeClient) Books(ctx context.Context) ([]models.Book, error) {
	f.Calls++
	return f.BooksRet, nil
}

func (f *fakeClient) Book(ctx context.Context, id int64) (*models.Book, error) {
	f.Calls++
	f.LastBookID = id
	return f.BookRet, nil
}

func (f *fakeClient) BookByGoogleID(ctx context.Context, googleID string) (*models.Book, error) {
	f.Calls++
	return f.BookByGoogleIDRet, f.BookByGoogleIDErr
}

func (f *fakeClient) CreateBook(ctx context.Context, s *models.Session, b models.Book) (*models.Book, error) {
	f.Calls++
	f.LastCreateBook = b
	if f.CreateBookErr != nil {
		return nil, f.CreateBookErr
	}
	b.ID = 500
	return &b, nil
}

func (f *fakeClient) Reviews(ctx context.Context, bookID int64) ([]models.Review, error) {
	f.Calls++
	f.LastBookID = bookID
	return f.ReviewsRet, f.ReviewsErr
}

func (f *fakeClient) CreateReview(ctx context.Context, s *models.Session, in models.ReviewInput) (*models.Review, error) {
	f.Calls++
	f.LastReviewInput = in
	if f.CreateReviewErr != nil {
		return nil, f.CreateReviewErr
	}
	return &models.Review{ID: 1, BookID: in.BookID, UserID: in.UserID, OverallRating: in.OverallRating}, nil
}

func (f *fakeClient) UpdateReview(ctx context.Context, s *models.Session, bookID, reviewID int64, in models.ReviewInput) (*models.Review, error) {
	f.Calls++
	f.LastBookID, f.LastReviewID = bookID, reviewID
	f.LastReviewInput = in
	return &models.Review{ID: reviewID, BookID: bookID, OverallRating: in.OverallRating}, nil
}

func (f *fakeClient) DeleteReview(ctx context.Context, s *models.Session, bookID, reviewID int64) error {
	f.Calls++
	f.LastBookID, f.LastReviewID = bookID, reviewID
	return f.DeleteReviewErr
}
