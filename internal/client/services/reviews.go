package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/bookcase/internal/client/client"
	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/common"
	"github.com/dmitrijs2005/bookcase/internal/logging"
)

const (
	minRating = 1
	maxRating = 5
)

type ReviewService interface {
	// List returns the reviews of a book with Author filled in when the
	// session allows looking users up.
	List(ctx context.Context, s *models.Session, bookID int64) ([]models.Review, error)
	Create(ctx context.Context, s *models.Session, in models.ReviewInput) (*models.Review, error)
	Update(ctx context.Context, s *models.Session, bookID, reviewID int64, in models.ReviewInput) (*models.Review, error)
	Delete(ctx context.Context, s *models.Session, bookID, reviewID int64) error
}

type reviewService struct {
	client client.Client
	logger logging.Logger
}

func NewReviewService(client client.Client, logger logging.Logger) ReviewService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &reviewService{client: client, logger: logger}
}

func (r *reviewService) List(ctx context.Context, s *models.Session, bookID int64) ([]models.Review, error) {
	reviews, err := r.client.Reviews(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews error: %w", err)
	}
	if len(reviews) == 0 || !s.IsAuthenticated() {
		return reviews, nil
	}

	ids := make([]int64, 0, len(reviews))
	for _, rv := range reviews {
		ids = append(ids, rv.UserID)
	}

	names, err := r.client.Usernames(ctx, s.Token, ids)
	if err != nil {
		r.logger.Warn(ctx, "review authors not resolved", "book_id", bookID, "error", err)
		return reviews, nil
	}
	for i := range reviews {
		reviews[i].Author = names[reviews[i].UserID]
	}
	return reviews, nil
}

func (r *reviewService) Create(ctx context.Context, s *models.Session, in models.ReviewInput) (*models.Review, error) {
	in, err := prepareReview(s, in)
	if err != nil {
		return nil, err
	}
	rv, err := r.client.CreateReview(ctx, s, in)
	if err != nil {
		return nil, fmt.Errorf("create review error: %w", err)
	}
	return rv, nil
}

func (r *reviewService) Update(ctx context.Context, s *models.Session, bookID, reviewID int64, in models.ReviewInput) (*models.Review, error) {
	in.BookID = bookID
	in, err := prepareReview(s, in)
	if err != nil {
		return nil, err
	}
	rv, err := r.client.UpdateReview(ctx, s, bookID, reviewID, in)
	if err != nil {
		return nil, fmt.Errorf("update review error: %w", err)
	}
	return rv, nil
}

func (r *reviewService) Delete(ctx context.Context, s *models.Session, bookID, reviewID int64) error {
	if !s.IsAuthenticated() {
		return common.ErrNotAuthenticated
	}
	if err := r.client.DeleteReview(ctx, s, bookID, reviewID); err != nil {
		return fmt.Errorf("delete review error: %w", err)
	}
	return nil
}

// prepareReview validates in, binds it to the session user and computes
// the overall rating.
func prepareReview(s *models.Session, in models.ReviewInput) (models.ReviewInput, error) {
	if !s.IsAuthenticated() {
		return in, common.ErrNotAuthenticated
	}
	if err := validateReview(in); err != nil {
		return in, err
	}

	uid, err := strconv.ParseInt(s.UserID, 10, 64)
	if err != nil {
		return in, fmt.Errorf("%w: session user id %q", common.ErrMalformedCredential, s.UserID)
	}
	in.UserID = uid
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.OverallRating = in.Overall()
	return in, nil
}

func validateReview(in models.ReviewInput) error {
	if in.BookID <= 0 {
		return common.NewValidationError("book_id", "is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return common.NewValidationError("review_title", "is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return common.NewValidationError("review", "is required")
	}

	ratings := []struct {
		field string
		value int
	}{
		{"story_rating", in.StoryRating},
		{"style_rating", in.StyleRating},
		{"character_rating", in.CharacterRating},
	}
	for _, rt := range ratings {
		if rt.value < minRating || rt.value > maxRating {
			return common.NewValidationError(rt.field, fmt.Sprintf("must be between %d and %d", minRating, maxRating))
		}
	}
	return nil
}
