package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/common"
)

// getMultiline is swapped in tests like getSimpleText.
var getMultiline = GetMultiline

func (a *App) Reviews(ctx context.Context, args []string) error {
	ids, err := parseIDs(args, "usage: reviews <book-id>", 1)
	if err != nil {
		return err
	}

	reviews, err := a.reviewService.List(ctx, a.session.Session(), ids[0])
	if err != nil {
		return err
	}
	if len(reviews) == 0 {
		fmt.Fprintln(a.out, "No reviews yet")
		return nil
	}

	for _, r := range reviews {
		author := r.Author
		if author == "" {
			author = fmt.Sprintf("user %d", r.UserID)
		}
		rec := ""
		if r.Recommendation {
			rec = ", recommended"
		}
		fmt.Fprintf(a.out, "#%d %q by %s: %.1f/5 (story %d, style %d, characters %d%s)\n",
			r.ID, r.Title, author, r.OverallRating, r.StoryRating, r.StyleRating, r.CharacterRating, rec)
		if r.Body != "" {
			fmt.Fprintf(a.out, "    %s\n", strings.ReplaceAll(r.Body, "\n", "\n    "))
		}
	}
	return nil
}

func (a *App) AddReview(ctx context.Context, args []string) error {
	ids, err := parseIDs(args, "usage: review <book-id>", 1)
	if err != nil {
		return err
	}
	s := a.session.Session()
	if !s.IsAuthenticated() {
		return common.ErrNotAuthenticated
	}

	in, err := a.readReview(ids[0])
	if err != nil {
		return err
	}

	r, err := a.reviewService.Create(ctx, s, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Review #%d saved (%.1f/5)\n", r.ID, r.OverallRating)
	return nil
}

func (a *App) EditReview(ctx context.Context, args []string) error {
	ids, err := parseIDs(args, "usage: editreview <book-id> <review-id>", 2)
	if err != nil {
		return err
	}
	s := a.session.Session()
	if !s.IsAuthenticated() {
		return common.ErrNotAuthenticated
	}

	in, err := a.readReview(ids[0])
	if err != nil {
		return err
	}

	r, err := a.reviewService.Update(ctx, s, ids[0], ids[1], in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Review #%d updated (%.1f/5)\n", r.ID, r.OverallRating)
	return nil
}

func (a *App) DeleteReview(ctx context.Context, args []string) error {
	ids, err := parseIDs(args, "usage: delreview <book-id> <review-id>", 2)
	if err != nil {
		return err
	}

	if err := a.reviewService.Delete(ctx, a.session.Session(), ids[0], ids[1]); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Review #%d deleted\n", ids[1])
	return nil
}

// readReview prompts for the review form. Ratings are parsed here and
// range-checked by the review service.
func (a *App) readReview(bookID int64) (models.ReviewInput, error) {
	in := models.ReviewInput{BookID: bookID}
	var err error

	if in.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return in, err
	}
	if in.Body, err = getMultiline(a.reader, "Review", a.out); err != nil {
		return in, err
	}

	ratings := []struct {
		field  string
		prompt string
		dst    *int
	}{
		{"story_rating", "Story (1-5)", &in.StoryRating},
		{"style_rating", "Style (1-5)", &in.StyleRating},
		{"character_rating", "Characters (1-5)", &in.CharacterRating},
	}
	for _, r := range ratings {
		text, err := getSimpleText(a.reader, r.prompt, a.out)
		if err != nil {
			return in, err
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return in, common.NewValidationError(r.field, "must be a number")
		}
		*r.dst = n
	}

	rec, err := getSimpleText(a.reader, "Recommend it? (y/n)", a.out)
	if err != nil {
		return in, err
	}
	in.Recommendation = strings.HasPrefix(strings.ToLower(rec), "y")

	return in, nil
}
