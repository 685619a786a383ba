package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/bookcase/internal/client/favorites"
	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/common"
)

// Search queries the catalog and remembers the hits for "show <n>".
func (a *App) Search(ctx context.Context, args []string) error {
	q := strings.Join(args, " ")
	if q == "" {
		var err error
		if q, err = getSimpleText(a.reader, "Search for", a.out); err != nil {
			return err
		}
	}

	books, err := a.bookService.Search(ctx, q)
	if err != nil {
		return err
	}
	a.lastSearch = books

	if len(books) == 0 {
		fmt.Fprintln(a.out, "Nothing found")
		return nil
	}
	for i, b := range books {
		fmt.Fprintf(a.out, "%2d. %s by %s%s [%s]\n", i+1, b.Title, b.Author, yearSuffix(b.PublishedYear), b.GoogleID)
	}
	return nil
}

// Show prints one book. The argument is a catalog id or the position of a
// hit in the last search.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show <google-id|n>")
	}

	googleID := args[0]
	if n, err := strconv.Atoi(googleID); err == nil && n >= 1 && n <= len(a.lastSearch) {
		googleID = a.lastSearch[n-1].GoogleID
	}

	b, err := a.bookService.Show(ctx, a.session.Session(), googleID)
	if err != nil {
		return err
	}
	if err := a.favs.Wait(ctx); err != nil {
		return err
	}
	a.printBook(ctx, b)
	return nil
}

// Books lists every book the backend knows.
func (a *App) Books(ctx context.Context) error {
	books, err := a.bookService.List(ctx)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Fprintln(a.out, "No books yet")
		return nil
	}
	for _, b := range books {
		fmt.Fprintf(a.out, "%6d  %s by %s%s\n", b.ID, b.Title, b.Author, yearSuffix(b.PublishedYear))
	}
	return nil
}

// isFavorite answers from the cache, or from the backend when the cache
// could not be loaded.
func (a *App) isFavorite(ctx context.Context, id int64) bool {
	if a.favs.Loaded() {
		return a.favs.IsFavorited(id)
	}
	s := a.session.Session()
	if !s.IsAuthenticated() {
		return false
	}
	fav, err := a.bookService.IsFavorite(ctx, s, id)
	if err != nil {
		a.logger.Warn(ctx, "favorite check failed", "book_id", id, "error", err)
		return false
	}
	return fav
}

func (a *App) printBook(ctx context.Context, b *models.Book) {
	fmt.Fprintf(a.out, "%s\n  by %s%s\n", b.Title, b.Author, yearSuffix(b.PublishedYear))
	if b.Genre != "" {
		fmt.Fprintf(a.out, "  genre: %s\n", b.Genre)
	}
	if b.ID != 0 {
		mark := ""
		if a.isFavorite(ctx, b.ID) {
			mark = " ★"
		}
		fmt.Fprintf(a.out, "  book id: %d%s\n", b.ID, mark)
	}
	if b.Description != "" {
		fmt.Fprintf(a.out, "\n%s\n", b.Description)
	}
}

// Favorites lists the cached favorite books of the logged-in user.
func (a *App) Favorites(ctx context.Context) error {
	s := a.session.Session()
	if !s.IsAuthenticated() {
		return common.ErrNotAuthenticated
	}
	if err := a.favs.Wait(ctx); err != nil {
		return err
	}
	if !a.favs.Loaded() {
		if err := a.favs.Load(ctx, s); err != nil {
			return err
		}
	}

	ids := a.favs.IDs()
	if len(ids) == 0 {
		fmt.Fprintln(a.out, "No favorites yet")
		return nil
	}
	for _, id := range ids {
		b, err := a.bookService.Get(ctx, id)
		if err != nil {
			a.logger.Warn(ctx, "favorite book not fetched", "book_id", id, "error", err)
			fmt.Fprintf(a.out, "%6d  (unavailable)\n", id)
			continue
		}
		fmt.Fprintf(a.out, "%6d  %s by %s\n", id, b.Title, b.Author)
	}
	return nil
}

// ToggleFavorite flips the favorite bit of a book. A backend failure rolls
// the change back and is reported without losing the rest of the state.
func (a *App) ToggleFavorite(ctx context.Context, args []string) error {
	ids, err := parseIDs(args, "usage: fav <book-id>", 1)
	if err != nil {
		return err
	}
	id := ids[0]

	if err := a.favs.Wait(ctx); err != nil {
		return err
	}
	if !a.favs.Loaded() && a.isLoggedIn() {
		if err := a.favs.Load(ctx, a.session.Session()); err != nil {
			return err
		}
	}

	outcome, err := a.favs.Toggle(ctx, id)
	switch outcome {
	case favorites.Applied:
		if a.favs.IsFavorited(id) {
			fmt.Fprintf(a.out, "Book %d added to favorites\n", id)
		} else {
			fmt.Fprintf(a.out, "Book %d removed from favorites\n", id)
		}
		return nil
	case favorites.RolledBack:
		fmt.Fprintf(a.out, "Favorite not saved, change reverted\n")
	}
	return err
}

func yearSuffix(year int) string {
	if year == 0 {
		return ""
	}
	return fmt.Sprintf(" (%d)", year)
}

// parseIDs reads exactly n positive integer ids from args.
func parseIDs(args []string, usage string, n int) ([]int64, error) {
	if len(args) != n {
		return nil, errors.New(usage)
	}
	ids := make([]int64, n)
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%s: %q is not an id", usage, arg)
		}
		ids[i] = id
	}
	return ids, nil
}
