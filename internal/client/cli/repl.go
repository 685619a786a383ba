package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	OAuth(ctx context.Context) error
	Token(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context) error
	Search(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Books(ctx context.Context) error
	Version(ctx context.Context) error
	Favorites(ctx context.Context) error
	ToggleFavorite(ctx context.Context, args []string) error
	Reviews(ctx context.Context, args []string) error
	AddReview(ctx context.Context, args []string) error
	EditReview(ctx context.Context, args []string) error
	DeleteReview(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

const (
	anonymousHelp = "Available commands: register, login, oauth, token <credential>, search <query>, show <google-id|n>, books, reviews <book-id>, whoami, version, exit"
	memberHelp    = "Available commands: search <query>, show <google-id|n>, books, favorites, fav <book-id>, reviews <book-id>, review <book-id>, editreview <book-id> <review-id>, delreview <book-id> <review-id>, whoami, version, logout, exit"
)

// runREPL starts a read–eval–print loop over reader.
//
// The first word of each line selects the command; the rest are its
// arguments. The loop exits on EOF, when ctx is done, or when the user
// types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn):
//
//	Anyone:
//	  - help                             show available commands
//	  - search <query>                   search the catalog
//	  - show <google-id|n>               show a book (n = hit of last search)
//	  - books                            list books known to the backend
//	  - reviews <book-id>                list reviews of a book
//	  - whoami                           print the current user
//	  - version                          print the build version
//	  - exit | quit                      leave the program
//
//	Not logged in:
//	  - register | login | oauth         sign up or sign in
//	  - token <credential>               sign in with a pasted credential
//
//	Logged in:
//	  - favorites                        list favorite books
//	  - fav <book-id>                    toggle a favorite
//	  - review <book-id>                 write a review
//	  - editreview <book-id> <id>        edit a review
//	  - delreview <book-id> <id>         delete a review
//	  - logout                           log out
//
// Errors returned by handlers are printed and the loop continues; none of
// them ends the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("bookcase %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(memberHelp)
			} else {
				printlnFn(anonymousHelp)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "oauth":
			cmdErr = a.OAuth(ctx)

		case "token":
			cmdErr = a.Token(ctx, args)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "search":
			cmdErr = a.Search(ctx, args)

		case "show":
			cmdErr = a.Show(ctx, args)

		case "books":
			cmdErr = a.Books(ctx)

		case "version":
			cmdErr = a.Version(ctx)

		case "favorites", "favs":
			cmdErr = a.Favorites(ctx)

		case "fav":
			cmdErr = a.ToggleFavorite(ctx, args)

		case "reviews":
			cmdErr = a.Reviews(ctx, args)

		case "review":
			cmdErr = a.AddReview(ctx, args)

		case "editreview":
			cmdErr = a.EditReview(ctx, args)

		case "delreview":
			cmdErr = a.DeleteReview(ctx, args)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
