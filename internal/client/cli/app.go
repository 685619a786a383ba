package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/buildinfo"
	"github.com/dmitrijs2005/bookcase/internal/client/catalog"
	"github.com/dmitrijs2005/bookcase/internal/client/client"
	"github.com/dmitrijs2005/bookcase/internal/client/config"
	"github.com/dmitrijs2005/bookcase/internal/client/favorites"
	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/client/services"
	"github.com/dmitrijs2005/bookcase/internal/client/session"
	"github.com/dmitrijs2005/bookcase/internal/client/tokenstore"
	"github.com/dmitrijs2005/bookcase/internal/filex"
	"github.com/dmitrijs2005/bookcase/internal/logging"
	"go.etcd.io/bbolt"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	logger logging.Logger

	api     *client.HTTPClient
	db      *sql.DB
	bolt    *tokenstore.BoltSource
	tokens  *tokenstore.Store
	session *session.Context
	favs    *favorites.State
	detach  func()

	authService   services.AuthService
	bookService   services.BookService
	reviewService services.ReviewService

	// lastSearch lets "show 2" refer to the second hit of the previous search.
	lastSearch []models.Book

	modeMu sync.Mutex
	mode   Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires the application from cfg: HTTP client, local database,
// token store, session context, favorites and services. The stored
// session, if any, is restored before NewApp returns; a credential that
// cannot be resolved leaves the app anonymous.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.New(os.Stderr, cfg.LogLevel)

	api, err := client.NewHTTPClient(cfg.APIBaseURL,
		client.WithLogger(logger),
		client.WithTimeout(cfg.RequestTimeout),
	)
	if err != nil {
		return nil, err
	}

	dbPath, err := filex.EnsureParentDir(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", cfg.DatabasePath, "error", err)
		return nil, err
	}

	a := &App{
		config: cfg,
		logger: logger,
		api:    api,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	var durable tokenstore.Source
	switch cfg.TokenBackend {
	case config.TokenBackendBolt:
		boltPath, err := filex.EnsureParentDir(cfg.BoltPath)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		a.bolt, err = tokenstore.OpenBoltSource(boltPath, &bbolt.Options{Timeout: time.Second})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("open token file: %w", err)
		}
		durable = a.bolt
	default:
		durable = tokenstore.NewSQLiteSource(db)
	}
	cookies := tokenstore.NewCookieSource(api.Jar(), api.BaseURL(), cfg.CookieName)
	a.tokens = tokenstore.New(logger, durable, cookies)

	a.session = session.NewContext(a.tokens, session.NewResolver(api, logger), logger)
	a.favs = favorites.New(api, logger)
	a.detach = a.favs.Attach(ctx, a.session)

	cat := catalog.New(cfg.CatalogURL, cfg.CatalogMaxResults, cfg.RequestTimeout, logger)
	a.authService = services.NewAuthService(api)
	a.bookService = services.NewBookService(api, cat)
	a.reviewService = services.NewReviewService(api, logger)

	if err := a.session.Init(ctx); err != nil {
		logger.Warn(ctx, "stored session not restored", "error", err)
	}

	return a, nil
}

// Close releases everything NewApp acquired.
func (a *App) Close(ctx context.Context) error {
	a.detach()
	a.session.Close()

	var errs []error
	if err := a.authService.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.bolt != nil {
		if err := a.bolt.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Run starts the connectivity watcher and blocks in the REPL until the
// user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	fmt.Fprintln(a.out, "Welcome to bookcase (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Version(_ context.Context) error {
	fmt.Fprintf(a.out, "bookcase %s\n", buildinfo.Version())
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.State().IsAuthenticated()
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

// StartOnlineStatusWatcher pings the backend every interval and flips the
// mode shown in the prompt. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
