package tokenstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/bookcase/internal/common"
	"github.com/dmitrijs2005/bookcase/internal/dbx"
)

const savedAtKey = common.AccessTokenMetadataKey + "_saved_at"

// SQLiteSource keeps the credential in the local metadata table.
type SQLiteSource struct {
	db  *sql.DB
	now func() time.Time
}

var _ Source = (*SQLiteSource)(nil)

// NewSQLiteSource expects a database migrated with client.InitDatabase.
func NewSQLiteSource(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db, now: time.Now}
}

func (s *SQLiteSource) Name() string { return "sqlite" }

func (s *SQLiteSource) Load(ctx context.Context) (string, bool, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, common.AccessTokenMetadataKey)
	if err != nil {
		return "", false, err
	}
	if len(v) == 0 {
		return "", false, nil
	}
	return string(v), true, nil
}

func (s *SQLiteSource) Save(ctx context.Context, token string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, common.AccessTokenMetadataKey, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, savedAtKey, []byte(s.now().UTC().Format(time.RFC3339)))
	})
}

func (s *SQLiteSource) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, common.AccessTokenMetadataKey, savedAtKey)
}

// SavedAt reports when the stored credential was written.
func (s *SQLiteSource) SavedAt(ctx context.Context) (time.Time, bool, error) {
	v, err := metadata.NewSQLiteRepository(s.db).Get(ctx, savedAtKey)
	if err != nil || v == nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, string(v))
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
