package tokenstore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bookcase/internal/common"
	"go.etcd.io/bbolt"
)

var credentialsBucket = []byte("credentials")

// BoltSource keeps the credential in a bbolt file.
type BoltSource struct {
	db *bbolt.DB
}

var _ Source = (*BoltSource)(nil)

func NewBoltSource(db *bbolt.DB) *BoltSource {
	return &BoltSource{db: db}
}

// OpenBoltSource opens (creating if needed) the bbolt file at path.
func OpenBoltSource(path string, options *bbolt.Options) (*BoltSource, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewBoltSource(db), nil
}

func (s *BoltSource) Close() error {
	return s.db.Close()
}

func (s *BoltSource) Name() string { return "bolt" }

func (s *BoltSource) Load(_ context.Context) (string, bool, error) {
	var token string
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(credentialsBucket)
		if b == nil {
			return nil
		}
		token = string(b.Get([]byte(common.AccessTokenMetadataKey)))
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return token, token != "", nil
}

func (s *BoltSource) Save(_ context.Context, token string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(credentialsBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(common.AccessTokenMetadataKey), []byte(token))
	})
}

func (s *BoltSource) Clear(_ context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(credentialsBucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(common.AccessTokenMetadataKey))
	})
}
