package client

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// usernameLookupLimit bounds concurrent GET /users/{id} calls of a batch.
const usernameLookupLimit = 4

// Usernames resolves a set of user ids to usernames with one lookup per
// distinct id. Ids the backend no longer knows are left out of the result;
// any other failure aborts the batch.
func (c *HTTPClient) Usernames(ctx context.Context, token string, ids []int64) (map[int64]string, error) {
	unique := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var mu sync.Mutex
	names := make(map[int64]string, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(usernameLookupLimit)

	for id := range unique {
		g.Go(func() error {
			u, err := c.User(gctx, token, strconv.FormatInt(id, 10))
			if err != nil {
				if isNotFound(err) {
					return nil
				}
				return err
			}
			mu.Lock()
			names[id] = u.Username
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}
