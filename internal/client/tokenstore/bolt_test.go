package tokenstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltSource_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.db")
	s, err := OpenBoltSource(path, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found, "missing bucket reads as absent")

	require.NoError(t, s.Clear(ctx), "clear before first save")
	require.NoError(t, s.Save(ctx, "T"))
	require.NoError(t, s.Close())

	// survives reopen
	s, err = OpenBoltSource(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	token, found, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "T", token)

	require.NoError(t, s.Clear(ctx))
	_, found, err = s.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}
