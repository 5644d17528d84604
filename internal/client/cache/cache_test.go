package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linekeeper/linekeeper/internal/common"

	_ "modernc.org/sqlite"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(context.Background(), "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSaveAndGet(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, &Entry{LineID: 1, Handle: "h-1", Secret: 12345678}))

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.LineID)
	assert.Equal(t, "h-1", string(got.Handle))
	assert.Equal(t, uint32(12345678), got.Secret)
}

func TestSave_ReplacesExisting(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Save(ctx, &Entry{LineID: 1, Handle: "h-1", Secret: 11111111}))
	require.NoError(t, c.Save(ctx, &Entry{LineID: 1, Handle: "h-2", Secret: 22222222}))

	got, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "h-2", string(got.Handle))
	assert.Equal(t, uint32(22222222), got.Secret)
}

func TestGet_Missing(t *testing.T) {
	c := openTestCache(t)

	_, err := c.Get(context.Background(), 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
