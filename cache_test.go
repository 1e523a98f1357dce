package main_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "gregoryjjb/cups"
)

func newTestCache(t *testing.T) *app.ResultCache {
	cache, err := app.OpenResultCache(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestResultCacheLookup(t *testing.T) {
	cache := newTestCache(t)

	_, ok, err := cache.Lookup("389125467", 0, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Store("389125467", 0, app.Checkpoint{Rounds: 10, LabelOrder: "92658374"}))
	require.NoError(t, cache.Store("389125467", 1_000_000, app.Checkpoint{
		Rounds: 10_000_000, FirstStar: 934001, SecondStar: 159792, Product: 149245887792,
	}))

	c, ok, err := cache.Lookup("389125467", 0, 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, app.Checkpoint{Rounds: 10, LabelOrder: "92658374", Cached: true}, c)

	c, ok, err = cache.Lookup("389125467", 1_000_000, 10_000_000)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(149245887792), c.Product)
	assert.Equal(t, uint32(934001), c.FirstStar)

	// Storing again replaces the row.
	require.NoError(t, cache.Store("389125467", 0, app.Checkpoint{Rounds: 10, LabelOrder: "x"}))
	c, _, err = cache.Lookup("389125467", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, "x", c.LabelOrder)
}

func TestResultCachePlay(t *testing.T) {
	cache := newTestCache(t)
	game := app.Game{Name: "example", Checkpoints: []uint64{10, 100}}

	first, err := cache.Play(context.Background(), game, exampleLabels, 0, nil)
	require.NoError(t, err)
	assert.False(t, first.Checkpoints[0].Cached)

	played := false
	second, err := cache.Play(context.Background(), game, exampleLabels, 0, func(uint64, uint64) { played = true })
	require.NoError(t, err)
	assert.False(t, played, "fully cached games are not replayed")
	require.Len(t, second.Checkpoints, 2)
	assert.True(t, second.Checkpoints[1].Cached)
	assert.Equal(t, "67384529", second.Checkpoints[1].LabelOrder)

	// A new checkpoint forces a real run.
	game.Checkpoints = append(game.Checkpoints, 200)
	third, err := cache.Play(context.Background(), game, exampleLabels, 0, func(uint64, uint64) { played = true })
	require.NoError(t, err)
	assert.True(t, played)
	assert.Len(t, third.Checkpoints, 3)
}

func TestResultCacheNil(t *testing.T) {
	var cache *app.ResultCache

	report, err := cache.Play(context.Background(), app.Game{Name: "example", Checkpoints: []uint64{10}}, exampleLabels, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "92658374", report.Checkpoints[0].LabelOrder)
	assert.NoError(t, cache.Close())
}

func TestResultCacheOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	cache, err := app.OpenResultCache(path)
	require.NoError(t, err)
	require.NoError(t, cache.Store("4321", 0, app.Checkpoint{Rounds: 1, LabelOrder: "423"}))
	require.NoError(t, cache.Close())

	cache, err = app.OpenResultCache(path)
	require.NoError(t, err)
	defer cache.Close()

	c, ok, err := cache.Lookup("4321", 0, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "423", c.LabelOrder)
}
