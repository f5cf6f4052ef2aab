package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intact-sh/intact/pkg/intact/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func report(start time.Time, root string) *types.Report {
	return &types.Report{
		Root:      root,
		Algorithm: "sha256",
		Backend:   "native",
		Workers:   2,
		Start:     start,
		Summary: types.Summary{
			Directories: 4,
			Files:       100,
			FilesHashed: 100,
			Matched:     99,
			Drifted:     1,
			Duration:    2 * time.Second,
		},
	}
}

func TestRecordAndList(t *testing.T) {
	store := openStore(t)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := store.Record(report(base.Add(time.Duration(i)*time.Hour), "/srv/data"))
		require.NoError(t, err)
	}

	runs, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.True(t, runs[0].Start.After(runs[1].Start), "runs must come back newest first")
	assert.True(t, runs[1].Start.After(runs[2].Start))

	first := runs[0]
	assert.Equal(t, "/srv/data", first.Root)
	assert.Equal(t, "sha256", first.Algorithm)
	assert.Equal(t, "native", first.Backend)
	assert.Equal(t, 2, first.Workers)
	assert.Equal(t, 100, first.Summary.FilesHashed)
	assert.Equal(t, 1, first.Summary.Drifted)
	assert.NotEmpty(t, first.ID)
}

func TestRecordAssignsUniqueIDs(t *testing.T) {
	store := openStore(t)
	start := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	a, err := store.Record(report(start, "/a"))
	require.NoError(t, err)
	b, err := store.Record(report(start, "/b"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)

	runs, err := store.List(0)
	require.NoError(t, err)
	assert.Len(t, runs, 2, "same-instant runs must not overwrite each other")
}

func TestListLimit(t *testing.T) {
	store := openStore(t)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := store.Record(report(base.Add(time.Duration(i)*time.Minute), "/srv"))
		require.NoError(t, err)
	}

	runs, err := store.List(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, base.Add(4*time.Minute), runs[0].Start.UTC())
	assert.Equal(t, base.Add(3*time.Minute), runs[1].Start.UTC())
}

func TestLast(t *testing.T) {
	store := openStore(t)

	_, err := store.Last()
	assert.True(t, errors.Is(err, ErrNotFound))

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.Record(report(base, "/old"))
	require.NoError(t, err)
	_, err = store.Record(report(base.Add(time.Hour), "/new"))
	require.NoError(t, err)

	last, err := store.Last()
	require.NoError(t, err)
	assert.Equal(t, "/new", last.Root)
}

func TestPrune(t *testing.T) {
	store := openStore(t)
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, err := store.Record(report(base.Add(time.Duration(i)*time.Minute), "/srv"))
		require.NoError(t, err)
	}

	removed, err := store.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	runs, err := store.List(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, base.Add(4*time.Minute), runs[0].Start.UTC())
	assert.Equal(t, base.Add(3*time.Minute), runs[1].Start.UTC())
}

func TestPruneDisabled(t *testing.T) {
	store := openStore(t)
	_, err := store.Record(report(time.Now(), "/srv"))
	require.NoError(t, err)

	removed, err := store.Prune(0)
	require.NoError(t, err)
	assert.Zero(t, removed)

	runs, err := store.List(0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
