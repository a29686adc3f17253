package statestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/duogallery/duogallery/internal/common"
	"github.com/duogallery/duogallery/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery", "state.zst")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = store.Load(ctx)
	require.True(t, errors.Is(err, common.ErrorNotFound))

	now := time.Now().UTC().Truncate(time.Second)
	agg := models.NewStorageAggregate()
	agg.TotalBytes = 300
	agg.Photos = append(agg.Photos, models.PhotoRecord{
		ID:          "p1",
		SizeBytes:   300,
		StorageKey:  "photos/p1",
		UploadedAt:  now,
		FavoritedBy: []string{"alice"},
	})
	agg.Reservations["r1"] = models.Reservation{ID: "r1", FileCount: 1, TotalSizeBytes: 10, CreatedAt: now}
	agg.DailyUploadCounts[models.DateKey(now)] = 2

	require.NoError(t, store.Save(ctx, agg))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(300), got.TotalBytes)
	require.Len(t, got.Photos, 1)
	assert.Equal(t, "p1", got.Photos[0].ID)
	assert.Equal(t, []string{"alice"}, got.Photos[0].FavoritedBy)
	assert.Equal(t, 2, got.DailyUploadCounts[models.DateKey(now)])
}

func TestFileStore_SaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.zst")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	first := models.NewStorageAggregate()
	first.TotalBytes = 1
	require.NoError(t, store.Save(ctx, first))

	second := models.NewStorageAggregate()
	second.TotalBytes = 2
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalBytes)

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.zst", entries[0].Name())
}

func TestFileStore_CorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.zst")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("not zstd"), 0o644))

	_, err = store.Load(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrorNotFound))
}
