package gallery

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/duogallery/duogallery/internal/logging"
	"github.com/duogallery/duogallery/internal/server/models"
	"github.com/duogallery/duogallery/internal/server/statestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------- test fixture --------

type fixture struct {
	svc   *Service
	store *statestore.MemoryStore
	now   time.Time
}

func newFixture(t *testing.T, limits Limits) *fixture {
	t.Helper()
	f := &fixture{
		store: statestore.NewMemoryStore(),
		now:   time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.svc = NewService(f.store, logger, limits)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

// requireInvariant asserts totalBytes == sum of photo sizes in the visible
// aggregate.
func requireInvariant(t *testing.T, f *fixture) {
	t.Helper()
	f.svc.mu.Lock()
	defer f.svc.mu.Unlock()
	require.NoError(t, f.svc.ensureLoaded(context.Background()))

	var sum int64
	for _, p := range f.svc.agg.Photos {
		sum += p.SizeBytes
	}
	require.Equal(t, sum, f.svc.agg.TotalBytes, "totalBytes must equal sum of photo sizes")
}

func draft(size int64, key string) models.PhotoDraft {
	return models.PhotoDraft{SizeBytes: size, StorageKey: key, ThumbnailKey: key + ".thumb", UploaderID: "alice"}
}

// reserveAndCommit is shorthand for a full two-phase upload of one photo.
func reserveAndCommit(t *testing.T, f *fixture, size int64, key string) string {
	t.Helper()
	ctx := context.Background()
	r, err := f.svc.Reserve(ctx, ReserveRequest{FileCount: 1, TotalSizeBytes: size})
	require.NoError(t, err)
	require.NoError(t, f.svc.Commit(ctx, r.ID, []models.PhotoDraft{draft(size, key)}))

	listing, err := f.svc.ListActive(ctx)
	require.NoError(t, err)
	for _, p := range listing.Photos {
		if p.StorageKey == key {
			return p.ID
		}
	}
	t.Fatalf("committed photo %q not found in listing", key)
	return ""
}

func TestUsage(t *testing.T) {
	f := newFixture(t, Limits{MaxTotalBytes: 1000, MaxUploadsPerDay: 5})
	ctx := context.Background()

	u, err := f.svc.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, Usage{RemainingBytes: 1000}, u)

	reserveAndCommit(t, f, 300, "photos/a")

	u, err = f.svc.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(300), u.TotalBytes)
	assert.Equal(t, 1, u.TotalPhotos)
	assert.Equal(t, 1, u.UploadsToday)
	assert.Equal(t, int64(700), u.RemainingBytes)

	// a pending reservation reduces headroom too
	_, err = f.svc.Reserve(ctx, ReserveRequest{FileCount: 1, TotalSizeBytes: 200})
	require.NoError(t, err)
	u, err = f.svc.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), u.RemainingBytes)
}

func TestLazyLoad_ReadsExistingState(t *testing.T) {
	f := newFixture(t, Limits{MaxTotalBytes: 1000, MaxUploadsPerDay: 5})
	reserveAndCommit(t, f, 100, "photos/a")

	// a second service over the same store sees the persisted document
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc2 := NewService(f.store, logger, Limits{MaxTotalBytes: 1000, MaxUploadsPerDay: 5})
	svc2.now = func() time.Time { return f.now }

	u, err := svc2.Usage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100), u.TotalBytes)
	assert.Equal(t, 1, u.TotalPhotos)
}
