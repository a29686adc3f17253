// Package gallery implements the quota-enforcing metadata core of
// duogallery: capacity reservations with a two-phase reserve/commit upload
// protocol, the photo catalog with its soft-delete lifecycle, and the
// recycle-bin sweep that reclaims space from old soft-deletes.
//
// All state lives in a single models.StorageAggregate owned by Service.
// Every mutation runs under one mutex, is applied to a clone of the
// aggregate, and is persisted in full before the clone becomes visible, so
// a failed persist never leaves a half-applied accounting change.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/duogallery/duogallery/internal/common"
	"github.com/duogallery/duogallery/internal/logging"
	"github.com/duogallery/duogallery/internal/server/models"
	"github.com/duogallery/duogallery/internal/server/statestore"
)

const (
	// reservationLiveWindow is how long an uncommitted reservation counts
	// toward pending capacity.
	reservationLiveWindow = time.Hour
	// reservationHardExpiry is when a reservation is garbage-collected,
	// committed or not.
	reservationHardExpiry = 2 * time.Hour
	// dailyCountRetention is how long per-day upload counters are kept.
	dailyCountRetention = 7 * 24 * time.Hour
	// recycleRetention is how long a soft-deleted photo stays recoverable
	// before the janitor purges it.
	recycleRetention = 30 * 24 * time.Hour
)

// Limits are the caps enforced on admission. Zero values fall back to the
// service defaults, so callers may override per request as the protocol
// allows.
type Limits struct {
	MaxTotalBytes    int64
	MaxUploadsPerDay int
}

// PurgedBlob identifies the object-store keys freed by a purge. Deleting
// the underlying blobs is the caller's responsibility.
type PurgedBlob struct {
	StorageKey   string
	ThumbnailKey string
}

// Service is the single serialized writer over the gallery aggregate.
//
// The aggregate is lazily loaded from the state store on first use and
// treated as authoritative for the rest of the process lifetime. OnPurge,
// when set, is called after a successful persist for every record the
// janitor removed, so the surrounding system can best-effort delete blobs.
type Service struct {
	mu      sync.Mutex
	store   statestore.Store
	logger  logging.Logger
	limits  Limits
	now     func() time.Time
	OnPurge func(blob PurgedBlob)

	agg    *models.StorageAggregate
	loaded bool
}

func NewService(store statestore.Store, logger logging.Logger, limits Limits) *Service {
	return &Service{
		store:  store,
		logger: logger.With("module", "gallery"),
		limits: limits,
		now:    time.Now,
	}
}

// ensureLoaded lazily reads the aggregate. Called with s.mu held.
func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	agg, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			agg = models.NewStorageAggregate()
		} else {
			return fmt.Errorf("%w: loading gallery state: %w", common.ErrorInternal, err)
		}
	}
	s.agg = agg
	s.loaded = true
	s.logger.Info(ctx, "gallery state loaded",
		"photos", len(agg.Photos), "totalBytes", agg.TotalBytes)
	return nil
}

// mutate applies fn to a clone of the aggregate, persists the clone, and
// publishes it only when the persist succeeded. Called with s.mu held.
func (s *Service) mutate(ctx context.Context, fn func(agg *models.StorageAggregate) error) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	next := s.agg.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("%w: saving gallery state: %w", common.ErrorInternal, err)
	}
	s.agg = next
	return nil
}

// effectiveLimits resolves per-request overrides against the defaults.
func (s *Service) effectiveLimits(override Limits) Limits {
	limits := s.limits
	if override.MaxTotalBytes > 0 {
		limits.MaxTotalBytes = override.MaxTotalBytes
	}
	if override.MaxUploadsPerDay > 0 {
		limits.MaxUploadsPerDay = override.MaxUploadsPerDay
	}
	return limits
}

// Usage reports the totals returned by Service.Usage.
type Usage struct {
	TotalBytes     int64 `json:"totalBytes"`
	TotalPhotos    int   `json:"totalPhotos"`
	UploadsToday   int   `json:"uploadsToday"`
	RemainingBytes int64 `json:"remainingBytes"`
}

func (s *Service) Usage(ctx context.Context) (Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sweepRecycle(ctx); err != nil {
		return Usage{}, err
	}

	now := s.now()
	remaining := s.limits.MaxTotalBytes - s.agg.TotalBytes - pendingReservedBytes(s.agg, now)
	if remaining < 0 {
		remaining = 0
	}
	return Usage{
		TotalBytes:     s.agg.TotalBytes,
		TotalPhotos:    len(s.agg.Photos),
		UploadsToday:   s.agg.DailyUploadCounts[models.DateKey(now)],
		RemainingBytes: remaining,
	}, nil
}
