package gallery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/duogallery/duogallery/internal/common"
	"github.com/duogallery/duogallery/internal/server/models"
)

// The photo registry: operations on committed records. Every operation
// requires the target photo to exist and persists before returning.

// ToggleFavorite flips userID's membership in the photo's favorite set and
// returns the updated set.
func (s *Service) ToggleFavorite(ctx context.Context, photoID, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var set []string
	err := s.mutate(ctx, func(agg *models.StorageAggregate) error {
		photo := agg.Photo(photoID)
		if photo == nil {
			return fmt.Errorf("%w: photo %s", common.ErrorNotFound, photoID)
		}
		set = photo.ToggleFavorite(userID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// EditNote unconditionally overwrites the photo's note and note author.
func (s *Service) EditNote(ctx context.Context, photoID, text, authorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, func(agg *models.StorageAggregate) error {
		photo := agg.Photo(photoID)
		if photo == nil {
			return fmt.Errorf("%w: photo %s", common.ErrorNotFound, photoID)
		}
		photo.Note = text
		photo.NoteAuthor = authorID
		return nil
	})
}

// EditAlbumDay moves the photo to a different album day and re-anchors its
// upload timestamp to that day, so chronological listing follows the
// corrected date.
func (s *Service) EditAlbumDay(ctx context.Context, photoID, newDay string) error {
	if _, err := time.ParseInLocation("2006-01-02", newDay, time.UTC); err != nil {
		return fmt.Errorf("%w: day must be YYYY-MM-DD", common.ErrorValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, func(agg *models.StorageAggregate) error {
		photo := agg.Photo(photoID)
		if photo == nil {
			return fmt.Errorf("%w: photo %s", common.ErrorNotFound, photoID)
		}
		photo.AlbumDay = newDay
		photo.UploadedAt = reanchorToDay(photo.UploadedAt, newDay)
		return nil
	})
}

// reanchorToDay keeps the record's clock time but moves it to the new day.
func reanchorToDay(uploadedAt time.Time, newDay string) time.Time {
	day, err := time.ParseInLocation("2006-01-02", newDay, time.UTC)
	if err != nil {
		return uploadedAt
	}
	clock := uploadedAt.UTC()
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), time.UTC)
}

// SoftDelete moves the photo to the recycle bin. The record stays in the
// catalog and keeps counting toward the byte total until purged.
func (s *Service) SoftDelete(ctx context.Context, photoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	return s.mutate(ctx, func(agg *models.StorageAggregate) error {
		photo := agg.Photo(photoID)
		if photo == nil {
			return fmt.Errorf("%w: photo %s", common.ErrorNotFound, photoID)
		}
		ts := now
		photo.DeletedAt = &ts
		return nil
	})
}

// Restore brings a soft-deleted photo back. Restoring an active photo is an
// error, not a silent no-op.
func (s *Service) Restore(ctx context.Context, photoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, func(agg *models.StorageAggregate) error {
		photo := agg.Photo(photoID)
		if photo == nil {
			return fmt.Errorf("%w: photo %s", common.ErrorNotFound, photoID)
		}
		if !photo.IsDeleted() {
			return common.ErrorNotDeleted
		}
		photo.DeletedAt = nil
		return nil
	})
}

// Purge permanently removes a recycled photo and its byte contribution,
// returning the object-store keys so the caller can delete the blobs.
// Purge is only reachable from the recycle bin; an active photo must be
// soft-deleted first.
func (s *Service) Purge(ctx context.Context, photoID string) (PurgedBlob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blob PurgedBlob
	err := s.mutate(ctx, func(agg *models.StorageAggregate) error {
		photo := agg.Photo(photoID)
		if photo == nil {
			return fmt.Errorf("%w: photo %s", common.ErrorNotFound, photoID)
		}
		if !photo.IsDeleted() {
			return common.ErrorNotDeleted
		}
		removed, _ := agg.RemovePhoto(photoID)
		agg.TotalBytes -= removed.SizeBytes
		blob = PurgedBlob{StorageKey: removed.StorageKey, ThumbnailKey: removed.ThumbnailKey}
		return nil
	})
	if err != nil {
		return PurgedBlob{}, err
	}

	s.logger.Info(ctx, "photo purged", "id", photoID)
	return blob, nil
}

// Listing is a gallery view plus the aggregate totals.
type Listing struct {
	Photos      []models.PhotoRecord `json:"photos"`
	TotalBytes  int64                `json:"totalBytes"`
	TotalPhotos int                  `json:"totalPhotos"`
}

// ListActive returns photos outside the recycle bin, newest upload first.
// The recycle janitor runs first, so space held by expired soft-deletes is
// reclaimed lazily on read.
func (s *Service) ListActive(ctx context.Context) (Listing, error) {
	return s.list(ctx, func(p *models.PhotoRecord) bool { return !p.IsDeleted() },
		func(a, b *models.PhotoRecord) bool { return a.UploadedAt.After(b.UploadedAt) })
}

// ListDeleted returns the recycle bin, most recently deleted first.
func (s *Service) ListDeleted(ctx context.Context) (Listing, error) {
	return s.list(ctx, func(p *models.PhotoRecord) bool { return p.IsDeleted() },
		func(a, b *models.PhotoRecord) bool { return a.DeletedAt.After(*b.DeletedAt) })
}

func (s *Service) list(ctx context.Context, keep func(*models.PhotoRecord) bool,
	less func(a, b *models.PhotoRecord) bool) (Listing, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sweepRecycle(ctx); err != nil {
		return Listing{}, err
	}

	listing := Listing{
		Photos:      []models.PhotoRecord{},
		TotalBytes:  s.agg.TotalBytes,
		TotalPhotos: len(s.agg.Photos),
	}
	for i := range s.agg.Photos {
		if keep(&s.agg.Photos[i]) {
			listing.Photos = append(listing.Photos, s.agg.Photos[i])
		}
	}
	sort.SliceStable(listing.Photos, func(i, j int) bool {
		return less(&listing.Photos[i], &listing.Photos[j])
	})
	return listing, nil
}
