package gallery

import (
	"context"
	"fmt"
	"time"

	"github.com/duogallery/duogallery/internal/common"
	"github.com/duogallery/duogallery/internal/server/models"
	"github.com/google/uuid"
)

// ReserveRequest asks for capacity ahead of an upload. MaxTotalBytes and
// MaxUploadsPerDay may override the configured caps; zero means default.
type ReserveRequest struct {
	FileCount      int
	TotalSizeBytes int64
	Limits         Limits
}

// Reserve admits the request against the quota ledger and records a new
// uncommitted reservation.
//
// The daily upload counter is incremented here, not at commit: a
// reservation represents an upload attempt and consumes a daily slot even
// if it is later abandoned. Amortized garbage collection runs on the same
// write: reservations past the hard expiry and day counters past retention
// are dropped.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (*models.Reservation, error) {
	if req.FileCount <= 0 {
		return nil, fmt.Errorf("%w: fileCount must be positive", common.ErrorValidation)
	}
	if req.TotalSizeBytes <= 0 {
		return nil, fmt.Errorf("%w: totalSizeBytes must be positive", common.ErrorValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	limits := s.effectiveLimits(req.Limits)
	now := s.now()

	var reservation models.Reservation
	err := s.mutate(ctx, func(agg *models.StorageAggregate) error {
		if err := admit(agg, req.TotalSizeBytes, limits, now); err != nil {
			return err
		}

		reservation = models.Reservation{
			ID:             uuid.NewString(),
			FileCount:      req.FileCount,
			TotalSizeBytes: req.TotalSizeBytes,
			CreatedAt:      now,
		}
		agg.Reservations[reservation.ID] = reservation
		agg.DailyUploadCounts[models.DateKey(now)]++

		collectGarbage(agg, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "reservation created",
		"id", reservation.ID, "files", req.FileCount, "bytes", req.TotalSizeBytes)
	return &reservation, nil
}

// Commit finalizes a reservation into permanent photo records. It is
// all-or-nothing: either every draft becomes a record, the byte total grows
// by the draft sum and the reservation is marked committed, or nothing
// changes. A reservation past its live window, or already swept by garbage
// collection, is indistinguishable from an unknown one.
func (s *Service) Commit(ctx context.Context, reservationID string, drafts []models.PhotoDraft) error {
	if reservationID == "" {
		return fmt.Errorf("%w: reservationId is required", common.ErrorValidation)
	}
	if len(drafts) == 0 {
		return fmt.Errorf("%w: at least one photo is required", common.ErrorValidation)
	}
	for i, d := range drafts {
		if d.SizeBytes <= 0 {
			return fmt.Errorf("%w: photo %d: sizeBytes must be positive", common.ErrorValidation, i)
		}
		if d.StorageKey == "" {
			return fmt.Errorf("%w: photo %d: storageKey is required", common.ErrorValidation, i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	err := s.mutate(ctx, func(agg *models.StorageAggregate) error {
		reservation, ok := agg.Reservations[reservationID]
		if !ok {
			return fmt.Errorf("%w: reservation %s", common.ErrorNotFound, reservationID)
		}
		if reservation.Committed {
			return common.ErrorAlreadyCommitted
		}
		// An expired reservation no longer counts as pending, so admitting
		// it here could push totalBytes past the cap.
		if now.Sub(reservation.CreatedAt) > reservationLiveWindow {
			return fmt.Errorf("%w: reservation %s", common.ErrorNotFound, reservationID)
		}

		for _, d := range drafts {
			record := models.PhotoRecord{
				ID:           uuid.NewString(),
				SizeBytes:    d.SizeBytes,
				StorageKey:   d.StorageKey,
				ThumbnailKey: d.ThumbnailKey,
				Note:         d.Note,
				AlbumDay:     d.AlbumDay,
				UploaderID:   d.UploaderID,
				AlbumTag:     d.AlbumTag,
				UploadedAt:   anchorToDay(now, d.AlbumDay),
				FavoritedBy:  []string{},
			}
			if record.AlbumDay == "" {
				record.AlbumDay = models.DateKey(now)
			}
			agg.Photos = append(agg.Photos, record)
			agg.TotalBytes += d.SizeBytes
		}

		reservation.Committed = true
		agg.Reservations[reservationID] = reservation
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "reservation committed", "id", reservationID, "photos", len(drafts))
	return nil
}

// collectGarbage drops reservations past the hard expiry and daily upload
// counters past retention.
func collectGarbage(agg *models.StorageAggregate, now time.Time) {
	for id, r := range agg.Reservations {
		if now.Sub(r.CreatedAt) > reservationHardExpiry {
			delete(agg.Reservations, id)
		}
	}
	cutoff := models.DateKey(now.Add(-dailyCountRetention))
	for day := range agg.DailyUploadCounts {
		if day < cutoff {
			delete(agg.DailyUploadCounts, day)
		}
	}
}

// anchorToDay places a timestamp on the given album day, keeping the
// current clock time so same-day ordering is preserved. Invalid or empty
// days anchor to now.
func anchorToDay(now time.Time, albumDay string) time.Time {
	day, err := time.ParseInLocation("2006-01-02", albumDay, time.UTC)
	if err != nil {
		return now
	}
	clock := now.UTC()
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), time.UTC)
}
