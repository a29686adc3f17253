package gallery

import (
	"time"

	"github.com/duogallery/duogallery/internal/common"
	"github.com/duogallery/duogallery/internal/server/models"
)

// The quota ledger: pure admission math over the aggregate plus wall-clock
// time. No function here mutates state.

// pendingReservedBytes sums the sizes of uncommitted reservations still
// inside their live window. Bytes reserved but not yet uploaded count toward
// the cap, which is what closes the race between "asked to upload" and
// "finished uploading".
func pendingReservedBytes(agg *models.StorageAggregate, now time.Time) int64 {
	var pending int64
	for _, r := range agg.Reservations {
		if !r.Committed && now.Sub(r.CreatedAt) < reservationLiveWindow {
			pending += r.TotalSizeBytes
		}
	}
	return pending
}

// admit decides whether candidateBytes more may be admitted today. The
// daily counter is checked first, then the projected byte total. Returned
// quota errors carry the remaining byte headroom.
func admit(agg *models.StorageAggregate, candidateBytes int64, limits Limits, now time.Time) error {
	headroom := func() int64 {
		return limits.MaxTotalBytes - agg.TotalBytes - pendingReservedBytes(agg, now)
	}

	if agg.DailyUploadCounts[models.DateKey(now)] >= limits.MaxUploadsPerDay {
		return &common.QuotaError{
			Reason:         "daily upload limit reached",
			RemainingBytes: headroom(),
		}
	}

	projected := agg.TotalBytes + pendingReservedBytes(agg, now) + candidateBytes
	if projected > limits.MaxTotalBytes {
		return &common.QuotaError{
			Reason:         "storage limit exceeded",
			RemainingBytes: headroom(),
		}
	}
	return nil
}
