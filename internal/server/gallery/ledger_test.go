package gallery

import (
	"testing"
	"time"

	"github.com/duogallery/duogallery/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func TestPendingReservedBytes(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	agg := models.NewStorageAggregate()
	agg.Reservations = map[string]models.Reservation{
		"live":      {ID: "live", TotalSizeBytes: 100, CreatedAt: now.Add(-30 * time.Minute)},
		"committed": {ID: "committed", TotalSizeBytes: 200, CreatedAt: now.Add(-30 * time.Minute), Committed: true},
		"stale":     {ID: "stale", TotalSizeBytes: 400, CreatedAt: now.Add(-90 * time.Minute)},
	}

	// only the live, uncommitted reservation counts
	assert.Equal(t, int64(100), pendingReservedBytes(agg, now))
}

func TestAdmit_ChecksDailyCountBeforeBytes(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	agg := models.NewStorageAggregate()
	agg.TotalBytes = 2000 // already past the byte cap
	agg.DailyUploadCounts[models.DateKey(now)] = 5

	err := admit(agg, 1, Limits{MaxTotalBytes: 1000, MaxUploadsPerDay: 5}, now)
	assert.ErrorContains(t, err, "daily upload limit")
}
