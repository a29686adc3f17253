package gallery

import (
	"context"

	"github.com/duogallery/duogallery/internal/server/models"
)

// The recycle janitor: soft-deleted photos past retention are purged
// automatically, reclaiming their bytes. It runs at the start of gallery
// reads and is a no-op (no clone, no persist) when nothing is eligible.
//
// Blob cleanup for auto-purged records is best-effort via OnPurge; the
// byte accounting does not wait for it.

// sweepRecycle purges expired soft-deletes. Called with s.mu held.
func (s *Service) sweepRecycle(ctx context.Context) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	now := s.now()
	eligible := false
	for i := range s.agg.Photos {
		p := &s.agg.Photos[i]
		if p.IsDeleted() && now.Sub(*p.DeletedAt) >= recycleRetention {
			eligible = true
			break
		}
	}
	if !eligible {
		return nil
	}

	var purged []PurgedBlob
	err := s.mutate(ctx, func(agg *models.StorageAggregate) error {
		kept := agg.Photos[:0]
		for _, p := range agg.Photos {
			if p.IsDeleted() && now.Sub(*p.DeletedAt) >= recycleRetention {
				agg.TotalBytes -= p.SizeBytes
				purged = append(purged, PurgedBlob{
					StorageKey:   p.StorageKey,
					ThumbnailKey: p.ThumbnailKey,
				})
				continue
			}
			kept = append(kept, p)
		}
		agg.Photos = kept
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "recycle sweep purged photos", "count", len(purged))
	if s.OnPurge != nil {
		for _, blob := range purged {
			s.OnPurge(blob)
		}
	}
	return nil
}
