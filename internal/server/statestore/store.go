// Package statestore persists the gallery's single StorageAggregate
// document. Adapters implement durable read-modify-write of one value;
// everything richer (quotas, lifecycle) lives above, in the gallery core.
package statestore

import (
	"context"

	"github.com/duogallery/duogallery/internal/server/models"
)

// Store loads and saves the aggregate document.
//
// Load returns common.ErrorNotFound when no document has ever been saved;
// the caller starts from an empty aggregate in that case. Save must be
// atomic: after an error the previously stored document is still intact.
type Store interface {
	Load(ctx context.Context) (*models.StorageAggregate, error)
	Save(ctx context.Context, agg *models.StorageAggregate) error
}
