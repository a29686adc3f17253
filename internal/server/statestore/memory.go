package statestore

import (
	"context"

	"github.com/duogallery/duogallery/internal/common"
	"github.com/duogallery/duogallery/internal/server/models"
)

// MemoryStore keeps the document in memory only. Used by tests; SaveErr
// lets a test make the next Save fail to exercise rollback behavior.
type MemoryStore struct {
	Saved   *models.StorageAggregate
	SaveErr error
	Saves   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (*models.StorageAggregate, error) {
	if s.Saved == nil {
		return nil, common.ErrorNotFound
	}
	return s.Saved.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, agg *models.StorageAggregate) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Saved = agg.Clone()
	s.Saves++
	return nil
}
