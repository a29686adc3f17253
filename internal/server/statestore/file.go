package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/duogallery/duogallery/internal/common"
	"github.com/duogallery/duogallery/internal/server/models"
	"github.com/klauspost/compress/zstd"
)

// FileStore persists the aggregate as a zstd-compressed JSON snapshot on
// local disk. It is the no-database deployment mode.
//
// Writes go to a temp file in the same directory followed by a rename, so
// the snapshot is replaced atomically and a crash mid-write never corrupts
// the previous one.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(_ context.Context) (*models.StorageAggregate, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to read state snapshot: %w", err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd init error: %w", err)
	}
	defer dec.Close()

	doc, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress state snapshot: %w", err)
	}

	agg := &models.StorageAggregate{}
	if err := json.Unmarshal(doc, agg); err != nil {
		return nil, fmt.Errorf("failed to decode state snapshot: %w", err)
	}
	agg.Normalize()
	return agg, nil
}

func (s *FileStore) Save(_ context.Context, agg *models.StorageAggregate) error {
	doc, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("failed to encode state snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("zstd init error: %w", err)
	}
	compressed := enc.EncodeAll(doc, nil)
	if err := enc.Close(); err != nil {
		return fmt.Errorf("zstd close error: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
