package statestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/duogallery/duogallery/internal/common"
	"github.com/duogallery/duogallery/internal/server/migrations"
	"github.com/duogallery/duogallery/internal/server/models"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresStore keeps the aggregate as a single jsonb row. The table is
// created by the embedded goose migrations on startup.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the DSN with the pgx stdlib driver and runs
// migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.runMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	return goose.UpContext(ctx, s.db, ".")
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Load reads the single document row.
func (s *PostgresStore) Load(ctx context.Context) (*models.StorageAggregate, error) {
	var doc []byte
	query := `SELECT doc FROM gallery_state WHERE id = 1`
	if err := s.db.QueryRowContext(ctx, query).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to load gallery state: %w", err)
	}

	agg := &models.StorageAggregate{}
	if err := json.Unmarshal(doc, agg); err != nil {
		return nil, fmt.Errorf("failed to decode gallery state: %w", err)
	}
	agg.Normalize()
	return agg, nil
}

// Save upserts the document row. The single UPDATE is atomic on the
// database side, so a failed write leaves the previous document in place.
func (s *PostgresStore) Save(ctx context.Context, agg *models.StorageAggregate) error {
	doc, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("failed to encode gallery state: %w", err)
	}

	query := `
		INSERT INTO gallery_state (id, doc, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id)
		DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at;
	`
	res, err := s.db.ExecContext(ctx, query, doc)
	if err != nil {
		return fmt.Errorf("failed to save gallery state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}
