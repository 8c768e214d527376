package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx as database/sql driver
	"github.com/timvw/draft-patrol/internal/model"
	"go.uber.org/zap"
)

// Postgres stores work-items as JSONB documents, one row per (collection, id).
// The drafting process owns inserts; the monitor reads and merge-updates.
type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgres opens a connection pool and verifies connectivity.
func NewPostgres(dsn string, logger *zap.Logger) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Postgres{db: db, logger: logger}, nil
}

// Migrate creates the documents table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection  text        NOT NULL,
			id          text        NOT NULL,
			data        jsonb       NOT NULL,
			updated_at  timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (collection, id)
		)`)
	if err != nil {
		return fmt.Errorf("migrate documents table: %w", err)
	}
	return nil
}

func (p *Postgres) GetByID(ctx context.Context, collection, id string) (*model.WorkItem, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID %s/%s: %w", collection, id, err)
	}

	var item model.WorkItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("GetByID %s/%s: decode: %w", collection, id, err)
	}
	if item.DocumentID == "" {
		item.DocumentID = id
	}
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("GetByID %s/%s: %w", collection, id, err)
	}
	return &item, nil
}

// MergeFields relies on the jsonb || operator: keys in the patch replace
// their counterparts, every other key keeps its stored value.
func (p *Postgres) MergeFields(ctx context.Context, collection, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("MergeFields %s/%s: encode patch: %w", collection, id, err)
	}

	res, err := p.db.ExecContext(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2`,
		collection, id, patch)
	if err != nil {
		return fmt.Errorf("MergeFields %s/%s: %w", collection, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Put upserts a full work-item. Used by tooling and tests; the drafting
// process normally owns this write path.
func (p *Postgres) Put(ctx context.Context, collection string, item *model.WorkItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("Put %s/%s: encode: %w", collection, item.DocumentID, err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = now()`,
		collection, item.DocumentID, data)
	if err != nil {
		return fmt.Errorf("Put %s/%s: %w", collection, item.DocumentID, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
