package blobstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	qb "github.com/courtsidehq/courtside/internal/platform/querybuilder"
)

const snapshotsTable = "snapshots"

// Postgres stores blobs in a single key/value table, upserting on key.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Put(ctx context.Context, key string, body []byte) error {
	query, args, err := qb.InsertInto(snapshotsTable).
		Columns("key", "body", "updated_at").
		Values(key, body, time.Now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert blob query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert blob %s: %w", key, err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := qb.Select("body").
		From(snapshotsTable).
		Where(qb.Eq("key", key)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select blob query: %w", err)
	}

	var body []byte
	if err := s.db.GetContext(ctx, &body, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("select blob %s: %w", key, err)
	}
	return body, nil
}
