// Package journal keeps a SQLite record of uploads for the collection
// aggregates API. The filesystem store stays the source of truth; journal
// failures are logged by callers and never fail a request.
package journal

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS uploads (
	id TEXT PRIMARY KEY,
	path TEXT NOT NULL UNIQUE,
	collection TEXT NOT NULL,
	size INTEGER NOT NULL,
	client TEXT NOT NULL DEFAULT '',
	uploaded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_uploads_collection ON uploads(collection);
CREATE INDEX IF NOT EXISTS idx_uploads_uploaded_at ON uploads(uploaded_at);
`

// Entry is one journaled upload. UploadedAt is an RFC3339 string, matching
// how timestamps travel through the HTTP API.
type Entry struct {
	ID         string `db:"id"`
	Path       string `db:"path"`
	Collection string `db:"collection"`
	Size       int64  `db:"size"`
	Client     string `db:"client"`
	UploadedAt string `db:"uploaded_at"`
}

// CollectionStat is one per-collection aggregate row.
type CollectionStat struct {
	Collection string `db:"collection" json:"collection"`
	Files      int64  `db:"files" json:"files"`
	TotalSize  int64  `db:"total_size" json:"total_size"`
	LastUpload string `db:"last_upload" json:"last_upload"`
}

type Journal struct {
	db *sqlx.DB
}

// New initializes the journal schema on an existing database connection.
func New(db *sqlx.DB) (*Journal, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("initialize journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record upserts the row for a path. Re-uploads of the same path replace the
// previous row.
func (j *Journal) Record(ctx context.Context, e *Entry) error {
	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO uploads (id, path, collection, size, client, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, e.Path, e.Collection, e.Size, e.Client, e.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("record upload '%s': %w", e.Path, err)
	}
	return nil
}

// Remove drops the row for a path. Removing an unjournaled path is a no-op.
func (j *Journal) Remove(ctx context.Context, path string) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM uploads WHERE path = ?`, path); err != nil {
		return fmt.Errorf("remove upload '%s': %w", path, err)
	}
	return nil
}

// Collections aggregates the journal per collection, sorted by name.
func (j *Journal) Collections(ctx context.Context) ([]*CollectionStat, error) {
	var stats []*CollectionStat
	err := j.db.SelectContext(ctx, &stats,
		`SELECT collection,
		        COUNT(*) AS files,
		        COALESCE(SUM(size), 0) AS total_size,
		        COALESCE(MAX(uploaded_at), '') AS last_upload
		 FROM uploads
		 GROUP BY collection
		 ORDER BY collection`,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate collections: %w", err)
	}
	return stats, nil
}
