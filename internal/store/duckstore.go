package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/barcode-generator/backend/internal/models"
)

// DuckStore implements RecordStore on an embedded DuckDB database. It is
// the zero-configuration fallback: the database file lives in a temp
// directory and is removed on Close, so records do not survive a restart.
type DuckStore struct {
	db      *sql.DB
	dbPath  string
	tempDir string
}

// NewDuckStore creates an ephemeral embedded store in a fresh temp directory.
func NewDuckStore() (*DuckStore, error) {
	dir, err := os.MkdirTemp("", "barcode-store-")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	s, err := NewDuckStoreAtPath(filepath.Join(dir, "barcodes.duckdb"))
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	s.tempDir = dir
	return s, nil
}

// NewDuckStoreAtPath creates the store at a specific database path.
func NewDuckStoreAtPath(dbPath string) (*DuckStore, error) {
	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='256MB'",
			"PRAGMA threads=2",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating duckdb connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS barcodes (
			id          VARCHAR PRIMARY KEY,
			format      VARCHAR NOT NULL,
			text        VARCHAR NOT NULL,
			options     BLOB,
			mime_type   VARCHAR NOT NULL,
			file_path   VARCHAR,
			created_by  VARCHAR,
			created_at  TIMESTAMP NOT NULL,
			usage_count BIGINT NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("creating barcodes table: %w", err)
	}

	return &DuckStore{db: db, dbPath: dbPath}, nil
}

// Insert stores a new record and returns its assigned id. The open options
// map is msgpack-encoded into the options column.
func (s *DuckStore) Insert(ctx context.Context, rec *models.Barcode) (string, error) {
	id := uuid.New().String()

	opts := rec.Options
	if opts == nil {
		opts = map[string]any{}
	}
	blob, err := msgpack.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("encoding options: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO barcodes (id, format, text, options, mime_type, file_path, created_by, created_at, usage_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Format, rec.Text, blob, rec.MimeType, rec.FilePath, rec.CreatedBy, rec.CreatedAt, rec.UsageCount)
	if err != nil {
		return "", fmt.Errorf("inserting barcode record: %w", err)
	}

	rec.ID = id
	return id, nil
}

// FindByID looks up a record by id.
func (s *DuckStore) FindByID(ctx context.Context, id string) (*models.Barcode, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, format, text, options, mime_type, file_path, created_by, created_at, usage_count
		FROM barcodes WHERE id = ?`, id)

	var (
		rec       models.Barcode
		blob      []byte
		filePath  sql.NullString
		createdBy sql.NullString
		createdAt time.Time
	)
	err := row.Scan(&rec.ID, &rec.Format, &rec.Text, &blob, &rec.MimeType,
		&filePath, &createdBy, &createdAt, &rec.UsageCount)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying barcode record: %w", err)
	}

	rec.FilePath = filePath.String
	rec.CreatedBy = createdBy.String
	rec.CreatedAt = createdAt

	rec.Options = map[string]any{}
	if len(blob) > 0 {
		if err := msgpack.Unmarshal(blob, &rec.Options); err != nil {
			return nil, fmt.Errorf("decoding options: %w", err)
		}
	}

	return &rec, nil
}

// IncrementUsage bumps the usage counter for a record.
func (s *DuckStore) IncrementUsage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE barcodes SET usage_count = usage_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("incrementing usage count: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("incrementing usage count: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *DuckStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close shuts down the database and deletes its files.
func (s *DuckStore) Close(ctx context.Context) error {
	err := s.db.Close()
	os.Remove(s.dbPath)
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
	return err
}
