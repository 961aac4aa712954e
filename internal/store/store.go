// Package store persists barcode records. MongoStore is used when a
// connection string is configured; DuckStore is the ephemeral embedded
// fallback for running without external services.
package store

import (
	"context"
	"errors"

	"github.com/barcode-generator/backend/internal/models"
)

// ErrNotFound is returned when no record exists for an id. Malformed ids
// map to it as well, so callers see one "unknown record" failure mode.
var ErrNotFound = errors.New("record not found")

// RecordStore is the persistence interface for barcode records. Records
// are inserted once and never updated afterward, except for the usage
// counter maintained by IncrementUsage.
type RecordStore interface {
	Insert(ctx context.Context, rec *models.Barcode) (string, error)
	FindByID(ctx context.Context, id string) (*models.Barcode, error)
	IncrementUsage(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
