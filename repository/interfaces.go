package repository

import (
	"context"
	"time"

	"github.com/camden-git/photocatalog/models"
	"github.com/camden-git/photocatalog/visibility"
)

// EntryRepositoryInterface defines the methods for entry data operations
type EntryRepositoryInterface interface {
	// ResolveOrCreate inserts the entry under the unique content-hash index.
	// If the hash already exists (including losing a concurrent race), the
	// existing row is loaded into entry and created is false.
	ResolveOrCreate(ctx context.Context, entry *models.Entry) (created bool, err error)

	// GetByHash retrieves an entry with no visibility filtering. Intended for
	// owner checks before mutations; never hand its result to a caller
	// without a visibility decision.
	GetByHash(ctx context.Context, contentHash string) (*models.Entry, error)

	// GetByHashVisible retrieves an entry the caller is allowed to read.
	// Invisible and nonexistent are both gorm.ErrRecordNotFound.
	GetByHashVisible(ctx context.Context, contentHash string, caller visibility.Caller) (*models.Entry, error)

	// ListRange returns the caller-readable entries captured within
	// [from, to), ordered by capture time then surrogate id. Entries without
	// a capture time are excluded.
	ListRange(ctx context.Context, caller visibility.Caller, from, to time.Time) ([]models.Entry, error)

	UpdateDetails(ctx context.Context, entryID uint, rating *int, capturedAt *int64, metadata map[string]string) error
	UpdateVisibility(ctx context.Context, entryID uint, level visibility.Level) error
	Delete(ctx context.Context, entryID uint) error
}
