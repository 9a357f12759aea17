package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/photocatalog/models"
	"github.com/camden-git/photocatalog/visibility"
)

// EntryRepository handles database operations for Entry entities
type EntryRepository struct {
	DB     *gorm.DB
	Policy visibility.Policy
}

// NewEntryRepository creates a new instance of EntryRepository
func NewEntryRepository(db *gorm.DB, policy visibility.Policy) *EntryRepository {
	return &EntryRepository{DB: db, Policy: policy}
}

// ResolveOrCreate inserts the entry, relying solely on the unique index over
// content_hash for mutual exclusion between concurrent identical ingests.
// There is deliberately no check-then-insert: a duplicate-key error is the
// concurrency signal that another writer won, in which case the surviving row
// is re-read and returned with created=false.
func (r *EntryRepository) ResolveOrCreate(ctx context.Context, entry *models.Entry) (bool, error) {
	err := r.DB.WithContext(ctx).Create(entry).Error
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, fmt.Errorf("failed to create entry %s: %w", entry.ContentHash, err)
	}

	existing, lookupErr := r.GetByHash(ctx, entry.ContentHash)
	if lookupErr != nil {
		return false, fmt.Errorf("entry %s exists but could not be re-read after duplicate insert: %w", entry.ContentHash, lookupErr)
	}
	*entry = *existing
	return false, nil
}

// GetByHash retrieves an entry by content hash without visibility filtering
func (r *EntryRepository) GetByHash(ctx context.Context, contentHash string) (*models.Entry, error) {
	var entry models.Entry
	err := r.DB.WithContext(ctx).Where("content_hash = ?", contentHash).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get entry by hash %s: %w", contentHash, err)
	}
	return &entry, nil
}

// GetByHashVisible retrieves an entry by content hash, restricted to what the
// caller may read. A row hidden by visibility reports gorm.ErrRecordNotFound,
// indistinguishable from a hash that was never ingested.
func (r *EntryRepository) GetByHashVisible(ctx context.Context, contentHash string, caller visibility.Caller) (*models.Entry, error) {
	readableSQL, args, err := r.Policy.ReadablePredicate(caller).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build visibility predicate: %w", err)
	}

	var entry models.Entry
	err = r.DB.WithContext(ctx).
		Where("content_hash = ?", contentHash).
		Where(readableSQL, args...).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get visible entry by hash %s: %w", contentHash, err)
	}
	return &entry, nil
}

// ListRange returns the caller-readable entries captured within [from, to),
// ordered by capture time with surrogate id as a stable tiebreak. The same
// visibility predicate used for grouped counting applies here, so a bucket's
// candidate set always matches its reported count.
func (r *EntryRepository) ListRange(ctx context.Context, caller visibility.Caller, from, to time.Time) ([]models.Entry, error) {
	readableSQL, args, err := r.Policy.ReadablePredicate(caller).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build visibility predicate: %w", err)
	}

	var entries []models.Entry
	err = r.DB.WithContext(ctx).
		Where("captured_at IS NOT NULL").
		Where("captured_at >= ? AND captured_at < ?", from.Unix(), to.Unix()).
		Where(readableSQL, args...).
		Order("captured_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list entries in range [%s, %s): %w", from, to, err)
	}
	return entries, nil
}

// UpdateDetails applies owner-driven metadata edits. Nil fields are left
// untouched; a non-nil capturedAt pointing at zero clears the capture time.
func (r *EntryRepository) UpdateDetails(ctx context.Context, entryID uint, rating *int, capturedAt *int64, metadata map[string]string) error {
	updates := map[string]interface{}{}
	if rating != nil {
		updates["rating"] = *rating
	}
	if capturedAt != nil {
		if *capturedAt == 0 {
			updates["captured_at"] = gorm.Expr("NULL")
		} else {
			updates["captured_at"] = *capturedAt
		}
	}
	if metadata != nil {
		serialized, err := marshalMetadata(metadata)
		if err != nil {
			return err
		}
		updates["metadata"] = serialized
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.DB.WithContext(ctx).Model(&models.Entry{}).Where("id = ?", entryID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update entry %d details: %w", entryID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateVisibility sets the visibility level of an entry. The level must be
// validated by the caller before any write reaches this method; it is checked
// again here as the last line of defense.
func (r *EntryRepository) UpdateVisibility(ctx context.Context, entryID uint, level visibility.Level) error {
	if !level.Valid() {
		return fmt.Errorf("refusing to store invalid visibility level %d", int(level))
	}

	result := r.DB.WithContext(ctx).Model(&models.Entry{}).Where("id = ?", entryID).Update("visibility", int(level))
	if result.Error != nil {
		return fmt.Errorf("failed to update entry %d visibility: %w", entryID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// marshalMetadata serializes the open metadata bag the same way the GORM json
// serializer stores it; Updates with a raw map bypasses the field serializer.
func marshalMetadata(m map[string]string) (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to serialize metadata bag: %w", err)
	}
	return string(data), nil
}

// Delete removes an entry record by its surrogate id
func (r *EntryRepository) Delete(ctx context.Context, entryID uint) error {
	result := r.DB.WithContext(ctx).Where("id = ?", entryID).Delete(&models.Entry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete entry %d: %w", entryID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
