package models

import (
	"time"

	"github.com/camden-git/photocatalog/visibility"
)

// Entry represents a cataloged photo record using GORM.
// It corresponds to the 'entries' table.
//
// An entry carries two identities: the content hash, computed upstream from
// the normalized preview and used everywhere at the API boundary, and the
// auto-assigned surrogate ID, which exists only for relational joins and is
// never serialized or accepted from callers.
type Entry struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	ContentHash string `gorm:"uniqueIndex;not null" json:"content_hash"`
	OwnerID     uint   `gorm:"index;not null" json:"owner_id"`

	// Unix timestamp. Nullable: entries without temporal metadata exist and
	// are directly retrievable but never appear in timeline aggregation.
	CapturedAt *int64 `gorm:"index;index:idx_entries_captured_visibility,priority:1" json:"captured_at,omitempty"`

	Visibility visibility.Level `gorm:"not null;default:0;index:idx_entries_captured_visibility,priority:2" json:"visibility"`
	Rating     int              `gorm:"not null;default:0" json:"rating"` // 0 = unrated, 1-5 otherwise

	ThumbnailPath *string `gorm:"" json:"thumbnail_path,omitempty"` // Nullable, relative to media storage
	Width         *int    `gorm:"" json:"width,omitempty"`          // Nullable
	Height        *int    `gorm:"" json:"height,omitempty"`         // Nullable

	CameraMake   *string  `gorm:"" json:"camera_make,omitempty"`   // Nullable
	CameraModel  *string  `gorm:"" json:"camera_model,omitempty"`  // Nullable
	LensMake     *string  `gorm:"" json:"lens_make,omitempty"`     // Nullable
	LensModel    *string  `gorm:"" json:"lens_model,omitempty"`    // Nullable
	FocalLength  *float64 `gorm:"" json:"focal_length,omitempty"`  // Nullable, mm
	Aperture     *float64 `gorm:"" json:"aperture,omitempty"`      // Nullable, F-number
	ShutterSpeed *string  `gorm:"" json:"shutter_speed,omitempty"` // Nullable, e.g., "1/125s"
	ISO          *int     `gorm:"" json:"iso,omitempty"`           // Nullable
	Latitude     *float64 `gorm:"" json:"latitude,omitempty"`      // Nullable
	Longitude    *float64 `gorm:"" json:"longitude,omitempty"`     // Nullable

	// Open key/value bag for anything the upstream processor extracted that
	// has no dedicated column.
	Metadata map[string]string `gorm:"serializer:json" json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Entry) TableName() string {
	return "entries"
}

// IsRatedHighly reports whether the owner marked this entry as one that
// matters; highly rated entries win preview selection within a bucket.
func (e *Entry) IsRatedHighly() bool {
	return e.Rating >= 4
}
