package media

type AssetType string

const (
	AssetTypeThumbnail AssetType = "thumbnail"
	AssetTypeUnknown   AssetType = "unknown"
)

// Descriptor is the payload the upstream processing service delivers for one
// photo: the content hash it computed, the preview's declared dimensions, and
// whatever EXIF-derived metadata it extracted. The preview bytes themselves
// travel alongside as a separate binary part.
type Descriptor struct {
	ContentHash string            `json:"content_hash"`
	Width       *int              `json:"width,omitempty"`
	Height      *int              `json:"height,omitempty"`
	Metadata    *Metadata         `json:"metadata,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// Metadata is the structured temporal/GPS/camera block of a descriptor.
type Metadata struct {
	CapturedAt   *int64   `json:"captured_at,omitempty"` // Unix timestamp
	CameraMake   *string  `json:"camera_make,omitempty"`
	CameraModel  *string  `json:"camera_model,omitempty"`
	LensMake     *string  `json:"lens_make,omitempty"`
	LensModel    *string  `json:"lens_model,omitempty"`
	FocalLength  *float64 `json:"focal_length,omitempty"`  // mm
	Aperture     *float64 `json:"aperture,omitempty"`      // F-number
	ShutterSpeed *string  `json:"shutter_speed,omitempty"` // e.g., "1/125s"
	ISO          *int     `json:"iso,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}
