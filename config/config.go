package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultThumbnailsSubDir = "thumbnails"
)

const (
	defaultPreviewMaxSize     = 512
	defaultPreviewJpegQuality = 90
	defaultHourRangeMaxDays   = 31
)

type Config struct {
	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for stored preview assets
	ThumbnailsPath   string // full-calculated path for thumbnails

	// preview storage bounds (ingested previews larger than this are re-encoded)
	PreviewMaxSize     int
	PreviewJpegQuality int

	// timeline settings
	// hour-granularity requests spanning more than this many days are rejected
	HourRangeMaxDays int

	// secret used to verify bearer tokens issued by the external auth service
	JWTSecret []byte
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "catalog.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	thumbSubDir := getEnvOrDefault("THUMBNAILS_SUBDIR", DefaultThumbnailsSubDir)
	absThumbnailsPath := filepath.Join(absMediaStorage, thumbSubDir)

	previewMaxSize := getEnvIntOrDefault("PREVIEW_MAX_SIZE", defaultPreviewMaxSize)
	previewQuality := getEnvIntOrDefault("PREVIEW_JPEG_QUALITY", defaultPreviewJpegQuality)

	hourRangeMaxDays := getEnvIntOrDefault("TIMELINE_HOUR_RANGE_MAX_DAYS", defaultHourRangeMaxDays)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	cfg := Config{
		DatabasePath:       dbPath,
		MediaStoragePath:   absMediaStorage,
		ThumbnailsPath:     absThumbnailsPath,
		PreviewMaxSize:     previewMaxSize,
		PreviewJpegQuality: previewQuality,
		HourRangeMaxDays:   hourRangeMaxDays,
		JWTSecret:          []byte(secret),
	}

	return cfg, nil
}
