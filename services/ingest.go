package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"gorm.io/gorm"

	"github.com/camden-git/photocatalog/media"
	"github.com/camden-git/photocatalog/models"
	"github.com/camden-git/photocatalog/realtime"
	"github.com/camden-git/photocatalog/repository"
	"github.com/camden-git/photocatalog/visibility"
)

// ErrMissingContentHash rejects descriptors without the one field the whole
// identity model hangs on.
var ErrMissingContentHash = errors.New("descriptor is missing content_hash")

// IngestResult is what the ingest boundary reports back to the upstream
// processing client.
type IngestResult struct {
	Entry     *models.Entry
	Duplicate bool
}

// IngestService accepts descriptors from the upstream processing service and
// turns them into catalog entries. It owns no state of its own; idempotency
// comes entirely from the repository's resolve-or-create contract.
type IngestService struct {
	Entries   repository.EntryRepositoryInterface
	Processor *media.Processor
	Hub       *realtime.Hub // optional; nil disables event broadcasting
}

func NewIngestService(entries repository.EntryRepositoryInterface, processor *media.Processor, hub *realtime.Hub) *IngestService {
	return &IngestService{Entries: entries, Processor: processor, Hub: hub}
}

// Ingest resolves the descriptor against the catalog and stores the preview
// for first-seen hashes. A re-ingest of a known hash is idempotent success,
// not an error: the existing entry is returned with Duplicate=true so the
// upstream client can retry freely.
//
// A known hash never reaches the store. Re-sending equivalent bytes would be
// harmless, but a client re-sending different bytes under a known hash must
// not replace the owner's stored asset, and the entry's recorded dimensions
// must keep describing the bytes on disk. The lookup is only an asset guard;
// row uniqueness still rests on the constraint inside ResolveOrCreate, which
// catches the race two first-time ingests of one hash can still run.
//
// For a new hash the preview is written before the row is inserted so a
// reader who sees the entry always finds its asset.
func (s *IngestService) Ingest(ctx context.Context, ownerID uint, desc media.Descriptor, preview io.Reader) (*IngestResult, error) {
	if desc.ContentHash == "" {
		return nil, ErrMissingContentHash
	}

	existing, err := s.Entries.GetByHash(ctx, desc.ContentHash)
	if err == nil {
		return &IngestResult{Entry: existing, Duplicate: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to resolve %s: %w", desc.ContentHash, err)
	}

	stored, err := s.Processor.StorePreview(desc.ContentHash, preview)
	if err != nil {
		return nil, fmt.Errorf("failed to store preview for %s: %w", desc.ContentHash, err)
	}

	entry := buildEntry(ownerID, desc, stored)
	created, err := s.Entries.ResolveOrCreate(ctx, entry)
	if err != nil {
		if removeErr := s.Processor.RemovePreview(stored.RelativePath); removeErr != nil {
			log.Printf("ingest: failed to remove preview after aborted ingest of %s: %v", desc.ContentHash, removeErr)
		}
		return nil, err
	}

	if created && s.Hub != nil {
		s.Hub.Broadcast(realtime.NewEvent(realtime.EventEntryCreated, entry.ContentHash, entry.OwnerID, entry.Visibility))
	}

	return &IngestResult{Entry: entry, Duplicate: !created}, nil
}

func buildEntry(ownerID uint, desc media.Descriptor, stored *media.StoredPreview) *models.Entry {
	entry := &models.Entry{
		ContentHash:   desc.ContentHash,
		OwnerID:       ownerID,
		Visibility:    visibility.LevelPrivate,
		ThumbnailPath: &stored.RelativePath,
		Width:         &stored.Width,
		Height:        &stored.Height,
		Metadata:      desc.Extra,
	}

	if meta := desc.Metadata; meta != nil {
		entry.CapturedAt = meta.CapturedAt
		entry.CameraMake = meta.CameraMake
		entry.CameraModel = meta.CameraModel
		entry.LensMake = meta.LensMake
		entry.LensModel = meta.LensModel
		entry.FocalLength = meta.FocalLength
		entry.Aperture = meta.Aperture
		entry.ShutterSpeed = meta.ShutterSpeed
		entry.ISO = meta.ISO
		entry.Latitude = meta.Latitude
		entry.Longitude = meta.Longitude
	}

	return entry
}
