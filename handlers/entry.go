package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/photocatalog/media"
	"github.com/camden-git/photocatalog/models"
	"github.com/camden-git/photocatalog/realtime"
	"github.com/camden-git/photocatalog/repository"
	"github.com/camden-git/photocatalog/visibility"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

type EntryHandler struct {
	EntryRepo repository.EntryRepositoryInterface
	Processor *media.Processor
	Hub       *realtime.Hub
}

// loadOwnedEntry fetches the entry for a mutation, enforcing the leak-free
// gate: entries the caller cannot read report not-found, entries they can
// read but do not own report forbidden. Returns nil with the response already
// written in both cases.
func (eh *EntryHandler) loadOwnedEntry(w http.ResponseWriter, r *http.Request) *models.Entry {
	contentHash := chi.URLParam(r, "content_hash")
	caller := CallerFromContext(r.Context())

	entry, err := eh.EntryRepo.GetByHashVisible(r.Context(), contentHash, caller)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Entry not found")
		} else {
			log.Printf("Error loading entry %s: %v", contentHash, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to load entry")
		}
		return nil
	}

	if entry.OwnerID != caller.UserID {
		WriteAPIError(w, http.StatusForbidden, "forbidden", "Only the owner may modify an entry")
		return nil
	}
	return entry
}

// GetEntry serves a single entry by content hash. Entries hidden from the
// caller by visibility are indistinguishable from hashes that were never
// ingested.
func (eh *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	contentHash := chi.URLParam(r, "content_hash")
	caller := CallerFromContext(r.Context())

	entry, err := eh.EntryRepo.GetByHashVisible(r.Context(), contentHash, caller)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Entry not found")
		} else {
			log.Printf("Error getting entry %s: %v", contentHash, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve entry")
		}
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// UpdateEntry applies owner-driven metadata edits: rating, capture-time
// corrections, and the open metadata bag.
func (eh *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	entry := eh.loadOwnedEntry(w, r)
	if entry == nil {
		return
	}

	var req struct {
		Rating     *int              `json:"rating,omitempty"`
		CapturedAt *int64            `json:"captured_at,omitempty"`
		Metadata   map[string]string `json:"metadata,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	if req.Rating != nil && (*req.Rating < 0 || *req.Rating > 5) {
		WriteAPIError(w, http.StatusBadRequest, "invalid_rating", "Rating must be between 0 and 5")
		return
	}

	err := eh.EntryRepo.UpdateDetails(r.Context(), entry.ID, req.Rating, req.CapturedAt, req.Metadata)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Entry not found")
			return
		}
		log.Printf("Error updating entry %s: %v", entry.ContentHash, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to update entry")
		return
	}

	updated, err := eh.EntryRepo.GetByHash(r.Context(), entry.ContentHash)
	if err != nil {
		log.Printf("Error fetching updated entry %s: %v", entry.ContentHash, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to fetch updated entry")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// UpdateVisibility is the owner-only visibility mutation. Values outside the
// four defined levels are rejected before any write.
func (eh *EntryHandler) UpdateVisibility(w http.ResponseWriter, r *http.Request) {
	entry := eh.loadOwnedEntry(w, r)
	if entry == nil {
		return
	}

	var req struct {
		Visibility string `json:"visibility"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	level, err := visibility.ParseLevel(req.Visibility)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_visibility", err.Error())
		return
	}

	if err := eh.EntryRepo.UpdateVisibility(r.Context(), entry.ID, level); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Entry not found")
			return
		}
		log.Printf("Error updating visibility for %s: %v", entry.ContentHash, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to update visibility")
		return
	}

	if eh.Hub != nil {
		event := realtime.NewEvent(realtime.EventVisibilityChanged, entry.ContentHash, entry.OwnerID, level)
		event.Visibility = level.String()
		eh.Hub.Broadcast(event)
	}

	entry.Visibility = level
	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntry removes an entry and its stored preview by explicit owner action
func (eh *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entry := eh.loadOwnedEntry(w, r)
	if entry == nil {
		return
	}

	if err := eh.EntryRepo.Delete(r.Context(), entry.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Entry not found")
			return
		}
		log.Printf("Error deleting entry %s: %v", entry.ContentHash, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to delete entry")
		return
	}

	if entry.ThumbnailPath != nil {
		if err := eh.Processor.RemovePreview(*entry.ThumbnailPath); err != nil {
			log.Printf("Error removing preview for deleted entry %s: %v", entry.ContentHash, err)
		}
	}

	if eh.Hub != nil {
		eh.Hub.Broadcast(realtime.NewEvent(realtime.EventEntryDeleted, entry.ContentHash, entry.OwnerID, entry.Visibility))
	}

	w.WriteHeader(http.StatusNoContent)
}
