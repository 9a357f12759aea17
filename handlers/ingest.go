package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/camden-git/photocatalog/media"
	"github.com/camden-git/photocatalog/services"
)

const maxIngestBodyBytes = 32 << 20 // descriptors carry a small preview, not originals

type IngestHandler struct {
	Ingest *services.IngestService
}

// IngestResponse is the body returned to the upstream processing client.
type IngestResponse struct {
	EntryID     string `json:"entry_id"` // the content hash; surrogate ids never leave the service
	IsDuplicate bool   `json:"is_duplicate"`
}

// IngestPhoto accepts a multipart descriptor from the upstream processing
// service: a "descriptor" JSON part and a "thumbnail" binary part. Re-sending
// a known content hash is idempotent success reported via is_duplicate.
func (ih *IngestHandler) IngestPhoto(w http.ResponseWriter, r *http.Request) {
	caller := CallerFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxIngestBodyBytes)
	if err := r.ParseMultipartForm(maxIngestBodyBytes); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Expected multipart form data: "+err.Error())
		return
	}

	descriptorJSON := r.FormValue("descriptor")
	if descriptorJSON == "" {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Missing descriptor part")
		return
	}

	var descriptor media.Descriptor
	if err := json.Unmarshal([]byte(descriptorJSON), &descriptor); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Invalid descriptor JSON: "+err.Error())
		return
	}

	thumbFile, _, err := r.FormFile("thumbnail")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Missing thumbnail part")
		return
	}
	defer thumbFile.Close()

	result, err := ih.Ingest.Ingest(r.Context(), caller.UserID, descriptor, thumbFile)
	if err != nil {
		if errors.Is(err, services.ErrMissingContentHash) {
			WriteAPIError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		log.Printf("Error ingesting descriptor %s: %v", descriptor.ContentHash, err)
		WriteAPIError(w, http.StatusInternalServerError, "ingest_failed", "Failed to ingest descriptor")
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, IngestResponse{
		EntryID:     result.Entry.ContentHash,
		IsDuplicate: result.Duplicate,
	})
}
