package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/camden-git/photocatalog/database"
	"github.com/camden-git/photocatalog/services"
)

type TimelineHandler struct {
	Timeline *services.TimelineService
}

// GetTimeline serves the hierarchical timeline:
// GET /api/timeline?granularity=month&year=2024[&month=6[&day=15]]
// Anonymous callers get the public-only view through the same filter as
// everyone else.
func (th *TimelineHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	granStr := r.URL.Query().Get("granularity")
	if !database.IsValidGranularity(granStr) {
		WriteAPIError(w, http.StatusBadRequest, "invalid_granularity", "granularity must be one of year, month, day, hour")
		return
	}

	path, ok := timelinePathFromQuery(w, r)
	if !ok {
		return
	}

	caller := CallerFromContext(r.Context())
	buckets, err := th.Timeline.Aggregate(r.Context(), database.Granularity(granStr), path, caller)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTimelinePath):
			WriteAPIError(w, http.StatusBadRequest, "invalid_path", err.Error())
		case errors.Is(err, services.ErrRangeTooLarge):
			WriteAPIError(w, http.StatusUnprocessableEntity, "range_too_large", "Narrow the requested range for hour granularity")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// client went away or the request timed out; nothing useful to write
			log.Printf("Timeline request aborted: %v", err)
		default:
			log.Printf("Error aggregating timeline: %v", err)
			WriteAPIError(w, http.StatusInternalServerError, "aggregation_failed", "Timeline aggregation failed, retry later")
		}
		return
	}

	writeJSON(w, http.StatusOK, buckets)
}

// timelinePathFromQuery parses the optional year/month/day scope. Returns
// ok=false with the response already written on malformed numbers; prefix
// consistency is validated by the service.
func timelinePathFromQuery(w http.ResponseWriter, r *http.Request) (services.TimelinePath, bool) {
	var path services.TimelinePath
	for _, part := range []struct {
		name string
		dst  **int
	}{
		{"year", &path.Year},
		{"month", &path.Month},
		{"day", &path.Day},
	} {
		raw := r.URL.Query().Get(part.name)
		if raw == "" {
			continue
		}
		val, err := strconv.Atoi(raw)
		if err != nil {
			WriteAPIError(w, http.StatusBadRequest, "invalid_path", "Invalid "+part.name+" value")
			return services.TimelinePath{}, false
		}
		*part.dst = &val
	}
	return path, true
}
