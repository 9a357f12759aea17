package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/camden-git/photocatalog/database"
	"github.com/camden-git/photocatalog/models"
	"github.com/camden-git/photocatalog/repository"
	"github.com/camden-git/photocatalog/visibility"
)

var (
	// ErrRangeTooLarge rejects hour-granularity requests spanning more days
	// than the configured guard allows; such queries are the one expensive
	// operation in the catalog and are bounded up front instead of executed.
	ErrRangeTooLarge = errors.New("requested range too large for hour granularity")

	// ErrInvalidTimelinePath marks a date path that is not a valid
	// year / year+month / year+month+day prefix.
	ErrInvalidTimelinePath = errors.New("invalid timeline path")
)

// TimelinePath is the optional partial date prefix scoping an aggregation,
// e.g. year+month to drill into the days of one month.
type TimelinePath struct {
	Year  *int
	Month *int
	Day   *int
}

// Range resolves the path into a half-open UTC range. An empty path returns
// nil bounds (all time). Deeper fields require the coarser ones above them.
func (p TimelinePath) Range() (*time.Time, *time.Time, error) {
	if p.Year == nil {
		if p.Month != nil || p.Day != nil {
			return nil, nil, fmt.Errorf("%w: month/day require a year", ErrInvalidTimelinePath)
		}
		return nil, nil, nil
	}
	if p.Month == nil && p.Day != nil {
		return nil, nil, fmt.Errorf("%w: day requires a month", ErrInvalidTimelinePath)
	}

	year := *p.Year
	month, day := 1, 1
	if p.Month != nil {
		month = *p.Month
		if month < 1 || month > 12 {
			return nil, nil, fmt.Errorf("%w: month %d out of range", ErrInvalidTimelinePath, month)
		}
	}
	if p.Day != nil {
		day = *p.Day
	}

	start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (June 31 becomes July 1); reject paths
	// that do not round-trip
	if start.Year() != year || int(start.Month()) != month || start.Day() != day {
		return nil, nil, fmt.Errorf("%w: no such date %04d-%02d-%02d", ErrInvalidTimelinePath, year, month, day)
	}

	var end time.Time
	switch {
	case p.Day != nil:
		end = start.AddDate(0, 0, 1)
	case p.Month != nil:
		end = start.AddDate(0, 1, 0)
	default:
		end = start.AddDate(1, 0, 0)
	}
	return &start, &end, nil
}

// Bucket is one timeline aggregation unit: a labeled time bucket, how many
// readable entries it holds, and the representative entry chosen for it.
type Bucket struct {
	Label   string        `json:"bucket"`
	Count   int64         `json:"count"`
	Preview *EntrySummary `json:"preview,omitempty"`
}

// EntrySummary is the projection of an entry returned inside timeline buckets.
type EntrySummary struct {
	ContentHash   string           `json:"content_hash"`
	OwnerID       uint             `json:"owner_id"`
	CapturedAt    *int64           `json:"captured_at,omitempty"`
	Visibility    visibility.Level `json:"visibility"`
	Rating        int              `json:"rating"`
	Width         *int             `json:"width,omitempty"`
	Height        *int             `json:"height,omitempty"`
	ThumbnailPath *string          `json:"thumbnail_path,omitempty"`
}

func toEntrySummary(e *models.Entry) *EntrySummary {
	if e == nil {
		return nil
	}
	return &EntrySummary{
		ContentHash:   e.ContentHash,
		OwnerID:       e.OwnerID,
		CapturedAt:    e.CapturedAt,
		Visibility:    e.Visibility,
		Rating:        e.Rating,
		Width:         e.Width,
		Height:        e.Height,
		ThumbnailPath: e.ThumbnailPath,
	}
}

// TimelineService builds the hierarchical timeline: one grouped-count query
// under the caller's visibility predicate, then a representative pick per
// non-empty bucket. It holds no cross-request state; every call runs against
// the shared connection pool.
type TimelineService struct {
	SQLDB            *sql.DB
	Entries          repository.EntryRepositoryInterface
	Policy           visibility.Policy
	HourRangeMaxDays int
}

func NewTimelineService(sqlDB *sql.DB, entries repository.EntryRepositoryInterface, policy visibility.Policy, hourRangeMaxDays int) *TimelineService {
	return &TimelineService{
		SQLDB:            sqlDB,
		Entries:          entries,
		Policy:           policy,
		HourRangeMaxDays: hourRangeMaxDays,
	}
}

// Aggregate returns the chronological buckets at the requested granularity
// within the path's implied range, restricted to what the caller may read.
// Buckets with no readable entries are omitted entirely. The whole call is
// read-only and aborts cleanly on context cancellation.
func (s *TimelineService) Aggregate(ctx context.Context, gran database.Granularity, path TimelinePath, caller visibility.Caller) ([]Bucket, error) {
	from, to, err := path.Range()
	if err != nil {
		return nil, err
	}

	if gran == database.GranularityHour && s.HourRangeMaxDays > 0 {
		if from == nil || to == nil {
			return nil, ErrRangeTooLarge
		}
		if to.Sub(*from) > time.Duration(s.HourRangeMaxDays)*24*time.Hour {
			return nil, ErrRangeTooLarge
		}
	}

	readable := s.Policy.ReadablePredicate(caller)
	counts, err := database.CountBuckets(ctx, s.SQLDB, gran, readable, from, to)
	if err != nil {
		return nil, fmt.Errorf("timeline aggregation failed: %w", err)
	}

	buckets := make([]Bucket, 0, len(counts))
	for _, bc := range counts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start, end, err := gran.BucketRange(bc.Key)
		if err != nil {
			return nil, fmt.Errorf("timeline aggregation produced unreadable bucket key: %w", err)
		}

		candidates, err := s.Entries.ListRange(ctx, caller, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch candidates for bucket %s: %w", bc.Key, err)
		}
		if len(candidates) == 0 {
			// a concurrent delete can empty the bucket between the count and
			// the candidate fetch; such a bucket no longer exists for the caller
			continue
		}

		representative := SelectRepresentative(candidates, start, end)
		buckets = append(buckets, Bucket{
			Label:   bc.Key,
			Count:   bc.Count,
			Preview: toEntrySummary(representative),
		})
	}

	return buckets, nil
}
