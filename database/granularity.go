package database

import (
	"fmt"
	"time"
)

// Granularity is the bucket size of a timeline request.
type Granularity string

const (
	GranularityYear  Granularity = "year"
	GranularityMonth Granularity = "month"
	GranularityDay   Granularity = "day"
	GranularityHour  Granularity = "hour"
)

// IsValidGranularity checks if a string is a valid granularity constant
func IsValidGranularity(g string) bool {
	switch Granularity(g) {
	case GranularityYear, GranularityMonth, GranularityDay, GranularityHour:
		return true
	default:
		return false
	}
}

// SQLiteFormat returns the strftime format that truncates a timestamp to this
// granularity's bucket key. Truncation happens in UTC ('unixepoch').
func (g Granularity) SQLiteFormat() string {
	switch g {
	case GranularityYear:
		return "%Y"
	case GranularityMonth:
		return "%Y-%m"
	case GranularityDay:
		return "%Y-%m-%d"
	case GranularityHour:
		return "%Y-%m-%d %H"
	}
	return ""
}

// GoLayout returns the time layout matching SQLiteFormat, used to parse bucket
// keys back into instants.
func (g Granularity) GoLayout() string {
	switch g {
	case GranularityYear:
		return "2006"
	case GranularityMonth:
		return "2006-01"
	case GranularityDay:
		return "2006-01-02"
	case GranularityHour:
		return "2006-01-02 15"
	}
	return ""
}

// BucketRange resolves a bucket key (as produced by SQLiteFormat) into its
// half-open UTC range [start, end).
func (g Granularity) BucketRange(key string) (time.Time, time.Time, error) {
	layout := g.GoLayout()
	if layout == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid granularity %q", string(g))
	}
	start, err := time.ParseInLocation(layout, key, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse bucket key %q as %s: %w", key, string(g), err)
	}
	return start, g.next(start), nil
}

func (g Granularity) next(start time.Time) time.Time {
	switch g {
	case GranularityYear:
		return start.AddDate(1, 0, 0)
	case GranularityMonth:
		return start.AddDate(0, 1, 0)
	case GranularityDay:
		return start.AddDate(0, 0, 1)
	case GranularityHour:
		return start.Add(time.Hour)
	}
	return start
}

// BucketMidpoint returns the temporal center of a half-open bucket range,
// the anchor for representative-preview selection.
func BucketMidpoint(start, end time.Time) time.Time {
	return start.Add(end.Sub(start) / 2)
}
