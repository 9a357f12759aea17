package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidGranularity(t *testing.T) {
	for _, g := range []string{"year", "month", "day", "hour"} {
		assert.True(t, IsValidGranularity(g), g)
	}
	for _, g := range []string{"", "week", "minute", "Year"} {
		assert.False(t, IsValidGranularity(g), g)
	}
}

func TestBucketRange(t *testing.T) {
	tests := []struct {
		gran      Granularity
		key       string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{GranularityYear, "2024",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{GranularityMonth, "2024-06",
			time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		{GranularityMonth, "2024-12",
			time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{GranularityDay, "2024-02-29",
			time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{GranularityHour, "2024-06-15 23",
			time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.gran)+"/"+tt.key, func(t *testing.T) {
			start, end, err := tt.gran.BucketRange(tt.key)
			require.NoError(t, err)
			assert.True(t, start.Equal(tt.wantStart), "start %s", start)
			assert.True(t, end.Equal(tt.wantEnd), "end %s", end)
		})
	}
}

func TestBucketRangeRejectsMalformedKeys(t *testing.T) {
	_, _, err := GranularityMonth.BucketRange("June 2024")
	assert.Error(t, err)
	_, _, err = GranularityDay.BucketRange("2024-06")
	assert.Error(t, err)
	_, _, err = Granularity("week").BucketRange("2024-06")
	assert.Error(t, err)
}

func TestBucketMidpoint(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	// June has 30 days; its center is the 15th/16th boundary
	assert.Equal(t, time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), BucketMidpoint(start, end))
}
