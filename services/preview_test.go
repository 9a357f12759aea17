package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/photocatalog/models"
)

func unixPtr(ts time.Time) *int64 {
	v := ts.Unix()
	return &v
}

func candidate(id uint, rating int, capturedAt time.Time) models.Entry {
	return models.Entry{
		ID:         id,
		Rating:     rating,
		CapturedAt: unixPtr(capturedAt),
	}
}

var (
	juneStart = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	juneEnd   = time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	// the midpoint of June 2024 falls on the 15th/16th boundary
	juneMid = juneStart.Add(juneEnd.Sub(juneStart) / 2)
)

func TestSelectRepresentativeEmptyCandidates(t *testing.T) {
	assert.Nil(t, SelectRepresentative(nil, juneStart, juneEnd))
}

func TestSelectRepresentativeHighRatingWinsOverProximity(t *testing.T) {
	// A is unrated but 3 days from the midpoint; B is rated 4 and 10 days out.
	// The owner's rating signal must win.
	a := candidate(1, 2, juneMid.Add(-3*24*time.Hour))
	b := candidate(2, 4, juneMid.Add(-10*24*time.Hour))

	got := SelectRepresentative([]models.Entry{a, b}, juneStart, juneEnd)
	require.NotNil(t, got)
	assert.Equal(t, uint(2), got.ID)
}

func TestSelectRepresentativeMidpointFallback(t *testing.T) {
	// nobody rated >= 4, so the entry nearest the temporal center wins
	far := candidate(1, 3, juneStart.Add(24*time.Hour))
	near := candidate(2, 0, juneMid.Add(-2*time.Hour))
	alsoFar := candidate(3, 1, juneEnd.Add(-24*time.Hour))

	got := SelectRepresentative([]models.Entry{far, near, alsoFar}, juneStart, juneEnd)
	require.NotNil(t, got)
	assert.Equal(t, uint(2), got.ID)
}

func TestSelectRepresentativeEqualDistanceTiebreak(t *testing.T) {
	// same distance either side of the midpoint: the smaller surrogate id wins
	after := candidate(7, 0, juneMid.Add(6*time.Hour))
	before := candidate(3, 0, juneMid.Add(-6*time.Hour))

	got := SelectRepresentative([]models.Entry{after, before}, juneStart, juneEnd)
	require.NotNil(t, got)
	assert.Equal(t, uint(3), got.ID)
}

func TestSelectRepresentativeHighRatedTiebreak(t *testing.T) {
	first := candidate(10, 5, juneMid.Add(-12*time.Hour))
	second := candidate(4, 4, juneMid.Add(12*time.Hour))

	got := SelectRepresentative([]models.Entry{first, second}, juneStart, juneEnd)
	require.NotNil(t, got)
	assert.Equal(t, uint(4), got.ID)
}

func TestSelectRepresentativeDeterministic(t *testing.T) {
	candidates := []models.Entry{
		candidate(1, 0, juneStart.Add(48*time.Hour)),
		candidate(2, 5, juneStart.Add(100*time.Hour)),
		candidate(3, 4, juneEnd.Add(-100*time.Hour)),
		candidate(4, 2, juneMid),
	}

	first := SelectRepresentative(candidates, juneStart, juneEnd)
	require.NotNil(t, first)
	for i := 0; i < 10; i++ {
		again := SelectRepresentative(candidates, juneStart, juneEnd)
		require.NotNil(t, again)
		assert.Equal(t, first.ID, again.ID)
	}
}
