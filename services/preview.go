package services

import (
	"time"

	"github.com/camden-git/photocatalog/database"
	"github.com/camden-git/photocatalog/models"
)

// SelectRepresentative picks the single entry that visually stands in for a
// bucket. Highly rated entries (rating >= 4) always win over unrated ones; the
// owner asserted those matter. Within the winning partition the entry captured
// closest to the bucket's temporal midpoint is chosen, which avoids the
// import-order bias that "first" or "last" would introduce. Exact-distance
// ties go to the smaller surrogate id, making the choice total and
// reproducible.
//
// Candidates must be non-empty and carry a capture time; the aggregator never
// calls this for empty buckets. A nil return only happens on that contract
// violation.
func SelectRepresentative(candidates []models.Entry, bucketStart, bucketEnd time.Time) *models.Entry {
	if len(candidates) == 0 {
		return nil
	}

	midpoint := database.BucketMidpoint(bucketStart, bucketEnd).Unix()

	if best := closestToMidpoint(candidates, midpoint, true); best != nil {
		return best
	}
	return closestToMidpoint(candidates, midpoint, false)
}

func closestToMidpoint(candidates []models.Entry, midpoint int64, onlyHighlyRated bool) *models.Entry {
	var best *models.Entry
	var bestDistance int64

	for i := range candidates {
		candidate := &candidates[i]
		if onlyHighlyRated && !candidate.IsRatedHighly() {
			continue
		}
		if candidate.CapturedAt == nil {
			continue
		}

		distance := *candidate.CapturedAt - midpoint
		if distance < 0 {
			distance = -distance
		}

		if best == nil || distance < bestDistance || (distance == bestDistance && candidate.ID < best.ID) {
			best = candidate
			bestDistance = distance
		}
	}
	return best
}
