package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// BucketCount is one row of the timeline's grouped-count query: a bucket key
// (truncated capture time) and how many readable entries fall into it.
type BucketCount struct {
	Key   string
	Count int64
}

// CountBuckets runs the single aggregation query behind a timeline request:
// readable entries with a capture time inside [from, to), grouped by the
// truncated capture time, in chronological order. The readable predicate is
// ANDed into the query so counting respects visibility without materializing
// rows; nil range bounds leave that side unbounded.
func CountBuckets(ctx context.Context, db *sql.DB, gran Granularity, readable sq.Sqlizer, from, to *time.Time) ([]BucketCount, error) {
	format := gran.SQLiteFormat()
	if format == "" {
		return nil, fmt.Errorf("invalid granularity %q", string(gran))
	}

	queryBuilder := psql.Select(
		fmt.Sprintf("strftime('%s', datetime(captured_at, 'unixepoch')) AS bucket", format),
		"COUNT(*) AS entry_count",
	).
		From("entries").
		Where("captured_at IS NOT NULL").
		Where(readable)

	if from != nil {
		queryBuilder = queryBuilder.Where(sq.GtOrEq{"captured_at": from.Unix()})
	}
	if to != nil {
		queryBuilder = queryBuilder.Where(sq.Lt{"captured_at": to.Unix()})
	}

	queryBuilder = queryBuilder.GroupBy("bucket").OrderBy("bucket ASC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for CountBuckets: %w", err)
	}

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute bucket count query: %w", err)
	}
	defer rows.Close()

	var counts []BucketCount
	for rows.Next() {
		var bc BucketCount
		if err := rows.Scan(&bc.Key, &bc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan bucket count row: %w", err)
		}
		counts = append(counts, bc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bucket count query failed mid-scan: %w", err)
	}
	return counts, nil
}
