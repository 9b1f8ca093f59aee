package ratings

import (
	"context"
	"database/sql"
	"fmt"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Histogram counts 1..5 star ratings for a catalog key across every
// library. Values outside the range are skipped; the data model should
// never produce them.
func (r *Repo) Histogram(ctx context.Context, key string) ([5]int, error) {
	var dist [5]int

	rows, err := r.DB.QueryContext(ctx, `
		SELECT rating
		FROM books
		WHERE key = ? AND rating IS NOT NULL
	`, key)
	if err != nil {
		return dist, fmt.Errorf("rating histogram: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return dist, fmt.Errorf("scan rating: %w", err)
		}
		if rating >= 1 && rating <= 5 {
			dist[rating-1]++
		}
	}
	if err := rows.Err(); err != nil {
		return dist, fmt.Errorf("rows err: %w", err)
	}
	return dist, nil
}

// Average derives the mean rating from a histogram, 0 when empty.
func Average(dist [5]int) float64 {
	var sum, count int
	for i, n := range dist {
		sum += (i + 1) * n
		count += n
	}
	if count == 0 {
		return 0
	}
	return float64(sum) / float64(count)
}
