package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saqibtanveer-dev/fha-examportal-sub001/internal/model"
)

// GradingScaleRepository reads the school's configured grading bands.
// Read-only input to result computation.
type GradingScaleRepository struct {
	pool *pgxpool.Pool
}

// NewGradingScaleRepository creates a new GradingScaleRepository.
func NewGradingScaleRepository(pool *pgxpool.Pool) *GradingScaleRepository {
	return &GradingScaleRepository{pool: pool}
}

// ListBands retrieves the grading bands ordered high-to-low.
func (r *GradingScaleRepository) ListBands(ctx context.Context) ([]model.GradingBand, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT label, min_percent, max_percent, position
		 FROM grading_bands
		 ORDER BY position ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bands []model.GradingBand
	for rows.Next() {
		var b model.GradingBand
		if err := rows.Scan(&b.Label, &b.MinPercent, &b.MaxPercent, &b.Position); err != nil {
			return nil, err
		}
		bands = append(bands, b)
	}
	return bands, rows.Err()
}
