package db

import (
	"context"
	"time"

	"floodroute/internal/risk"
	"floodroute/internal/types"
)

// AssessmentRepository provides data access for the risk_assessments table.
// The table is the system of record for scoring outcomes; hazard radii are
// never stored here, they are derived per request.
type AssessmentRepository struct {
	db DBTX
}

// NewAssessmentRepository creates an AssessmentRepository backed by the given
// database connection (pool or transaction).
func NewAssessmentRepository(db DBTX) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// assessmentColumns is the standard column set for assessment reads.
const assessmentColumns = `id, district, latitude, longitude, final_score, risk_level, recommendation, calculated_at`

// Insert persists a risk assessment and populates its generated ID and
// calculated_at timestamp. The final score is clamped into the persisted
// [1,10] range before writing.
func (r *AssessmentRepository) Insert(ctx context.Context, a *types.RiskAssessment) error {
	const q = `
		INSERT INTO risk_assessments (district, latitude, longitude, final_score, risk_level, recommendation)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, calculated_at`

	score := risk.ClampPersistedScore(a.FinalScore)
	err := r.db.QueryRow(ctx, q,
		a.District,
		a.Latitude,
		a.Longitude,
		score,
		a.RiskLevel,
		a.Recommendation,
	).Scan(&a.ID, &a.CalculatedAt)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "inserting risk assessment", err)
	}
	a.FinalScore = score
	return nil
}

// GetRecent returns the most recent limit assessments, newest first. These
// form the hazard basis for route filtering. An empty table is a valid state
// and yields an empty slice.
func (r *AssessmentRepository) GetRecent(ctx context.Context, limit int) ([]types.RiskAssessment, error) {
	if limit <= 0 {
		limit = 5
	}
	const q = `
		SELECT ` + assessmentColumns + `
		FROM risk_assessments
		ORDER BY id DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, q, limit)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "listing recent assessments", err)
	}
	defer rows.Close()

	out := make([]types.RiskAssessment, 0, limit)
	for rows.Next() {
		var a types.RiskAssessment
		if err := rows.Scan(
			&a.ID, &a.District, &a.Latitude, &a.Longitude,
			&a.FinalScore, &a.RiskLevel, &a.Recommendation, &a.CalculatedAt,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "scanning assessment row", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "iterating assessment rows", err)
	}
	return out, nil
}

// ListOlderThan returns assessments calculated before the cutoff, oldest
// first, up to limit rows. Used by the archiver.
func (r *AssessmentRepository) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]types.RiskAssessment, error) {
	const q = `
		SELECT ` + assessmentColumns + `
		FROM risk_assessments
		WHERE calculated_at < $1
		ORDER BY id ASC
		LIMIT $2`

	rows, err := r.db.Query(ctx, q, cutoff, limit)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "listing aged assessments", err)
	}
	defer rows.Close()

	var out []types.RiskAssessment
	for rows.Next() {
		var a types.RiskAssessment
		if err := rows.Scan(
			&a.ID, &a.District, &a.Latitude, &a.Longitude,
			&a.FinalScore, &a.RiskLevel, &a.Recommendation, &a.CalculatedAt,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "scanning assessment row", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "iterating assessment rows", err)
	}
	return out, nil
}

// DeleteByIDs removes the given assessments after they have been archived.
// Returns the number of rows deleted.
func (r *AssessmentRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const q = `DELETE FROM risk_assessments WHERE id = ANY($1)`

	tag, err := r.db.Exec(ctx, q, ids)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "deleting archived assessments", err)
	}
	return tag.RowsAffected(), nil
}
