package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"floodroute/internal/types"
)

// --- Mock DBTX ---

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// --- Mock Row ---

type mockRow struct {
	scanErr error
	scanFn  func(dest ...any) error
}

func (r *mockRow) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	if r.scanFn != nil {
		return r.scanFn(dest...)
	}
	return nil
}

// --- Mock Rows ---

type mockRows struct {
	data    [][]any
	idx     int
	closed  bool
	scanErr error
	errVal  error
}

func newMockRows(data [][]any) *mockRows {
	return &mockRows{data: data, idx: -1}
}

func (r *mockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *mockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	row := r.data[r.idx]
	for i, d := range dest {
		switch v := d.(type) {
		case *int64:
			*v = row[i].(int64)
		case *string:
			*v = row[i].(string)
		case *float64:
			*v = row[i].(float64)
		case *time.Time:
			*v = row[i].(time.Time)
		case *types.RiskLevel:
			*v = row[i].(types.RiskLevel)
		case **string:
			if row[i] == nil {
				*v = nil
			} else {
				s := row[i].(string)
				*v = &s
			}
		}
	}
	return nil
}

func (r *mockRows) Close()                                       { r.closed = true }
func (r *mockRows) Err() error                                   { return r.errVal }
func (r *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Values() ([]any, error)                       { return nil, nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

// ============================================================
// Insert Tests
// ============================================================

func TestAssessmentRepository_Insert(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAssessmentRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	a := &types.RiskAssessment{
		District:       "Selangor",
		Latitude:       3.0738,
		Longitude:      101.5183,
		FinalScore:     6.5,
		RiskLevel:      types.RiskHigh,
		Recommendation: "High risk: Monitor official warnings, prepare evacuation plan, avoid low-lying areas.",
	}

	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*int64) = 42
			*dest[1].(*time.Time) = now
			return nil
		},
	}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).Return(row)

	err := repo.Insert(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(42), a.ID)
	assert.Equal(t, now, a.CalculatedAt)
	db.AssertExpectations(t)
}

func TestAssessmentRepository_Insert_ClampsScore(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAssessmentRepository(db)
	ctx := context.Background()

	a := &types.RiskAssessment{District: "Pahang", FinalScore: 0.2, RiskLevel: types.RiskLow}

	var insertedScore float64
	row := &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*int64) = 1
			*dest[1].(*time.Time) = time.Now()
			return nil
		},
	}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.MatchedBy(func(args []any) bool {
		insertedScore = args[3].(float64)
		return true
	})).Return(row)

	err := repo.Insert(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 1.0, insertedScore, "score below 1 is floored at the persisted minimum")
	assert.Equal(t, 1.0, a.FinalScore)
}

func TestAssessmentRepository_Insert_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAssessmentRepository(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("connection refused")})

	err := repo.Insert(ctx, &types.RiskAssessment{District: "x"})
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

// ============================================================
// GetRecent Tests
// ============================================================

func TestAssessmentRepository_GetRecent(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAssessmentRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	rows := newMockRows([][]any{
		{int64(9), "Selangor", 3.07, 101.52, 8.4, types.RiskCritical, "rec", now},
		{int64(8), "Pahang", 3.81, 103.33, 4.2, types.RiskModerate, "rec", now.Add(-time.Hour)},
	})
	db.On("Query", ctx, mock.AnythingOfType("string"), []any{5}).Return(rows, nil)

	got, err := repo.GetRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(9), got[0].ID)
	assert.Equal(t, types.RiskCritical, got[0].RiskLevel)
	assert.Equal(t, "Pahang", got[1].District)
	assert.True(t, rows.closed)
}

func TestAssessmentRepository_GetRecent_DefaultsLimit(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAssessmentRepository(db)
	ctx := context.Background()

	db.On("Query", ctx, mock.AnythingOfType("string"), []any{5}).Return(newMockRows(nil), nil)

	got, err := repo.GetRecent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	db.AssertExpectations(t)
}

func TestAssessmentRepository_GetRecent_QueryError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAssessmentRepository(db)
	ctx := context.Background()

	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(nil, errors.New("timeout"))

	_, err := repo.GetRecent(ctx, 5)
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

// ============================================================
// Archival Tests
// ============================================================

func TestAssessmentRepository_ListOlderThan(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAssessmentRepository(db)
	ctx := context.Background()

	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	rows := newMockRows([][]any{
		{int64(1), "Kelantan", 6.12, 102.25, 9.1, types.RiskCritical, "rec", cutoff.Add(-24 * time.Hour)},
	})
	db.On("Query", ctx, mock.AnythingOfType("string"), []any{cutoff, 100}).Return(rows, nil)

	got, err := repo.ListOlderThan(ctx, cutoff, 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kelantan", got[0].District)
}

func TestAssessmentRepository_DeleteByIDs(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAssessmentRepository(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{[]int64{1, 2, 3}}).
		Return(pgconn.NewCommandTag("DELETE 3"), nil)

	n, err := repo.DeleteByIDs(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestAssessmentRepository_DeleteByIDs_Empty(t *testing.T) {
	db := new(mockDBTX)
	repo := NewAssessmentRepository(db)

	n, err := repo.DeleteByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	db.AssertNotCalled(t, "Exec")
}
