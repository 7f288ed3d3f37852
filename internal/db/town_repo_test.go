package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"floodroute/internal/types"
)

func townRow(id, name string, lat, lon float64, state string) *mockRow {
	return &mockRow{
		scanFn: func(dest ...any) error {
			*dest[0].(*string) = id
			*dest[1].(*string) = name
			*dest[2].(*float64) = lat
			*dest[3].(*float64) = lon
			*dest[4].(**string) = &state
			return nil
		},
	}
}

func TestTownRepository_FindByName_ExactMatch(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTownRepository(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"Shah Alam"}).
		Return(townRow("LOCATION:237", "Shah Alam", 3.0738, 101.5183, "Selangor")).Once()

	got, err := repo.FindByName(ctx, "Shah Alam")
	require.NoError(t, err)
	assert.Equal(t, "LOCATION:237", got.ID)
	assert.Equal(t, "Selangor", got.StateName)
	db.AssertExpectations(t)
}

func TestTownRepository_FindByName_WidensToPrefixThenContains(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTownRepository(db)
	ctx := context.Background()

	noHit := &mockRow{scanErr: pgx.ErrNoRows}
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"Klang"}).Return(noHit).Once()
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"Klang%"}).Return(noHit).Once()
	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{"%Klang%"}).
		Return(townRow("LOCATION:12", "Port Klang", 3.005, 101.392, "Selangor")).Once()

	got, err := repo.FindByName(ctx, "Klang")
	require.NoError(t, err)
	assert.Equal(t, "Port Klang", got.Name)
	db.AssertExpectations(t)
}

func TestTownRepository_FindByName_NotFound(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTownRepository(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: pgx.ErrNoRows}).Times(3)

	_, err := repo.FindByName(ctx, "Atlantis")
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundLocation, appErr.Code)
	assert.Equal(t, "Atlantis", appErr.Details["city"])
}

func TestTownRepository_FindByName_EmptyName(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTownRepository(db)

	_, err := repo.FindByName(context.Background(), "   ")
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundLocation, appErr.Code)
	db.AssertNotCalled(t, "QueryRow")
}

func TestTownRepository_FindByName_DBError(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTownRepository(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("connection refused")})

	_, err := repo.FindByName(ctx, "Ipoh")
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}

func TestTownRepository_FindNearest(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTownRepository(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), []any{3.14, 101.69}).
		Return(townRow("LOCATION:1", "Kuala Lumpur", 3.139, 101.686, "Kuala Lumpur"))

	got, err := repo.FindNearest(ctx, 3.14, 101.69)
	require.NoError(t, err)
	assert.Equal(t, "Kuala Lumpur", got.Name)
}

func TestTownRepository_FindNearest_EmptyTable(t *testing.T) {
	db := new(mockDBTX)
	repo := NewTownRepository(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: pgx.ErrNoRows})

	_, err := repo.FindNearest(ctx, 3.14, 101.69)
	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeNotFoundLocation, appErr.Code)
}
