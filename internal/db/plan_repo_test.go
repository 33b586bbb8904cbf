package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"saasterkit/internal/types"
)

func TestPlanRepo_GetByVariantID_Found(t *testing.T) {
	dbtx := new(mockDBTX)
	repo := NewPlanRepo(dbtx, nil)

	dbtx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{
			scanFn: func(dest ...any) error {
				setScan(dest[0], "plan_1")
				setScan(dest[1], int64(42))
				setScan(dest[2], "Pro")
				return nil
			},
		})

	plan, err := repo.GetByVariantID(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, "plan_1", plan.ID)
	assert.Equal(t, int64(42), plan.VariantID)
	assert.Equal(t, "Pro", plan.Name)
}

func TestPlanRepo_GetByVariantID_Unknown(t *testing.T) {
	dbtx := new(mockDBTX)
	repo := NewPlanRepo(dbtx, nil)

	dbtx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: pgx.ErrNoRows})

	// An unknown variant is (nil, nil): the catalog simply has no mapping.
	plan, err := repo.GetByVariantID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestPlanRepo_GetByVariantID_DBError(t *testing.T) {
	dbtx := new(mockDBTX)
	repo := NewPlanRepo(dbtx, nil)

	dbtx.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanErr: errors.New("connection refused")})

	_, err := repo.GetByVariantID(context.Background(), 42)
	require.Error(t, err)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
}
