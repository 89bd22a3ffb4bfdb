package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"blogfeed/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowRepository_CreateSQL(t *testing.T) {
	tests := []struct {
		name         string
		result       func(sqlmock.Sqlmock)
		expectedCode string
	}{
		{
			name: "Inserted",
			result: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO follows (user_id, author_id, created_at)`)).
					WithArgs(1, 2, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "Conflict",
			result: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT (user_id, author_id) DO NOTHING`)).
					WithArgs(1, 2, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedCode: models.CodeAlreadyExists,
		},
		{
			name: "Database Error",
			result: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO follows`)).
					WithArgs(1, 2, sqlmock.AnyArg()).
					WillReturnError(errors.New("boom"))
			},
			expectedCode: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tt.result(mock)

			err := NewFollowRepository(db).Create(context.Background(), 1, 2)
			if tt.expectedCode == "" {
				assert.NoError(t, err)
			} else {
				assert.True(t, models.HasCode(err, tt.expectedCode), "got %v", err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFollowRepository_Lifecycle(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	reader := createUser(t, db, "reader")
	author := createUser(t, db, "author")

	require.NoError(t, repo.Create(ctx, reader.ID, author.ID))

	err := repo.Create(ctx, reader.ID, author.ID)
	assert.True(t, models.HasCode(err, models.CodeAlreadyExists))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	exists, err := repo.Exists(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, author.ID, reader.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.Delete(ctx, reader.ID, author.ID))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	err = repo.Delete(ctx, reader.ID, author.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestFollowRepository_DeleteOnlyTargetsPair(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	a := createUser(t, db, "a")
	b := createUser(t, db, "b")
	c := createUser(t, db, "c")

	require.NoError(t, repo.Create(ctx, a.ID, b.ID))
	require.NoError(t, repo.Create(ctx, a.ID, c.ID))
	require.NoError(t, repo.Create(ctx, c.ID, b.ID))

	require.NoError(t, repo.Delete(ctx, a.ID, b.ID))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	exists, err := repo.Exists(ctx, c.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}
