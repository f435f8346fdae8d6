package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"sociopedia/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name          string
		userID        uint
		mockBehavior  func()
		expectedName  string
		expectedCode  string
		expectedEdges []uint
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "first_name", "email", "password"}).
					AddRow(1, "Ada", "ada@example.com", "hash")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT "friend_id" FROM "friendships" WHERE user_id = $1 ORDER BY friend_id ASC`)).
					WithArgs(1).
					WillReturnRows(sqlmock.NewRows([]string{"friend_id"}).AddRow(2).AddRow(5))
			},
			expectedName:  "Ada",
			expectedEdges: []uint{2, 5},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
		{
			name:   "Driver Failure",
			userID: 3,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
					WillReturnError(errors.New("connection reset"))
			},
			expectedCode: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.expectedCode, models.ErrorCode(err))
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.expectedName, user.FirstName)
				assert.Equal(t, tt.expectedEdges, user.Friends)
				assert.Empty(t, user.Password)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Create_UniqueViolationIsConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{FirstName: "Ada", LastName: "L", Email: "ada@example.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SQLite(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	ada := createUser(t, repo, "ada")
	assert.NotZero(t, ada.ID)
	assert.Equal(t, []uint{}, ada.Friends)

	t.Run("duplicate email is conflict", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{FirstName: "Ada", LastName: "Two", Email: "ada@example.com", Password: "x"})
		require.Error(t, err)
		assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
	})

	t.Run("get by email keeps hash", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "hash", got.Password)
	})

	t.Run("get by email absent", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("update persists profile only", func(t *testing.T) {
		u, err := repo.GetByID(ctx, ada.ID)
		require.NoError(t, err)
		u.Occupation = "Engineer"
		require.NoError(t, repo.Update(ctx, u))

		stored, err := repo.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "Engineer", stored.Occupation)
		assert.Equal(t, "hash", stored.Password, "profile updates must not clear the password")
	})

	t.Run("update missing user", func(t *testing.T) {
		err := repo.Update(ctx, &models.User{ID: 999, FirstName: "No", LastName: "One"})
		assert.True(t, models.IsNotFound(err))
	})
}
