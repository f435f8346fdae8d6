package repository

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"sociopedia/internal/database"
	"sociopedia/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a migrated in-memory SQLite database private to t.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, repo UserRepository, first string) *models.User {
	t.Helper()
	u := &models.User{
		FirstName: first,
		LastName:  "Tester",
		Email:     fmt.Sprintf("%s@example.com", first),
		Password:  "hash",
		Location:  "Lisbon",
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}
