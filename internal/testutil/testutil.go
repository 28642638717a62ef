// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/projecthub/projecthub-api/internal/database"
	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewDB opens a migrated in-memory SQLite database that lives for the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db, Logger()))
	return db
}

// CreateUser inserts a verified user with the given email.
func CreateUser(t testing.TB, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := &models.User{
		Name:            name,
		Email:           email,
		PasswordHash:    "hashed",
		Phone:           "+10000000000",
		Role:            models.RoleUser,
		IsEmailVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
