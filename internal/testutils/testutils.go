package testutils

import (
	"context"
	"testing"

	"github.com/region23/calendar/internal/storage/sqlite"
	"github.com/region23/calendar/pkg/logger"
)

// SetupTestDB создает in-memory SQLite базу данных для тестов
func SetupTestDB(t *testing.T) *sqlite.SQLiteStorage {
	t.Helper()

	storage, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		storage.Close()
	})

	return storage
}

// SetupTestLogger создает тестовый логгер
func SetupTestLogger() *logger.Logger {
	return logger.NewNop()
}

// TestContext создает контекст для тестов
func TestContext() context.Context {
	return context.Background()
}
