package sqlite

import (
	"testing"

	"github.com/FranksOps/shopscout/internal/storage/storagetest"
)

func TestSQLiteBackend(t *testing.T) {
	// Use an in-memory database for testing
	b, err := New("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}
	defer b.Close()

	storagetest.Run(t, b)
}

func TestSQLiteBackend_File(t *testing.T) {
	b, err := New(t.TempDir() + "/shopscout.db")
	if err != nil {
		t.Fatalf("Failed to create SQLite backend: %v", err)
	}
	defer b.Close()

	storagetest.Run(t, b)
}
