package jsonbackend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/FranksOps/shopscout/internal/storage"
	"github.com/FranksOps/shopscout/internal/storage/storagetest"
)

func TestJSONBackend(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "shopscout.ndjson")

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create JSON backend: %v", err)
	}
	defer b.Close()

	storagetest.Run(t, b)
}

func TestJSONBackend_CorruptLine(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "corrupt.ndjson")
	if err := os.WriteFile(filePath, []byte("{\"id\":\"ok\"}\nnot json\n"), 0644); err != nil {
		t.Fatalf("Failed to seed file: %v", err)
	}

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create JSON backend: %v", err)
	}
	defer b.Close()

	if _, err := b.Query(context.Background(), storage.Filter{}); err == nil {
		t.Errorf("Expected decode error for corrupt line")
	}
}
