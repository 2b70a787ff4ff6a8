package csvbackend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/FranksOps/shopscout/internal/storage"
	"github.com/FranksOps/shopscout/internal/storage/storagetest"
)

func TestCSVBackend(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "shopscout.csv")

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create CSV backend: %v", err)
	}
	defer b.Close()

	storagetest.Run(t, b)
}

func TestCSVBackend_Reopen(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "shopscout.csv")
	ctx := context.Background()

	b, err := New(filePath)
	if err != nil {
		t.Fatalf("Failed to create CSV backend: %v", err)
	}
	if err := b.Save(ctx, storage.NewRecord("tote", storagetest.Records(time.Now().UTC())[0].Record, "")); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	b.Close()

	b, err = New(filePath)
	if err != nil {
		t.Fatalf("Failed to reopen CSV backend: %v", err)
	}
	defer b.Close()

	results, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result after reopen, got %d", len(results))
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if n := strings.Count(string(data), "id,query,title"); n != 1 {
		t.Errorf("Expected header written once, found %d", n)
	}
}

func TestCSVBackend_EmptyFile(t *testing.T) {
	b, err := New(filepath.Join(t.TempDir(), "empty.csv"))
	if err != nil {
		t.Fatalf("Failed to create CSV backend: %v", err)
	}
	defer b.Close()

	results, err := b.Query(context.Background(), storage.Filter{})
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}
