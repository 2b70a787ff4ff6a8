package csvbackend

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/FranksOps/shopscout/internal/product"
	"github.com/FranksOps/shopscout/internal/storage"
)

// ensure csvBackend implements storage.Backend
var _ storage.Backend = (*csvBackend)(nil)

type csvBackend struct {
	mu   sync.Mutex
	file *os.File
}

// headers defines the CSV column order
var headers = []string{
	"id",
	"query",
	"title",
	"price",
	"url",
	"image_url",
	"description",
	"image_source",
	"created_at",
}

// New creates a new CSV-backed storage.Backend.
func New(filePath string) (storage.Backend, error) {
	// Open file for appending, create if it doesn't exist
	f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("csvbackend: open: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("csvbackend: stat: %w", err)
	}

	if info.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(headers); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvbackend: write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("csvbackend: write header: %w", err)
		}
	}

	return &csvBackend{
		file: f,
	}, nil
}

func (b *csvBackend) Save(ctx context.Context, records ...*storage.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Ensure we're at the end of the file for appending (just in case)
	if _, err := b.file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("csvbackend: seek: %w", err)
	}

	w := csv.NewWriter(b.file)
	for _, r := range records {
		row := []string{
			r.ID,
			r.Query,
			r.Title,
			r.Price,
			r.URL,
			r.ImageURL,
			r.Description,
			string(r.ImageSource),
			r.CreatedAt.Format(time.RFC3339Nano),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csvbackend: write: %w", err)
		}
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("csvbackend: flush: %w", err)
	}

	return nil
}

func (b *csvBackend) Query(ctx context.Context, filter storage.Filter) ([]*storage.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Seek to the beginning of the file to read all entries
	if _, err := b.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("csvbackend: seek: %w", err)
	}
	defer func() {
		// Restore pointer to end for writing
		_, _ = b.file.Seek(0, io.SeekEnd)
	}()

	r := csv.NewReader(b.file)

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []*storage.Record{}, nil
		}
		return nil, fmt.Errorf("csvbackend: read header: %w", err)
	}

	var matched []*storage.Record
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvbackend: read: %w", err)
		}

		if len(row) != len(headers) {
			continue // skip malformed rows
		}

		createdAt, _ := time.Parse(time.RFC3339Nano, row[8])

		rec := &storage.Record{
			ID:    row[0],
			Query: row[1],
			Record: product.Record{
				Title:       row[2],
				Price:       row[3],
				URL:         row[4],
				ImageURL:    row[5],
				Description: row[6],
			},
			ImageSource: product.ImageSource(row[7]),
			CreatedAt:   createdAt,
		}

		if filter.Matches(rec) {
			matched = append(matched, rec)
		}
	}

	// Order by created_at DESC (reverse the slice)
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}

	return filter.Window(matched), nil
}

func (b *csvBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}
