// Package storage persists product records found by searches.
package storage

import (
	"context"
	"time"

	"github.com/FranksOps/shopscout/internal/product"
	"github.com/google/uuid"
)

// Record is one product as stored, with the search that found it.
type Record struct {
	ID    string `json:"id"`
	Query string `json:"query"`
	product.Record
	ImageSource product.ImageSource `json:"image_source"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NewRecord wraps rec for storage under a fresh ID.
func NewRecord(query string, rec product.Record, src product.ImageSource) *Record {
	return &Record{
		ID:          uuid.New().String(),
		Query:       query,
		Record:      rec,
		ImageSource: src,
		CreatedAt:   time.Now().UTC(),
	}
}

// Filter allows querying for specific Records.
type Filter struct {
	Query  string
	URL    string
	Since  *time.Time
	Limit  int
	Offset int
}

// Matches reports whether r passes the filter's predicates. Limit and Offset
// are not considered.
func (f Filter) Matches(r *Record) bool {
	if f.Query != "" && r.Query != f.Query {
		return false
	}
	if f.URL != "" && r.URL != f.URL {
		return false
	}
	if f.Since != nil && r.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// Window applies Offset and Limit to records already in result order.
func (f Filter) Window(records []*Record) []*Record {
	if f.Offset > 0 {
		if f.Offset >= len(records) {
			return []*Record{}
		}
		records = records[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(records) {
		records = records[:f.Limit]
	}
	return records
}

// Backend defines the interface for storing and querying product records.
// Query returns the newest records first.
type Backend interface {
	Save(ctx context.Context, records ...*Record) error
	Query(ctx context.Context, filter Filter) ([]*Record, error)
	Close() error
}
