// Package storagetest holds the behaviour every storage.Backend must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/FranksOps/shopscout/internal/product"
	"github.com/FranksOps/shopscout/internal/storage"
)

// Records returns three records created an hour apart, oldest first.
func Records(now time.Time) []*storage.Record {
	return []*storage.Record{
		{
			ID:    "rec-1",
			Query: "tote bag",
			Record: product.Record{
				Title:       "Hand Painted Tote Bag",
				Price:       "$198.00",
				URL:         "https://www.anuschkaleather.com/products/tote-bag",
				ImageURL:    "https://cdn.example/tote.jpg",
				Description: "Genuine leather,\n\"hand painted\".",
			},
			ImageSource: product.ImageJSONLD,
			CreatedAt:   now.Add(-3 * time.Hour),
		},
		{
			ID:    "rec-2",
			Query: "tote bag",
			Record: product.Record{
				Title: "Tote Charm",
				Price: product.PriceUnavailable,
				URL:   "https://www.anuschkaleather.com/products/tote-charm",
			},
			ImageSource: product.ImageNone,
			CreatedAt:   now.Add(-2 * time.Hour),
		},
		{
			ID:    "rec-3",
			Query: "wallet",
			Record: product.Record{
				Title:    "Wallet",
				Price:    "$98.00",
				URL:      "https://www.anuschkaleather.com/products/wallet",
				ImageURL: "https://cdn.example/wallet.jpg",
			},
			ImageSource: product.ImageOpenGraph,
			CreatedAt:   now.Add(-1 * time.Hour),
		},
	}
}

// Run saves Records into b and checks round-tripping, filters, ordering and windowing.
func Run(t *testing.T, b storage.Backend) {
	t.Helper()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	records := Records(now)

	if err := b.Save(ctx, records[0], records[1]); err != nil {
		t.Fatalf("failed to save records: %v", err)
	}
	if err := b.Save(ctx, records[2]); err != nil {
		t.Fatalf("failed to save record: %v", err)
	}

	all, err := b.Query(ctx, storage.Filter{})
	if err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].ID != "rec-3" || all[2].ID != "rec-1" {
		t.Errorf("expected newest first, got %s, %s, %s", all[0].ID, all[1].ID, all[2].ID)
	}

	got := all[2]
	want := records[0]
	if got.Query != want.Query || got.Record != want.Record || got.ImageSource != want.ImageSource {
		t.Errorf("record did not round-trip:\n got %+v\nwant %+v", got, want)
	}
	// some drivers keep less than nanosecond precision
	if got.CreatedAt.Unix() != want.CreatedAt.Unix() {
		t.Errorf("expected created_at %v, got %v", want.CreatedAt, got.CreatedAt)
	}

	byQuery, err := b.Query(ctx, storage.Filter{Query: "tote bag"})
	if err != nil {
		t.Fatalf("failed to query by query: %v", err)
	}
	if len(byQuery) != 2 || byQuery[0].ID != "rec-2" {
		t.Errorf("unexpected query filter result %v", ids(byQuery))
	}

	byURL, err := b.Query(ctx, storage.Filter{URL: "https://www.anuschkaleather.com/products/wallet"})
	if err != nil {
		t.Fatalf("failed to query by url: %v", err)
	}
	if len(byURL) != 1 || byURL[0].ID != "rec-3" {
		t.Errorf("unexpected url filter result %v", ids(byURL))
	}

	since := now.Add(-150 * time.Minute)
	recent, err := b.Query(ctx, storage.Filter{Since: &since})
	if err != nil {
		t.Fatalf("failed to query by since: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected 2 recent records, got %v", ids(recent))
	}

	window, err := b.Query(ctx, storage.Filter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("failed to query window: %v", err)
	}
	if len(window) != 1 || window[0].ID != "rec-2" {
		t.Errorf("unexpected window %v", ids(window))
	}
}

func ids(records []*storage.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
