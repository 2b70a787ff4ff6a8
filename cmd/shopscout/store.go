package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/FranksOps/shopscout/internal/storage"
	"github.com/FranksOps/shopscout/internal/storage/csvbackend"
	"github.com/FranksOps/shopscout/internal/storage/jsonbackend"
	"github.com/FranksOps/shopscout/internal/storage/postgres"
	"github.com/FranksOps/shopscout/internal/storage/sqlite"
)

// parseStoreSpec splits a --store value of the form kind:target.
func parseStoreSpec(spec string) (kind, target string, err error) {
	kind, target, ok := strings.Cut(spec, ":")
	if !ok || kind == "" || target == "" {
		return "", "", fmt.Errorf("invalid store %q, want kind:target (e.g. sqlite:shopscout.db)", spec)
	}
	return kind, target, nil
}

func openStore(ctx context.Context, kind, target string) (storage.Backend, error) {
	var (
		b   storage.Backend
		err error
	)
	switch kind {
	case "csv":
		b, err = csvbackend.New(target)
	case "json":
		b, err = jsonbackend.New(target)
	case "sqlite":
		b, err = sqlite.New(target)
	case "postgres":
		b, err = postgres.New(ctx, target)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", kind, err)
	}
	return b, nil
}
