package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/calderbank/lendermatch/internal/config"
	"github.com/calderbank/lendermatch/internal/storage"
)

// validate checks model structs supplied through CLI flags before they
// reach storage.
var validate = validator.New()

// openStorage opens the configured database and runs pending migrations.
// The returned cleanup func must be called when the command finishes.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, func(), error) {
	dbPath, err := config.DatabasePath()
	if err != nil {
		return nil, nil, err
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, func() { _ = store.Close() }, nil
}

// printJSON renders any value as indented JSON on stdout.
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// floatFlag parses an optional numeric flag value; empty means unset.
func floatFlag(value string) (*float64, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric value %q: %w", value, err)
	}
	return &f, nil
}

// intFlag parses an optional integer flag value; empty means unset.
func intFlag(value string) (*int, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid integer value %q: %w", value, err)
	}
	return &n, nil
}

// splitList turns a comma-separated flag into a clean string slice.
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
