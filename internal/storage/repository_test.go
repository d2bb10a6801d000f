package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db", "budget.db")
	repo, err := NewSQLiteRepository(dbPath, nil)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if _, ok, err := repo.Get(ctx, "expenses"); ok || err != nil {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	if err := repo.Set(ctx, "expenses", `[{"a":1}]`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := repo.Set(ctx, "expenses", `[]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, ok, err := repo.Get(ctx, "expenses")
	if err != nil || !ok || v != "[]" {
		t.Fatalf("unexpected get: v=%q ok=%v err=%v", v, ok, err)
	}
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestSQLiteRepositoryReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "budget.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(dbPath, nil)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	if err := repo.Set(ctx, "monthlyIncome", "5000"); err != nil {
		t.Fatalf("set: %v", err)
	}
	repo.Close()

	// Migrations must be idempotent on reopen
	repo, err = NewSQLiteRepository(dbPath, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	v, ok, err := repo.Get(ctx, "monthlyIncome")
	if err != nil || !ok || v != "5000" {
		t.Fatalf("unexpected value after reopen: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "budget.db")

	for i := 0; i < 2; i++ {
		version, err := RunMigrations(dbPath)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if version != 1 {
			t.Fatalf("run %d: expected schema version 1, got %d", i, version)
		}
	}
}
