package sqlite

import (
	"context"
	"testing"

	"csvload/internal/storage"
)

// TestSQLiteStorageRegistrationUsesNewRepositoryHook verifies that the
// "sqlite" storage backend registered in init() uses the newRepository hook
// and that wrappedRepo correctly delegates Close.
func TestSQLiteStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	// Not parallel: swaps a package-level hook.
	ctx := context.Background()

	origNewRepository := newRepository
	defer func() { newRepository = origNewRepository }()

	var (
		called bool
		gotCfg Config
		closed bool

		fakeRepo = &Repository{}
	)

	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		called = true
		gotCfg = cfg
		return fakeRepo, func() { closed = true }, nil
	}

	cfg := storage.Config{Kind: "sqlite", DSN: "file:test.db?mode=memory&cache=shared"}

	repo, err := storage.New(ctx, cfg)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if !called {
		t.Fatalf("newRepository hook was not called")
	}
	if gotCfg.DSN != cfg.DSN {
		t.Errorf("hook cfg.DSN = %q, want %q", gotCfg.DSN, cfg.DSN)
	}

	w, ok := repo.(*wrappedRepo)
	if !ok {
		t.Fatalf("storage.New() type = %T, want *wrappedRepo", repo)
	}
	if w.Repository != fakeRepo {
		t.Fatalf("wrappedRepo.Repository = %p, want %p", w.Repository, fakeRepo)
	}

	repo.Close()
	if !closed {
		t.Fatalf("wrappedRepo.Close() did not invoke closeFn")
	}
}

func TestNewRepositoryEmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "  "}); err == nil {
		t.Fatalf("NewRepository() error = nil, want error for empty DSN")
	}
}

func TestConfigInMemory(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		":memory:":                       true,
		"file:x?mode=memory&cache=shared": true,
		"db.sqlite":                      false,
		"file:/tmp/load.db":              false,
	}
	for dsn, want := range cases {
		if got := (Config{DSN: dsn}).inMemory(); got != want {
			t.Fatalf("Config{DSN: %q}.inMemory() = %v, want %v", dsn, got, want)
		}
	}
}
