package postgres

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestLoadMigrationsOrdersByVersion(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0002_orders.up.sql":    {Data: []byte("CREATE TABLE t_b (id INT);")},
		"sql/migrations/0002_orders.down.sql":  {Data: []byte("DROP TABLE IF EXISTS t_b;")},
		"sql/migrations/0001_catalog.up.sql":   {Data: []byte("CREATE TABLE t_a (id INT);")},
		"sql/migrations/0001_catalog.down.sql": {Data: []byte("DROP TABLE IF EXISTS t_a;")},
	}

	migrations, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("loadMigrations failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].version != 1 || migrations[0].name != "catalog" {
		t.Fatalf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].version != 2 || migrations[1].name != "orders" {
		t.Fatalf("unexpected second migration: %+v", migrations[1])
	}
}

func TestLoadMigrationsRejectsMissingDown(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0001_catalog.up.sql": {Data: []byte("CREATE TABLE t_a (id INT);")},
	}

	_, err := loadMigrations(fsys)
	if err == nil {
		t.Fatal("expected error for missing down migration")
	}
	if !strings.Contains(err.Error(), "both up and down") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMigrationsRejectsBadFileName(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/catalog.sql": {Data: []byte("CREATE TABLE t_a (id INT);")},
	}

	if _, err := loadMigrations(fsys); err == nil {
		t.Fatal("expected error for invalid file name")
	}
}

func TestEmbeddedMigrationsAreComplete(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		t.Fatalf("embedded migrations are broken: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("no embedded migrations found")
	}
}

func TestMigrateUpDownFlowIntegration(t *testing.T) {
	store := openRawStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	version, count, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if count == 0 || version == 0 {
		t.Fatalf("expected applied migrations, got version=%d count=%d", version, count)
	}

	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	downVersion, downCount, err := store.MigrationStatus(ctx)
	if err != nil {
		t.Fatalf("status after down: %v", err)
	}
	if downCount != count-1 || downVersion >= version {
		t.Fatalf("rollback did not retreat: version=%d count=%d", downVersion, downCount)
	}

	// Возврат к полной схеме, чтобы не ломать соседние тесты.
	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up after down: %v", err)
	}
}
