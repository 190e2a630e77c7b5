package migrations

import (
	"context"
	"testing"

	"github.com/uptrace/bun/migrate"

	"github.com/greenpay/aptopay-middleware/pkg/migrations/apidb"
	"github.com/greenpay/aptopay-middleware/pkg/pgutil"
)

func TestAPIDBMigrations_Apply(t *testing.T) {
	pgutil.RequireDockerAccess(t)

	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, apidb.Migrations)

	// Initialize migration system
	err := migrator.Init(ctx)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	// Run all migrations up
	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected migrations to run, but none were applied")
	}

	// Verify all expected tables exist
	expectedTables := []string{
		"users",
		"payments",
		"requests",
		"bun_migrations",
	}

	for _, table := range expectedTables {
		pgutil.AssertTableExists(t, db, table)
	}

	// Verify indexes exist for payments table
	pgutil.AssertIndexExists(t, db, "idx_payments_sender_address")
	pgutil.AssertIndexExists(t, db, "idx_payments_receiver_address")
	pgutil.AssertIndexExists(t, db, "idx_payments_status")
	pgutil.AssertIndexExists(t, db, "idx_payments_transaction_hash")

	// Verify indexes exist for requests table
	pgutil.AssertIndexExists(t, db, "idx_requests_payer_address")
	pgutil.AssertIndexExists(t, db, "idx_requests_requester_address")
	pgutil.AssertIndexExists(t, db, "idx_requests_status")
}

func TestMigrations_Idempotency(t *testing.T) {
	pgutil.RequireDockerAccess(t)

	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, apidb.Migrations)

	// Initialize
	err := migrator.Init(ctx)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	// Run migrations first time
	_, err = migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("First Migrate() failed: %v", err)
	}

	// Run migrations second time - should not fail
	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Second Migrate() failed: %v", err)
	}

	// Should return zero group (no new migrations)
	if !group.IsZero() {
		t.Error("Expected no new migrations on second run")
	}

	// Verify tables still exist
	pgutil.AssertTableExists(t, db, "users")
	pgutil.AssertTableExists(t, db, "payments")
	pgutil.AssertTableExists(t, db, "requests")
}

func TestMigrations_Rollback(t *testing.T) {
	pgutil.RequireDockerAccess(t)

	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, apidb.Migrations)

	// Initialize
	err := migrator.Init(ctx)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	// Run migrations up
	_, err = migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	// Verify tables exist
	pgutil.AssertTableExists(t, db, "users")
	pgutil.AssertTableExists(t, db, "payments")
	pgutil.AssertTableExists(t, db, "requests")

	// Rollback last migration group (all migrations run in one group by Migrate())
	group, err := migrator.Rollback(ctx)
	if err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected rollback to process a migration")
	}

	// Verify all tables are dropped (entire migration group is rolled back)
	pgutil.AssertTableNotExists(t, db, "requests")
	pgutil.AssertTableNotExists(t, db, "payments")
	pgutil.AssertTableNotExists(t, db, "users")
}

func TestPaymentHashUniqueness_Applied(t *testing.T) {
	pgutil.RequireDockerAccess(t)

	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	if err := apidb.Migrate(ctx, db); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	// Two payments without a hash are allowed
	insert := func(hash *string) error {
		_, err := db.NewRaw(`
			INSERT INTO payments (sender_address, receiver_address, amount, status, expiration_timestamp, transaction_hash)
			VALUES (?, ?, ?, ?, ?, ?)`,
			"0xaa", "0xbb", "1000", "pending", 0, hash).
			Exec(ctx)
		return err
	}

	if err := insert(nil); err != nil {
		t.Fatalf("insert without hash failed: %v", err)
	}
	if err := insert(nil); err != nil {
		t.Fatalf("second insert without hash failed: %v", err)
	}

	hash := "0xfeed"
	if err := insert(&hash); err != nil {
		t.Fatalf("insert with hash failed: %v", err)
	}
	if err := insert(&hash); err == nil {
		t.Error("Expected duplicate transaction_hash insert to fail, but it succeeded")
	}
}
