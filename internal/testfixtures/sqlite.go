package testfixtures

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Organizations persistence.OrganizationRepository
	Staff         persistence.StaffRepository
	Sessions      persistence.SessionRepository
	Clients       persistence.ClientRepository
	Locations     persistence.LocationRepository
	Subscriptions persistence.SubscriptionRepository
	Jobs          persistence.JobRepository
	Quotes        persistence.QuoteRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness backed by a temporary file
// that is migrated automatically. Callers may optionally invoke Close, but
// the helper also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(dir, "fieldops.db"))

	pool, err := sqlite.NewConnectionPool(dsn)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	clients := sqlite.NewClientRepository(pool)

	harness := &SQLiteHarness{
		Organizations: sqlite.NewOrganizationRepository(pool),
		Staff:         sqlite.NewStaffRepository(pool),
		Sessions:      sqlite.NewSessionRepository(pool),
		Clients:       clients,
		Locations:     clients,
		Subscriptions: sqlite.NewSubscriptionRepository(pool),
		Jobs:          sqlite.NewJobRepository(pool),
		Quotes:        sqlite.NewQuoteRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
