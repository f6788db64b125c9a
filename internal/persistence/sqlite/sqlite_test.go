package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

// newTestPool opens a migrated temporary database for repository tests.
func newTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	pool, err := NewConnectionPool(dbPath)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return pool
}

func seedOrganization(t *testing.T, pool *ConnectionPool, id string) {
	t.Helper()

	repo := NewOrganizationRepository(pool)
	err := repo.CreateOrganization(context.Background(), persistence.Organization{
		ID:   id,
		Name: "Org " + id,
	})
	if err != nil {
		t.Fatalf("Failed to seed organization %s: %v", id, err)
	}
}

func seedClient(t *testing.T, pool *ConnectionPool, orgID, id string) {
	t.Helper()

	repo := NewClientRepository(pool)
	err := repo.CreateClient(context.Background(), persistence.Client{
		ID:     id,
		OrgID:  orgID,
		Name:   "Client " + id,
		Email:  id + "@example.com",
		Status: "ACTIVE",
	})
	if err != nil {
		t.Fatalf("Failed to seed client %s: %v", id, err)
	}
}

func seedLocation(t *testing.T, pool *ConnectionPool, orgID, clientID, id string) {
	t.Helper()

	repo := NewClientRepository(pool)
	err := repo.CreateLocation(context.Background(), persistence.Location{
		ID:       id,
		OrgID:    orgID,
		ClientID: clientID,
		Label:    "Home",
		Street:   "123 Main St",
		City:     "Denver",
		Zip:      "80202",
		DogCount: 2,
	})
	if err != nil {
		t.Fatalf("Failed to seed location %s: %v", id, err)
	}
}

func seedSubscription(t *testing.T, pool *ConnectionPool, orgID, clientID, locationID, id string) {
	t.Helper()

	repo := NewSubscriptionRepository(pool)
	err := repo.CreateSubscription(context.Background(), persistence.Subscription{
		ID:         id,
		OrgID:      orgID,
		ClientID:   clientID,
		LocationID: locationID,
		Status:     "ACTIVE",
		Frequency:  "WEEKLY",
		PriceCents: 2500,
		StartDate:  time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Failed to seed subscription %s: %v", id, err)
	}
}

func seedStaff(t *testing.T, pool *ConnectionPool, orgID, id string) {
	t.Helper()

	repo := NewStaffRepository(pool)
	err := repo.CreateStaff(context.Background(), persistence.StaffUser{
		ID:           id,
		OrgID:        orgID,
		Email:        id + "@fieldops.test",
		DisplayName:  "Staff " + id,
		Role:         "TECH",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("Failed to seed staff %s: %v", id, err)
	}
}

func strPtr(s string) *string { return &s }
