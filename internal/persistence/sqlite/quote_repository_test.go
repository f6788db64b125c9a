package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

func TestQuoteRepository_CreateAndGet(t *testing.T) {
	repo, _ := setupQuoteRepositoryTest(t)
	ctx := context.Background()

	quote := persistence.QuoteRequest{
		ID:           "quote1",
		OrgID:        "org1",
		Name:         "Sam Porter",
		Email:        "sam@example.com",
		Phone:        "555-0199",
		Zip:          "80210",
		DogCount:     2,
		YardSize:     "MEDIUM",
		FrequencyRaw: "every 2 weeks",
		Status:       "NEW",
		Notes:        strPtr("side gate sticks"),
	}
	if err := repo.CreateQuote(ctx, quote); err != nil {
		t.Fatalf("CreateQuote failed: %v", err)
	}

	retrieved, err := repo.GetQuote(ctx, "org1", "quote1")
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}
	if retrieved.FrequencyRaw != "every 2 weeks" {
		t.Errorf("Expected frequency 'every 2 weeks', got '%s'", retrieved.FrequencyRaw)
	}
	if retrieved.Notes == nil || *retrieved.Notes != "side gate sticks" {
		t.Errorf("Expected notes to round-trip, got %v", retrieved.Notes)
	}
	if retrieved.Status != "NEW" {
		t.Errorf("Expected status NEW, got %s", retrieved.Status)
	}
}

func TestQuoteRepository_UpdateQuote(t *testing.T) {
	repo, _ := setupQuoteRepositoryTest(t)
	ctx := context.Background()

	quote := persistence.QuoteRequest{
		ID:     "quote1",
		OrgID:  "org1",
		Name:   "Sam Porter",
		Email:  "sam@example.com",
		Status: "NEW",
	}
	if err := repo.CreateQuote(ctx, quote); err != nil {
		t.Fatalf("CreateQuote failed: %v", err)
	}

	quote.Status = "CONTACTED"
	if err := repo.UpdateQuote(ctx, quote); err != nil {
		t.Fatalf("UpdateQuote failed: %v", err)
	}

	retrieved, err := repo.GetQuote(ctx, "org1", "quote1")
	if err != nil {
		t.Fatalf("GetQuote failed: %v", err)
	}
	if retrieved.Status != "CONTACTED" {
		t.Errorf("Expected status CONTACTED, got %s", retrieved.Status)
	}
}

func TestQuoteRepository_ListQuotes_StatusFilter(t *testing.T) {
	repo, _ := setupQuoteRepositoryTest(t)
	ctx := context.Background()

	quotes := []persistence.QuoteRequest{
		{ID: "quote1", OrgID: "org1", Name: "A", Email: "a@example.com", Status: "NEW"},
		{ID: "quote2", OrgID: "org1", Name: "B", Email: "b@example.com", Status: "CONVERTED"},
		{ID: "quote3", OrgID: "org1", Name: "C", Email: "c@example.com", Status: "NEW"},
	}
	for _, q := range quotes {
		if err := repo.CreateQuote(ctx, q); err != nil {
			t.Fatalf("CreateQuote failed: %v", err)
		}
	}

	all, err := repo.ListQuotes(ctx, "org1", "")
	if err != nil {
		t.Fatalf("ListQuotes failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 quotes, got %d", len(all))
	}

	fresh, err := repo.ListQuotes(ctx, "org1", "NEW")
	if err != nil {
		t.Fatalf("ListQuotes filtered failed: %v", err)
	}
	if len(fresh) != 2 {
		t.Errorf("Expected 2 NEW quotes, got %d", len(fresh))
	}
}

func TestQuoteRepository_GetQuote_NotFound(t *testing.T) {
	repo, _ := setupQuoteRepositoryTest(t)

	_, err := repo.GetQuote(context.Background(), "org1", "missing")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func setupQuoteRepositoryTest(t *testing.T) (*QuoteRepository, *ConnectionPool) {
	t.Helper()

	pool := newTestPool(t)
	seedOrganization(t, pool, "org1")

	return NewQuoteRepository(pool), pool
}
