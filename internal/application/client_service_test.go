package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

type clientRepoStub struct {
	createdClients []Client
	createErr      error

	updatedClients []Client
	updateErr      error

	client Client
	getErr error

	clients []Client
	listErr error

	deleteErr error
	deleted   []string

	createdLocations []Location
	locationErr      error

	location       Location
	getLocationErr error

	locations []Location
}

func (s *clientRepoStub) CreateClient(ctx context.Context, client Client) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.createdClients = append(s.createdClients, client)
	return nil
}

func (s *clientRepoStub) UpdateClient(ctx context.Context, client Client) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedClients = append(s.updatedClients, client)
	return nil
}

func (s *clientRepoStub) GetClient(ctx context.Context, orgID, id string) (Client, error) {
	if s.getErr != nil {
		return Client{}, s.getErr
	}
	if s.client.ID != id || s.client.OrgID != orgID {
		return Client{}, ErrNotFound
	}
	return s.client, nil
}

func (s *clientRepoStub) ListClients(ctx context.Context, orgID string) ([]Client, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.clients, nil
}

func (s *clientRepoStub) DeleteClient(ctx context.Context, orgID, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *clientRepoStub) CreateLocation(ctx context.Context, location Location) error {
	if s.locationErr != nil {
		return s.locationErr
	}
	s.createdLocations = append(s.createdLocations, location)
	return nil
}

func (s *clientRepoStub) GetLocation(ctx context.Context, orgID, id string) (Location, error) {
	if s.getLocationErr != nil {
		return Location{}, s.getLocationErr
	}
	return s.location, nil
}

func (s *clientRepoStub) ListLocationsForClient(ctx context.Context, orgID, clientID string) ([]Location, error) {
	return s.locations, nil
}

func TestClientService_CreateClient(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

	t.Run("creates an active client with normalized email", func(t *testing.T) {
		t.Parallel()

		repo := &clientRepoStub{}
		svc := NewClientService(repo, func() string { return "client1" }, fixedClock(now))

		client, err := svc.CreateClient(context.Background(), adminPrincipal(), ClientInput{
			Name:  "  Dana Whitfield ",
			Email: "Dana@Example.COM",
			Phone: "555-0100",
		})
		if err != nil {
			t.Fatalf("CreateClient failed: %v", err)
		}
		if client.Email != "dana@example.com" {
			t.Errorf("expected lowercased email, got %q", client.Email)
		}
		if client.Name != "Dana Whitfield" {
			t.Errorf("expected trimmed name, got %q", client.Name)
		}
		if client.Status != "ACTIVE" {
			t.Errorf("expected ACTIVE status, got %q", client.Status)
		}
		if len(repo.createdClients) != 1 {
			t.Fatalf("expected 1 client persisted, got %d", len(repo.createdClients))
		}
	})

	t.Run("rejects missing name and malformed email", func(t *testing.T) {
		t.Parallel()

		svc := NewClientService(&clientRepoStub{}, nil, fixedClock(now))

		_, err := svc.CreateClient(context.Background(), adminPrincipal(), ClientInput{
			Email: "not-an-address",
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["name"]; !ok {
			t.Errorf("expected name field error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["email"]; !ok {
			t.Errorf("expected email field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("maps duplicate email to ErrAlreadyExists", func(t *testing.T) {
		t.Parallel()

		repo := &clientRepoStub{createErr: persistence.ErrDuplicate}
		svc := NewClientService(repo, nil, fixedClock(now))

		_, err := svc.CreateClient(context.Background(), adminPrincipal(), ClientInput{
			Name:  "Dana Whitfield",
			Email: "dana@example.com",
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestClientService_UpdateClient(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

	t.Run("updates an existing client", func(t *testing.T) {
		t.Parallel()

		repo := &clientRepoStub{client: Client{ID: "client1", OrgID: "org1", Name: "Old Name", Email: "old@example.com"}}
		svc := NewClientService(repo, nil, fixedClock(now))

		client, err := svc.UpdateClient(context.Background(), adminPrincipal(), "client1", ClientInput{
			Name:  "New Name",
			Email: "new@example.com",
		})
		if err != nil {
			t.Fatalf("UpdateClient failed: %v", err)
		}
		if client.Name != "New Name" || client.Email != "new@example.com" {
			t.Errorf("unexpected client after update: %+v", client)
		}
		if len(repo.updatedClients) != 1 {
			t.Fatalf("expected 1 update persisted, got %d", len(repo.updatedClients))
		}
	})

	t.Run("unknown client maps to ErrNotFound", func(t *testing.T) {
		t.Parallel()

		svc := NewClientService(&clientRepoStub{}, nil, fixedClock(now))

		_, err := svc.UpdateClient(context.Background(), adminPrincipal(), "missing", ClientInput{
			Name:  "New Name",
			Email: "new@example.com",
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestClientService_DeleteClient(t *testing.T) {
	t.Parallel()

	t.Run("requires administrator privileges", func(t *testing.T) {
		t.Parallel()

		repo := &clientRepoStub{}
		svc := NewClientService(repo, nil, nil)

		err := svc.DeleteClient(context.Background(), Principal{StaffID: "tech1", OrgID: "org1"}, "client1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if len(repo.deleted) != 0 {
			t.Errorf("expected no delete call, got %v", repo.deleted)
		}
	})

	t.Run("referenced client fails validation", func(t *testing.T) {
		t.Parallel()

		repo := &clientRepoStub{deleteErr: persistence.ErrForeignKeyViolation}
		svc := NewClientService(repo, nil, nil)

		err := svc.DeleteClient(context.Background(), adminPrincipal(), "client1")
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("deletes when unreferenced", func(t *testing.T) {
		t.Parallel()

		repo := &clientRepoStub{}
		svc := NewClientService(repo, nil, nil)

		if err := svc.DeleteClient(context.Background(), adminPrincipal(), "client1"); err != nil {
			t.Fatalf("DeleteClient failed: %v", err)
		}
		if len(repo.deleted) != 1 || repo.deleted[0] != "client1" {
			t.Errorf("expected client1 deleted, got %v", repo.deleted)
		}
	})
}

func TestClientService_AddLocation(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC)

	validInput := LocationInput{
		Label:    "Backyard",
		Street:   "12 Elm St",
		City:     "Springfield",
		Zip:      "01234",
		DogCount: 2,
	}

	t.Run("attaches a location to an existing client", func(t *testing.T) {
		t.Parallel()

		repo := &clientRepoStub{client: Client{ID: "client1", OrgID: "org1"}}
		svc := NewClientService(repo, func() string { return "loc1" }, fixedClock(now))

		gate := " 4827 "
		input := validInput
		input.GateCode = &gate
		location, err := svc.AddLocation(context.Background(), adminPrincipal(), "client1", input)
		if err != nil {
			t.Fatalf("AddLocation failed: %v", err)
		}
		if location.ClientID != "client1" {
			t.Errorf("expected location attached to client1, got %q", location.ClientID)
		}
		if location.GateCode == nil || *location.GateCode != "4827" {
			t.Errorf("expected trimmed gate code, got %v", location.GateCode)
		}
		if len(repo.createdLocations) != 1 {
			t.Fatalf("expected 1 location persisted, got %d", len(repo.createdLocations))
		}
	})

	t.Run("rejects a location for an unknown client", func(t *testing.T) {
		t.Parallel()

		svc := NewClientService(&clientRepoStub{}, nil, fixedClock(now))

		_, err := svc.AddLocation(context.Background(), adminPrincipal(), "missing", validInput)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("rejects missing label, street, and negative dog count", func(t *testing.T) {
		t.Parallel()

		repo := &clientRepoStub{client: Client{ID: "client1", OrgID: "org1"}}
		svc := NewClientService(repo, nil, fixedClock(now))

		_, err := svc.AddLocation(context.Background(), adminPrincipal(), "client1", LocationInput{
			Zip:      "01234",
			DogCount: -1,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"label", "street", "dog_count"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected %s field error, got %v", field, vErr.FieldErrors)
			}
		}
	})
}
