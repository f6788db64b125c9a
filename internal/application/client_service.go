package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

// ClientRepository captures the persistence operations needed by the service.
type ClientRepository interface {
	CreateClient(ctx context.Context, client Client) error
	UpdateClient(ctx context.Context, client Client) error
	GetClient(ctx context.Context, orgID, id string) (Client, error)
	ListClients(ctx context.Context, orgID string) ([]Client, error)
	DeleteClient(ctx context.Context, orgID, id string) error
	CreateLocation(ctx context.Context, location Location) error
	GetLocation(ctx context.Context, orgID, id string) (Location, error)
	ListLocationsForClient(ctx context.Context, orgID, clientID string) ([]Location, error)
}

// ClientService orchestrates validation, authorization, and persistence for
// clients and their serviceable locations.
type ClientService struct {
	clients     ClientRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewClientService constructs a client service with the provided dependencies.
func NewClientService(clients ClientRepository, idGenerator func() string, now func() time.Time) *ClientService {
	return NewClientServiceWithLogger(clients, idGenerator, now, nil)
}

// NewClientServiceWithLogger constructs a client service with a specified logger.
func NewClientServiceWithLogger(clients ClientRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ClientService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ClientService{clients: clients, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ClientService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ClientService", operation, attrs...)
}

// CreateClient validates input and persists a new client.
func (s *ClientService) CreateClient(ctx context.Context, principal Principal, input ClientInput) (client Client, err error) {
	if s == nil {
		err = fmt.Errorf("ClientService is nil")
		return
	}
	if s.clients == nil {
		err = fmt.Errorf("client repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateClient",
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create client", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("client_id", client.ID).InfoContext(ctx, "client created")
	}()

	vErr := validateClientInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	client = Client{
		ID:        s.idGenerator(),
		OrgID:     principal.OrgID,
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(strings.ToLower(input.Email)),
		Phone:     strings.TrimSpace(input.Phone),
		Status:    "ACTIVE",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err = s.clients.CreateClient(ctx, client); err != nil {
		err = mapClientRepoError(err)
		client = Client{}
		return
	}

	return
}

// UpdateClient validates input and updates an existing client.
func (s *ClientService) UpdateClient(ctx context.Context, principal Principal, clientID string, input ClientInput) (client Client, err error) {
	if s == nil {
		err = fmt.Errorf("ClientService is nil")
		return
	}
	if s.clients == nil {
		err = fmt.Errorf("client repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateClient",
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
		"client_id", clientID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update client", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "client updated")
	}()

	var existing Client
	existing, err = s.clients.GetClient(ctx, principal.OrgID, clientID)
	if err != nil {
		err = mapClientRepoError(err)
		return
	}

	vErr := validateClientInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = strings.TrimSpace(input.Name)
	updated.Email = strings.TrimSpace(strings.ToLower(input.Email))
	updated.Phone = strings.TrimSpace(input.Phone)
	updated.UpdatedAt = s.now()

	if err = s.clients.UpdateClient(ctx, updated); err != nil {
		err = mapClientRepoError(err)
		return
	}

	client = updated
	return
}

// GetClient returns a single client scoped to the principal's organization.
func (s *ClientService) GetClient(ctx context.Context, principal Principal, clientID string) (Client, error) {
	if s == nil {
		return Client{}, fmt.Errorf("ClientService is nil")
	}
	if s.clients == nil {
		return Client{}, fmt.Errorf("client repository not configured")
	}

	client, err := s.clients.GetClient(ctx, principal.OrgID, clientID)
	if err != nil {
		return Client{}, mapClientRepoError(err)
	}
	return client, nil
}

// ListClients returns every client in the principal's organization.
func (s *ClientService) ListClients(ctx context.Context, principal Principal) ([]Client, error) {
	if s == nil {
		return nil, fmt.Errorf("ClientService is nil")
	}
	if s.clients == nil {
		return nil, nil
	}

	clients, err := s.clients.ListClients(ctx, principal.OrgID)
	if err != nil {
		return nil, mapClientRepoError(err)
	}
	return clients, nil
}

// DeleteClient removes a client when requested by an administrator. The
// delete is rejected while locations or subscriptions still reference it.
func (s *ClientService) DeleteClient(ctx context.Context, principal Principal, clientID string) error {
	if s == nil {
		return fmt.Errorf("ClientService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.clients == nil {
		return fmt.Errorf("client repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteClient",
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
		"client_id", clientID,
	)

	if err := s.clients.DeleteClient(ctx, principal.OrgID, clientID); err != nil {
		err = mapClientRepoError(err)
		logger.ErrorContext(ctx, "failed to delete client", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "client deleted")
	return nil
}

// AddLocation validates input and attaches a new serviceable location to a client.
func (s *ClientService) AddLocation(ctx context.Context, principal Principal, clientID string, input LocationInput) (location Location, err error) {
	if s == nil {
		err = fmt.Errorf("ClientService is nil")
		return
	}
	if s.clients == nil {
		err = fmt.Errorf("client repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "AddLocation",
		"principal_id", principal.StaffID,
		"org_id", principal.OrgID,
		"client_id", clientID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to add location", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("location_id", location.ID).InfoContext(ctx, "location added")
	}()

	if _, err = s.clients.GetClient(ctx, principal.OrgID, clientID); err != nil {
		err = mapClientRepoError(err)
		return
	}

	vErr := validateLocationInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	location = Location{
		ID:        s.idGenerator(),
		OrgID:     principal.OrgID,
		ClientID:  clientID,
		Label:     strings.TrimSpace(input.Label),
		Street:    strings.TrimSpace(input.Street),
		City:      strings.TrimSpace(input.City),
		Zip:       strings.TrimSpace(input.Zip),
		GateCode:  normalizeOptionalString(input.GateCode),
		DogCount:  input.DogCount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err = s.clients.CreateLocation(ctx, location); err != nil {
		err = mapClientRepoError(err)
		location = Location{}
		return
	}

	return
}

// ListLocations returns the serviceable locations attached to a client.
func (s *ClientService) ListLocations(ctx context.Context, principal Principal, clientID string) ([]Location, error) {
	if s == nil {
		return nil, fmt.Errorf("ClientService is nil")
	}
	if s.clients == nil {
		return nil, nil
	}

	locations, err := s.clients.ListLocationsForClient(ctx, principal.OrgID, clientID)
	if err != nil {
		return nil, mapClientRepoError(err)
	}
	return locations, nil
}

func validateClientInput(input ClientInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("email", "email must be a valid address")
	}

	return vErr
}

func validateLocationInput(input LocationInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Label) == "" {
		vErr.add("label", "label is required")
	}
	if strings.TrimSpace(input.Street) == "" {
		vErr.add("street", "street is required")
	}
	if strings.TrimSpace(input.Zip) == "" {
		vErr.add("zip", "zip is required")
	}
	if input.DogCount < 0 {
		vErr.add("dog_count", "dog count must not be negative")
	}

	return vErr
}

func mapClientRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("client_id", "client is still referenced by locations or subscriptions")
		return vErr
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "input violates a storage constraint")
		return vErr
	}
	return err
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
