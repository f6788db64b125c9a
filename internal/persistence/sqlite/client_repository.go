package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

// ClientRepository implements persistence.ClientRepository and
// persistence.LocationRepository using SQLite. Locations live alongside
// clients because every location is owned by exactly one client.
type ClientRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewClientRepository creates a new SQLite client repository.
func NewClientRepository(pool *ConnectionPool) *ClientRepository {
	return &ClientRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateClient inserts a new client row.
func (r *ClientRepository) CreateClient(ctx context.Context, client persistence.Client) error {
	if client.ID == "" || client.OrgID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	_, err := r.helper.Exec(ctx, `
		INSERT INTO clients (id, org_id, name, email, phone, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		client.ID, client.OrgID, client.Name, client.Email, client.Phone, client.Status,
		formatTime(client.CreatedAt), formatTime(client.UpdatedAt))
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateClient overwrites mutable client state.
func (r *ClientRepository) UpdateClient(ctx context.Context, client persistence.Client) error {
	if client.ID == "" || client.OrgID == "" {
		return persistence.ErrConstraintViolation
	}

	client.UpdatedAt = time.Now().UTC()

	result, err := r.helper.Exec(ctx, `
		UPDATE clients SET name = ?, email = ?, phone = ?, status = ?, updated_at = ?
		WHERE id = ? AND org_id = ?
	`,
		client.Name, client.Email, client.Phone, client.Status,
		formatTime(client.UpdatedAt), client.ID, client.OrgID)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetClient retrieves a client scoped to the organization.
func (r *ClientRepository) GetClient(ctx context.Context, orgID, id string) (persistence.Client, error) {
	if orgID == "" || id == "" {
		return persistence.Client{}, persistence.ErrNotFound
	}

	var client persistence.Client
	var createdAtStr, updatedAtStr string

	err := r.helper.QueryRow(ctx, `
		SELECT id, org_id, name, email, phone, status, created_at, updated_at
		FROM clients WHERE id = ? AND org_id = ?
	`, id, orgID).Scan(
		&client.ID, &client.OrgID, &client.Name, &client.Email, &client.Phone, &client.Status,
		&createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Client{}, persistence.ErrNotFound
		}
		return persistence.Client{}, r.mapper.MapError(err)
	}

	if client.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Client{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if client.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Client{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return client, nil
}

// ListClients returns all clients in the organization ordered by name.
func (r *ClientRepository) ListClients(ctx context.Context, orgID string) ([]persistence.Client, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, org_id, name, email, phone, status, created_at, updated_at
		FROM clients WHERE org_id = ? ORDER BY name ASC, id ASC
	`, orgID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var clients []persistence.Client
	for rows.Next() {
		var client persistence.Client
		var createdAtStr, updatedAtStr string
		if err := rows.Scan(
			&client.ID, &client.OrgID, &client.Name, &client.Email, &client.Phone, &client.Status,
			&createdAtStr, &updatedAtStr); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if client.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if client.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return clients, nil
}

// DeleteClient removes a client. Foreign keys reject deletion while
// locations, subscriptions, or jobs still reference it.
func (r *ClientRepository) DeleteClient(ctx context.Context, orgID, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM clients WHERE id = ? AND org_id = ?`, id, orgID)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// CreateLocation inserts a serviceable address for a client.
func (r *ClientRepository) CreateLocation(ctx context.Context, location persistence.Location) error {
	if location.ID == "" || location.OrgID == "" || location.ClientID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	location.CreatedAt = now
	location.UpdatedAt = now

	_, err := r.helper.Exec(ctx, `
		INSERT INTO locations (id, org_id, client_id, label, street, city, zip, gate_code, dog_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		location.ID, location.OrgID, location.ClientID, location.Label,
		location.Street, location.City, location.Zip,
		nullString(location.GateCode), location.DogCount,
		formatTime(location.CreatedAt), formatTime(location.UpdatedAt))
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetLocation retrieves a location scoped to the organization.
func (r *ClientRepository) GetLocation(ctx context.Context, orgID, id string) (persistence.Location, error) {
	if orgID == "" || id == "" {
		return persistence.Location{}, persistence.ErrNotFound
	}

	location, err := scanLocation(r.helper.QueryRow(ctx, `
		SELECT id, org_id, client_id, label, street, city, zip, gate_code, dog_count, created_at, updated_at
		FROM locations WHERE id = ? AND org_id = ?
	`, id, orgID))
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Location{}, persistence.ErrNotFound
		}
		return persistence.Location{}, r.mapper.MapError(err)
	}
	return location, nil
}

// ListLocationsForClient returns a client's locations ordered by label.
func (r *ClientRepository) ListLocationsForClient(ctx context.Context, orgID, clientID string) ([]persistence.Location, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, org_id, client_id, label, street, city, zip, gate_code, dog_count, created_at, updated_at
		FROM locations WHERE org_id = ? AND client_id = ? ORDER BY label ASC, id ASC
	`, orgID, clientID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var locations []persistence.Location
	for rows.Next() {
		location, err := scanLocation(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return locations, nil
}

func scanLocation(row rowScanner) (persistence.Location, error) {
	var location persistence.Location
	var gateCode sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&location.ID, &location.OrgID, &location.ClientID, &location.Label,
		&location.Street, &location.City, &location.Zip,
		&gateCode, &location.DogCount,
		&createdAtStr, &updatedAtStr)
	if err != nil {
		return persistence.Location{}, err
	}

	if gateCode.Valid {
		location.GateCode = &gateCode.String
	}
	if location.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Location{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if location.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Location{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return location, nil
}
