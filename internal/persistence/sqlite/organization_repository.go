package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

// OrganizationRepository implements persistence.OrganizationRepository using SQLite.
type OrganizationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewOrganizationRepository creates a new SQLite organization repository.
func NewOrganizationRepository(pool *ConnectionPool) *OrganizationRepository {
	return &OrganizationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateOrganization inserts a new tenant row.
func (r *OrganizationRepository) CreateOrganization(ctx context.Context, org persistence.Organization) error {
	if org.ID == "" || org.Name == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	org.CreatedAt = now
	org.UpdatedAt = now

	_, err := r.helper.Exec(ctx, `
		INSERT INTO organizations (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, org.ID, org.Name, formatTime(org.CreatedAt), formatTime(org.UpdatedAt))
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetOrganization retrieves a tenant by ID.
func (r *OrganizationRepository) GetOrganization(ctx context.Context, id string) (persistence.Organization, error) {
	if id == "" {
		return persistence.Organization{}, persistence.ErrNotFound
	}

	org, err := scanOrganization(r.helper.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM organizations WHERE id = ?
	`, id))
	if err != nil {
		return persistence.Organization{}, r.mapper.MapError(err)
	}

	return org, nil
}

// ListOrganizations returns all tenants ordered by name.
func (r *OrganizationRepository) ListOrganizations(ctx context.Context) ([]persistence.Organization, error) {
	rows, err := r.helper.Query(ctx, `SELECT id, name, created_at, updated_at FROM organizations ORDER BY name, id`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var orgs []persistence.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return orgs, nil
}

func scanOrganization(row rowScanner) (persistence.Organization, error) {
	var org persistence.Organization
	var createdAtStr, updatedAtStr string

	if err := row.Scan(&org.ID, &org.Name, &createdAtStr, &updatedAtStr); err != nil {
		return persistence.Organization{}, err
	}

	var err error
	if org.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Organization{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if org.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Organization{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return org, nil
}
