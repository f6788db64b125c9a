package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

// StaffRepository implements persistence.StaffRepository using SQLite.
type StaffRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewStaffRepository creates a new SQLite staff repository.
func NewStaffRepository(pool *ConnectionPool) *StaffRepository {
	return &StaffRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const staffColumns = `id, org_id, email, display_name, role, password_hash, disabled,
	failed_attempts, last_failed_at, created_at, updated_at`

// CreateStaff inserts a new staff account. Email is stored lowercased so the
// per-org unique constraint is case-insensitive.
func (r *StaffRepository) CreateStaff(ctx context.Context, staff persistence.StaffUser) error {
	if staff.ID == "" || staff.OrgID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO staff_users (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, staffColumns)

	_, err := r.helper.Exec(ctx, query,
		staff.ID,
		staff.OrgID,
		strings.ToLower(strings.TrimSpace(staff.Email)),
		staff.DisplayName,
		staff.Role,
		staff.PasswordHash,
		boolToInt(staff.Disabled),
		staff.FailedAttempts,
		nullTime(staff.LastFailedAt),
		formatTime(staff.CreatedAt),
		formatTime(staff.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateStaff overwrites mutable staff state.
func (r *StaffRepository) UpdateStaff(ctx context.Context, staff persistence.StaffUser) error {
	if staff.ID == "" || staff.OrgID == "" {
		return persistence.ErrConstraintViolation
	}

	staff.UpdatedAt = time.Now().UTC()

	result, err := r.helper.Exec(ctx, `
		UPDATE staff_users
		SET email = ?, display_name = ?, role = ?, password_hash = ?, disabled = ?,
			failed_attempts = ?, last_failed_at = ?, updated_at = ?
		WHERE id = ? AND org_id = ?
	`,
		strings.ToLower(strings.TrimSpace(staff.Email)),
		staff.DisplayName,
		staff.Role,
		staff.PasswordHash,
		boolToInt(staff.Disabled),
		staff.FailedAttempts,
		nullTime(staff.LastFailedAt),
		formatTime(staff.UpdatedAt),
		staff.ID,
		staff.OrgID,
	)
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

// GetStaff retrieves a staff account by id scoped to the organization.
func (r *StaffRepository) GetStaff(ctx context.Context, orgID, id string) (persistence.StaffUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff_users WHERE id = ? AND org_id = ?`, staffColumns)
	return r.getOne(ctx, query, id, orgID)
}

// GetStaffByID retrieves a staff account by id alone. Session validation
// only holds the staff id, not the organization.
func (r *StaffRepository) GetStaffByID(ctx context.Context, id string) (persistence.StaffUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff_users WHERE id = ?`, staffColumns)
	return r.getOne(ctx, query, id)
}

// GetStaffByEmail retrieves a staff account by email scoped to the organization.
func (r *StaffRepository) GetStaffByEmail(ctx context.Context, orgID, email string) (persistence.StaffUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff_users WHERE email = ? AND org_id = ?`, staffColumns)
	return r.getOne(ctx, query, strings.ToLower(strings.TrimSpace(email)), orgID)
}

// ListStaff returns all staff accounts in the organization ordered by creation.
func (r *StaffRepository) ListStaff(ctx context.Context, orgID string) ([]persistence.StaffUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM staff_users WHERE org_id = ? ORDER BY created_at ASC, id ASC`, staffColumns)

	rows, err := r.helper.Query(ctx, query, orgID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var staff []persistence.StaffUser
	for rows.Next() {
		member, err := scanStaff(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		staff = append(staff, member)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return staff, nil
}

func (r *StaffRepository) getOne(ctx context.Context, query string, args ...any) (persistence.StaffUser, error) {
	staff, err := scanStaff(r.helper.QueryRow(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.StaffUser{}, persistence.ErrNotFound
		}
		return persistence.StaffUser{}, r.mapper.MapError(err)
	}
	return staff, nil
}

func scanStaff(row rowScanner) (persistence.StaffUser, error) {
	var staff persistence.StaffUser
	var disabled int
	var lastFailedAt sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&staff.ID,
		&staff.OrgID,
		&staff.Email,
		&staff.DisplayName,
		&staff.Role,
		&staff.PasswordHash,
		&disabled,
		&staff.FailedAttempts,
		&lastFailedAt,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.StaffUser{}, err
	}

	staff.Disabled = disabled != 0
	if lastFailedAt.Valid {
		ts, err := parseTime(lastFailedAt.String)
		if err != nil {
			return persistence.StaffUser{}, fmt.Errorf("failed to parse last_failed_at: %w", err)
		}
		staff.LastFailedAt = &ts
	}
	if staff.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.StaffUser{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if staff.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.StaffUser{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return staff, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
