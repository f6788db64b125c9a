package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

// SubscriptionRepository implements persistence.SubscriptionRepository using SQLite.
type SubscriptionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSubscriptionRepository creates a new SQLite subscription repository.
func NewSubscriptionRepository(pool *ConnectionPool) *SubscriptionRepository {
	return &SubscriptionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const subscriptionColumns = `id, org_id, client_id, location_id, status, frequency, preferred_weekday,
	price_cents, start_date, end_date, next_service_date, created_at, updated_at`

// CreateSubscription inserts a new subscription row.
func (r *SubscriptionRepository) CreateSubscription(ctx context.Context, sub persistence.Subscription) error {
	if sub.ID == "" || sub.OrgID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO subscriptions (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, subscriptionColumns)

	_, err := r.helper.Exec(ctx, query,
		sub.ID,
		sub.OrgID,
		sub.ClientID,
		sub.LocationID,
		sub.Status,
		sub.Frequency,
		nullInt(sub.PreferredWeekday),
		sub.PriceCents,
		formatDate(sub.StartDate),
		nullDate(sub.EndDate),
		nullDate(sub.NextServiceDate),
		formatTime(sub.CreatedAt),
		formatTime(sub.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateSubscription overwrites mutable subscription state. Creator-style
// columns (org, client, location) are immutable after creation.
func (r *SubscriptionRepository) UpdateSubscription(ctx context.Context, sub persistence.Subscription) error {
	if sub.ID == "" || sub.OrgID == "" {
		return persistence.ErrConstraintViolation
	}

	sub.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE subscriptions
		SET status = ?, frequency = ?, preferred_weekday = ?, price_cents = ?,
			start_date = ?, end_date = ?, next_service_date = ?, updated_at = ?
		WHERE id = ? AND org_id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		sub.Status,
		sub.Frequency,
		nullInt(sub.PreferredWeekday),
		sub.PriceCents,
		formatDate(sub.StartDate),
		nullDate(sub.EndDate),
		nullDate(sub.NextServiceDate),
		formatTime(sub.UpdatedAt),
		sub.ID,
		sub.OrgID,
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

// GetSubscription retrieves a subscription scoped to the organization.
func (r *SubscriptionRepository) GetSubscription(ctx context.Context, orgID, id string) (persistence.Subscription, error) {
	if orgID == "" || id == "" {
		return persistence.Subscription{}, persistence.ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE id = ? AND org_id = ?`, subscriptionColumns)
	sub, err := scanSubscription(r.helper.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Subscription{}, persistence.ErrNotFound
		}
		return persistence.Subscription{}, r.mapper.MapError(err)
	}
	return sub, nil
}

// ListSubscriptions lists subscriptions for an organization.
func (r *SubscriptionRepository) ListSubscriptions(ctx context.Context, orgID string, filter persistence.SubscriptionFilter) ([]persistence.Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions`, subscriptionColumns)

	conditions := []string{"org_id = ?"}
	args := []any{orgID}
	if filter.ClientID != "" {
		conditions = append(conditions, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	query += " WHERE " + strings.Join(conditions, " AND ")
	query += " ORDER BY created_at ASC, id ASC"

	return r.querySubscriptions(ctx, query, args...)
}

// ListActiveSubscriptions lists ACTIVE subscriptions across all
// organizations, for the background top-up sweep.
func (r *SubscriptionRepository) ListActiveSubscriptions(ctx context.Context) ([]persistence.Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE status = 'ACTIVE' ORDER BY org_id ASC, id ASC`, subscriptionColumns)
	return r.querySubscriptions(ctx, query)
}

// SetNextServiceDate updates the cached next-service-date column.
func (r *SubscriptionRepository) SetNextServiceDate(ctx context.Context, orgID, id string, next *time.Time) error {
	result, err := r.helper.Exec(ctx,
		`UPDATE subscriptions SET next_service_date = ?, updated_at = ? WHERE id = ? AND org_id = ?`,
		nullDate(next), formatTime(time.Now().UTC()), id, orgID)
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

func (r *SubscriptionRepository) querySubscriptions(ctx context.Context, query string, args ...any) ([]persistence.Subscription, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var subs []persistence.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return subs, nil
}

func scanSubscription(row rowScanner) (persistence.Subscription, error) {
	var sub persistence.Subscription
	var preferredWeekday sql.NullInt64
	var endDate, nextServiceDate sql.NullString
	var startDateStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&sub.ID,
		&sub.OrgID,
		&sub.ClientID,
		&sub.LocationID,
		&sub.Status,
		&sub.Frequency,
		&preferredWeekday,
		&sub.PriceCents,
		&startDateStr,
		&endDate,
		&nextServiceDate,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Subscription{}, err
	}

	if preferredWeekday.Valid {
		weekday := int(preferredWeekday.Int64)
		sub.PreferredWeekday = &weekday
	}
	if endDate.Valid {
		date, err := parseDate(endDate.String)
		if err != nil {
			return persistence.Subscription{}, fmt.Errorf("failed to parse end_date: %w", err)
		}
		sub.EndDate = &date
	}
	if nextServiceDate.Valid {
		date, err := parseDate(nextServiceDate.String)
		if err != nil {
			return persistence.Subscription{}, fmt.Errorf("failed to parse next_service_date: %w", err)
		}
		sub.NextServiceDate = &date
	}

	if sub.StartDate, err = parseDate(startDateStr); err != nil {
		return persistence.Subscription{}, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if sub.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Subscription{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if sub.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Subscription{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return sub, nil
}
