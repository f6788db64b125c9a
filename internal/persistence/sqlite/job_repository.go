package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

// JobRepository implements persistence.JobRepository using SQLite.
type JobRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewJobRepository creates a new SQLite job repository.
func NewJobRepository(pool *ConnectionPool) *JobRepository {
	return &JobRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const jobColumns = `id, org_id, client_id, location_id, subscription_id, scheduled_date, status,
	price_cents, assigned_tech_id, completed_at, skipped_reason, created_at, updated_at`

// InsertJobs persists the provided jobs inside a single transaction and
// returns the number of rows actually created. Rows that collide with the
// unique (subscription, scheduled date) index are counted as already
// present and skipped, which keeps concurrent regeneration idempotent.
func (r *JobRepository) InsertJobs(ctx context.Context, jobs []persistence.Job) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		INSERT INTO jobs (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, jobColumns)

	created := 0
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, job := range jobs {
			if job.ID == "" || job.OrgID == "" {
				return persistence.ErrConstraintViolation
			}

			now := time.Now().UTC()
			if job.CreatedAt.IsZero() {
				job.CreatedAt = now
			}
			job.UpdatedAt = now

			result, err := r.helper.ExecTx(tx, query,
				job.ID,
				job.OrgID,
				job.ClientID,
				job.LocationID,
				nullString(job.SubscriptionID),
				formatDate(job.ScheduledDate),
				job.Status,
				job.PriceCents,
				nullString(job.AssignedTechID),
				nullTime(job.CompletedAt),
				nullString(job.SkippedReason),
				formatTime(job.CreatedAt),
				formatTime(job.UpdatedAt),
			)
			if err != nil {
				return r.mapper.MapError(err)
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			created += int(affected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

// UpdateJob overwrites mutable job state.
func (r *JobRepository) UpdateJob(ctx context.Context, job persistence.Job) error {
	if job.ID == "" || job.OrgID == "" {
		return persistence.ErrConstraintViolation
	}

	job.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE jobs
		SET status = ?, price_cents = ?, assigned_tech_id = ?, completed_at = ?, skipped_reason = ?, scheduled_date = ?, updated_at = ?
		WHERE id = ? AND org_id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		job.Status,
		job.PriceCents,
		nullString(job.AssignedTechID),
		nullTime(job.CompletedAt),
		nullString(job.SkippedReason),
		formatDate(job.ScheduledDate),
		formatTime(job.UpdatedAt),
		job.ID,
		job.OrgID,
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

// GetJob retrieves a job scoped to the organization.
func (r *JobRepository) GetJob(ctx context.Context, orgID, id string) (persistence.Job, error) {
	if orgID == "" || id == "" {
		return persistence.Job{}, persistence.ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE id = ? AND org_id = ?`, jobColumns)
	job, err := scanJob(r.helper.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Job{}, persistence.ErrNotFound
		}
		return persistence.Job{}, r.mapper.MapError(err)
	}
	return job, nil
}

// ListJobs lists jobs for an organization narrowed by the filter, ordered by
// scheduled date then id.
func (r *JobRepository) ListJobs(ctx context.Context, orgID string, filter persistence.JobFilter) ([]persistence.Job, error) {
	query, args := buildJobListQuery(orgID, filter)

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var jobs []persistence.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return jobs, nil
}

// EarliestScheduledDate returns the soonest SCHEDULED job date for the
// subscription, or nil when none remain. Used to maintain the cached
// next-service-date on subscriptions.
func (r *JobRepository) EarliestScheduledDate(ctx context.Context, orgID, subscriptionID string) (*time.Time, error) {
	query := `
		SELECT MIN(scheduled_date) FROM jobs
		WHERE org_id = ? AND subscription_id = ? AND status = 'SCHEDULED'
	`

	var raw sql.NullString
	if err := r.helper.QueryRow(ctx, query, orgID, subscriptionID).Scan(&raw); err != nil {
		return nil, r.mapper.MapError(err)
	}
	if !raw.Valid {
		return nil, nil
	}

	date, err := parseDate(raw.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scheduled_date: %w", err)
	}
	return &date, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (persistence.Job, error) {
	var job persistence.Job
	var subscriptionID, assignedTech, completedAt, skippedReason sql.NullString
	var scheduledDateStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&job.ID,
		&job.OrgID,
		&job.ClientID,
		&job.LocationID,
		&subscriptionID,
		&scheduledDateStr,
		&job.Status,
		&job.PriceCents,
		&assignedTech,
		&completedAt,
		&skippedReason,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Job{}, err
	}

	if subscriptionID.Valid {
		job.SubscriptionID = &subscriptionID.String
	}
	if assignedTech.Valid {
		job.AssignedTechID = &assignedTech.String
	}
	if skippedReason.Valid {
		job.SkippedReason = &skippedReason.String
	}
	if completedAt.Valid {
		ts, err := parseTime(completedAt.String)
		if err != nil {
			return persistence.Job{}, fmt.Errorf("failed to parse completed_at: %w", err)
		}
		job.CompletedAt = &ts
	}

	if job.ScheduledDate, err = parseDate(scheduledDateStr); err != nil {
		return persistence.Job{}, fmt.Errorf("failed to parse scheduled_date: %w", err)
	}
	if job.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Job{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if job.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Job{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return job, nil
}

func buildJobListQuery(orgID string, filter persistence.JobFilter) (string, []any) {
	query := fmt.Sprintf(`SELECT %s FROM jobs`, jobColumns)

	conditions := []string{"org_id = ?"}
	args := []any{orgID}

	if filter.SubscriptionID != "" {
		conditions = append(conditions, "subscription_id = ?")
		args = append(args, filter.SubscriptionID)
	}
	if filter.AssignedTechID != "" {
		conditions = append(conditions, "assigned_tech_id = ?")
		args = append(args, filter.AssignedTechID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.From != nil {
		conditions = append(conditions, "scheduled_date >= ?")
		args = append(args, formatDate(*filter.From))
	}
	if filter.To != nil {
		// Exclusive upper bound: [from, to).
		conditions = append(conditions, "scheduled_date < ?")
		args = append(args, formatDate(*filter.To))
	}

	query += " WHERE " + strings.Join(conditions, " AND ")
	query += " ORDER BY scheduled_date ASC, id ASC"

	return query, args
}
