package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/brandonecarr/doogoodscoopers-sub002/internal/persistence"
)

// QuoteRepository implements persistence.QuoteRepository using SQLite.
type QuoteRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewQuoteRepository creates a new SQLite quote repository.
func NewQuoteRepository(pool *ConnectionPool) *QuoteRepository {
	return &QuoteRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const quoteColumns = `id, org_id, name, email, phone, zip, dog_count, yard_size,
	frequency_raw, status, notes, created_at, updated_at`

// CreateQuote inserts a new quote request row.
func (r *QuoteRepository) CreateQuote(ctx context.Context, quote persistence.QuoteRequest) error {
	if quote.ID == "" || quote.OrgID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	quote.CreatedAt = now
	quote.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO quote_requests (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, quoteColumns)

	_, err := r.helper.Exec(ctx, query,
		quote.ID,
		quote.OrgID,
		quote.Name,
		quote.Email,
		quote.Phone,
		quote.Zip,
		quote.DogCount,
		quote.YardSize,
		quote.FrequencyRaw,
		quote.Status,
		nullString(quote.Notes),
		formatTime(quote.CreatedAt),
		formatTime(quote.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateQuote overwrites mutable quote state.
func (r *QuoteRepository) UpdateQuote(ctx context.Context, quote persistence.QuoteRequest) error {
	if quote.ID == "" || quote.OrgID == "" {
		return persistence.ErrConstraintViolation
	}

	quote.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE quote_requests
		SET name = ?, email = ?, phone = ?, zip = ?, dog_count = ?, yard_size = ?,
			frequency_raw = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ? AND org_id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		quote.Name,
		quote.Email,
		quote.Phone,
		quote.Zip,
		quote.DogCount,
		quote.YardSize,
		quote.FrequencyRaw,
		quote.Status,
		nullString(quote.Notes),
		formatTime(quote.UpdatedAt),
		quote.ID,
		quote.OrgID,
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

// GetQuote retrieves a quote request scoped to the organization.
func (r *QuoteRepository) GetQuote(ctx context.Context, orgID, id string) (persistence.QuoteRequest, error) {
	if orgID == "" || id == "" {
		return persistence.QuoteRequest{}, persistence.ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM quote_requests WHERE id = ? AND org_id = ?`, quoteColumns)
	quote, err := scanQuote(r.helper.QueryRow(ctx, query, id, orgID))
	if err != nil {
		return persistence.QuoteRequest{}, r.mapper.MapError(err)
	}

	return quote, nil
}

// ListQuotes returns quote requests for the organization, optionally filtered
// by status, newest first.
func (r *QuoteRepository) ListQuotes(ctx context.Context, orgID string, status string) ([]persistence.QuoteRequest, error) {
	if orgID == "" {
		return nil, persistence.ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM quote_requests WHERE org_id = ?`, quoteColumns)
	args := []any{orgID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var quotes []persistence.QuoteRequest
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		quotes = append(quotes, quote)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return quotes, nil
}

func scanQuote(row rowScanner) (persistence.QuoteRequest, error) {
	var quote persistence.QuoteRequest
	var notes sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&quote.ID,
		&quote.OrgID,
		&quote.Name,
		&quote.Email,
		&quote.Phone,
		&quote.Zip,
		&quote.DogCount,
		&quote.YardSize,
		&quote.FrequencyRaw,
		&quote.Status,
		&notes,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.QuoteRequest{}, err
	}

	if notes.Valid {
		quote.Notes = &notes.String
	}
	if quote.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.QuoteRequest{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if quote.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.QuoteRequest{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return quote, nil
}
