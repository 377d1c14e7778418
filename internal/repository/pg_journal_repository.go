package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/arsp/ranking-service/internal/domain"
)

// Compile-time interface verification.
var _ JournalRepository = (*PgJournalRepository)(nil)

const journalColumns = `id, name, description, domain, publisher, url,
		impact_factor, is_open_access, publication_time_months,
		created_at, updated_at`

// PgJournalRepository is a PostgreSQL implementation of JournalRepository.
type PgJournalRepository struct {
	db DBTX
}

// NewPgJournalRepository creates a new PostgreSQL journal repository.
func NewPgJournalRepository(db DBTX) *PgJournalRepository {
	return &PgJournalRepository{db: db}
}

// Upsert inserts a journal or updates an existing one matched by name.
func (r *PgJournalRepository) Upsert(ctx context.Context, journal *domain.Journal) (*domain.Journal, error) {
	if journal == nil {
		return nil, domain.NewValidationError("journal", "journal cannot be nil")
	}
	if journal.Name == "" {
		return nil, domain.NewValidationError("name", "journal name is required")
	}

	if journal.ID == uuid.Nil {
		journal.ID = uuid.New()
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO journals (
			id, name, description, domain, publisher, url,
			impact_factor, is_open_access, publication_time_months,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10
		)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			domain = EXCLUDED.domain,
			publisher = EXCLUDED.publisher,
			url = EXCLUDED.url,
			impact_factor = EXCLUDED.impact_factor,
			is_open_access = EXCLUDED.is_open_access,
			publication_time_months = EXCLUDED.publication_time_months,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		journal.ID,
		journal.Name,
		journal.Description,
		journal.Domain,
		journal.Publisher,
		journal.URL,
		journal.ImpactFactor,
		journal.IsOpenAccess,
		journal.PublicationTimeMonths,
		now,
	).Scan(&journal.ID, &journal.CreatedAt, &journal.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert journal: %w", err)
	}

	return journal, nil
}

// GetByID retrieves a journal by its UUID.
func (r *PgJournalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Journal, error) {
	query := fmt.Sprintf(`SELECT %s FROM journals WHERE id = $1`, journalColumns)

	var journal domain.Journal
	err := r.db.QueryRow(ctx, query, id).Scan(journalScanDest(&journal)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("journal", id.String())
		}
		return nil, fmt.Errorf("failed to get journal by ID: %w", err)
	}

	return &journal, nil
}

// List retrieves journals matching the filter criteria.
func (r *PgJournalRepository) List(ctx context.Context, filter domain.JournalFilter) ([]domain.Journal, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.OpenAccessOnly {
		conditions = append(conditions, "is_open_access = true")
	}

	if filter.MinImpactFactor > 0 {
		conditions = append(conditions, fmt.Sprintf("impact_factor >= $%d", argIndex))
		args = append(args, filter.MinImpactFactor)
		argIndex++
	}

	if filter.MaxTimeToPublishMonths > 0 {
		conditions = append(conditions, fmt.Sprintf("publication_time_months <= $%d", argIndex))
		args = append(args, filter.MaxTimeToPublishMonths)
		argIndex++
	}

	if filter.Domain != "" {
		conditions = append(conditions, fmt.Sprintf("domain = $%d", argIndex))
		args = append(args, filter.Domain)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM journals %s ORDER BY name ASC`, journalColumns, whereClause)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	defer rows.Close()

	return scanJournals(rows)
}

// Search retrieves journals whose name or description contains the query.
func (r *PgJournalRepository) Search(ctx context.Context, query string, limit int) ([]domain.Journal, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("query", "search query is required")
	}
	if limit <= 0 {
		limit = defaultFilterLimit
	}
	if limit > maxFilterLimit {
		limit = maxFilterLimit
	}

	sqlQuery := fmt.Sprintf(`
		SELECT %s FROM journals
		WHERE name ILIKE $1 OR description ILIKE $1
		ORDER BY impact_factor DESC, name ASC
		LIMIT $2`, journalColumns)

	rows, err := r.db.Query(ctx, sqlQuery, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search journals: %w", err)
	}
	defer rows.Close()

	return scanJournals(rows)
}

// Delete removes a journal from the catalog.
func (r *PgJournalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM journals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete journal: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("journal", id.String())
	}

	return nil
}

// journalScanDest returns the scan destinations matching journalColumns.
func journalScanDest(j *domain.Journal) []interface{} {
	return []interface{}{
		&j.ID, &j.Name, &j.Description, &j.Domain, &j.Publisher, &j.URL,
		&j.ImpactFactor, &j.IsOpenAccess, &j.PublicationTimeMonths,
		&j.CreatedAt, &j.UpdatedAt,
	}
}

// scanJournals collects all rows into a journal slice.
func scanJournals(rows pgx.Rows) ([]domain.Journal, error) {
	journals := make([]domain.Journal, 0)
	for rows.Next() {
		var journal domain.Journal
		if err := rows.Scan(journalScanDest(&journal)...); err != nil {
			return nil, fmt.Errorf("failed to scan journal: %w", err)
		}
		journals = append(journals, journal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journals: %w", err)
	}

	return journals, nil
}
