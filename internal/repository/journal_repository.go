package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/arsp/ranking-service/internal/domain"
)

// JournalRepository handles journal catalog persistence. The ranking engine
// reads journals through List; the remaining methods serve the HTTP catalog
// endpoints and seed tooling.
type JournalRepository interface {
	// Upsert inserts a journal or updates an existing one matched by name.
	// The journal's ID and timestamps are populated on return.
	Upsert(ctx context.Context, journal *domain.Journal) (*domain.Journal, error)

	// GetByID retrieves a journal by its UUID.
	// Returns domain.ErrNotFound if no matching journal exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Journal, error)

	// List retrieves journals matching the filter criteria. A zero-value
	// filter returns the full catalog.
	List(ctx context.Context, filter domain.JournalFilter) ([]domain.Journal, error)

	// Search retrieves journals whose name or description contains the
	// query, case-insensitively, ordered by impact factor descending.
	Search(ctx context.Context, query string, limit int) ([]domain.Journal, error)

	// Delete removes a journal from the catalog.
	// Returns domain.ErrNotFound if no matching journal exists.
	Delete(ctx context.Context, id uuid.UUID) error
}
