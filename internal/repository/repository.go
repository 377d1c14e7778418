// Package repository provides data access interfaces and PostgreSQL
// implementations for the ranking service.
//
// Repositories follow the repository pattern to keep persistence out of the
// ranking engine. All implementations are safe for concurrent use; the
// underlying pgxpool handles connection pooling and synchronization.
//
// Methods return domain-specific errors from the domain package, wrapping
// database errors with fmt.Errorf and the %w verb:
//
//   - domain.ErrNotFound: resource does not exist
//   - domain.ErrInvalidInput: invalid parameters provided
//
// Repositories are created at application startup and passed to services:
//
//	db, _ := database.New(ctx, cfg, logger)
//	journalRepo := repository.NewPgJournalRepository(db)
package repository

import (
	"github.com/arsp/ranking-service/internal/database"
)

// DBTX is the database interface supporting both pool and transaction
// contexts. Repositories accept DBTX so they work with a direct pool
// connection, inside database.DB.WithTransaction with a pgx.Tx, or with a
// mock in tests.
type DBTX = database.DBTX

// Result limits for search queries.
const (
	defaultFilterLimit = 100
	maxFilterLimit     = 1000
)
