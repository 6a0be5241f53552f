// Package repository persists generated games and their revision lineage.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
)

// Querier is the subset of pgx operations the repositories use. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so the same repository can run
// inside or outside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GameRepository defines storage for generated games.
//
//go:generate mockery --name GameRepository --output ../mocks --outpkg mocks --case=underscore
type GameRepository interface {
	// Create inserts a freshly generated game.
	Create(ctx context.Context, game *models.GeneratedGame) error

	// Update persists a refined build: artifact, audio, manifest and the
	// updated timestamp. The identity, preferences and blueprint written at
	// creation never change. Returns models.ErrGameNotFound for an unknown ID.
	Update(ctx context.Context, game *models.GeneratedGame) error

	// GetByID returns a stored game or models.ErrGameNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.GeneratedGame, error)

	// AddRevision appends one lineage entry for a build. The generated
	// revision ID is written back into rev on success.
	AddRevision(ctx context.Context, rev *models.GameRevision) error

	// ListRevisions returns every lineage entry for a game, oldest first.
	// A game with no recorded builds yields an empty list, not an error.
	ListRevisions(ctx context.Context, gameID uuid.UUID) ([]models.GameRevision, error)
}

// GameCache is a read-through cache for full game aggregates keyed by ID.
//
//go:generate mockery --name GameCache --output ../mocks --outpkg mocks --case=underscore
type GameCache interface {
	// Get returns the cached game or models.ErrNotFound on a miss.
	Get(ctx context.Context, id uuid.UUID) (*models.GeneratedGame, error)

	// Set stores the game under its ID for the configured TTL.
	Set(ctx context.Context, game *models.GeneratedGame) error

	// Invalidate drops the cached entry for a game.
	Invalidate(ctx context.Context, id uuid.UUID) error
}
