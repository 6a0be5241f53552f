// Package service composes the generation pipeline, the refinement engine
// and storage into the operations the HTTP layer exposes.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
)

// GameService defines the application operations over generated games.
//
//go:generate mockery --name GameService --output ../mocks --outpkg mocks --case=underscore
type GameService interface {
	// CreateGame runs the full generation pipeline for a brief and persists
	// the resulting game with its first revision.
	CreateGame(ctx context.Context, prefs models.UserPreferences) (*models.GeneratedGame, error)

	// RefineGame applies one natural-language instruction to a stored game
	// and persists the refined build as a new revision of the same game.
	RefineGame(ctx context.Context, id uuid.UUID, instruction string) (*models.GeneratedGame, error)

	// GetGame returns a stored game, preferring the cache over the database.
	GetGame(ctx context.Context, id uuid.UUID) (*models.GeneratedGame, error)

	// ListRevisions returns the build lineage of a game, oldest first.
	// Returns models.ErrGameNotFound for an unknown game.
	ListRevisions(ctx context.Context, id uuid.UUID) ([]models.GameRevision, error)
}
