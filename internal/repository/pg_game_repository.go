package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
)

const (
	createGameQuery = `
        INSERT INTO games
            (id, title, preferences, blueprint, artifact, audio, manifest, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	updateGameQuery = `
        UPDATE games SET
            title = $1, artifact = $2, audio = $3, manifest = $4, updated_at = $5
        WHERE id = $6
    `
	getGameByIDQuery = `
        SELECT id, title, preferences, blueprint, artifact, audio, manifest, created_at, updated_at
        FROM games
        WHERE id = $1
    `
	addRevisionQuery = `
        INSERT INTO game_revisions
            (game_id, spec_hash, build_hash, parent_hash, manifest, created_at)
        VALUES
            ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	listRevisionsQuery = `
        SELECT id, game_id, spec_hash, build_hash, parent_hash, manifest, created_at
        FROM game_revisions
        WHERE game_id = $1
        ORDER BY id
    `
)

// Compile-time check
var _ GameRepository = (*pgGameRepository)(nil)

type pgGameRepository struct {
	db     Querier
	logger *zap.Logger
}

// NewPgGameRepository creates the PostgreSQL-backed game repository.
func NewPgGameRepository(db Querier, logger *zap.Logger) GameRepository {
	return &pgGameRepository{
		db:     db,
		logger: logger.Named("PgGameRepo"),
	}
}

// gameRow mirrors the games table. The aggregate parts are stored as JSONB;
// artifact, audio and manifest stay NULL until their phase has produced them.
type gameRow struct {
	ID          uuid.UUID       `db:"id"`
	Title       string          `db:"title"`
	Preferences json.RawMessage `db:"preferences"`
	Blueprint   json.RawMessage `db:"blueprint"`
	Artifact    json.RawMessage `db:"artifact"`
	Audio       json.RawMessage `db:"audio"`
	Manifest    json.RawMessage `db:"manifest"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

type revisionRow struct {
	ID         int64           `db:"id"`
	GameID     uuid.UUID       `db:"game_id"`
	SpecHash   string          `db:"spec_hash"`
	BuildHash  string          `db:"build_hash"`
	ParentHash string          `db:"parent_hash"`
	Manifest   json.RawMessage `db:"manifest"`
	CreatedAt  time.Time       `db:"created_at"`
}

func marshalGame(game *models.GeneratedGame) (gameRow, error) {
	row := gameRow{
		ID:        game.ID,
		Title:     game.Title(),
		CreatedAt: game.CreatedAt,
		UpdatedAt: game.UpdatedAt,
	}

	var err error
	if row.Preferences, err = json.Marshal(game.Preferences); err != nil {
		return gameRow{}, fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if row.Blueprint, err = json.Marshal(game.Blueprint); err != nil {
		return gameRow{}, fmt.Errorf("failed to marshal blueprint: %w", err)
	}
	if game.Artifact != nil {
		if row.Artifact, err = json.Marshal(game.Artifact); err != nil {
			return gameRow{}, fmt.Errorf("failed to marshal artifact: %w", err)
		}
	}
	if game.Audio != nil {
		if row.Audio, err = json.Marshal(game.Audio); err != nil {
			return gameRow{}, fmt.Errorf("failed to marshal audio: %w", err)
		}
	}
	if game.Manifest != nil {
		if row.Manifest, err = json.Marshal(game.Manifest); err != nil {
			return gameRow{}, fmt.Errorf("failed to marshal manifest: %w", err)
		}
	}
	return row, nil
}

func (row *gameRow) toModel() (*models.GeneratedGame, error) {
	game := &models.GeneratedGame{
		ID:        row.ID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	if err := json.Unmarshal(row.Preferences, &game.Preferences); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	if err := json.Unmarshal(row.Blueprint, &game.Blueprint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal blueprint: %w", err)
	}
	if len(row.Artifact) > 0 {
		game.Artifact = &models.Artifact{}
		if err := json.Unmarshal(row.Artifact, game.Artifact); err != nil {
			return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
		}
	}
	if len(row.Audio) > 0 {
		game.Audio = &models.AudioBundle{}
		if err := json.Unmarshal(row.Audio, game.Audio); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audio: %w", err)
		}
	}
	if len(row.Manifest) > 0 {
		game.Manifest = &models.Manifest{}
		if err := json.Unmarshal(row.Manifest, game.Manifest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
		}
	}
	return game, nil
}

func (row *revisionRow) toModel() (models.GameRevision, error) {
	rev := models.GameRevision{
		ID:         row.ID,
		GameID:     row.GameID,
		SpecHash:   row.SpecHash,
		BuildHash:  row.BuildHash,
		ParentHash: row.ParentHash,
		CreatedAt:  row.CreatedAt,
	}
	if err := json.Unmarshal(row.Manifest, &rev.Manifest); err != nil {
		return models.GameRevision{}, fmt.Errorf("failed to unmarshal revision manifest: %w", err)
	}
	return rev, nil
}

// Create inserts a freshly generated game.
func (r *pgGameRepository) Create(ctx context.Context, game *models.GeneratedGame) error {
	row, err := marshalGame(game)
	if err != nil {
		return fmt.Errorf("failed to serialize game %s: %w", game.ID, err)
	}

	logFields := []zap.Field{zap.String("gameID", game.ID.String()), zap.String("title", row.Title)}
	r.logger.Debug("Creating game", logFields...)

	_, err = r.db.Exec(ctx, createGameQuery,
		row.ID,
		row.Title,
		row.Preferences,
		row.Blueprint,
		row.Artifact,
		row.Audio,
		row.Manifest,
		row.CreatedAt,
		row.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create game", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create game %s: %w", game.ID, err)
	}
	r.logger.Info("Game created successfully", logFields...)
	return nil
}

// Update persists a refined build over the stored game.
func (r *pgGameRepository) Update(ctx context.Context, game *models.GeneratedGame) error {
	row, err := marshalGame(game)
	if err != nil {
		return fmt.Errorf("failed to serialize game %s: %w", game.ID, err)
	}

	logFields := []zap.Field{zap.String("gameID", game.ID.String())}
	r.logger.Debug("Updating game", logFields...)

	commandTag, err := r.db.Exec(ctx, updateGameQuery,
		row.Title,
		row.Artifact,
		row.Audio,
		row.Manifest,
		row.UpdatedAt,
		row.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update game", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to update game %s: %w", game.ID, err)
	}
	if commandTag.RowsAffected() == 0 {
		r.logger.Warn("Attempted to update non-existent game", logFields...)
		return models.ErrGameNotFound
	}
	r.logger.Info("Game updated successfully", logFields...)
	return nil
}

// GetByID returns a stored game or models.ErrGameNotFound.
func (r *pgGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GeneratedGame, error) {
	logFields := []zap.Field{zap.String("gameID", id.String())}
	r.logger.Debug("Getting game by ID", logFields...)

	var row gameRow
	err := pgxscan.Get(ctx, r.db, &row, getGameByIDQuery, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Game not found by ID", logFields...)
			return nil, models.ErrGameNotFound
		}
		r.logger.Error("Failed to get game by ID", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}

	game, err := row.toModel()
	if err != nil {
		r.logger.Error("Failed to decode stored game", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to decode game %s: %w", id, err)
	}
	return game, nil
}

// AddRevision appends one lineage entry and fills in the generated ID.
func (r *pgGameRepository) AddRevision(ctx context.Context, rev *models.GameRevision) error {
	manifestJSON, err := json.Marshal(rev.Manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal revision manifest: %w", err)
	}

	logFields := []zap.Field{
		zap.String("gameID", rev.GameID.String()),
		zap.String("buildHash", rev.BuildHash),
	}
	r.logger.Debug("Recording game revision", logFields...)

	err = r.db.QueryRow(ctx, addRevisionQuery,
		rev.GameID,
		rev.SpecHash,
		rev.BuildHash,
		rev.ParentHash,
		manifestJSON,
		rev.CreatedAt,
	).Scan(&rev.ID)
	if err != nil {
		r.logger.Error("Failed to record game revision", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to record revision for game %s: %w", rev.GameID, err)
	}
	r.logger.Info("Game revision recorded", append(logFields, zap.Int64("revisionID", rev.ID))...)
	return nil
}

// ListRevisions returns every lineage entry for a game, oldest first.
func (r *pgGameRepository) ListRevisions(ctx context.Context, gameID uuid.UUID) ([]models.GameRevision, error) {
	logFields := []zap.Field{zap.String("gameID", gameID.String())}
	r.logger.Debug("Listing game revisions", logFields...)

	var rows []revisionRow
	if err := pgxscan.Select(ctx, r.db, &rows, listRevisionsQuery, gameID); err != nil {
		r.logger.Error("Failed to list game revisions", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to list revisions for game %s: %w", gameID, err)
	}

	revisions := make([]models.GameRevision, 0, len(rows))
	for i := range rows {
		rev, err := rows[i].toModel()
		if err != nil {
			r.logger.Error("Failed to decode stored revision", append(logFields, zap.Error(err))...)
			return nil, fmt.Errorf("failed to decode revision for game %s: %w", gameID, err)
		}
		revisions = append(revisions, rev)
	}
	return revisions, nil
}
