package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/messaging"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/pipeline"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/refine"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/repository"
)

// Compile-time check to ensure gameServiceImpl implements GameService
var _ GameService = (*gameServiceImpl)(nil)

type gameServiceImpl struct {
	pipeline *pipeline.Service
	refiner  *refine.Engine
	repo     repository.GameRepository
	cache    repository.GameCache
	notifier messaging.ProgressNotifier
	logger   *zap.Logger
}

// NewGameService creates the application service over the pipeline, the
// refinement engine and storage.
func NewGameService(
	pipe *pipeline.Service,
	refiner *refine.Engine,
	repo repository.GameRepository,
	cache repository.GameCache,
	notifier messaging.ProgressNotifier,
	logger *zap.Logger,
) GameService {
	return &gameServiceImpl{
		pipeline: pipe,
		refiner:  refiner,
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		logger:   logger.Named("GameService"),
	}
}

// CreateGame runs the full pipeline for a brief and persists the result.
func (s *gameServiceImpl) CreateGame(ctx context.Context, prefs models.UserPreferences) (*models.GeneratedGame, error) {
	taskID := uuid.NewString()
	logFields := []zap.Field{zap.String("taskID", taskID), zap.String("genre", prefs.Genre)}
	s.logger.Info("Starting game generation", logFields...)

	// The game ID does not exist until the prototype is assembled, so
	// creation events correlate on the task ID alone.
	onStatus := s.progressFunc(ctx, taskID, "")

	bp, err := s.pipeline.GenerateBlueprint(ctx, prefs, onStatus)
	if err != nil {
		s.logger.Error("Blueprint generation failed", append(logFields, zap.Error(err))...)
		return nil, err
	}

	game, err := s.pipeline.GeneratePrototype(ctx, bp, prefs, nil, onStatus)
	if err != nil {
		s.logger.Error("Prototype generation failed", append(logFields, zap.Error(err))...)
		return nil, err
	}

	if err := s.repo.Create(ctx, game); err != nil {
		s.logger.Error("Failed to persist generated game", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to persist generated game: %w", err)
	}
	s.recordRevision(ctx, game)
	s.cacheGame(ctx, game)

	s.logger.Info("Game generated",
		append(logFields,
			zap.String("gameID", game.ID.String()),
			zap.String("title", game.Title()),
			zap.String("buildHash", game.Manifest.BuildHash),
		)...)
	return game, nil
}

// RefineGame applies one instruction to a stored game and persists the
// refined build.
func (s *gameServiceImpl) RefineGame(ctx context.Context, id uuid.UUID, instruction string) (*models.GeneratedGame, error) {
	taskID := uuid.NewString()
	logFields := []zap.Field{zap.String("taskID", taskID), zap.String("gameID", id.String())}
	s.logger.Info("Starting game refinement", logFields...)

	game, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishProgress(ctx, taskID, id.String(), "Refining", "Applying your requested changes")

	refined, err := s.refiner.Refine(ctx, game, instruction)
	if err != nil {
		s.publishProgress(ctx, taskID, id.String(), string(pipeline.PhaseFailed), err.Error())
		s.logger.Error("Refinement failed", append(logFields, zap.Error(err))...)
		return nil, err
	}

	if err := s.repo.Update(ctx, refined); err != nil {
		s.logger.Error("Failed to persist refined game", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to persist refined game: %w", err)
	}
	s.recordRevision(ctx, refined)
	s.cacheGame(ctx, refined)
	s.publishProgress(ctx, taskID, id.String(), string(pipeline.PhaseDone), "Refined build ready")

	s.logger.Info("Game refined",
		append(logFields, zap.String("buildHash", refined.Manifest.BuildHash))...)
	return refined, nil
}

// GetGame returns a stored game, preferring the cache over the database.
func (s *gameServiceImpl) GetGame(ctx context.Context, id uuid.UUID) (*models.GeneratedGame, error) {
	game, err := s.cache.Get(ctx, id)
	if err == nil {
		s.logger.Debug("Game served from cache", zap.String("gameID", id.String()))
		return game, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Warn("Game cache lookup failed, falling back to database",
			zap.Error(err), zap.String("gameID", id.String()))
	}

	game, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheGame(ctx, game)
	return game, nil
}

// ListRevisions returns the build lineage of a game, oldest first.
func (s *gameServiceImpl) ListRevisions(ctx context.Context, id uuid.UUID) ([]models.GameRevision, error) {
	if _, err := s.GetGame(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListRevisions(ctx, id)
}

// progressFunc bridges pipeline status callbacks onto the progress queue.
func (s *gameServiceImpl) progressFunc(ctx context.Context, taskID, gameID string) pipeline.StatusFunc {
	return func(phase pipeline.Phase, message string) {
		s.publishProgress(ctx, taskID, gameID, string(phase), message)
	}
}

// publishProgress sends one advisory event. A failed publish is logged and
// never fails the operation that produced it.
func (s *gameServiceImpl) publishProgress(ctx context.Context, taskID, gameID, phase, message string) {
	event := messaging.ProgressEvent{
		TaskID:    taskID,
		GameID:    gameID,
		Phase:     phase,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err := s.notifier.NotifyProgress(ctx, event); err != nil {
		s.logger.Warn("Failed to publish progress event",
			zap.Error(err),
			zap.String("taskID", taskID),
			zap.String("phase", phase),
		)
	}
}

// recordRevision appends the manifest lineage entry for a completed build.
// Lineage recording is best effort; a failed insert is logged, not fatal.
func (s *gameServiceImpl) recordRevision(ctx context.Context, game *models.GeneratedGame) {
	if game.Manifest == nil {
		return
	}
	rev := &models.GameRevision{
		GameID:     game.ID,
		SpecHash:   game.Manifest.SpecHash,
		BuildHash:  game.Manifest.BuildHash,
		ParentHash: game.Manifest.ParentHash,
		Manifest:   *game.Manifest,
		CreatedAt:  game.Manifest.CreatedAt,
	}
	if err := s.repo.AddRevision(ctx, rev); err != nil {
		s.logger.Warn("Failed to record build revision",
			zap.Error(err),
			zap.String("gameID", game.ID.String()),
			zap.String("buildHash", game.Manifest.BuildHash),
		)
	}
}

func (s *gameServiceImpl) cacheGame(ctx context.Context, game *models.GeneratedGame) {
	if err := s.cache.Set(ctx, game); err != nil {
		s.logger.Warn("Failed to cache game",
			zap.Error(err), zap.String("gameID", game.ID.String()))
	}
}
