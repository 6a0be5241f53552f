package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/ai"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/config"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/manifest"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/messaging"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/mocks"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/pipeline"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/refine"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/service"
)

const (
	quantizeResponse = `{"title":"Neon Orbit","summary":"Dodge debris inside a glowing ring station.","mechanics":["steer","boost","score"],"visualRequirements":["neon ring","tumbling debris","starfield"]}`

	architectResponse = `{"engine":"three.js","language":"JavaScript","architecture":{"style":"game-loop","description":"One loop advancing simulation and rendering.","nodes":[{"name":"Loop","type":"system","description":"Advances simulation each frame."}]},"techStack":[{"category":"rendering","name":"three.js","reason":"lightweight scene graph"}],"prerequisites":[{"item":"Modern browser","importance":"Critical"}]}`

	soundscapeResponse = `{"description":"Pulsing synth hum under sparse blips.","backgroundMusic":"const audioCtx = new AudioContext();","soundEffects":[{"name":"boost","trigger":"boost","code":"osc.start();"}]}`

	buildContent  = `<!DOCTYPE html><html><body><canvas id="game"></canvas><script>const speed = 5;</script></body></html>`
	buildResponse = `{"content":"<!DOCTYPE html><html><body><canvas id=\"game\"></canvas><script>const speed = 5;</script></body></html>","instructions":"Arrow keys to steer."}`

	patchPlanResponse = `{"editMode":"patch","edits":[{"search":"const speed = 5;","replace":"const speed = 9;"}]}`
)

type serviceFixture struct {
	ai       *mocks.MockAIClient
	repo     *mocks.MockGameRepository
	cache    *mocks.MockGameCache
	notifier *mocks.MockProgressNotifier
	svc      service.GameService
}

func newFixture(t *testing.T) *serviceFixture {
	cfg := &config.Config{
		GenTemperature:        0.7,
		QuantizeThinkBudget:   1024,
		QuantizeMaxTokens:     2048,
		ArchitectThinkBudget:  2048,
		ArchitectMaxTokens:    4096,
		SoundscapeThinkBudget: 2048,
		SoundscapeMaxTokens:   8192,
		BuildThinkBudget:      16384,
		BuildMaxTokens:        32768,
		RefineThinkBudget:     8192,
		RefineMaxTokens:       32768,
	}

	f := &serviceFixture{
		ai:       mocks.NewMockAIClient(t),
		repo:     mocks.NewMockGameRepository(t),
		cache:    mocks.NewMockGameCache(t),
		notifier: mocks.NewMockProgressNotifier(t),
	}
	logger := zap.NewNop()
	f.svc = service.NewGameService(
		pipeline.NewService(f.ai, cfg, logger),
		refine.NewEngine(f.ai, cfg, logger),
		f.repo,
		f.cache,
		f.notifier,
		logger,
	)
	return f
}

func testPrefs() models.UserPreferences {
	return models.UserPreferences{
		Genre:    "Arcade",
		Seed:     "abc123",
		Quality:  models.QualitySketch,
		Platform: "Web",
		Engine:   "three.js",
		Concept:  "dodge debris inside a ring station",
	}
}

func expectPhase(m *mocks.MockAIClient, phase, response string) {
	m.On("Generate", mock.Anything, phase, mock.Anything).
		Return(response, ai.UsageInfo{}, nil).Once()
}

// storedGame assembles a persisted game the way a finished pipeline run
// leaves it, ready to be refined.
func storedGame(t *testing.T) *models.GeneratedGame {
	t.Helper()

	bp := models.Blueprint{
		Spec:         models.QuantizedSpec{Title: "Neon Orbit", Summary: "Dodge debris."},
		Architecture: models.ArchitectureDescription{Engine: "three.js", Language: "JavaScript"},
	}
	m, err := manifest.Build(bp, buildContent, testPrefs(), "")
	require.NoError(t, err)

	now := time.Now().UTC()
	return &models.GeneratedGame{
		ID:          uuid.New(),
		Preferences: testPrefs(),
		Blueprint:   bp,
		Artifact:    &models.Artifact{Content: buildContent, Instructions: "Arrow keys to steer."},
		Audio:       &models.AudioBundle{Description: "Pulsing synth hum.", SoundEffects: []models.SoundEffect{}},
		Manifest:    &m,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateGamePersistsCachesAndRecordsLineage(t *testing.T) {
	f := newFixture(t)
	expectPhase(f.ai, "quantize", quantizeResponse)
	expectPhase(f.ai, "architect", architectResponse)
	expectPhase(f.ai, "soundscape", soundscapeResponse)
	expectPhase(f.ai, "build", buildResponse)

	var phases []string
	f.notifier.On("NotifyProgress", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			event := args.Get(1).(messaging.ProgressEvent)
			phases = append(phases, event.Phase)
			assert.NotEmpty(t, event.TaskID)
		}).
		Return(nil)

	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.repo.On("AddRevision", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			rev := args.Get(1).(*models.GameRevision)
			assert.Equal(t, manifest.HashContent(buildContent), rev.BuildHash)
			assert.Empty(t, rev.ParentHash)
		}).
		Return(nil).Once()
	f.cache.On("Set", mock.Anything, mock.Anything).Return(nil).Once()

	game, err := f.svc.CreateGame(context.Background(), testPrefs())
	require.NoError(t, err)
	require.NotNil(t, game.Manifest)

	assert.Equal(t, "Neon Orbit", game.Blueprint.Spec.Title)
	assert.Equal(t, buildContent, game.Artifact.Content)
	assert.Equal(t, []string{"Quantizing", "Architecting", "Sounding", "Building", "Done"}, phases)

	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.ai.AssertExpectations(t)
}

func TestCreateGameSurvivesNotifierFailure(t *testing.T) {
	f := newFixture(t)
	expectPhase(f.ai, "quantize", quantizeResponse)
	expectPhase(f.ai, "architect", architectResponse)
	expectPhase(f.ai, "soundscape", soundscapeResponse)
	expectPhase(f.ai, "build", buildResponse)

	f.notifier.On("NotifyProgress", mock.Anything, mock.Anything).
		Return(errors.New("channel closed"))
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	f.repo.On("AddRevision", mock.Anything, mock.Anything).Return(nil).Once()
	f.cache.On("Set", mock.Anything, mock.Anything).Return(nil).Once()

	game, err := f.svc.CreateGame(context.Background(), testPrefs())
	require.NoError(t, err)
	assert.NotNil(t, game.Artifact)
}

func TestCreateGamePipelineFailureSkipsPersistence(t *testing.T) {
	f := newFixture(t)
	f.ai.On("Generate", mock.Anything, "quantize", mock.Anything).
		Return("", ai.UsageInfo{}, models.NewProviderError(models.ProviderErrQuota, errors.New("rate limited"))).Once()
	f.notifier.On("NotifyProgress", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.CreateGame(context.Background(), testPrefs())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantize phase:")

	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestCreateGameRepositoryFailure(t *testing.T) {
	f := newFixture(t)
	expectPhase(f.ai, "quantize", quantizeResponse)
	expectPhase(f.ai, "architect", architectResponse)
	expectPhase(f.ai, "soundscape", soundscapeResponse)
	expectPhase(f.ai, "build", buildResponse)

	f.notifier.On("NotifyProgress", mock.Anything, mock.Anything).Return(nil)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	_, err := f.svc.CreateGame(context.Background(), testPrefs())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist generated game")
	f.cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestRefineGameUpdatesSameGameWithNewLineage(t *testing.T) {
	f := newFixture(t)
	game := storedGame(t)
	priorBuildHash := game.Manifest.BuildHash

	f.cache.On("Get", mock.Anything, game.ID).Return(game, nil).Once()
	expectPhase(f.ai, "refine", patchPlanResponse)

	var phases []string
	f.notifier.On("NotifyProgress", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			event := args.Get(1).(messaging.ProgressEvent)
			phases = append(phases, event.Phase)
			assert.Equal(t, game.ID.String(), event.GameID)
		}).
		Return(nil)

	f.repo.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	f.repo.On("AddRevision", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			rev := args.Get(1).(*models.GameRevision)
			assert.Equal(t, game.ID, rev.GameID)
			assert.Equal(t, priorBuildHash, rev.ParentHash)
		}).
		Return(nil).Once()
	f.cache.On("Set", mock.Anything, mock.Anything).Return(nil).Once()

	refined, err := f.svc.RefineGame(context.Background(), game.ID, "Make the ship faster")
	require.NoError(t, err)

	assert.Equal(t, game.ID, refined.ID)
	assert.Contains(t, refined.Artifact.Content, "const speed = 9;")
	assert.Equal(t, priorBuildHash, refined.Manifest.ParentHash)
	assert.Equal(t, []string{"Refining", "Done"}, phases)

	f.repo.AssertExpectations(t)
}

func TestRefineGameFailurePublishesFailedEvent(t *testing.T) {
	f := newFixture(t)
	game := storedGame(t)

	f.cache.On("Get", mock.Anything, game.ID).Return(game, nil).Once()
	f.ai.On("Generate", mock.Anything, "refine", mock.Anything).
		Return("", ai.UsageInfo{}, models.NewProviderError(models.ProviderErrTransport, errors.New("timeout"))).Once()

	var phases []string
	f.notifier.On("NotifyProgress", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			phases = append(phases, args.Get(1).(messaging.ProgressEvent).Phase)
		}).
		Return(nil)

	_, err := f.svc.RefineGame(context.Background(), game.ID, "Make the ship faster")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refine phase:")
	assert.Equal(t, []string{"Refining", "Failed"}, phases)

	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestGetGameCacheHitSkipsDatabase(t *testing.T) {
	f := newFixture(t)
	game := storedGame(t)

	f.cache.On("Get", mock.Anything, game.ID).Return(game, nil).Once()

	got, err := f.svc.GetGame(context.Background(), game.ID)
	require.NoError(t, err)
	assert.Equal(t, game.ID, got.ID)

	f.repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetGameFallsBackToDatabase(t *testing.T) {
	f := newFixture(t)
	game := storedGame(t)

	f.cache.On("Get", mock.Anything, game.ID).Return(nil, models.ErrNotFound).Once()
	f.repo.On("GetByID", mock.Anything, game.ID).Return(game, nil).Once()
	f.cache.On("Set", mock.Anything, game).Return(nil).Once()

	got, err := f.svc.GetGame(context.Background(), game.ID)
	require.NoError(t, err)
	assert.Equal(t, game.ID, got.ID)

	f.cache.AssertExpectations(t)
	f.repo.AssertExpectations(t)
}

func TestListRevisionsUnknownGame(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	f.cache.On("Get", mock.Anything, id).Return(nil, models.ErrNotFound).Once()
	f.repo.On("GetByID", mock.Anything, id).Return(nil, models.ErrGameNotFound).Once()

	_, err := f.svc.ListRevisions(context.Background(), id)
	require.ErrorIs(t, err, models.ErrGameNotFound)

	f.repo.AssertNotCalled(t, "ListRevisions", mock.Anything, mock.Anything)
}

func TestListRevisionsReturnsLineage(t *testing.T) {
	f := newFixture(t)
	game := storedGame(t)
	revisions := []models.GameRevision{
		{ID: 1, GameID: game.ID, BuildHash: "sha256:aaa", Manifest: *game.Manifest},
		{ID: 2, GameID: game.ID, BuildHash: "sha256:bbb", ParentHash: "sha256:aaa", Manifest: *game.Manifest},
	}

	f.cache.On("Get", mock.Anything, game.ID).Return(game, nil).Once()
	f.repo.On("ListRevisions", mock.Anything, game.ID).Return(revisions, nil).Once()

	got, err := f.svc.ListRevisions(context.Background(), game.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "sha256:aaa", got[1].ParentHash)
}
