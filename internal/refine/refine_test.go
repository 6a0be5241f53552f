package refine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/ai"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/compress"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/config"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/manifest"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/mocks"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/refine"
)

const gameContent = `<!DOCTYPE html><html><body><script>const speed = 5; run();</script></body></html>`

func testEngineConfig() *config.Config {
	return &config.Config{
		GenTemperature:    0.7,
		RefineThinkBudget: 8192,
		RefineMaxTokens:   32768,
	}
}

func builtGame(t *testing.T) *models.GeneratedGame {
	t.Helper()
	bp := models.Blueprint{
		Spec: models.QuantizedSpec{Title: "Neon Orbit", Summary: "Dodge debris."},
	}
	prefs := models.UserPreferences{Seed: "abc123", Quality: models.QualitySketch, Platform: "Web"}
	m, err := manifest.Build(bp, gameContent, prefs, "")
	require.NoError(t, err)
	return &models.GeneratedGame{
		ID:          uuid.New(),
		Preferences: prefs,
		Blueprint:   bp,
		Artifact:    &models.Artifact{Content: gameContent, Instructions: "Use the arrow keys."},
		Manifest:    &m,
	}
}

func expectPlan(m *mocks.MockAIClient, response string) {
	m.On("Generate", mock.Anything, "refine", mock.Anything).
		Return(response, ai.UsageInfo{}, nil).Once()
}

func TestRefineAppliesSinglePatch(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	expectPlan(mockAI, `{"editMode":"patch","edits":[{"search":"const speed = 5;","replace":"const speed = 9;"}]}`)

	engine := refine.NewEngine(mockAI, testEngineConfig(), zap.NewNop())
	game := builtGame(t)
	priorHash := game.Manifest.BuildHash

	refined, err := engine.Refine(context.Background(), game, "make the game faster")
	require.NoError(t, err)

	expected := strings.Replace(gameContent, "const speed = 5;", "const speed = 9;", 1)
	assert.Equal(t, expected, refined.Artifact.Content)
	// no new instructions in the plan, prior ones are retained
	assert.Equal(t, "Use the arrow keys.", refined.Artifact.Instructions)

	assert.Equal(t, priorHash, refined.Manifest.ParentHash)
	assert.Equal(t, manifest.HashContent(expected), refined.Manifest.BuildHash)
	assert.Equal(t, game.Manifest.SpecHash, refined.Manifest.SpecHash)
	assert.Equal(t, game.ID, refined.ID)

	// the caller's value must be untouched
	assert.Equal(t, gameContent, game.Artifact.Content)
	assert.Empty(t, game.Manifest.ParentHash)

	mockAI.AssertExpectations(t)
}

func TestRefinePartialPatchApplication(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	expectPlan(mockAI, `{"editMode":"patch","edits":[{"search":"nothing like this exists","replace":"x"},{"search":"run();","replace":"run(); hud();"}]}`)

	engine := refine.NewEngine(mockAI, testEngineConfig(), zap.NewNop())

	refined, err := engine.Refine(context.Background(), builtGame(t), "add a hud")
	require.NoError(t, err)

	assert.Contains(t, refined.Artifact.Content, "run(); hud();")
	assert.NotContains(t, refined.Artifact.Content, "x")

	mockAI.AssertExpectations(t)
}

func TestRefineRewriteReplacesEverything(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	expectPlan(mockAI, `{"editMode":"rewrite","fullCode":"<!DOCTYPE html><html><body>rebuilt</body></html>","instructions":"Click to play."}`)

	engine := refine.NewEngine(mockAI, testEngineConfig(), zap.NewNop())
	game := builtGame(t)

	refined, err := engine.Refine(context.Background(), game, "rebuild the whole scene")
	require.NoError(t, err)

	assert.Equal(t, "<!DOCTYPE html><html><body>rebuilt</body></html>", refined.Artifact.Content)
	assert.Equal(t, "Click to play.", refined.Artifact.Instructions)
	assert.Equal(t, game.Manifest.BuildHash, refined.Manifest.ParentHash)

	mockAI.AssertExpectations(t)
}

func TestRefineSendsCompressedContext(t *testing.T) {
	longArray := "[1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15]"
	content := `<!DOCTYPE html><script>const mesh = ` + longArray + `; const speed = 5;</script>`

	mockAI := mocks.NewMockAIClient(t)
	mockAI.On("Generate", mock.Anything, "refine", mock.Anything).
		Return(`{"editMode":"patch","edits":[{"search":"const speed = 5;","replace":"const speed = 6;"}]}`, ai.UsageInfo{}, nil).
		Once().
		Run(func(args mock.Arguments) {
			req := args.Get(2).(ai.Request)
			assert.Contains(t, req.UserPrompt, compress.ArrayPlaceholder)
			assert.NotContains(t, req.UserPrompt, longArray)
		})

	engine := refine.NewEngine(mockAI, testEngineConfig(), zap.NewNop())
	game := builtGame(t)
	game.Artifact.Content = content
	game.Manifest = nil

	refined, err := engine.Refine(context.Background(), game, "speed up slightly")
	require.NoError(t, err)
	// the edit applies against the full artifact, so the array survives
	assert.Contains(t, refined.Artifact.Content, longArray)
	assert.Contains(t, refined.Artifact.Content, "const speed = 6;")
	assert.Equal(t, manifest.HashContent(content), refined.Manifest.ParentHash)

	mockAI.AssertExpectations(t)
}

func TestRefineSkipsPlaceholderTargets(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	expectPlan(mockAI, `{"editMode":"patch","edits":[{"search":"`+compress.ArrayPlaceholder+`","replace":"[]"},{"search":"","replace":"y"}]}`)

	engine := refine.NewEngine(mockAI, testEngineConfig(), zap.NewNop())

	refined, err := engine.Refine(context.Background(), builtGame(t), "clean up data")
	require.NoError(t, err)
	// both edits are skipped, the content is unchanged
	assert.Equal(t, gameContent, refined.Artifact.Content)

	mockAI.AssertExpectations(t)
}

func TestRefineProviderFailureLeavesGameUntouched(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	mockAI.On("Generate", mock.Anything, "refine", mock.Anything).
		Return("", ai.UsageInfo{}, models.NewProviderError(models.ProviderErrTransport, errors.New("connection reset"))).Once()

	engine := refine.NewEngine(mockAI, testEngineConfig(), zap.NewNop())
	game := builtGame(t)

	_, err := engine.Refine(context.Background(), game, "make it faster")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refine phase:")
	assert.Equal(t, gameContent, game.Artifact.Content)
	assert.Empty(t, game.Manifest.ParentHash)

	mockAI.AssertExpectations(t)
}

func TestRefineRewriteWithoutBodyFails(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	expectPlan(mockAI, `{"editMode":"rewrite"}`)

	engine := refine.NewEngine(mockAI, testEngineConfig(), zap.NewNop())

	_, err := engine.Refine(context.Background(), builtGame(t), "rebuild it")
	require.Error(t, err)

	var valErr *models.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, []string{"fullCode"}, valErr.Missing)

	mockAI.AssertExpectations(t)
}

func TestRefineUnknownEditModeFails(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	expectPlan(mockAI, `{"editMode":"merge","edits":[]}`)

	engine := refine.NewEngine(mockAI, testEngineConfig(), zap.NewNop())

	_, err := engine.Refine(context.Background(), builtGame(t), "merge the changes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown edit mode "merge"`)

	mockAI.AssertExpectations(t)
}

func TestRefinePreconditions(t *testing.T) {
	engine := refine.NewEngine(mocks.NewMockAIClient(t), testEngineConfig(), zap.NewNop())

	_, err := engine.Refine(context.Background(), nil, "do something")
	assert.ErrorIs(t, err, models.ErrNoArtifact)

	game := builtGame(t)
	game.Artifact = nil
	_, err = engine.Refine(context.Background(), game, "do something")
	assert.ErrorIs(t, err, models.ErrNoArtifact)

	_, err = engine.Refine(context.Background(), builtGame(t), "   ")
	assert.ErrorIs(t, err, models.ErrEmptyInstruction)
}
