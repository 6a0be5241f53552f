package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/ai"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/config"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/manifest"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/mocks"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/pipeline"
)

const (
	quantizeResponse = `{"title":"Neon Orbit","summary":"Dodge debris inside a glowing ring station.","mechanics":["steer","boost","score"],"visualRequirements":["neon ring","tumbling debris","starfield"]}`

	architectResponse = `{"engine":"three.js","language":"JavaScript","architecture":{"style":"game-loop","description":"One loop advancing simulation and rendering.","nodes":[{"name":"Loop","type":"system","description":"Advances simulation each frame."}]},"techStack":[{"category":"rendering","name":"three.js","reason":"lightweight scene graph"}],"prerequisites":[{"item":"Modern browser","importance":"Critical"}]}`

	soundscapeResponse = `{"description":"Pulsing synth hum under sparse blips.","backgroundMusic":"const audioCtx = new AudioContext();","soundEffects":[{"name":"boost","trigger":"boost","code":"osc.start();"}]}`

	buildContent  = `<!DOCTYPE html><html><body><canvas id="game"></canvas></body></html>`
	buildResponse = `{"content":"<!DOCTYPE html><html><body><canvas id=\"game\"></canvas></body></html>","instructions":"Arrow keys to steer, space to boost."}`
)

func testConfig() *config.Config {
	return &config.Config{
		GenTemperature:        0.7,
		QuantizeThinkBudget:   1024,
		QuantizeMaxTokens:     2048,
		ArchitectThinkBudget:  2048,
		ArchitectMaxTokens:    4096,
		SoundscapeThinkBudget: 2048,
		SoundscapeMaxTokens:   8192,
		BuildThinkBudget:      16384,
		BuildMaxTokens:        32768,
	}
}

func testPrefs() models.UserPreferences {
	return models.UserPreferences{
		Genre:    "Arcade",
		Seed:     "abc123",
		Quality:  models.QualitySketch,
		Platform: "Web",
		Engine:   "three.js",
		Concept:  "dodge debris inside a ring station",
		Capabilities: models.Capabilities{
			GPUTier:   "mid",
			InputMode: "keyboard",
			Telemetry: true,
		},
	}
}

func expectPhase(m *mocks.MockAIClient, phase, response string) {
	m.On("Generate", mock.Anything, phase, mock.Anything).
		Return(response, ai.UsageInfo{}, nil).Once()
}

func TestGeneratePrototypeEndToEnd(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	expectPhase(mockAI, "quantize", quantizeResponse)
	expectPhase(mockAI, "architect", architectResponse)
	expectPhase(mockAI, "soundscape", soundscapeResponse)
	expectPhase(mockAI, "build", buildResponse)

	svc := pipeline.NewService(mockAI, testConfig(), zap.NewNop())

	var phases []pipeline.Phase
	collect := func(phase pipeline.Phase, message string) {
		phases = append(phases, phase)
		assert.NotEmpty(t, message)
	}

	bp, err := svc.GenerateBlueprint(context.Background(), testPrefs(), collect)
	require.NoError(t, err)
	assert.Equal(t, "Neon Orbit", bp.Spec.Title)
	assert.Equal(t, "three.js", bp.Architecture.Engine)

	game, err := svc.GeneratePrototype(context.Background(), bp, testPrefs(), nil, collect)
	require.NoError(t, err)
	require.NotNil(t, game.Artifact)
	require.NotNil(t, game.Audio)
	require.NotNil(t, game.Manifest)

	assert.Equal(t, buildContent, game.Artifact.Content)
	assert.Equal(t, "Arrow keys to steer, space to boost.", game.Artifact.Instructions)
	assert.Equal(t, "Pulsing synth hum under sparse blips.", game.Audio.Description)

	assert.Equal(t, manifest.HashContent(buildContent), game.Manifest.BuildHash)
	specHash, err := manifest.HashBlueprint(game.Blueprint)
	require.NoError(t, err)
	assert.Equal(t, specHash, game.Manifest.SpecHash)
	assert.Equal(t, "abc123", game.Manifest.Seed)
	assert.Equal(t, models.QualitySketch, game.Manifest.Quality)
	assert.Equal(t, "Web", game.Manifest.Platform)
	assert.Empty(t, game.Manifest.ParentHash)

	assert.Equal(t, []pipeline.Phase{
		pipeline.PhaseQuantizing,
		pipeline.PhaseArchitecting,
		pipeline.PhaseSounding,
		pipeline.PhaseBuilding,
		pipeline.PhaseDone,
	}, phases)

	mockAI.AssertExpectations(t)
}

func TestGeneratePrototypeAbsorbsSoundscapeFailure(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	mockAI.On("Generate", mock.Anything, "soundscape", mock.Anything).
		Return("", ai.UsageInfo{}, models.NewProviderError(models.ProviderErrTransport, errors.New("connection reset"))).Once()
	expectPhase(mockAI, "build", buildResponse)

	svc := pipeline.NewService(mockAI, testConfig(), zap.NewNop())

	bp := models.Blueprint{
		Spec: models.QuantizedSpec{Title: "Neon Orbit", Summary: "Dodge debris."},
	}
	game, err := svc.GeneratePrototype(context.Background(), bp, testPrefs(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, game.Audio)

	assert.Equal(t, pipeline.FallbackAudioDescription, game.Audio.Description)
	assert.NotNil(t, game.Audio.SoundEffects)
	assert.Empty(t, game.Audio.SoundEffects)

	mockAI.AssertExpectations(t)
}

func TestGeneratePrototypeSkipsSoundscapeWhenAudioSupplied(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	expectPhase(mockAI, "build", buildResponse)

	svc := pipeline.NewService(mockAI, testConfig(), zap.NewNop())

	audio := models.AudioBundle{Description: "Pre-composed score.", SoundEffects: []models.SoundEffect{}}
	game, err := svc.GeneratePrototype(context.Background(), models.Blueprint{}, testPrefs(), &audio, nil)
	require.NoError(t, err)
	assert.Equal(t, "Pre-composed score.", game.Audio.Description)

	mockAI.AssertExpectations(t)
}

func TestGenerateBlueprintQuantizeProviderFailure(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	mockAI.On("Generate", mock.Anything, "quantize", mock.Anything).
		Return("", ai.UsageInfo{}, models.NewProviderError(models.ProviderErrQuota, errors.New("rate limit reached"))).Once()

	svc := pipeline.NewService(mockAI, testConfig(), zap.NewNop())

	var phases []pipeline.Phase
	_, err := svc.GenerateBlueprint(context.Background(), testPrefs(), func(phase pipeline.Phase, message string) {
		phases = append(phases, phase)
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantize phase:")

	var provErr *models.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, models.ProviderErrQuota, provErr.Kind)

	assert.Equal(t, []pipeline.Phase{pipeline.PhaseQuantizing, pipeline.PhaseFailed}, phases)
	mockAI.AssertExpectations(t)
}

func TestGenerateBlueprintArchitectMissingFields(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	expectPhase(mockAI, "quantize", quantizeResponse)
	// engine and prerequisites present, language/architecture/techStack absent
	expectPhase(mockAI, "architect", `{"engine":"three.js","prerequisites":[]}`)

	svc := pipeline.NewService(mockAI, testConfig(), zap.NewNop())

	_, err := svc.GenerateBlueprint(context.Background(), testPrefs(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "architect phase:")

	var valErr *models.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, []string{"language", "architecture", "techStack"}, valErr.Missing)

	mockAI.AssertExpectations(t)
}

func TestGenerateBlueprintRecoversFencedResponse(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	expectPhase(mockAI, "quantize", "Here is the quantized spec:\n```json\n"+quantizeResponse+"\n```")
	expectPhase(mockAI, "architect", architectResponse)

	svc := pipeline.NewService(mockAI, testConfig(), zap.NewNop())

	bp, err := svc.GenerateBlueprint(context.Background(), testPrefs(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Neon Orbit", bp.Spec.Title)

	mockAI.AssertExpectations(t)
}

func TestGenerateBlueprintMalformedResponse(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	mockAI.On("Generate", mock.Anything, "quantize", mock.Anything).
		Return("I could not produce the requested structure.", ai.UsageInfo{}, nil).Once()

	svc := pipeline.NewService(mockAI, testConfig(), zap.NewNop())

	_, err := svc.GenerateBlueprint(context.Background(), testPrefs(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantize phase:")

	var malformed *models.MalformedResponseError
	assert.ErrorAs(t, err, &malformed)

	mockAI.AssertExpectations(t)
}
