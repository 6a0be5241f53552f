// Package pipeline orchestrates the sequential generation phases that turn a
// user brief into a runnable game artifact: quantize, architect, soundscape,
// build. Phases run strictly one after another; each issues exactly one
// provider request and validates its response before the next phase starts.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/ai"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/config"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/manifest"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/prompts"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/sanitize"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/schemas"
)

// Phase is one reported pipeline state.
type Phase string

const (
	PhaseQuantizing   Phase = "Quantizing"
	PhaseArchitecting Phase = "Architecting"
	PhaseSounding     Phase = "Sounding"
	PhaseBuilding     Phase = "Building"
	PhaseDone         Phase = "Done"
	PhaseFailed       Phase = "Failed"
)

// FallbackAudioDescription is carried by the degraded bundle a failed
// soundscape phase produces.
const FallbackAudioDescription = "Audio generation was unavailable for this build; the prototype runs silent."

// StatusFunc receives advisory progress notifications. It may be nil. It is
// called before each phase's provider request and has no effect on control
// flow.
type StatusFunc func(phase Phase, message string)

// Service runs the generation phases against an explicitly injected provider.
// It holds no mutable state; concurrent pipeline invocations are independent.
type Service struct {
	ai  ai.AIClient
	cfg *config.Config
	log *zap.Logger
}

// NewService wires the pipeline to its provider and configuration.
func NewService(aiClient ai.AIClient, cfg *config.Config, log *zap.Logger) *Service {
	return &Service{
		ai:  aiClient,
		cfg: cfg,
		log: log,
	}
}

// GenerateBlueprint runs the quantize and architect phases, merging their
// outputs into the blueprint later phases build from. A failure in either
// phase is fatal and comes back qualified with the phase name.
func (s *Service) GenerateBlueprint(ctx context.Context, prefs models.UserPreferences, onStatus StatusFunc) (models.Blueprint, error) {
	var bp models.Blueprint

	notify(onStatus, PhaseQuantizing, "Distilling your concept into a game spec")

	system, user := prompts.Quantize(prefs)
	schema, schemaName := schemas.Quantize()
	var spec models.QuantizedSpec
	err := s.runPhase(ctx, "quantize", ai.Request{
		SystemPrompt: system,
		UserPrompt:   user,
		SchemaName:   schemaName,
		Schema:       schema,
		Params:       s.params(s.cfg.QuantizeThinkBudget, s.cfg.QuantizeMaxTokens),
	}, schemas.QuantizeRequired, &spec)
	if err != nil {
		notify(onStatus, PhaseFailed, err.Error())
		return bp, err
	}
	s.log.Info("quantize phase complete",
		zap.String("title", spec.Title),
		zap.Int("mechanics", len(spec.Mechanics)))

	notify(onStatus, PhaseArchitecting, "Designing the technical architecture")

	system, user = prompts.Architect(prefs, spec)
	schema, schemaName = schemas.Architect()
	var arch models.ArchitectureDescription
	err = s.runPhase(ctx, "architect", ai.Request{
		SystemPrompt: system,
		UserPrompt:   user,
		SchemaName:   schemaName,
		Schema:       schema,
		Params:       s.params(s.cfg.ArchitectThinkBudget, s.cfg.ArchitectMaxTokens),
	}, schemas.ArchitectRequired, &arch)
	if err != nil {
		notify(onStatus, PhaseFailed, err.Error())
		return bp, err
	}
	s.log.Info("architect phase complete",
		zap.String("engine", arch.Engine),
		zap.String("style", arch.Architecture.Style),
		zap.Int("nodes", len(arch.Architecture.Nodes)))

	bp.Spec = spec
	bp.Architecture = arch
	return bp, nil
}

// GenerateSoundscape runs the audio phase. It never fails: any provider or
// validation error is logged and absorbed into a silent fallback bundle,
// because audio is best-effort and not required for a playable artifact.
func (s *Service) GenerateSoundscape(ctx context.Context, bp models.Blueprint, prefs models.UserPreferences, onStatus StatusFunc) models.AudioBundle {
	notify(onStatus, PhaseSounding, "Composing the soundscape")

	system, user := prompts.Soundscape(bp, prefs)
	schema, schemaName := schemas.Soundscape()
	var audio models.AudioBundle
	err := s.runPhase(ctx, "soundscape", ai.Request{
		SystemPrompt: system,
		UserPrompt:   user,
		SchemaName:   schemaName,
		Schema:       schema,
		Params:       s.params(s.cfg.SoundscapeThinkBudget, s.cfg.SoundscapeMaxTokens),
	}, schemas.SoundscapeRequired, &audio)
	if err != nil {
		s.log.Warn("soundscape phase failed, continuing without audio", zap.Error(err))
		return FallbackAudioBundle()
	}
	if audio.SoundEffects == nil {
		audio.SoundEffects = []models.SoundEffect{}
	}
	s.log.Info("soundscape phase complete", zap.Int("sound_effects", len(audio.SoundEffects)))
	return audio
}

// GeneratePrototype runs the build phase and assembles the full game
// aggregate. When audio is nil the soundscape phase runs first. A completed
// build always carries its manifest; its parent hash is empty because this is
// a first build, not a refinement.
func (s *Service) GeneratePrototype(ctx context.Context, bp models.Blueprint, prefs models.UserPreferences, audio *models.AudioBundle, onStatus StatusFunc) (*models.GeneratedGame, error) {
	if audio == nil {
		bundle := s.GenerateSoundscape(ctx, bp, prefs, onStatus)
		audio = &bundle
	}

	notify(onStatus, PhaseBuilding, "Building the playable prototype")

	system, user := prompts.Build(bp, prefs, *audio)
	schema, schemaName := schemas.Build()
	var artifact models.Artifact
	err := s.runPhase(ctx, "build", ai.Request{
		SystemPrompt: system,
		UserPrompt:   user,
		SchemaName:   schemaName,
		Schema:       schema,
		Params:       s.params(s.cfg.BuildThinkBudget, s.cfg.BuildMaxTokens),
	}, schemas.BuildRequired, &artifact)
	if err != nil {
		notify(onStatus, PhaseFailed, err.Error())
		return nil, err
	}

	m, err := manifest.Build(bp, artifact.Content, prefs, "")
	if err != nil {
		err = fmt.Errorf("build phase: %w", err)
		notify(onStatus, PhaseFailed, err.Error())
		return nil, err
	}

	now := time.Now().UTC()
	game := &models.GeneratedGame{
		ID:          uuid.New(),
		Preferences: prefs,
		Blueprint:   bp,
		Artifact:    &artifact,
		Audio:       audio,
		Manifest:    &m,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.log.Info("build phase complete",
		zap.String("game_id", game.ID.String()),
		zap.String("build_hash", m.BuildHash),
		zap.Int("artifact_bytes", len(artifact.Content)))
	notify(onStatus, PhaseDone, "Prototype ready")
	return game, nil
}

// FallbackAudioBundle is the degraded audio a failed soundscape phase yields:
// the fixed fallback description and an empty, non-nil effects list.
func FallbackAudioBundle() models.AudioBundle {
	return models.AudioBundle{
		Description:  FallbackAudioDescription,
		SoundEffects: []models.SoundEffect{},
	}
}

// runPhase issues one provider request, recovers the JSON payload from the
// raw response and decodes it into out. Every failure comes back qualified
// with the phase name; there are no retries at this level.
func (s *Service) runPhase(ctx context.Context, phase string, req ai.Request, required []string, out interface{}) error {
	startTime := time.Now()

	raw, usage, err := s.ai.Generate(ctx, phase, req)
	if err != nil {
		recordPhaseOutcome(phase, "error")
		return fmt.Errorf("%s phase: %w", phase, err)
	}
	s.log.Debug("phase response received",
		zap.String("phase", phase),
		zap.Int("response_chars", len(raw)),
		zap.Int("total_tokens", usage.TotalTokens))

	payload, err := sanitize.Extract(raw)
	if err != nil {
		recordPhaseOutcome(phase, "error_malformed")
		return fmt.Errorf("%s phase: %w", phase, err)
	}
	if _, err := sanitize.DecodeObject(payload, required, "response"); err != nil {
		recordPhaseOutcome(phase, "error_validation")
		return fmt.Errorf("%s phase: %w", phase, err)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		recordPhaseOutcome(phase, "error_validation")
		return fmt.Errorf("%s phase: failed to decode response: %w", phase, err)
	}

	recordPhaseOutcome(phase, "success")
	recordPhaseDuration(phase, time.Since(startTime))
	return nil
}

func (s *Service) params(thinkBudget, maxTokens int) ai.GenerationParams {
	temp := float64(s.cfg.GenTemperature)
	think := thinkBudget
	limit := maxTokens
	return ai.GenerationParams{
		Temperature: &temp,
		MaxTokens:   &limit,
		ThinkBudget: &think,
	}
}

func notify(onStatus StatusFunc, phase Phase, message string) {
	if onStatus != nil {
		onStatus(phase, message)
	}
}
