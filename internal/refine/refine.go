// Package refine mutates an existing artifact from a natural-language
// instruction. The model chooses between a targeted patch plan and a full
// rewrite; patch application is deliberately partial-tolerant, while the call
// as a whole is all-or-nothing.
package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/ai"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/compress"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/config"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/manifest"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/prompts"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/sanitize"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/schemas"
)

// Engine obtains and applies edit plans against built artifacts.
type Engine struct {
	ai  ai.AIClient
	cfg *config.Config
	log *zap.Logger
}

// NewEngine wires the refinement engine to its provider and configuration.
func NewEngine(aiClient ai.AIClient, cfg *config.Config, log *zap.Logger) *Engine {
	return &Engine{
		ai:  aiClient,
		cfg: cfg,
		log: log,
	}
}

// Refine obtains an edit plan for the instruction and applies it, returning a
// new game value whose manifest links back to the prior build. The caller's
// value is never mutated: any provider or validation failure leaves it exactly
// as it was.
func (e *Engine) Refine(ctx context.Context, game *models.GeneratedGame, instruction string) (*models.GeneratedGame, error) {
	if game == nil || game.Artifact == nil || game.Artifact.Content == "" {
		return nil, models.ErrNoArtifact
	}
	if strings.TrimSpace(instruction) == "" {
		return nil, models.ErrEmptyInstruction
	}

	var prior models.Manifest
	if game.Manifest != nil {
		prior = *game.Manifest
	}
	priorBuildHash := prior.BuildHash
	if priorBuildHash == "" {
		priorBuildHash = manifest.HashContent(game.Artifact.Content)
	}

	// The provider sees a compressed rendition; edits are applied to the
	// full artifact.
	compressed := compress.Compress(game.Artifact.Content)
	e.log.Debug("artifact compressed for refinement context",
		zap.Int("full_bytes", len(game.Artifact.Content)),
		zap.Int("compressed_bytes", len(compressed)),
		zap.Int("approx_tokens", compress.EstimateTokens(compressed, e.cfg.AIModel)))

	plan, err := e.requestEditPlan(ctx, compressed, instruction, prior)
	if err != nil {
		return nil, err
	}

	newContent, err := e.applyPlan(game.Artifact.Content, plan)
	if err != nil {
		return nil, err
	}

	newInstructions := game.Artifact.Instructions
	if plan.Instructions != "" {
		newInstructions = plan.Instructions
	}

	m, err := manifest.Build(game.Blueprint, newContent, game.Preferences, priorBuildHash)
	if err != nil {
		return nil, fmt.Errorf("refine phase: %w", err)
	}

	refined := *game
	refined.Artifact = &models.Artifact{
		Content:      newContent,
		Instructions: newInstructions,
	}
	refined.Manifest = &m
	refined.UpdatedAt = time.Now().UTC()

	e.log.Info("refinement applied",
		zap.String("game_id", refined.ID.String()),
		zap.String("edit_mode", string(plan.Mode)),
		zap.String("build_hash", m.BuildHash),
		zap.String("parent_hash", m.ParentHash))
	return &refined, nil
}

// requestEditPlan issues the refinement request and decodes the plan.
func (e *Engine) requestEditPlan(ctx context.Context, compressed, instruction string, prior models.Manifest) (models.EditPlan, error) {
	var plan models.EditPlan

	system, user := prompts.Refine(compressed, instruction, prior)
	schema, schemaName := schemas.Refine()
	temp := float64(e.cfg.GenTemperature)
	think := e.cfg.RefineThinkBudget
	limit := e.cfg.RefineMaxTokens

	raw, usage, err := e.ai.Generate(ctx, "refine", ai.Request{
		SystemPrompt: system,
		UserPrompt:   user,
		SchemaName:   schemaName,
		Schema:       schema,
		Params: ai.GenerationParams{
			Temperature: &temp,
			MaxTokens:   &limit,
			ThinkBudget: &think,
		},
	})
	if err != nil {
		return plan, fmt.Errorf("refine phase: %w", err)
	}
	e.log.Debug("edit plan received",
		zap.Int("response_chars", len(raw)),
		zap.Int("total_tokens", usage.TotalTokens))

	payload, err := sanitize.Extract(raw)
	if err != nil {
		return plan, fmt.Errorf("refine phase: %w", err)
	}
	if _, err := sanitize.DecodeObject(payload, schemas.RefineRequired, "edit plan"); err != nil {
		return plan, fmt.Errorf("refine phase: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return plan, fmt.Errorf("refine phase: failed to decode edit plan: %w", err)
	}
	return plan, nil
}

// applyPlan produces the new artifact content for a decoded plan.
func (e *Engine) applyPlan(content string, plan models.EditPlan) (string, error) {
	switch plan.Mode {
	case models.EditModeRewrite:
		if plan.FullCode == "" {
			return "", fmt.Errorf("refine phase: %w", &models.ValidationError{
				Context: "edit plan",
				Missing: []string{"fullCode"},
			})
		}
		return plan.FullCode, nil
	case models.EditModePatch:
		return e.applyEdits(content, plan.Edits), nil
	default:
		return "", fmt.Errorf("refine phase: unknown edit mode %q", plan.Mode)
	}
}

// applyEdits applies each edit in order by exact-substring match against the
// current content, replacing the first occurrence. An edit that does not
// match is skipped, never fuzzy-matched: partial application is the intended
// behavior, because a wrong substitution in executable content is worse than
// a no-op. Placeholder text from compression is never a valid target.
func (e *Engine) applyEdits(content string, edits []models.EditOperation) string {
	applied, skipped := 0, 0
	for i, edit := range edits {
		if edit.Search == "" {
			skipped++
			e.log.Warn("skipping edit with empty search text", zap.Int("edit", i))
			continue
		}
		if compress.ContainsPlaceholder(edit.Search) {
			skipped++
			e.log.Warn("skipping edit targeting compression placeholder", zap.Int("edit", i))
			continue
		}
		if !strings.Contains(content, edit.Search) {
			skipped++
			e.log.Warn("skipping edit",
				zap.Int("edit", i),
				zap.String("search_prefix", prefixOf(edit.Search, 60)),
				zap.Error(models.ErrPatchMatchMiss))
			continue
		}
		content = strings.Replace(content, edit.Search, edit.Replace, 1)
		applied++
	}
	e.log.Info("patch plan processed",
		zap.Int("applied", applied),
		zap.Int("skipped", skipped))
	return content
}

func prefixOf(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
