// Package schemas declares the machine-checkable output shape for every
// generation phase, in the map form the OpenAI response_format.json_schema
// field accepts. The Required lists are the presence contract the response
// validator enforces after decoding; keep them in lockstep with the schema
// objects.
package schemas

import "github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"

// Required top-level fields per phase.
var (
	QuantizeRequired   = []string{"title", "summary", "mechanics", "visualRequirements"}
	ArchitectRequired  = []string{"engine", "language", "architecture", "techStack", "prerequisites"}
	SoundscapeRequired = []string{"description", "backgroundMusic", "soundEffects"}
	BuildRequired      = []string{"content", "instructions"}
	RefineRequired     = []string{"editMode"}
)

// Quantize returns the phase 1 output schema and its suggested name.
func Quantize() (map[string]interface{}, string) {
	schema := map[string]interface{}{
		"type":                 "object",
		"description":          "Condensed game specification distilled from the user brief.",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"title":   map[string]interface{}{"type": "string", "description": "Short evocative name for the prototype."},
			"summary": map[string]interface{}{"type": "string", "description": "2-3 sentence pitch of the core loop."},
			"mechanics": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "3-5 ordered player-facing mechanics, most important first.",
			},
			"visualRequirements": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "3-5 ordered visual elements the scene must contain.",
			},
		},
		"required": QuantizeRequired,
	}
	return schema, "quantize_game_spec"
}

// Architect returns the phase 2 output schema and its suggested name.
func Architect() (map[string]interface{}, string) {
	schema := map[string]interface{}{
		"type":                 "object",
		"description":          "Structural plan for the prototype on the target rendering engine.",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"engine":   map[string]interface{}{"type": "string", "description": "Rendering engine the build targets."},
			"language": map[string]interface{}{"type": "string", "description": "Implementation language."},
			"architecture": map[string]interface{}{
				"type":        "object",
				"description": "Code structure broken into named nodes.",
				"properties": map[string]interface{}{
					"style":       map[string]interface{}{"type": "string", "description": "Architecture style label."},
					"description": map[string]interface{}{"type": "string", "description": "Prose description of the structure."},
					"nodes": map[string]interface{}{
						"type":        "array",
						"description": "Ordered structural elements.",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"name":        map[string]interface{}{"type": "string", "description": "Node name."},
								"type":        map[string]interface{}{"type": "string", "description": "Node kind, e.g. module, system, manager."},
								"description": map[string]interface{}{"type": "string", "description": "What the node is responsible for."},
							},
							"required":             []string{"name", "type", "description"},
							"additionalProperties": false,
						},
					},
				},
				"required":             []string{"style", "description", "nodes"},
				"additionalProperties": false,
			},
			"techStack": map[string]interface{}{
				"type":        "array",
				"description": "Ordered technology recommendations.",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"category": map[string]interface{}{"type": "string", "description": "What the entry covers, e.g. rendering, physics."},
						"name":     map[string]interface{}{"type": "string", "description": "Technology name."},
						"reason":   map[string]interface{}{"type": "string", "description": "Why it fits this prototype."},
						"link":     map[string]interface{}{"type": "string", "description": "Optional documentation URL."},
					},
					"required":             []string{"category", "name", "reason"},
					"additionalProperties": false,
				},
			},
			"prerequisites": map[string]interface{}{
				"type":        "array",
				"description": "Ordered list of things the user needs before running the build.",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"item":    map[string]interface{}{"type": "string", "description": "The prerequisite itself."},
						"install": map[string]interface{}{"type": "string", "description": "Optional install command."},
						"importance": map[string]interface{}{
							"type":        "string",
							"enum":        importanceValues(),
							"description": "How necessary the prerequisite is.",
						},
					},
					"required":             []string{"item", "importance"},
					"additionalProperties": false,
				},
			},
		},
		"required": ArchitectRequired,
	}
	return schema, "design_game_architecture"
}

// Soundscape returns the phase 3 output schema and its suggested name.
func Soundscape() (map[string]interface{}, string) {
	schema := map[string]interface{}{
		"type":                 "object",
		"description":          "Synthesized audio bundle for the prototype.",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"description":     map[string]interface{}{"type": "string", "description": "Overall audio direction."},
			"backgroundMusic": map[string]interface{}{"type": "string", "description": "Web Audio function body that starts the ambient loop."},
			"soundEffects": map[string]interface{}{
				"type":        "array",
				"description": "Effects wired to game events.",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name":    map[string]interface{}{"type": "string", "description": "Effect name."},
						"trigger": map[string]interface{}{"type": "string", "description": "Game event that plays the effect."},
						"code":    map[string]interface{}{"type": "string", "description": "Self-contained Web Audio function body."},
					},
					"required":             []string{"name", "trigger", "code"},
					"additionalProperties": false,
				},
			},
		},
		"required": SoundscapeRequired,
	}
	return schema, "compose_game_audio"
}

// Build returns the phase 4 output schema and its suggested name.
func Build() (map[string]interface{}, string) {
	schema := map[string]interface{}{
		"type":                 "object",
		"description":          "Complete runnable build of the prototype.",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"content":      map[string]interface{}{"type": "string", "description": "The full HTML document with inline CSS and JavaScript."},
			"instructions": map[string]interface{}{"type": "string", "description": "Short usage notes: controls and goal."},
		},
		"required": BuildRequired,
	}
	return schema, "build_game_artifact"
}

// Refine returns the edit-plan schema and its suggested name. Only editMode
// is unconditionally required; edits and fullCode are each meaningful for one
// mode only.
func Refine() (map[string]interface{}, string) {
	schema := map[string]interface{}{
		"type":                 "object",
		"description":          "Edit plan for mutating an existing build.",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"editMode": map[string]interface{}{
				"type":        "string",
				"enum":        []string{string(models.EditModePatch), string(models.EditModeRewrite)},
				"description": "patch for targeted edits, rewrite for full replacement.",
			},
			"edits": map[string]interface{}{
				"type":        "array",
				"description": "Ordered search/replace pairs for patch mode.",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"search":  map[string]interface{}{"type": "string", "description": "Exact text copied verbatim from the current code."},
						"replace": map[string]interface{}{"type": "string", "description": "Replacement text."},
					},
					"required":             []string{"search", "replace"},
					"additionalProperties": false,
				},
			},
			"fullCode":     map[string]interface{}{"type": "string", "description": "Complete replacement HTML document for rewrite mode."},
			"instructions": map[string]interface{}{"type": "string", "description": "Updated usage notes when the change affects them."},
		},
		"required": RefineRequired,
	}
	return schema, "plan_game_edit"
}

func importanceValues() []string {
	return []string{
		string(models.ImportanceCritical),
		string(models.ImportanceRecommended),
		string(models.ImportanceOptional),
	}
}
