// Package prompts builds the per-phase instruction text sent to the AI
// provider. All builders are pure functions of their typed inputs; the only
// package state is the read-only engine variant table.
package prompts

import (
	"fmt"
	"strings"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/compress"
	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
)

const quantizeSystem = `You are a senior game designer distilling a free-form brief into a compact, buildable specification for a small browser prototype. Keep it to the player-facing essentials; implementation detail comes later. Respond with a single JSON object and nothing else.`

const architectSystem = `You are a pragmatic software architect planning a single-file browser game prototype. Favor the smallest structure that cleanly supports every listed mechanic. Respond with a single JSON object and nothing else.`

const soundscapeSystem = `You are an audio director scoring a small browser game. All sound must be synthesized at runtime with the Web Audio API; never reference external audio files or URLs. Respond with a single JSON object and nothing else.`

const buildSystem = `You are an expert game developer who ships complete, runnable prototypes as a single HTML file. Every declared mechanic must be playable in the delivered file; stubs, TODOs and dead buttons are failures. Respond with a single JSON object and nothing else.`

const refineSystem = `You are maintaining an existing single-file browser game. Prefer minimal targeted edits over rewriting; rewrite only when the requested change is too entangled across the file to patch. Respond with a single JSON object and nothing else.`

// Quantize builds the phase 1 request: condense the brief into a titled spec
// with ordered mechanics and visual requirements.
func Quantize(prefs models.UserPreferences) (system, user string) {
	var b strings.Builder
	b.WriteString("Distill the following brief into a quantized game spec.\n\n")
	writeBrief(&b, prefs)
	b.WriteString("\nReturn a JSON object with exactly these fields:\n")
	b.WriteString("  title: short evocative name for the prototype\n")
	b.WriteString("  summary: 2-3 sentence pitch of the core loop\n")
	b.WriteString("  mechanics: 3-5 ordered player-facing mechanics, most important first\n")
	b.WriteString("  visualRequirements: 3-5 ordered visual elements the scene must contain\n")
	return quantizeSystem, b.String()
}

// Architect builds the phase 2 request: a structural plan constrained to the
// resolved engine variant.
func Architect(prefs models.UserPreferences, spec models.QuantizedSpec) (system, user string) {
	v := VariantFor(prefs.Engine)
	var b strings.Builder
	fmt.Fprintf(&b, "Design the architecture for %q.\n\n", spec.Title)
	fmt.Fprintf(&b, "Summary: %s\n", spec.Summary)
	writeList(&b, "Mechanics", spec.Mechanics)
	writeList(&b, "Visual requirements", spec.VisualRequirements)
	if prefs.ArchStyle != "" {
		fmt.Fprintf(&b, "Preferred architecture style: %s\n", prefs.ArchStyle)
	}
	fmt.Fprintf(&b, "\nTarget engine: %s. Every recommendation must be compatible with it and with a single-file browser build.\n", v.DisplayName)
	b.WriteString("\nReturn a JSON object with exactly these fields:\n")
	fmt.Fprintf(&b, "  engine: the rendering engine to build on (%s)\n", v.DisplayName)
	b.WriteString("  language: the implementation language\n")
	b.WriteString("  architecture: {style, description, nodes: [{name, type, description}]} describing the code structure\n")
	b.WriteString("  techStack: ordered [{category, name, reason, link}] recommendations\n")
	b.WriteString("  prerequisites: ordered [{item, install, importance}] where importance is Critical, Recommended or Optional\n")
	return architectSystem, b.String()
}

// Soundscape builds the phase 3 request: audio direction plus synthesized
// music and effect code for the blueprinted game.
func Soundscape(bp models.Blueprint, prefs models.UserPreferences) (system, user string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Design the soundscape for %q.\n\n", bp.Spec.Title)
	fmt.Fprintf(&b, "Summary: %s\n", bp.Spec.Summary)
	writeList(&b, "Mechanics to score", bp.Spec.Mechanics)
	writeField(&b, "Atmosphere", prefs.Atmosphere)
	writeField(&b, "Pacing", prefs.Pacing)
	b.WriteString("\nReturn a JSON object with exactly these fields:\n")
	b.WriteString("  description: one paragraph of overall audio direction\n")
	b.WriteString("  backgroundMusic: a self-contained JavaScript function body that starts an ambient loop with the Web Audio API\n")
	b.WriteString("  soundEffects: [{name, trigger, code}] where trigger names the game event and code is a self-contained Web Audio function body\n")
	return soundscapeSystem, b.String()
}

// Build assembles the phase 4 request from everything the earlier phases
// produced. This is the largest prompt: blueprint, engine boilerplate,
// capability constraints and the audio bundle all feed into it.
func Build(bp models.Blueprint, prefs models.UserPreferences, audio models.AudioBundle) (system, user string) {
	v := VariantFor(prefs.Engine)
	var b strings.Builder
	fmt.Fprintf(&b, "Build a playable prototype of %q as one self-contained HTML file with inline CSS and JavaScript.\n\n", bp.Spec.Title)
	fmt.Fprintf(&b, "Summary: %s\n", bp.Spec.Summary)
	writeList(&b, "Mechanics (all must be playable)", bp.Spec.Mechanics)
	writeList(&b, "Visual requirements", bp.Spec.VisualRequirements)
	writeArchitecture(&b, bp.Architecture)
	writeEngine(&b, v)
	writeCapabilities(&b, prefs)
	writeAudio(&b, audio)
	if prefs.Seed != "" {
		fmt.Fprintf(&b, "\nDeterminism: derive all random values from a seeded PRNG initialized with the string %q, so two builds from the same seed behave identically.\n", prefs.Seed)
	}
	b.WriteString("\nReturn a JSON object with exactly these fields:\n")
	b.WriteString("  content: the complete HTML document, starting with <!DOCTYPE html>\n")
	b.WriteString("  instructions: short usage notes for the player (controls, goal)\n")
	return buildSystem, b.String()
}

// Refine builds the edit-plan request for an existing artifact. The content
// passed in is expected to be compressed; the prompt tells the model what the
// placeholders mean and forbids them in search strings.
func Refine(content, instruction string, m models.Manifest) (system, user string) {
	var b strings.Builder
	b.WriteString("Apply the following change to the game below.\n\n")
	fmt.Fprintf(&b, "CHANGE REQUEST: %s\n\n", instruction)
	fmt.Fprintf(&b, "Current build %s (seed %q):\n", m.BuildHash, m.Seed)
	b.WriteString("-----BEGIN CURRENT CODE-----\n")
	b.WriteString(content)
	b.WriteString("\n-----END CURRENT CODE-----\n\n")
	fmt.Fprintf(&b, "The code above may contain the placeholders %s and %s standing in for omitted bulk data. Never include a placeholder in a search string and never emit one in replacement code.\n", compress.DataURIPlaceholder, compress.ArrayPlaceholder)
	b.WriteString("\nReturn a JSON object with exactly these fields:\n")
	b.WriteString("  editMode: \"patch\" for targeted edits, \"rewrite\" for a full replacement\n")
	b.WriteString("  edits: for patch mode, ordered [{search, replace}] where search is copied verbatim from the current code\n")
	b.WriteString("  fullCode: for rewrite mode, the complete replacement HTML document\n")
	b.WriteString("  instructions: updated usage notes when the change affects them\n")
	return refineSystem, b.String()
}

func writeBrief(b *strings.Builder, prefs models.UserPreferences) {
	b.WriteString("BRIEF:\n")
	writeField(b, "Concept", prefs.Concept)
	writeField(b, "Genre", prefs.Genre)
	writeField(b, "Visual style", prefs.VisualStyle)
	writeField(b, "Camera", prefs.CameraMode)
	writeField(b, "Environment", prefs.Environment)
	writeField(b, "Atmosphere", prefs.Atmosphere)
	writeField(b, "Pacing", prefs.Pacing)
	writeField(b, "Platform", prefs.Platform)
	writeField(b, "Quality tier", string(prefs.Quality))
}

func writeArchitecture(b *strings.Builder, arch models.ArchitectureDescription) {
	if arch.Architecture.Style == "" && len(arch.Architecture.Nodes) == 0 {
		return
	}
	fmt.Fprintf(b, "Architecture (%s): %s\n", arch.Architecture.Style, arch.Architecture.Description)
	for _, n := range arch.Architecture.Nodes {
		fmt.Fprintf(b, "  - %s (%s): %s\n", n.Name, n.Type, n.Description)
	}
	if arch.Language != "" {
		fmt.Fprintf(b, "Language: %s\n", arch.Language)
	}
}

func writeEngine(b *strings.Builder, v EngineVariant) {
	fmt.Fprintf(b, "\nEngine: %s. Load it with exactly these tags in <head>:\n", v.DisplayName)
	for _, tag := range v.ScriptTags {
		fmt.Fprintf(b, "  %s\n", tag)
	}
	fmt.Fprintf(b, "Bootstrap: %s\n", v.Bootstrap)
	for _, c := range v.Constraints {
		fmt.Fprintf(b, "  - %s\n", c)
	}
}

func writeCapabilities(b *strings.Builder, prefs models.UserPreferences) {
	caps := prefs.Capabilities
	b.WriteString("\nRuntime constraints:\n")
	switch strings.ToLower(caps.GPUTier) {
	case "low":
		b.WriteString("  - Low-end GPU: keep draw calls minimal, no post-processing, no shadows, simple materials.\n")
	case "high":
		b.WriteString("  - High-end GPU: richer lighting and particle effects are welcome.\n")
	default:
		b.WriteString("  - Mid-range GPU: moderate effects, avoid heavy post-processing.\n")
	}
	if strings.EqualFold(caps.InputMode, "touch") {
		b.WriteString("  - Touch input: all controls must work with pointer events; show on-screen controls.\n")
	} else {
		b.WriteString("  - Keyboard and mouse input; document the bindings on screen.\n")
	}
	if caps.Telemetry {
		b.WriteString("  - Once per second, post telemetry to the hosting page: window.parent.postMessage({type: \"telemetry\", fps: <number>, entities: <number>}, \"*\").\n")
	}
}

func writeAudio(b *strings.Builder, audio models.AudioBundle) {
	if audio.Description == "" && len(audio.SoundEffects) == 0 {
		return
	}
	fmt.Fprintf(b, "\nAudio direction: %s\n", audio.Description)
	if audio.BackgroundMusic != "" {
		b.WriteString("Background music (wire into a startAudio() called on first user gesture):\n")
		fmt.Fprintf(b, "%s\n", audio.BackgroundMusic)
	}
	if len(audio.SoundEffects) > 0 {
		b.WriteString("Sound effects to wire to their triggers:\n")
		for _, fx := range audio.SoundEffects {
			fmt.Fprintf(b, "  - %s on %s:\n%s\n", fx.Name, fx.Trigger, fx.Code)
		}
	}
}

func writeList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", label)
	for i, item := range items {
		fmt.Fprintf(b, "  %d. %s\n", i+1, item)
	}
}

func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %s: %s\n", label, value)
}
