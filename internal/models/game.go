package models

import (
	"time"

	"github.com/google/uuid"
)

// QualityTier controls how much generation budget a build receives.
type QualityTier string

const (
	QualitySketch   QualityTier = "Sketch"   // fast, minimal detail
	QualityStandard QualityTier = "Standard" // balanced
	QualityPolished QualityTier = "Polished" // maximum detail, slowest
)

// ImportanceTier ranks a prerequisite for the generated project.
type ImportanceTier string

const (
	ImportanceCritical    ImportanceTier = "Critical"
	ImportanceRecommended ImportanceTier = "Recommended"
	ImportanceOptional    ImportanceTier = "Optional"
)

// Capabilities describes the runtime environment the artifact will run in.
type Capabilities struct {
	GPUTier   string `json:"gpuTier"`
	InputMode string `json:"inputMode"`
	Telemetry bool   `json:"telemetry"`
}

// UserPreferences is the immutable brief a session starts from. The pipeline
// only reads it; it is created once by the caller.
type UserPreferences struct {
	Genre        string       `json:"genre"`
	VisualStyle  string       `json:"visualStyle"`
	CameraMode   string       `json:"cameraMode"`
	Environment  string       `json:"environment"`
	Atmosphere   string       `json:"atmosphere"`
	Pacing       string       `json:"pacing"`
	Platform     string       `json:"platform"`
	Engine       string       `json:"engine"`
	ArchStyle    string       `json:"archStyle"`
	Concept      string       `json:"concept"`
	Seed         string       `json:"seed"`
	Quality      QualityTier  `json:"quality"`
	Capabilities Capabilities `json:"capabilities"`
}

// QuantizedSpec is the condensed game definition produced by the first phase.
// Mechanics and VisualRequirements are ordered and hold 3-5 entries each.
type QuantizedSpec struct {
	Title              string   `json:"title"`
	Summary            string   `json:"summary"`
	Mechanics          []string `json:"mechanics"`
	VisualRequirements []string `json:"visualRequirements"`
}

// ArchitectureNode is one named element of the proposed code structure.
type ArchitectureNode struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ArchitectureBlock groups the architecture style with its node breakdown.
type ArchitectureBlock struct {
	Style       string             `json:"style"`
	Description string             `json:"description"`
	Nodes       []ArchitectureNode `json:"nodes"`
}

// TechStackEntry recommends one technology for the generated project.
type TechStackEntry struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Reason   string `json:"reason"`
	Link     string `json:"link,omitempty"`
}

// Prerequisite is something the user needs before running the artifact.
type Prerequisite struct {
	Item       string         `json:"item"`
	Install    string         `json:"install,omitempty"`
	Importance ImportanceTier `json:"importance"`
}

// ArchitectureDescription is the second phase's output: how the prototype
// should be structured and on what stack.
type ArchitectureDescription struct {
	Engine        string            `json:"engine"`
	Language      string            `json:"language"`
	Architecture  ArchitectureBlock `json:"architecture"`
	TechStack     []TechStackEntry  `json:"techStack"`
	Prerequisites []Prerequisite    `json:"prerequisites"`
}

// Blueprint merges the quantized spec with its architecture. Later phases and
// the manifest spec hash are computed from this merged value.
type Blueprint struct {
	Spec         QuantizedSpec           `json:"spec"`
	Architecture ArchitectureDescription `json:"architecture"`
}

// SoundEffect is one generated effect with the code fragment that produces it.
type SoundEffect struct {
	Name    string `json:"name"`
	Trigger string `json:"trigger"`
	Code    string `json:"code"`
}

// AudioBundle is the optional soundscape phase output. A failed soundscape
// phase yields a bundle with no effects rather than an error.
type AudioBundle struct {
	Description     string        `json:"description"`
	BackgroundMusic string        `json:"backgroundMusic"`
	SoundEffects    []SoundEffect `json:"soundEffects"`
}

// Artifact is the runnable build output: one self-contained content blob plus
// usage instructions. Refinement mutates this entity (by producing a new one).
type Artifact struct {
	Content      string `json:"content"`
	Instructions string `json:"instructions"`
}

// Manifest carries content-derived identity and lineage for one build.
// BuildHash is a pure function of Artifact content, SpecHash of the serialized
// Blueprint. ParentHash links a refined build to the build it was derived
// from; it is empty for a first build.
type Manifest struct {
	Version    string      `json:"version"`
	CreatedAt  time.Time   `json:"createdAt"`
	Seed       string      `json:"seed"`
	SpecHash   string      `json:"specHash"`
	BuildHash  string      `json:"buildHash"`
	Platform   string      `json:"platform"`
	Quality    QualityTier `json:"quality"`
	ParentHash string      `json:"parentHash,omitempty"`
}

// GeneratedGame is the aggregate handed between phases and returned to the
// caller. Each pipeline or refinement call returns a new value; callers must
// not assume the input was mutated in place.
type GeneratedGame struct {
	ID          uuid.UUID       `json:"id"`
	Preferences UserPreferences `json:"preferences"`
	Blueprint   Blueprint       `json:"blueprint"`
	Artifact    *Artifact       `json:"artifact,omitempty"`
	Audio       *AudioBundle    `json:"audio,omitempty"`
	Manifest    *Manifest       `json:"manifest,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Title returns the blueprint title, or a stand-in for an untitled game.
func (g *GeneratedGame) Title() string {
	if g.Blueprint.Spec.Title != "" {
		return g.Blueprint.Spec.Title
	}
	return "Untitled prototype"
}

// EditMode selects the refinement strategy the model chose.
type EditMode string

const (
	EditModePatch   EditMode = "patch"   // targeted search/replace edits
	EditModeRewrite EditMode = "rewrite" // full artifact replacement
)

// EditOperation is one exact-text search/replace pair. Search must match the
// full artifact content verbatim; there is no fuzzy matching.
type EditOperation struct {
	Search  string `json:"search"`
	Replace string `json:"replace"`
}

// EditPlan is the transient refinement response: either an ordered list of
// patch edits or a full replacement body, plus optionally updated usage
// instructions.
type EditPlan struct {
	Mode         EditMode        `json:"editMode"`
	Edits        []EditOperation `json:"edits,omitempty"`
	FullCode     string          `json:"fullCode,omitempty"`
	Instructions string          `json:"instructions,omitempty"`
}

// GameRevision is one append-only lineage entry recorded per build so the
// manifest chain can be audited or rolled back.
type GameRevision struct {
	ID         int64     `json:"id"`
	GameID     uuid.UUID `json:"gameId"`
	SpecHash   string    `json:"specHash"`
	BuildHash  string    `json:"buildHash"`
	ParentHash string    `json:"parentHash,omitempty"`
	Manifest   Manifest  `json:"manifest"`
	CreatedAt  time.Time `json:"createdAt"`
}
