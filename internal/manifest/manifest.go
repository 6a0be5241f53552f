// Package manifest computes content-derived identity and lineage metadata
// for generated artifacts. The same input always yields the same hash, which
// underwrites deduplication and the parent-hash revision chain.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/weemadscotsman/3d-forge-demo-game-maker/internal/models"
)

// Version tags manifests produced by this builder.
const Version = "1.0"

// hashLength truncates the hex digest; 16 hex characters keep identifiers
// short while remaining collision-resistant for any realistic artifact count.
const hashLength = 16

// HashContent returns the short deterministic digest of raw content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:hashLength]
}

// HashBlueprint returns the digest of the blueprint's canonical JSON
// serialization. Struct field order is fixed, so serialization of equal
// values is byte-identical.
func HashBlueprint(bp models.Blueprint) (string, error) {
	data, err := json.Marshal(bp)
	if err != nil {
		return "", fmt.Errorf("failed to serialize blueprint for hashing: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:hashLength], nil
}

// Build assembles the manifest for one build of an artifact. parentHash is
// empty for a first build and the prior manifest's build hash for a
// refinement, forming the lineage chain.
func Build(bp models.Blueprint, artifactContent string, prefs models.UserPreferences, parentHash string) (models.Manifest, error) {
	specHash, err := HashBlueprint(bp)
	if err != nil {
		return models.Manifest{}, err
	}
	return models.Manifest{
		Version:    Version,
		CreatedAt:  time.Now().UTC(),
		Seed:       prefs.Seed,
		SpecHash:   specHash,
		BuildHash:  HashContent(artifactContent),
		Platform:   prefs.Platform,
		Quality:    prefs.Quality,
		ParentHash: parentHash,
	}, nil
}
