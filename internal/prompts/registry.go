package prompts

import "strings"

// EngineVariant carries the engine-specific boilerplate injected into the
// architect, build and refine prompts. The set is closed; unrecognized engine
// identifiers resolve to the three.js baseline, never to an error.
type EngineVariant struct {
	Key         string
	DisplayName string
	ScriptTags  []string
	Bootstrap   string
	Constraints []string
}

var threeJS = EngineVariant{
	Key:         "threejs",
	DisplayName: "three.js",
	ScriptTags: []string{
		`<script src="https://cdnjs.cloudflare.com/ajax/libs/three.js/r128/three.min.js"></script>`,
	},
	Bootstrap: "Create a THREE.Scene, a THREE.PerspectiveCamera and a THREE.WebGLRenderer sized to the window, append renderer.domElement to the body and drive the game loop with requestAnimationFrame.",
	Constraints: []string{
		"Use the global THREE namespace from the CDN script; never use ES module imports.",
		"Handle window resize by updating the camera aspect and renderer size.",
		"Build geometry procedurally with three.js primitives; never load external model or texture files.",
	},
}

var babylonJS = EngineVariant{
	Key:         "babylonjs",
	DisplayName: "Babylon.js",
	ScriptTags: []string{
		`<script src="https://cdn.babylonjs.com/babylon.js"></script>`,
	},
	Bootstrap: "Create a full-screen canvas, construct a BABYLON.Engine over it, assemble the scene with a camera and lights inside a createScene function and drive it with engine.runRenderLoop.",
	Constraints: []string{
		"Use the global BABYLON namespace from the CDN script; never use ES module imports.",
		"Call engine.resize() from a window resize listener.",
		"Build meshes with BABYLON.MeshBuilder; never load external model or texture files.",
	},
}

var playCanvas = EngineVariant{
	Key:         "playcanvas",
	DisplayName: "PlayCanvas",
	ScriptTags: []string{
		`<script src="https://code.playcanvas.com/playcanvas-stable.min.js"></script>`,
	},
	Bootstrap: "Create a full-screen canvas, construct a pc.Application over it with mouse and keyboard input, set FILLMODE_FILL_WINDOW and RESOLUTION_AUTO, assemble entities with components and call app.start().",
	Constraints: []string{
		"Use the global pc namespace from the CDN script; never use ES module imports.",
		"Compose behavior from entities and components rather than one monolithic update function.",
		"Build shapes from primitive render components; never load external model or texture files.",
	},
}

var variants = map[string]EngineVariant{
	"threejs":    threeJS,
	"babylonjs":  babylonJS,
	"playcanvas": playCanvas,
}

// VariantFor resolves a user-supplied engine identifier to a known variant.
// Identifiers are matched case-insensitively with punctuation ignored, so
// "Three.js", "three_js" and "THREEJS" all hit the same entry. Anything the
// table does not recognize falls back to the three.js baseline.
func VariantFor(engine string) EngineVariant {
	if v, ok := variants[normalizeEngineKey(engine)]; ok {
		return v
	}
	return threeJS
}

func normalizeEngineKey(engine string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(engine) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
