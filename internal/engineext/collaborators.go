// Package engineext declares the narrow contracts the host API facade
// calls into for services that live outside the core (spec §1 scope):
// the renderer, physics solver, asset decoders, and similar native
// engine subsystems. The core never implements these; it only consumes
// them, so production wiring supplies real adapters and tests supply
// fakes.
package engineext

// Handle is the numeric identity every cross-facade reference exposes
// (spec §4.H: "opaque handles that expose a numeric id()").
type Handle interface {
	ID() int
}

// AssetLoader reads raw script/data assets and decodes higher-level
// asset formats (image/ICO/TTF/model) that live outside the core.
type AssetLoader interface {
	ReadText(path string) (string, error)
	LoadAsset(path string) ([]byte, error)
}

// FogConfig configures ensureScene's fog pass.
type FogConfig struct {
	Color    [3]float64
	Density  float64
	Distance float64
}

// PostConfig is an opaque post-processing configuration blob; the core
// does not interpret its contents.
type PostConfig map[string]any

// Renderer is the scene-level rendering collaborator.
type Renderer interface {
	EnsureScene()
	SkyboxCube(path string) error
	FogCfg(cfg FogConfig)
	PostCfg(cfg PostConfig)
	SunShadows(mapSize int) error
}

// Camera is the active camera collaborator.
type Camera interface {
	SetLocation(x, y, z float64)
	SetYaw(yaw float64)
	SetPitch(pitch float64)
	SetYawPitch(yaw, pitch float64)
	MoveLocal(x, y, z float64)
	Location() (x, y, z float64)
}

// BodyConfig describes a physics body to create.
type BodyConfig map[string]any

// Vec3 is a plain 3-component vector used at facade boundaries.
type Vec3 struct{ X, Y, Z float64 }

// PhysicsWorld is the physics solver collaborator.
type PhysicsWorld interface {
	CreateBody(cfg BodyConfig) (Handle, error)
	Position(id int) (Vec3, bool)
	SetPosition(id int, pos Vec3) bool
	Velocity(id int) (Vec3, bool)
	SetVelocity(id int, vel Vec3) bool
	RemoveBody(id int) bool
	Clear()
}

// LightConfig describes a light to create or update.
type LightConfig map[string]any

// LightSystem manages scene lights.
type LightSystem interface {
	CreateLight(cfg LightConfig) (Handle, error)
	SetLight(id int, cfg LightConfig) bool
	EnableLight(id int, enabled bool) bool
	DestroyLight(id int) bool
}

// DebugLineConfig describes a single debug draw primitive.
type DebugLineConfig map[string]any

// DebugDraw is the debug-geometry overlay collaborator.
type DebugDraw interface {
	Line(cfg DebugLineConfig)
	Ray(cfg DebugLineConfig)
	Axes(cfg DebugLineConfig)
	Tick(dt float64)
	Clear()
	SetEnabled(enabled bool)
}

// MeshConfig describes a primitive or model mesh to create.
type MeshConfig map[string]any

// MeshFactory creates renderable meshes.
type MeshFactory interface {
	CreateMesh(cfg MeshConfig) (Handle, error)
}

// TerrainConfig describes a heightmap or flat terrain plane, including
// optional splat layers.
type TerrainConfig map[string]any

// TerrainFactory creates terrain surfaces.
type TerrainFactory interface {
	CreateTerrain(cfg TerrainConfig) (Handle, error)
}

// GridPlaneConfig describes an editor reference grid.
type GridPlaneConfig map[string]any

// EditorLineFactory creates editor-only helper geometry.
type EditorLineFactory interface {
	CreateGridPlane(cfg GridPlaneConfig) (Handle, error)
	DestroyLines(handle Handle) bool
}

// MaterialConfig is `{def, params, scales}` (spec §4.H).
type MaterialConfig struct {
	Def    string
	Params map[string]any
	Scales map[string]float64
}

// MaterialSystem resolves material definitions, presets, and overrides.
type MaterialSystem interface {
	CreateMaterial(cfg MaterialConfig) (Handle, error)
}

// HudElementConfig describes a HUD element to create.
type HudElementConfig map[string]any

// HUDSystem manages on-screen UI elements.
type HUDSystem interface {
	CreateElement(cfg HudElementConfig) (Handle, error)
	Tick(dt float64)
	DestroyElement(id int) bool
}

// PickConfig configures a cursor raycast query.
type PickConfig struct {
	Max         float64
	OnlyClosest bool
	Limit       int
	FlipY       bool
}

// PickHit is a single ordered raycast result.
type PickHit struct {
	SurfaceID int
	Distance  float64
}

// SurfacePicker performs cursor-ray intersection tests against the
// scene graph.
type SurfacePicker interface {
	PickUnderCursor(cfg PickConfig) []PickHit
}
