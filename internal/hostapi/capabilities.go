package hostapi

import (
	"github.com/CalistaVerner/kalitech/internal/ecs"
	"github.com/CalistaVerner/kalitech/internal/engineext"
	"github.com/CalistaVerner/kalitech/internal/input"
	"github.com/CalistaVerner/kalitech/internal/kalierr"
	"github.com/CalistaVerner/kalitech/internal/logging"
	"github.com/CalistaVerner/kalitech/internal/surface"
)

// Log is the logging capability (spec §4.H).
type Log interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Debug(msg string)
}

type logCap struct{ log *logging.Logger }

func (c logCap) Info(msg string)  { c.log.Info(msg) }
func (c logCap) Warn(msg string)  { c.log.Warn(msg) }
func (c logCap) Error(msg string) { c.log.Error(msg) }
func (c logCap) Debug(msg string) { c.log.Debug(msg) }

// Assets is the asset-access capability.
type Assets interface {
	ReadText(path string) (string, error)
	LoadAsset(path string) ([]byte, error)
}

type assetsCap struct{ loader engineext.AssetLoader }

func (c assetsCap) ReadText(path string) (string, error) {
	if c.loader == nil {
		return "", kalierr.CapabilityMissing("assets", "readText")
	}
	return c.loader.ReadText(path)
}

func (c assetsCap) LoadAsset(path string) ([]byte, error) {
	if c.loader == nil {
		return nil, kalierr.CapabilityMissing("assets", "loadAsset")
	}
	return c.loader.LoadAsset(path)
}

// Material is the material-registry capability.
type Material interface {
	Create(cfg engineext.MaterialConfig) (engineext.Handle, error)
}

type materialCap struct{ backend engineext.MaterialSystem }

func (c materialCap) Create(cfg engineext.MaterialConfig) (engineext.Handle, error) {
	if c.backend == nil {
		return nil, kalierr.CapabilityMissing("material", "create")
	}
	return c.backend.CreateMaterial(cfg)
}

// EntityAPI is the ECS entity capability.
type EntityAPI interface {
	Create() (ecs.EntityID, error)
	Destroy(id ecs.EntityID)
	SetComponent(id ecs.EntityID, name string, value any) bool
	GetComponent(id ecs.EntityID, name string) any
	HasComponent(id ecs.EntityID, name string) bool
	RemoveComponent(id ecs.EntityID, name string)
}

type entityCap struct {
	store    *ecs.Store
	surfaces *surface.Registry
}

func (c entityCap) Create() (ecs.EntityID, error) {
	if c.store == nil {
		return ecs.None, kalierr.CapabilityMissing("entity", "create")
	}
	return c.store.Create(), nil
}

// Destroy frees id's ECS columns and, if a surface is attached to it,
// detaches and destroys that surface too (spec §8 E2E scenario 5:
// destroying an entity tears down its attached surface).
func (c entityCap) Destroy(id ecs.EntityID) {
	if c.surfaces != nil {
		if surfaceID, ok := c.surfaces.DetachEntity(id); ok {
			c.surfaces.Destroy(surfaceID)
		}
	}
	if c.store != nil {
		c.store.Destroy(id)
	}
}

func (c entityCap) SetComponent(id ecs.EntityID, name string, value any) bool {
	if c.store == nil {
		return false
	}
	return c.store.Set(id, name, value)
}

func (c entityCap) GetComponent(id ecs.EntityID, name string) any {
	if c.store == nil {
		return nil
	}
	return c.store.Get(id, name)
}

func (c entityCap) HasComponent(id ecs.EntityID, name string) bool {
	if c.store == nil {
		return false
	}
	return c.store.Has(id, name)
}

func (c entityCap) RemoveComponent(id ecs.EntityID, name string) {
	if c.store != nil {
		c.store.Remove(id, name)
	}
}

// SurfaceAPI is the scene-surface capability.
type SurfaceAPI interface {
	Attach(surfaceID int, entityID ecs.EntityID) bool
	DetachSurface(id int)
	DetachEntity(id ecs.EntityID) (int, bool)
	Destroy(id int) bool
	PickUnderCursor(cfg engineext.PickConfig) ([]engineext.PickHit, error)
}

type surfaceCap struct {
	registry *surface.Registry
	picker   engineext.SurfacePicker
}

func (c surfaceCap) Attach(surfaceID int, entityID ecs.EntityID) bool {
	if c.registry == nil {
		return false
	}
	return c.registry.Attach(surfaceID, entityID)
}

func (c surfaceCap) DetachSurface(id int) {
	if c.registry != nil {
		c.registry.DetachSurface(id)
	}
}

func (c surfaceCap) DetachEntity(id ecs.EntityID) (int, bool) {
	if c.registry == nil {
		return 0, false
	}
	return c.registry.DetachEntity(id)
}

func (c surfaceCap) Destroy(id int) bool {
	if c.registry == nil {
		return false
	}
	return c.registry.Destroy(id) != nil
}

func (c surfaceCap) PickUnderCursor(cfg engineext.PickConfig) ([]engineext.PickHit, error) {
	if c.picker == nil {
		return nil, kalierr.CapabilityMissing("surface", "pickUnderCursorCfg")
	}
	return c.picker.PickUnderCursor(cfg), nil
}

// Render is the scene-rendering capability.
type Render interface {
	EnsureScene() error
	SkyboxCube(path string) error
	FogCfg(cfg engineext.FogConfig) error
	PostCfg(cfg engineext.PostConfig) error
	SunShadows(mapSize int) error
}

type renderCap struct{ backend engineext.Renderer }

func (c renderCap) EnsureScene() error {
	if c.backend == nil {
		return kalierr.CapabilityMissing("render", "ensureScene")
	}
	c.backend.EnsureScene()
	return nil
}

func (c renderCap) SkyboxCube(path string) error {
	if c.backend == nil {
		return kalierr.CapabilityMissing("render", "skyboxCube")
	}
	return c.backend.SkyboxCube(path)
}

func (c renderCap) FogCfg(cfg engineext.FogConfig) error {
	if c.backend == nil {
		return kalierr.CapabilityMissing("render", "fogCfg")
	}
	c.backend.FogCfg(cfg)
	return nil
}

func (c renderCap) PostCfg(cfg engineext.PostConfig) error {
	if c.backend == nil {
		return kalierr.CapabilityMissing("render", "postCfg")
	}
	c.backend.PostCfg(cfg)
	return nil
}

func (c renderCap) SunShadows(mapSize int) error {
	if c.backend == nil {
		return kalierr.CapabilityMissing("render", "sunShadows")
	}
	if mapSize < 0 || mapSize > 8192 {
		return kalierr.InvalidHandle("sunShadowMapSize", mapSize)
	}
	return c.backend.SunShadows(mapSize)
}

// CameraAPI is the active-camera capability.
type CameraAPI interface {
	SetLocation(x, y, z float64) error
	SetYaw(yaw float64) error
	SetPitch(pitch float64) error
	SetYawPitch(yaw, pitch float64) error
	MoveLocal(x, y, z float64) error
	Location() (x, y, z float64, err error)
}

type cameraCap struct{ backend engineext.Camera }

func (c cameraCap) SetLocation(x, y, z float64) error {
	if c.backend == nil {
		return kalierr.CapabilityMissing("camera", "setLocation")
	}
	c.backend.SetLocation(x, y, z)
	return nil
}

func (c cameraCap) SetYaw(yaw float64) error {
	if c.backend == nil {
		return kalierr.CapabilityMissing("camera", "setYaw")
	}
	c.backend.SetYaw(yaw)
	return nil
}

func (c cameraCap) SetPitch(pitch float64) error {
	if c.backend == nil {
		return kalierr.CapabilityMissing("camera", "setPitch")
	}
	c.backend.SetPitch(pitch)
	return nil
}

func (c cameraCap) SetYawPitch(yaw, pitch float64) error {
	if c.backend == nil {
		return kalierr.CapabilityMissing("camera", "setYawPitch")
	}
	c.backend.SetYawPitch(yaw, pitch)
	return nil
}

func (c cameraCap) MoveLocal(x, y, z float64) error {
	if c.backend == nil {
		return kalierr.CapabilityMissing("camera", "moveLocal")
	}
	c.backend.MoveLocal(x, y, z)
	return nil
}

func (c cameraCap) Location() (float64, float64, float64, error) {
	if c.backend == nil {
		return 0, 0, 0, kalierr.CapabilityMissing("camera", "location")
	}
	x, y, z := c.backend.Location()
	return x, y, z, nil
}

// Physics is the physics-body capability.
type Physics interface {
	Body(cfg engineext.BodyConfig) (engineext.Handle, error)
	Position(id int) (engineext.Vec3, bool)
	SetPosition(id int, pos engineext.Vec3) bool
	Velocity(id int) (engineext.Vec3, bool)
	SetVelocity(id int, vel engineext.Vec3) bool
	Remove(id int) bool
}

type physicsCap struct{ backend engineext.PhysicsWorld }

func (c physicsCap) Body(cfg engineext.BodyConfig) (engineext.Handle, error) {
	if c.backend == nil {
		return nil, kalierr.CapabilityMissing("physics", "body")
	}
	return c.backend.CreateBody(cfg)
}

func (c physicsCap) Position(id int) (engineext.Vec3, bool) {
	if c.backend == nil {
		return engineext.Vec3{}, false
	}
	return c.backend.Position(id)
}

func (c physicsCap) SetPosition(id int, pos engineext.Vec3) bool {
	if c.backend == nil {
		return false
	}
	return c.backend.SetPosition(id, pos)
}

func (c physicsCap) Velocity(id int) (engineext.Vec3, bool) {
	if c.backend == nil {
		return engineext.Vec3{}, false
	}
	return c.backend.Velocity(id)
}

func (c physicsCap) SetVelocity(id int, vel engineext.Vec3) bool {
	if c.backend == nil {
		return false
	}
	return c.backend.SetVelocity(id, vel)
}

func (c physicsCap) Remove(id int) bool {
	if c.backend == nil {
		return false
	}
	return c.backend.RemoveBody(id)
}

// Light is the scene-light capability.
type Light interface {
	Create(cfg engineext.LightConfig) (engineext.Handle, error)
	Set(id int, cfg engineext.LightConfig) bool
	Enable(id int, enabled bool) bool
	Destroy(id int) bool
}

type lightCap struct{ backend engineext.LightSystem }

func (c lightCap) Create(cfg engineext.LightConfig) (engineext.Handle, error) {
	if c.backend == nil {
		return nil, kalierr.CapabilityMissing("light", "create")
	}
	return c.backend.CreateLight(cfg)
}

func (c lightCap) Set(id int, cfg engineext.LightConfig) bool {
	if c.backend == nil {
		return false
	}
	return c.backend.SetLight(id, cfg)
}

func (c lightCap) Enable(id int, enabled bool) bool {
	if c.backend == nil {
		return false
	}
	return c.backend.EnableLight(id, enabled)
}

func (c lightCap) Destroy(id int) bool {
	if c.backend == nil {
		return false
	}
	return c.backend.DestroyLight(id)
}

// Debug is the debug-draw capability.
type Debug interface {
	Line(cfg engineext.DebugLineConfig)
	Ray(cfg engineext.DebugLineConfig)
	Axes(cfg engineext.DebugLineConfig)
	Tick(dt float64)
	Clear()
	Enabled(enabled bool)
}

type debugCap struct{ backend engineext.DebugDraw }

func (c debugCap) Line(cfg engineext.DebugLineConfig) {
	if c.backend != nil {
		c.backend.Line(cfg)
	}
}
func (c debugCap) Ray(cfg engineext.DebugLineConfig) {
	if c.backend != nil {
		c.backend.Ray(cfg)
	}
}
func (c debugCap) Axes(cfg engineext.DebugLineConfig) {
	if c.backend != nil {
		c.backend.Axes(cfg)
	}
}
func (c debugCap) Tick(dt float64) {
	if c.backend != nil {
		c.backend.Tick(dt)
	}
}
func (c debugCap) Clear() {
	if c.backend != nil {
		c.backend.Clear()
	}
}
func (c debugCap) Enabled(enabled bool) {
	if c.backend != nil {
		c.backend.SetEnabled(enabled)
	}
}

// Mesh is the mesh-factory capability.
type Mesh interface {
	Create(cfg engineext.MeshConfig) (engineext.Handle, error)
}

type meshCap struct{ backend engineext.MeshFactory }

func (c meshCap) Create(cfg engineext.MeshConfig) (engineext.Handle, error) {
	if c.backend == nil {
		return nil, kalierr.CapabilityMissing("mesh", "create")
	}
	return c.backend.CreateMesh(cfg)
}

// Terrain is the terrain/terrainSplat capability.
type Terrain interface {
	Create(cfg engineext.TerrainConfig) (engineext.Handle, error)
}

type terrainCap struct{ backend engineext.TerrainFactory }

func (c terrainCap) Create(cfg engineext.TerrainConfig) (engineext.Handle, error) {
	if c.backend == nil {
		return nil, kalierr.CapabilityMissing("terrain", "create")
	}
	return c.backend.CreateTerrain(cfg)
}

// EditorLines is the editor-helper-geometry capability.
type EditorLines interface {
	CreateGridPlane(cfg engineext.GridPlaneConfig) (engineext.Handle, error)
	Destroy(handle engineext.Handle) bool
}

type editorLinesCap struct{ backend engineext.EditorLineFactory }

func (c editorLinesCap) CreateGridPlane(cfg engineext.GridPlaneConfig) (engineext.Handle, error) {
	if c.backend == nil {
		return nil, kalierr.CapabilityMissing("editorLines", "createGridPlane")
	}
	return c.backend.CreateGridPlane(cfg)
}

func (c editorLinesCap) Destroy(handle engineext.Handle) bool {
	if c.backend == nil {
		return false
	}
	return c.backend.DestroyLines(handle)
}

// InputAPI is the per-frame input capability (spec §4.G).
type InputAPI interface {
	ConsumeSnapshot() (input.Snapshot, error)
}

type inputCap struct{ agg *input.Aggregator }

func (c inputCap) ConsumeSnapshot() (input.Snapshot, error) {
	if c.agg == nil {
		return input.Snapshot{}, kalierr.CapabilityMissing("input", "consumeSnapshot")
	}
	return c.agg.ConsumeSnapshot(), nil
}

// WorldAPI is the imperative world-spawn capability.
type WorldAPI interface {
	Spawn(descriptor any) (int, error)
}

type worldCap struct{ spawner WorldSpawner }

func (c worldCap) Spawn(descriptor any) (int, error) {
	if c.spawner == nil {
		return 0, kalierr.CapabilityMissing("world", "spawn")
	}
	return c.spawner.Spawn(descriptor)
}

// EditorAPI toggles editor presentation mode.
type EditorAPI interface {
	SetEnabled(enabled bool) error
}

type editorCap struct{ control EditorControl }

func (c editorCap) SetEnabled(enabled bool) error {
	if c.control == nil {
		return kalierr.CapabilityMissing("editor", "setEnabled")
	}
	c.control.SetEnabled(enabled)
	return nil
}

// HUD is the on-screen UI capability.
type HUD interface {
	CreateElement(cfg engineext.HudElementConfig) (engineext.Handle, error)
	Tick(dt float64)
	Destroy(id int) bool
}

type hudCap struct{ backend engineext.HUDSystem }

func (c hudCap) CreateElement(cfg engineext.HudElementConfig) (engineext.Handle, error) {
	if c.backend == nil {
		return nil, kalierr.CapabilityMissing("hud", "element")
	}
	return c.backend.CreateElement(cfg)
}

func (c hudCap) Tick(dt float64) {
	if c.backend != nil {
		c.backend.Tick(dt)
	}
}

func (c hudCap) Destroy(id int) bool {
	if c.backend == nil {
		return false
	}
	return c.backend.DestroyElement(id)
}

// Time is the frame-time capability.
type Time interface {
	Tpf() float64
	TimeSec() float64
}

type timeCap struct {
	tpf     func() float64
	timeSec func() float64
}

func (c timeCap) Tpf() float64     { return c.tpf() }
func (c timeCap) TimeSec() float64 { return c.timeSec() }
