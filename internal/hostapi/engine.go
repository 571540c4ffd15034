// Package hostapi implements the host API facade (spec §4.H): a single
// Engine entry point exposing capability-partitioned sub-facades. The
// partitioning is the contract — a script holds a capability object and
// nothing wider, mirroring the teacher's pattern of handing callers a
// narrow interface rather than a concrete service struct.
package hostapi

import (
	"sync"

	"github.com/CalistaVerner/kalitech/internal/ecs"
	"github.com/CalistaVerner/kalitech/internal/engineext"
	"github.com/CalistaVerner/kalitech/internal/eventbus"
	"github.com/CalistaVerner/kalitech/internal/input"
	"github.com/CalistaVerner/kalitech/internal/logging"
	"github.com/CalistaVerner/kalitech/internal/surface"
)

// WorldSpawner is the narrow contract the world capability needs from
// the world builder; kept local to avoid an import cycle with
// internal/worldbuild, which itself depends on hostapi's collaborator
// types.
type WorldSpawner interface {
	Spawn(descriptor any) (int, error)
}

// EditorControl toggles editor-mode presentation.
type EditorControl interface {
	SetEnabled(enabled bool)
}

// Deps bundles every collaborator Engine wires into a capability. A nil
// field is valid: the corresponding capability reports
// kalierr.CapabilityMissing rather than panicking (spec §4.M "tolerate
// late-arriving engine capabilities").
type Deps struct {
	Log          *logging.Logger
	Events       *eventbus.Bus
	Entities     *ecs.Store
	Surfaces     *surface.Registry
	Input        *input.Aggregator
	Assets       engineext.AssetLoader
	Renderer     engineext.Renderer
	Camera       engineext.Camera
	Physics      engineext.PhysicsWorld
	Light        engineext.LightSystem
	Debug        engineext.DebugDraw
	Mesh         engineext.MeshFactory
	Terrain      engineext.TerrainFactory
	EditorLines  engineext.EditorLineFactory
	Material     engineext.MaterialSystem
	HUD          engineext.HUDSystem
	Picker       engineext.SurfacePicker
	World        WorldSpawner
	Editor       EditorControl
}

// Engine is the single entry point scripts receive (spec §4.H).
type Engine struct {
	deps Deps

	mainMu     sync.Mutex
	mainJobs   []func()
	mainThread int64 // goroutine identity surrogate; see SetMainThread

	timeMu  sync.Mutex
	tpf     float64
	timeSec float64

	currentThread func() int64
}

// New builds an Engine over deps. currentThreadID, when non-nil, lets
// IsJmeThread compare the calling goroutine against the thread that
// called SetMainThread; callers that don't need that distinction (most
// tests) may pass nil, in which case IsJmeThread always reports true.
func New(deps Deps, currentThreadID func() int64) *Engine {
	return &Engine{deps: deps, currentThread: currentThreadID}
}

// SetMainThread records the calling goroutine as the designated
// render/update thread. Call this once, from the frame loop's goroutine,
// before the first RunOnMainThread/IsJmeThread use.
func (e *Engine) SetMainThread() {
	if e.currentThread != nil {
		e.mainThread = e.currentThread()
	}
}

// IsJmeThread reports whether the caller is running on the designated
// main thread (spec §4.H "Main-thread dispatch").
func (e *Engine) IsJmeThread() bool {
	if e.currentThread == nil {
		return true
	}
	return e.currentThread() == e.mainThread
}

// RunOnMainThread enqueues fn to run at the next DrainMainThread call
// (spec §4.H: executed "at the next frame boundary").
func (e *Engine) RunOnMainThread(fn func()) {
	e.mainMu.Lock()
	defer e.mainMu.Unlock()
	e.mainJobs = append(e.mainJobs, fn)
}

// DrainMainThread runs every job queued since the last drain, in FIFO
// order. The orchestrator calls this once per frame from the main
// thread, before systems update.
func (e *Engine) DrainMainThread() {
	e.mainMu.Lock()
	jobs := e.mainJobs
	e.mainJobs = nil
	e.mainMu.Unlock()
	for _, job := range jobs {
		job()
	}
}

// UpdateTime advances the facade's time capability by tpf seconds
// (spec §4.L update procedure, step "api.updateTime(tpf)").
func (e *Engine) UpdateTime(tpf float64) {
	e.timeMu.Lock()
	defer e.timeMu.Unlock()
	e.tpf = tpf
	e.timeSec += tpf
}

// EndFrameInput advances the input aggregator to the next frame (spec
// §4.L update procedure, final step).
func (e *Engine) EndFrameInput() {
	if e.deps.Input != nil {
		e.deps.Input.EndFrame()
	}
}

// Capability accessors. Each returns a narrow interface scoped to one
// concern; scripts never see the Engine or Deps struct directly.

func (e *Engine) Log() Log             { return logCap{log: e.deps.Log} }
func (e *Engine) Assets() Assets       { return assetsCap{loader: e.deps.Assets} }
func (e *Engine) Events() *eventbus.Bus { return e.deps.Events }
func (e *Engine) Material() Material   { return materialCap{backend: e.deps.Material} }
func (e *Engine) Entity() EntityAPI {
	return entityCap{store: e.deps.Entities, surfaces: e.deps.Surfaces}
}
func (e *Engine) Surface() SurfaceAPI {
	return surfaceCap{registry: e.deps.Surfaces, picker: e.deps.Picker}
}
func (e *Engine) Render() Render   { return renderCap{backend: e.deps.Renderer} }
func (e *Engine) Camera() CameraAPI { return cameraCap{backend: e.deps.Camera} }
func (e *Engine) Physics() Physics { return physicsCap{backend: e.deps.Physics} }
func (e *Engine) Light() Light     { return lightCap{backend: e.deps.Light} }
func (e *Engine) Debug() Debug     { return debugCap{backend: e.deps.Debug} }
func (e *Engine) Mesh() Mesh       { return meshCap{backend: e.deps.Mesh} }
func (e *Engine) Terrain() Terrain { return terrainCap{backend: e.deps.Terrain} }
func (e *Engine) EditorLines() EditorLines {
	return editorLinesCap{backend: e.deps.EditorLines}
}
func (e *Engine) Input() InputAPI { return inputCap{agg: e.deps.Input} }
func (e *Engine) World() WorldAPI { return worldCap{spawner: e.deps.World} }
func (e *Engine) Editor() EditorAPI {
	return editorCap{control: e.deps.Editor}
}
func (e *Engine) HUD() HUD { return hudCap{backend: e.deps.HUD} }
func (e *Engine) Time() Time {
	return timeCap{tpf: func() float64 { e.timeMu.Lock(); defer e.timeMu.Unlock(); return e.tpf },
		timeSec: func() float64 { e.timeMu.Lock(); defer e.timeMu.Unlock(); return e.timeSec }}
}
