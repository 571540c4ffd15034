// Package orchestrator implements the runtime orchestrator (spec
// §4.L): the per-frame procedure that ties the module registry, the
// hot-reload watcher, the host API facade, and the current KWorld
// together.
package orchestrator

import (
	"context"
	"sync/atomic"

	"github.com/dop251/goja"
	"github.com/google/uuid"

	"github.com/CalistaVerner/kalitech/internal/ecs"
	"github.com/CalistaVerner/kalitech/internal/eventbus"
	"github.com/CalistaVerner/kalitech/internal/hostapi"
	"github.com/CalistaVerner/kalitech/internal/hotreload"
	"github.com/CalistaVerner/kalitech/internal/ksystem"
	"github.com/CalistaVerner/kalitech/internal/logging"
	"github.com/CalistaVerner/kalitech/internal/metrics"
	"github.com/CalistaVerner/kalitech/internal/module"
	"github.com/CalistaVerner/kalitech/internal/scripting"
	"github.com/CalistaVerner/kalitech/internal/worldbuild"
)

// PhysicsClearer is the narrow physics contract rebuildFromMain needs.
type PhysicsClearer interface {
	Clear()
}

// Options configures an Orchestrator.
type Options struct {
	Registry          *scripting.Registry
	Watcher           *hotreload.Watcher
	Engine            *hostapi.Engine
	Entities          *ecs.Store
	Events            *eventbus.Bus
	Providers         *worldbuild.ProviderRegistry
	Prefabs           *worldbuild.PrefabRegistry
	Physics           PhysicsClearer
	Log               *logging.Logger
	Metrics           *metrics.Metrics
	MainDescriptorID  module.ID
	ReloadCooldownSec float64
}

// Orchestrator owns the module registry, the watcher, the host API
// facade, and the current world, driving them through the per-frame
// procedure (spec §4.L). It is not safe for concurrent Update calls;
// the frame loop is expected to call Update from a single goroutine.
type Orchestrator struct {
	opts Options

	cooldown      float64
	dirty         bool
	forceRebuild  bool
	worldBuilt    bool
	lastHash      string
	currentWorld  *ksystem.KWorld
	reloadPending atomic.Bool
}

// New creates an Orchestrator; the first Update call tolerates no world
// having been built yet (spec §4.L "first frames tolerate absence").
func New(opts Options) *Orchestrator {
	if opts.ReloadCooldownSec <= 0 {
		opts.ReloadCooldownSec = 0.25
	}
	return &Orchestrator{opts: opts, dirty: true}
}

// Update runs one frame of the orchestration procedure (spec §4.L).
func (o *Orchestrator) Update(ctx context.Context, tpf float64) {
	o.opts.Engine.UpdateTime(tpf)

	if o.worldBuilt {
		o.opts.Engine.DrainMainThread()
		if o.currentWorld != nil {
			o.currentWorld.Update(o.systemContext(ctx), tpf)
		}
	}

	o.cooldown -= tpf
	if o.cooldown <= 0 {
		changed := o.opts.Watcher.PollChanged()
		if len(changed) > 0 {
			o.cooldown = o.opts.ReloadCooldownSec
			o.opts.Registry.InvalidateMany(changed)
			o.opts.Events.Emit("hotreload:changed", changed)
			if _, ok := changed[o.opts.MainDescriptorID]; ok {
				o.dirty = true
			}
			if o.opts.Metrics != nil {
				o.opts.Metrics.WatcherChanges.Add(float64(len(changed)))
			}
		}
	}

	if o.reloadPending.CompareAndSwap(true, false) {
		o.dirty = true
		o.forceRebuild = true
	}

	if o.dirty {
		o.dirty = false
		force := o.forceRebuild
		o.forceRebuild = false
		o.rebuildFromMain(ctx, force)
	}

	o.opts.Engine.EndFrameInput()
}

// rebuildFromMain re-requires the main descriptor module and, unless its
// source hash is unchanged, tears down the current world and builds a
// fresh one (spec §4.L). force bypasses the source-hash gate for an
// operator-triggered reload (diagnostics' POST /reload), where an
// unchanged main descriptor still means "rebuild anyway".
func (o *Orchestrator) rebuildFromMain(ctx context.Context, force bool) {
	o.opts.Registry.Invalidate(o.opts.MainDescriptorID)

	exportsVal, err := o.opts.Registry.RequireRoot(o.opts.MainDescriptorID)
	if err != nil {
		o.opts.Log.WithError(err).Warn("failed to evaluate main descriptor")
		return
	}

	hash := o.opts.Registry.SourceHashOf(o.opts.MainDescriptorID)
	if !force && o.worldBuilt && hash == o.lastHash {
		// Source-hash gate (spec §8 property 9): unchanged main descriptor
		// skips the rebuild entirely, touching neither physics nor ECS.
		return
	}

	desc, err := worldbuild.ParseModuleExports(exportsVal)
	if err != nil {
		o.opts.Log.WithError(err).Warn("failed to parse world descriptor")
		return
	}

	if desc.Mode == "editor" {
		_ = o.opts.Engine.Editor().SetEnabled(true)
	} else {
		_ = o.opts.Engine.Editor().SetEnabled(false)
	}

	sysCtx := o.systemContext(ctx)
	newWorld, err := o.opts.Providers.Build(sysCtx, desc)
	if err != nil {
		// UnknownSystem or a provider construction failure: abort the
		// rebuild and keep the previous world running (spec §7).
		o.opts.Log.WithError(err).Warn("world rebuild aborted, previous world retained")
		return
	}

	if o.opts.Physics != nil {
		o.opts.Physics.Clear()
	}
	if o.opts.Entities != nil {
		o.opts.Entities.Reset()
	}
	if o.currentWorld != nil {
		o.currentWorld.Stop(sysCtx)
	}

	o.currentWorld = newWorld
	o.currentWorld.Start(sysCtx)

	rebuildID := uuid.NewString()
	o.opts.Log.WithField("rebuildId", rebuildID).Info("world rebuilt")
	if o.opts.Events != nil {
		o.opts.Events.Emit("world:rebuilt", map[string]any{"rebuildId": rebuildID, "mode": desc.Mode})
	}

	if o.opts.Prefabs != nil && o.opts.Events != nil {
		o.opts.Prefabs.SpawnAll(desc.Entities,
			func(id ecs.EntityID, entry worldbuild.EntityEntry) {
				o.opts.Events.Emit("entity:spawned", map[string]any{"id": uint32(id), "name": entry.Name, "prefab": entry.Prefab, "rebuildId": rebuildID})
			},
			func(entry worldbuild.EntityEntry, err error) {
				o.opts.Log.WithError(err).Warnf("failed to spawn entity %q", entry.Name)
			},
		)
	}

	o.callBootstrap(ctx, exportsVal)

	o.lastHash = hash
	o.worldBuilt = true
	if o.opts.Metrics != nil {
		o.opts.Metrics.WorldRebuilds.Inc()
	}
}

// callBootstrap invokes the optional bootstrap export after systems have
// started, with the exports object as `this` and no arguments; no ctx is
// passed to it.
func (o *Orchestrator) callBootstrap(ctx context.Context, exportsVal goja.Value) {
	obj, ok := exportsVal.(*goja.Object)
	if !ok {
		return
	}
	bootstrapFn, ok := goja.AssertFunction(obj.Get("bootstrap"))
	if !ok {
		return
	}
	if _, err := bootstrapFn(obj); err != nil {
		o.opts.Log.WithError(err).Warn("bootstrap failed")
	}
}

func (o *Orchestrator) systemContext(ctx context.Context) ksystem.SystemContext {
	return ksystem.SystemContext{
		Context:  ctx,
		ECS:      o.opts.Entities,
		Events:   o.opts.Events,
		Log:      o.opts.Log,
		StateBag: make(map[string]any),
		Tpf:      func() float64 { return o.opts.Engine.Time().Tpf() },
	}
}

// CurrentWorld exposes the currently active KWorld for diagnostics.
func (o *Orchestrator) CurrentWorld() *ksystem.KWorld { return o.currentWorld }

// Registry exposes the underlying module registry for diagnostics.
func (o *Orchestrator) Registry() *scripting.Registry { return o.opts.Registry }

// RequestReload schedules a forced rebuild on the next Update call. Safe
// to call from another goroutine, e.g. the diagnostics HTTP server
// handling POST /reload.
func (o *Orchestrator) RequestReload() { o.reloadPending.Store(true) }
