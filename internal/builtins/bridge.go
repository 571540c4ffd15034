// Package builtins implements the `@builtin/…` namespace (spec §4.M):
// runtime-shipped modules exporting a factory `function(engine, K) →
// api` plus static metadata. The host object each factory receives is
// built with the teacher's console-shim pattern (plain goja.Object plus
// Set-bound closures) rather than reflection-based struct binding, to
// keep the script-facing surface exactly as narrow as §4.H specifies.
package builtins

import (
	"math"

	"github.com/dop251/goja"

	"github.com/CalistaVerner/kalitech/internal/ecs"
	"github.com/CalistaVerner/kalitech/internal/engineext"
	"github.com/CalistaVerner/kalitech/internal/hostapi"
)

// BuildEngineObject wraps engine's capabilities into a goja object shaped
// like `engine.<capability>()` calls over plain objects (spec §4.H).
func BuildEngineObject(vm *goja.Runtime, engine *hostapi.Engine) *goja.Object {
	obj := vm.NewObject()
	must := func(name string, v any) {
		if err := obj.Set(name, v); err != nil {
			panic(vm.NewGoError(err))
		}
	}

	must("log", buildLogObject(vm, engine))
	must("entity", buildEntityObject(vm, engine))
	must("events", buildEventsObject(vm, engine))
	must("material", buildMaterialObject(vm, engine))
	must("mesh", buildMeshObject(vm, engine))
	must("terrain", buildTerrainObject(vm, engine))
	must("surface", buildSurfaceObject(vm, engine))
	must("physics", buildPhysicsObject(vm, engine))
	must("time", buildTimeObject(vm, engine))
	must("input", buildInputObject(vm, engine))
	must("world", buildWorldObject(vm, engine))
	return obj
}

func buildLogObject(vm *goja.Runtime, engine *hostapi.Engine) *goja.Object {
	obj := vm.NewObject()
	log := engine.Log()
	set := func(name string, fn func(string)) {
		_ = obj.Set(name, func(call goja.FunctionCall) goja.Value {
			fn(call.Argument(0).String())
			return goja.Undefined()
		})
	}
	set("info", log.Info)
	set("warn", log.Warn)
	set("error", log.Error)
	set("debug", log.Debug)
	return obj
}

func buildEntityObject(vm *goja.Runtime, engine *hostapi.Engine) *goja.Object {
	obj := vm.NewObject()
	ent := engine.Entity()
	_ = obj.Set("create", func(call goja.FunctionCall) goja.Value {
		id, err := ent.Create()
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(uint32(id))
	})
	_ = obj.Set("destroy", func(call goja.FunctionCall) goja.Value {
		ent.Destroy(ecs.EntityID(call.Argument(0).ToInteger()))
		return goja.Undefined()
	})
	_ = obj.Set("setComponent", func(call goja.FunctionCall) goja.Value {
		id := ecs.EntityID(call.Argument(0).ToInteger())
		name := call.Argument(1).String()
		ok := ent.SetComponent(id, name, call.Argument(2).Export())
		return vm.ToValue(ok)
	})
	_ = obj.Set("getComponent", func(call goja.FunctionCall) goja.Value {
		id := ecs.EntityID(call.Argument(0).ToInteger())
		name := call.Argument(1).String()
		return vm.ToValue(ent.GetComponent(id, name))
	})
	_ = obj.Set("hasComponent", func(call goja.FunctionCall) goja.Value {
		id := ecs.EntityID(call.Argument(0).ToInteger())
		name := call.Argument(1).String()
		return vm.ToValue(ent.HasComponent(id, name))
	})
	_ = obj.Set("removeComponent", func(call goja.FunctionCall) goja.Value {
		id := ecs.EntityID(call.Argument(0).ToInteger())
		name := call.Argument(1).String()
		ent.RemoveComponent(id, name)
		return goja.Undefined()
	})
	return obj
}

func buildEventsObject(vm *goja.Runtime, engine *hostapi.Engine) *goja.Object {
	obj := vm.NewObject()
	bus := engine.Events()
	_ = obj.Set("on", func(call goja.FunctionCall) goja.Value {
		topic := call.Argument(0).String()
		handler, _ := goja.AssertFunction(call.Argument(1))
		unsub := bus.On(topic, func(payload any) {
			if handler != nil {
				_, _ = handler(goja.Undefined(), vm.ToValue(payload))
			}
		})
		return vm.ToValue(func(goja.FunctionCall) goja.Value { unsub(); return goja.Undefined() })
	})
	_ = obj.Set("once", func(call goja.FunctionCall) goja.Value {
		topic := call.Argument(0).String()
		handler, _ := goja.AssertFunction(call.Argument(1))
		bus.Once(topic, func(payload any) {
			if handler != nil {
				_, _ = handler(goja.Undefined(), vm.ToValue(payload))
			}
		})
		return goja.Undefined()
	})
	_ = obj.Set("emit", func(call goja.FunctionCall) goja.Value {
		bus.Emit(call.Argument(0).String(), call.Argument(1).Export())
		return goja.Undefined()
	})
	return obj
}

func buildMaterialObject(vm *goja.Runtime, engine *hostapi.Engine) *goja.Object {
	obj := vm.NewObject()
	mat := engine.Material()
	_ = obj.Set("create", func(call goja.FunctionCall) goja.Value {
		cfg := exportMaterialConfig(call.Argument(0))
		handle, err := mat.Create(cfg)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(wrapHandle(vm, handle))
	})
	return obj
}

func exportMaterialConfig(v goja.Value) engineext.MaterialConfig {
	raw, _ := v.Export().(map[string]interface{})
	cfg := engineext.MaterialConfig{Params: map[string]any{}, Scales: map[string]float64{}}
	if raw == nil {
		return cfg
	}
	if def, ok := raw["def"].(string); ok {
		cfg.Def = def
	}
	if params, ok := raw["params"].(map[string]interface{}); ok {
		cfg.Params = params
	}
	if scales, ok := raw["scales"].(map[string]interface{}); ok {
		for k, v := range scales {
			if f, ok := v.(float64); ok {
				cfg.Scales[k] = f
			}
		}
	}
	return cfg
}

func buildMeshObject(vm *goja.Runtime, engine *hostapi.Engine) *goja.Object {
	obj := vm.NewObject()
	mesh := engine.Mesh()
	_ = obj.Set("create", func(call goja.FunctionCall) goja.Value {
		cfg, _ := call.Argument(0).Export().(map[string]interface{})
		handle, err := mesh.Create(engineext.MeshConfig(cfg))
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(wrapHandle(vm, handle))
	})
	return obj
}

func buildTerrainObject(vm *goja.Runtime, engine *hostapi.Engine) *goja.Object {
	obj := vm.NewObject()
	terrain := engine.Terrain()
	_ = obj.Set("create", func(call goja.FunctionCall) goja.Value {
		cfg, _ := call.Argument(0).Export().(map[string]interface{})
		handle, err := terrain.Create(engineext.TerrainConfig(cfg))
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(wrapHandle(vm, handle))
	})
	return obj
}

func buildSurfaceObject(vm *goja.Runtime, engine *hostapi.Engine) *goja.Object {
	obj := vm.NewObject()
	srf := engine.Surface()
	_ = obj.Set("attach", func(call goja.FunctionCall) goja.Value {
		surfaceID := int(call.Argument(0).ToInteger())
		entityID := ecs.EntityID(call.Argument(1).ToInteger())
		return vm.ToValue(srf.Attach(surfaceID, entityID))
	})
	_ = obj.Set("detachSurface", func(call goja.FunctionCall) goja.Value {
		srf.DetachSurface(int(call.Argument(0).ToInteger()))
		return goja.Undefined()
	})
	_ = obj.Set("destroy", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(srf.Destroy(int(call.Argument(0).ToInteger())))
	})
	hostapi.InstallLegacyShim(obj, "surface")
	return obj
}

func buildPhysicsObject(vm *goja.Runtime, engine *hostapi.Engine) *goja.Object {
	obj := vm.NewObject()
	phys := engine.Physics()
	_ = obj.Set("body", func(call goja.FunctionCall) goja.Value {
		cfg, _ := call.Argument(0).Export().(map[string]interface{})
		handle, err := phys.Body(engineext.BodyConfig(cfg))
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(wrapHandle(vm, handle))
	})
	_ = obj.Set("setPosition", func(call goja.FunctionCall) goja.Value {
		id := int(call.Argument(0).ToInteger())
		pos := engineext.Vec3{X: call.Argument(1).ToFloat(), Y: call.Argument(2).ToFloat(), Z: call.Argument(3).ToFloat()}
		return vm.ToValue(phys.SetPosition(id, pos))
	})
	hostapi.InstallLegacyShim(obj, "physics")
	return obj
}

func buildTimeObject(vm *goja.Runtime, engine *hostapi.Engine) *goja.Object {
	obj := vm.NewObject()
	t := engine.Time()
	_ = obj.Set("tpf", func(call goja.FunctionCall) goja.Value { return vm.ToValue(t.Tpf()) })
	_ = obj.Set("timeSec", func(call goja.FunctionCall) goja.Value { return vm.ToValue(t.TimeSec()) })
	return obj
}

func buildInputObject(vm *goja.Runtime, engine *hostapi.Engine) *goja.Object {
	obj := vm.NewObject()
	in := engine.Input()
	_ = obj.Set("consumeSnapshot", func(call goja.FunctionCall) goja.Value {
		snap, err := in.ConsumeSnapshot()
		if err != nil {
			return goja.Undefined()
		}
		return vm.ToValue(snap)
	})
	return obj
}

func buildWorldObject(vm *goja.Runtime, engine *hostapi.Engine) *goja.Object {
	obj := vm.NewObject()
	w := engine.World()
	_ = obj.Set("spawn", func(call goja.FunctionCall) goja.Value {
		id, err := w.Spawn(call.Argument(0).Export())
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return vm.ToValue(id)
	})
	return obj
}

// wrapHandle exposes a numeric id() plus a valueOf() so scripts can pass
// a handle anywhere a number is expected through JS's default ToPrimitive
// coercion (spec §6 "handles ... coerce safely to a number").
func wrapHandle(vm *goja.Runtime, handle engineext.Handle) *goja.Object {
	obj := vm.NewObject()
	_ = obj.Set("id", func(call goja.FunctionCall) goja.Value { return vm.ToValue(handle.ID()) })
	_ = obj.Set("valueOf", func(call goja.FunctionCall) goja.Value { return vm.ToValue(handle.ID()) })
	_ = obj.Set("toString", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(vm.ToValue(handle.ID()).String())
	})
	return obj
}

// BuildKitObject builds the K math-helper object every builtin factory
// receives as its second argument (spec §4.M).
func BuildKitObject(vm *goja.Runtime) *goja.Object {
	obj := vm.NewObject()
	_ = obj.Set("clamp", func(call goja.FunctionCall) goja.Value {
		x := call.Argument(0).ToFloat()
		lo := call.Argument(1).ToFloat()
		hi := call.Argument(2).ToFloat()
		return vm.ToValue(math.Max(lo, math.Min(hi, x)))
	})
	_ = obj.Set("lerp", func(call goja.FunctionCall) goja.Value {
		a := call.Argument(0).ToFloat()
		b := call.Argument(1).ToFloat()
		t := call.Argument(2).ToFloat()
		return vm.ToValue(a + (b-a)*t)
	})
	_ = obj.Set("vec3Length", func(call goja.FunctionCall) goja.Value {
		x, y, z := call.Argument(0).ToFloat(), call.Argument(1).ToFloat(), call.Argument(2).ToFloat()
		return vm.ToValue(math.Sqrt(x*x + y*y + z*z))
	})
	return obj
}
