package builtins

// defaultModules lists every `@builtin/…` module this runtime ships
// (spec §4.M). Each factory is plain JavaScript executed inside the
// same goja.Runtime as user scripts, so a world module requires a
// builtin exactly the way it requires its own code:
//
//	const Entity = require("@builtin/Entity");
//
// Every factory is written to tolerate a missing engine capability:
// calls fail soft (catch + log) rather than throwing into the caller,
// matching spec §4.M "graceful no-op if a capability is missing".
func defaultModules() []Module {
	return []Module{
		entityModule(),
		materialModule(),
		meshModule(),
		terrainModule(),
		soundModule(),
		eventsModule(),
	}
}

func entityModule() Module {
	return Module{
		Meta: Metadata{
			Name:        "Entity",
			GlobalName:  "Entity",
			Version:     "1.0.0",
			Description: "declarative entity, surface and component builder",
			EngineMin:   "0.1.0",
		},
		Factory: `function(engine, K) {
			function spawn(cfg) {
				cfg = cfg || {};
				var id = engine.entity.create();
				var components = cfg.components || {};
				for (var key in components) {
					if (Object.prototype.hasOwnProperty.call(components, key)) {
						engine.entity.setComponent(id, key, components[key]);
					}
				}
				if (cfg.mesh) {
					try {
						var meshHandle = engine.mesh.create(cfg.mesh);
						engine.entity.setComponent(id, "meshHandle", meshHandle.id());
						engine.surface.attach(meshHandle.id(), id);
					} catch (e) {
						engine.log.warn("Entity.spawn: mesh create failed: " + e);
					}
				}
				if (cfg.body) {
					try {
						var bodyHandle = engine.physics.body(cfg.body);
						engine.entity.setComponent(id, "bodyHandle", bodyHandle.id());
					} catch (e) {
						engine.log.warn("Entity.spawn: body create failed: " + e);
					}
				}
				if (cfg.name) {
					engine.entity.setComponent(id, "name", cfg.name);
				}
				return id;
			}
			function destroy(id) {
				engine.entity.destroy(id);
			}
			return { spawn: spawn, destroy: destroy };
		}`,
	}
}

func materialModule() Module {
	return Module{
		Meta: Metadata{
			Name:        "Material",
			GlobalName:  "Material",
			Version:     "1.0.0",
			Description: "material definition registry with override/preset support",
			EngineMin:   "0.1.0",
		},
		Factory: `function(engine, K) {
			var presets = {};

			function definePreset(name, cfg) {
				presets[name] = cfg;
			}

			function merge(base, overrides) {
				var out = {};
				var key;
				for (key in base) { out[key] = base[key]; }
				if (overrides) {
					for (key in overrides) { out[key] = overrides[key]; }
				}
				return out;
			}

			function create(nameOrCfg, overrides) {
				var cfg;
				if (typeof nameOrCfg === "string") {
					var preset = presets[nameOrCfg];
					if (!preset) {
						engine.log.warn("Material.create: unknown preset " + nameOrCfg);
						preset = {};
					}
					cfg = merge(preset, overrides);
				} else {
					cfg = nameOrCfg || {};
				}
				try {
					return engine.material.create(cfg);
				} catch (e) {
					engine.log.warn("Material.create: material create failed: " + e);
					return null;
				}
			}

			return { definePreset: definePreset, create: create };
		}`,
	}
}

func meshModule() Module {
	return Module{
		Meta: Metadata{
			Name:        "Mesh",
			GlobalName:  "Mesh",
			Version:     "1.0.0",
			Description: "primitive and procedural mesh factory",
			EngineMin:   "0.1.0",
		},
		Factory: `function(engine, K) {
			function make(cfg) {
				try {
					return engine.mesh.create(cfg);
				} catch (e) {
					engine.log.warn("Mesh: mesh create failed: " + e);
					return null;
				}
			}
			function box(size) {
				return make({ kind: "box", size: size });
			}
			function sphere(radius, segments) {
				return make({ kind: "sphere", radius: radius, segments: segments || 16 });
			}
			function create(cfg) {
				return make(cfg || {});
			}
			return { box: box, sphere: sphere, create: create };
		}`,
	}
}

func terrainModule() Module {
	return Module{
		Meta: Metadata{
			Name:        "Terrain",
			GlobalName:  "Terrain",
			Version:     "1.0.0",
			Description: "heightmap/splat terrain factory",
			EngineMin:   "0.1.0",
		},
		Factory: `function(engine, K) {
			function create(cfg) {
				try {
					return engine.terrain.create(cfg || {});
				} catch (e) {
					engine.log.warn("Terrain.create: terrain create failed: " + e);
					return null;
				}
			}
			return { create: create };
		}`,
	}
}

func soundModule() Module {
	return Module{
		Meta: Metadata{
			Name:        "Sound",
			GlobalName:  "Sound",
			Version:     "1.0.0",
			Description: "sound-cue helper; a no-op shim until an audio capability lands",
			EngineMin:   "0.1.0",
		},
		// The host API facade (spec §4.H) has no audio capability; this
		// builtin still ships so world scripts can call Sound.play without
		// a capability check of their own, per the "graceful no-op"
		// contract extended to capabilities the facade doesn't expose yet.
		Factory: `function(engine, K) {
			function play(cueName, opts) {
				engine.log.debug("Sound.play: no audio capability wired, ignoring " + cueName);
			}
			function stop(cueName) {}
			return { play: play, stop: stop };
		}`,
	}
}

func eventsModule() Module {
	return Module{
		Meta: Metadata{
			Name:        "Events",
			GlobalName:  "Events",
			Version:     "1.0.0",
			Description: "thin ergonomic wrapper over the engine event bus",
			EngineMin:   "0.1.0",
		},
		Factory: `function(engine, K) {
			function on(topic, handler) { return engine.events.on(topic, handler); }
			function once(topic, handler) { return engine.events.once(topic, handler); }
			function emit(topic, payload) { engine.events.emit(topic, payload); }
			return { on: on, once: once, emit: emit };
		}`,
	}
}
