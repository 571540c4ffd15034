package worldbuild

import (
	"fmt"
	"sync"

	"github.com/CalistaVerner/kalitech/internal/ecs"
)

// PrefabSpawner instantiates one declarative entity entry (spec §6
// `entities: [{ name, prefab, ... }]`). Concrete prefab spawners
// (§4.M Entity builtin and friends) register under a prefab name.
type PrefabSpawner interface {
	Spawn(entry EntityEntry) (ecs.EntityID, error)
}

// PrefabSpawnerFunc adapts a function to PrefabSpawner.
type PrefabSpawnerFunc func(entry EntityEntry) (ecs.EntityID, error)

// Spawn implements PrefabSpawner.
func (f PrefabSpawnerFunc) Spawn(entry EntityEntry) (ecs.EntityID, error) { return f(entry) }

// PrefabRegistry maps prefab name to spawner.
type PrefabRegistry struct {
	mu       sync.RWMutex
	spawners map[string]PrefabSpawner
}

// NewPrefabRegistry creates an empty registry.
func NewPrefabRegistry() *PrefabRegistry {
	return &PrefabRegistry{spawners: make(map[string]PrefabSpawner)}
}

// Register adds or replaces the spawner for prefab.
func (r *PrefabRegistry) Register(prefab string, spawner PrefabSpawner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spawners[prefab] = spawner
}

// SpawnAll instantiates every entity entry in desc.Entities, in
// declared order (spec §4.I "applyEntitiesFromWorldDesc"). A single
// entry failing (unknown prefab, spawner error) is logged via onError
// and does not prevent the remaining entries from spawning.
func (r *PrefabRegistry) SpawnAll(entities []EntityEntry, onSpawned func(id ecs.EntityID, entry EntityEntry), onError func(entry EntityEntry, err error)) {
	for _, entry := range entities {
		r.mu.RLock()
		spawner, ok := r.spawners[entry.Prefab]
		r.mu.RUnlock()
		if !ok {
			if onError != nil {
				onError(entry, fmt.Errorf("unknown prefab %q", entry.Prefab))
			}
			continue
		}
		id, err := spawner.Spawn(entry)
		if err != nil {
			if onError != nil {
				onError(entry, err)
			}
			continue
		}
		if onSpawned != nil {
			onSpawned(id, entry)
		}
	}
}
