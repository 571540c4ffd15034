package worldbuild

import (
	"testing"

	"github.com/CalistaVerner/kalitech/internal/ecs"
)

func TestSpawnAllCallsSpawnerPerEntity(t *testing.T) {
	registry := NewPrefabRegistry()
	var spawnedNames []string
	registry.Register("crate", PrefabSpawnerFunc(func(entry EntityEntry) (ecs.EntityID, error) {
		spawnedNames = append(spawnedNames, entry.Name)
		return ecs.EntityID(1), nil
	}))

	entities := []EntityEntry{{Name: "box1", Prefab: "crate"}, {Name: "box2", Prefab: "crate"}}
	var spawnedIDs []ecs.EntityID
	registry.SpawnAll(entities, func(id ecs.EntityID, entry EntityEntry) {
		spawnedIDs = append(spawnedIDs, id)
	}, nil)

	if len(spawnedNames) != 2 || len(spawnedIDs) != 2 {
		t.Fatalf("expected both entities spawned, got names=%v ids=%v", spawnedNames, spawnedIDs)
	}
}

func TestSpawnAllReportsUnknownPrefabWithoutStoppingOthers(t *testing.T) {
	registry := NewPrefabRegistry()
	var spawned int
	registry.Register("known", PrefabSpawnerFunc(func(entry EntityEntry) (ecs.EntityID, error) {
		spawned++
		return ecs.EntityID(1), nil
	}))

	entities := []EntityEntry{{Name: "x", Prefab: "unknown"}, {Name: "y", Prefab: "known"}}
	var errs int
	registry.SpawnAll(entities, nil, func(entry EntityEntry, err error) { errs++ })

	if errs != 1 || spawned != 1 {
		t.Fatalf("expected 1 error and 1 successful spawn, got errs=%d spawned=%d", errs, spawned)
	}
}
