package builtins

import (
	"testing"

	"github.com/dop251/goja"

	"github.com/CalistaVerner/kalitech/internal/ecs"
	"github.com/CalistaVerner/kalitech/internal/engineext"
	"github.com/CalistaVerner/kalitech/internal/eventbus"
	"github.com/CalistaVerner/kalitech/internal/hostapi"
	"github.com/CalistaVerner/kalitech/internal/logging"
	"github.com/CalistaVerner/kalitech/internal/surface"
)

type fakeSpatial struct{}

func (fakeSpatial) RemoveFromParent() {}

type fakeMeshFactory struct{ surfaces *surface.Registry }

func (f fakeMeshFactory) CreateMesh(cfg engineext.MeshConfig) (engineext.Handle, error) {
	h := f.surfaces.Register(fakeSpatial{}, surface.KindBox)
	return h, nil
}

func newTestEngine() *hostapi.Engine {
	log := logging.New("test", "error", "text")
	entities := ecs.NewStore(ecs.NewEntityManager())
	events := eventbus.New()
	return hostapi.New(hostapi.Deps{Log: log, Events: events, Entities: entities}, nil)
}

func TestBootstrapInstallsGlobalsAndEntityCreateWorks(t *testing.T) {
	vm := goja.New()
	engine := newTestEngine()
	log := logging.New("test", "error", "text")
	registry := NewRegistry(log)

	if err := Bootstrap(vm, engine, registry, log, true); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	result, err := vm.RunString(`Entity.spawn({ name: "crate1", components: { health: 10 } })`)
	if err != nil {
		t.Fatalf("Entity.spawn failed: %v", err)
	}
	id := ecs.EntityID(result.ToInteger())
	if !engine.Entity().HasComponent(id, "health") {
		t.Fatalf("expected health component to be set")
	}
	if !engine.Entity().HasComponent(id, "name") {
		t.Fatalf("expected name component to be set")
	}
}

func TestBootstrapSkipsGlobalsWhenDisabled(t *testing.T) {
	vm := goja.New()
	engine := newTestEngine()
	log := logging.New("test", "error", "text")
	registry := NewRegistry(log)

	if err := Bootstrap(vm, engine, registry, log, false); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	if _, err := vm.RunString(`typeof Entity`); err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	if v, _ := vm.RunString(`typeof Entity`); v.String() != "undefined" {
		t.Fatalf("expected Entity global to be absent, got %v", v)
	}
}

func TestMaterialBuiltinFallsBackGracefullyWithoutMaterialCapability(t *testing.T) {
	vm := goja.New()
	engine := newTestEngine()
	log := logging.New("test", "error", "text")
	registry := NewRegistry(log)

	if err := Bootstrap(vm, engine, registry, log, true); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	result, err := vm.RunString(`Material.create({ def: "standard" })`)
	if err != nil {
		t.Fatalf("expected Material.create to fail soft without a material capability, got %v", err)
	}
	if !goja.IsNull(result) {
		t.Fatalf("expected Material.create to return null without a material capability, got %v", result)
	}
}

func TestSoundBuiltinNoOpsWithoutAudioCapability(t *testing.T) {
	vm := goja.New()
	engine := newTestEngine()
	log := logging.New("test", "error", "text")
	registry := NewRegistry(log)

	if err := Bootstrap(vm, engine, registry, log, true); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if _, err := vm.RunString(`Sound.play("explosion")`); err != nil {
		t.Fatalf("Sound.play should tolerate a missing audio capability, got %v", err)
	}
}

func TestEntitySpawnAttachesMeshSurfaceToEntity(t *testing.T) {
	vm := goja.New()
	log := logging.New("test", "error", "text")
	entities := ecs.NewStore(ecs.NewEntityManager())
	events := eventbus.New()
	surfaces := surface.New()
	engine := hostapi.New(hostapi.Deps{
		Log:      log,
		Events:   events,
		Entities: entities,
		Surfaces: surfaces,
		Mesh:     fakeMeshFactory{surfaces: surfaces},
	}, nil)
	registry := NewRegistry(log)

	if err := Bootstrap(vm, engine, registry, log, true); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}

	result, err := vm.RunString(`Entity.spawn({ mesh: { kind: "box" } })`)
	if err != nil {
		t.Fatalf("Entity.spawn failed: %v", err)
	}
	id := ecs.EntityID(result.ToInteger())
	attachedID, ok := surfaces.AttachedEntity(1)
	if !ok || attachedID != id {
		t.Fatalf("expected surface 1 attached to entity %d, got %v/%v", id, attachedID, ok)
	}
}

func TestVersionAtLeast(t *testing.T) {
	cases := []struct {
		running, required string
		want               bool
	}{
		{"0.9.0", "0.1.0", true},
		{"0.9.0", "1.0.0", false},
		{"1.2.3", "1.2.3", true},
		{"1.2.3", "1.2.4", false},
	}
	for _, c := range cases {
		if got := versionAtLeast(c.running, c.required); got != c.want {
			t.Errorf("versionAtLeast(%q, %q) = %v, want %v", c.running, c.required, got, c.want)
		}
	}
}
