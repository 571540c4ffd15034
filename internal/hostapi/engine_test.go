package hostapi

import (
	"testing"

	"github.com/CalistaVerner/kalitech/internal/ecs"
	"github.com/CalistaVerner/kalitech/internal/eventbus"
	"github.com/CalistaVerner/kalitech/internal/kalierr"
	"github.com/CalistaVerner/kalitech/internal/logging"
	"github.com/CalistaVerner/kalitech/internal/surface"
)

func newTestEngine() *Engine {
	entities := ecs.NewStore(ecs.NewEntityManager())
	deps := Deps{
		Log:      logging.New("test", "error", "text"),
		Events:   eventbus.New(),
		Entities: entities,
		Surfaces: surface.New(),
	}
	return New(deps, nil)
}

func TestRunOnMainThreadExecutesInFIFOOrder(t *testing.T) {
	e := newTestEngine()
	var order []int
	e.RunOnMainThread(func() { order = append(order, 1) })
	e.RunOnMainThread(func() { order = append(order, 2) })
	e.RunOnMainThread(func() { order = append(order, 3) })
	e.DrainMainThread()
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("expected FIFO execution order, got %v", order)
	}
}

func TestDrainMainThreadOnlyRunsQueuedJobsOnce(t *testing.T) {
	e := newTestEngine()
	var calls int
	e.RunOnMainThread(func() { calls++ })
	e.DrainMainThread()
	e.DrainMainThread()
	if calls != 1 {
		t.Fatalf("expected job to run exactly once, got %d calls", calls)
	}
}

func TestIsJmeThreadDefaultsToTrueWithoutThreadIdentity(t *testing.T) {
	e := newTestEngine()
	if !e.IsJmeThread() {
		t.Fatalf("expected IsJmeThread true when no thread identity function is supplied")
	}
}

func TestMissingRendererReportsCapabilityMissing(t *testing.T) {
	e := newTestEngine()
	err := e.Render().EnsureScene()
	if err == nil {
		t.Fatalf("expected error for unwired renderer")
	}
	if kalierr.CapabilityMissing("render", "ensureScene").Error() == "" {
		t.Fatalf("sanity: constructor should produce a message")
	}
	var re interface{ Error() string }
	re = err
	if re.Error() == "" {
		t.Fatalf("expected a descriptive error message")
	}
}

func TestEntityCapabilityCreateAndDestroy(t *testing.T) {
	e := newTestEngine()
	id, err := e.Entity().Create()
	if err != nil {
		t.Fatalf("unexpected error creating entity: %v", err)
	}
	if !e.Entity().SetComponent(id, "transform", "x") {
		t.Fatalf("expected SetComponent to succeed on live entity")
	}
	e.Entity().Destroy(id)
	if e.Entity().HasComponent(id, "transform") {
		t.Fatalf("expected component cleared after destroy")
	}
}

func TestSurfaceCapabilityAttachDetach(t *testing.T) {
	e := newTestEngine()
	sid := int(1)
	e.deps.Surfaces.Register(fakeSpatialForTest{}, surface.KindBox)
	entityID, _ := e.Entity().Create()
	if !e.Surface().Attach(sid, entityID) {
		t.Fatalf("expected attach to succeed")
	}
	if !e.Surface().Destroy(sid) {
		t.Fatalf("expected destroy to succeed")
	}
}

type fakeSpatialForTest struct{}

func (fakeSpatialForTest) RemoveFromParent() {}

func TestEntityDestroyDetachesAndDestroysAttachedSurface(t *testing.T) {
	e := newTestEngine()
	handle := e.deps.Surfaces.Register(fakeSpatialForTest{}, surface.KindBox)
	entityID, err := e.Entity().Create()
	if err != nil {
		t.Fatalf("unexpected error creating entity: %v", err)
	}
	if !e.Surface().Attach(handle.ID(), entityID) {
		t.Fatalf("expected attach to succeed")
	}

	e.Entity().Destroy(entityID)

	if e.deps.Surfaces.Exists(handle.ID()) {
		t.Fatalf("expected surface to be destroyed when its entity is destroyed")
	}
	if _, ok := e.deps.Surfaces.DetachEntity(entityID); ok {
		t.Fatalf("expected entity to already be detached from any surface")
	}
	if e.Entity().HasComponent(entityID, "transform") {
		t.Fatalf("expected all columns cleared after destroy")
	}
}
