package surface

import "testing"

type fakeSpatial struct {
	removed bool
}

func (f *fakeSpatial) RemoveFromParent() { f.removed = true }

func TestRegisterReturnsIncreasingHandlesStartingAtOne(t *testing.T) {
	r := New()
	h1 := r.Register(&fakeSpatial{}, KindBox)
	h2 := r.Register(&fakeSpatial{}, KindSphere)
	if h1.ID() != 1 || h2.ID() != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", h1.ID(), h2.ID())
	}
}

func TestAttachDetachesFromPreviousEntity(t *testing.T) {
	r := New()
	h := r.Register(&fakeSpatial{}, KindPlane)
	r.Attach(h.ID(), 10)
	r.Attach(h.ID(), 20)

	if _, ok := r.AttachedEntity(h.ID()); !ok {
		t.Fatalf("expected surface still attached")
	}
	if entity, _ := r.AttachedEntity(h.ID()); entity != 20 {
		t.Fatalf("expected attachment to move to entity 20, got %d", entity)
	}
	if _, ok := r.DetachEntity(10); ok {
		t.Fatalf("expected entity 10 to have no attachment after reattach")
	}
}

func TestAttachDetachesSurfacePreviouslyOwnedByEntity(t *testing.T) {
	r := New()
	h1 := r.Register(&fakeSpatial{}, KindPlane)
	h2 := r.Register(&fakeSpatial{}, KindPlane)
	r.Attach(h1.ID(), 10)
	r.Attach(h2.ID(), 10)

	if _, ok := r.AttachedEntity(h1.ID()); ok {
		t.Fatalf("expected first surface detached when entity re-attached to a second surface")
	}
	if entity, ok := r.AttachedEntity(h2.ID()); !ok || entity != 10 {
		t.Fatalf("expected second surface attached to entity 10")
	}
}

func TestDestroyDetachesAndRemovesFromSceneGraph(t *testing.T) {
	r := New()
	spatial := &fakeSpatial{}
	h := r.Register(spatial, KindQuad)
	r.Attach(h.ID(), 5)

	removed := r.Destroy(h.ID())
	if removed != spatial {
		t.Fatalf("expected Destroy to return the backing spatial")
	}
	if !spatial.removed {
		t.Fatalf("expected RemoveFromParent to be called")
	}
	if r.Exists(h.ID()) {
		t.Fatalf("expected surface gone after Destroy")
	}
	if r.Get(h.ID()) != nil {
		t.Fatalf("expected Get to return nil after Destroy")
	}
	if _, ok := r.DetachEntity(5); ok {
		t.Fatalf("expected entity 5 to have no attachment after surface destroyed")
	}
}

func TestDetachEntityCleansSurfaceOnEntityDestroy(t *testing.T) {
	r := New()
	h := r.Register(&fakeSpatial{}, KindModel)
	r.Attach(h.ID(), 7)

	prev, ok := r.DetachEntity(7)
	if !ok || prev != h.ID() {
		t.Fatalf("expected DetachEntity to report previous surface %d, got %d (ok=%v)", h.ID(), prev, ok)
	}
	if _, ok := r.AttachedEntity(h.ID()); ok {
		t.Fatalf("expected surface to report no attached entity")
	}
	if !r.Exists(h.ID()) {
		t.Fatalf("expected surface to still exist after detaching its entity")
	}
}

func TestDestroyUnknownIDIsNoOp(t *testing.T) {
	r := New()
	if r.Destroy(999) != nil {
		t.Fatalf("expected Destroy on unknown id to return nil")
	}
}

func TestZeroIDIsNeverRegistered(t *testing.T) {
	r := New()
	if r.Exists(0) {
		t.Fatalf("expected id 0 to be reserved and never valid")
	}
}
