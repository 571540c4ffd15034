package builtins

import (
	"testing"

	"github.com/dop251/goja"
)

func TestSurfaceLegacyAliasIsToleratedAsNoOp(t *testing.T) {
	vm := goja.New()
	engine := newTestEngine()

	obj := buildSurfaceObject(vm, engine)

	fn, ok := goja.AssertFunction(obj.Get("setLOD"))
	if !ok {
		t.Fatalf("expected legacy surface.setLOD to be installed as a callable no-op")
	}
	if _, err := fn(obj, vm.ToValue(1), vm.ToValue(2)); err != nil {
		t.Fatalf("expected legacy surface.setLOD to no-op instead of failing, got %v", err)
	}
}

func TestSurfaceRealMethodIsNotOverriddenByShim(t *testing.T) {
	vm := goja.New()
	engine := newTestEngine()

	obj := buildSurfaceObject(vm, engine)

	fn, ok := goja.AssertFunction(obj.Get("destroy"))
	if !ok {
		t.Fatalf("expected surface.destroy to remain callable")
	}
	result, err := fn(obj, vm.ToValue(1))
	if err != nil {
		t.Fatalf("unexpected error calling surface.destroy: %v", err)
	}
	if result.ToBoolean() {
		t.Fatalf("expected destroy on an unknown surface id to report false")
	}
}
