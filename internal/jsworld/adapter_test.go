package jsworld

import (
	"testing"

	"github.com/dop251/goja"

	"github.com/CalistaVerner/kalitech/internal/ksystem"
	"github.com/CalistaVerner/kalitech/internal/logging"
	"github.com/CalistaVerner/kalitech/internal/module"
)

func testCtx() ksystem.SystemContext {
	return ksystem.SystemContext{Log: logging.New("test", "error", "text")}
}

type fakeRegistry struct {
	vm      *goja.Runtime
	exports goja.Value
	version uint64
}

func (f *fakeRegistry) RequireRoot(id module.ID) (goja.Value, error) { return f.exports, nil }
func (f *fakeRegistry) ModuleVersion(id module.ID) uint64            { return f.version }
func (f *fakeRegistry) Runtime() *goja.Runtime                       { return f.vm }

func mustEval(t *testing.T, vm *goja.Runtime, src string) goja.Value {
	t.Helper()
	v, err := vm.RunString(src)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	return v
}

func TestStartUpdateStopShape(t *testing.T) {
	vm := goja.New()
	exports := mustEval(t, vm, `
		(function() {
			var calls = [];
			return {
				calls: calls,
				start: function() { calls.push("start"); },
				update: function(tpf) { calls.push("update:" + tpf); },
				stop: function() { calls.push("stop"); },
			};
		})()
	`)
	reg := &fakeRegistry{vm: vm, exports: exports, version: 1}
	sys := New("Scripts/a.js", false, reg, logging.New("test", "error", "text"))

	if err := sys.Start(testCtx()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sys.Update(testCtx(), 0.5); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := sys.Stop(testCtx()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	calls := exports.(*goja.Object).Get("calls").Export().([]interface{})
	if len(calls) != 3 || calls[0] != "start" || calls[2] != "stop" {
		t.Fatalf("expected start/update/stop sequence, got %v", calls)
	}
}

func TestLegacyInitDestroyAliases(t *testing.T) {
	vm := goja.New()
	exports := mustEval(t, vm, `
		({
			started: false,
			stopped: false,
			init: function() { this.started = true; },
			update: function() {},
			destroy: function() { this.stopped = true; },
		})
	`)
	reg := &fakeRegistry{vm: vm, exports: exports, version: 1}
	sys := New("Scripts/legacy.js", false, reg, logging.New("test", "error", "text"))

	if err := sys.Start(testCtx()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sys.Stop(testCtx()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	obj := exports.(*goja.Object)
	if !obj.Get("started").ToBoolean() || !obj.Get("stopped").ToBoolean() {
		t.Fatalf("expected init/destroy aliases to be invoked")
	}
}

func TestFactoryShapeIsInstantiated(t *testing.T) {
	vm := goja.New()
	exports := mustEval(t, vm, `
		(function factory() {
			return { start: function(){}, update: function(){}, stop: function(){} };
		})
	`)
	reg := &fakeRegistry{vm: vm, exports: exports, version: 1}
	sys := New("Scripts/factory.js", false, reg, logging.New("test", "error", "text"))
	if err := sys.Start(testCtx()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func TestHotReloadRestartsOnVersionMismatch(t *testing.T) {
	vm := goja.New()
	exports := mustEval(t, vm, `
		(function() {
			var calls = [];
			return {
				calls: calls,
				start: function() { calls.push("start"); },
				update: function() { calls.push("update"); },
				stop: function() { calls.push("stop"); },
			};
		})()
	`)
	reg := &fakeRegistry{vm: vm, exports: exports, version: 1}
	sys := New("Scripts/hot.js", true, reg, logging.New("test", "error", "text"))
	if err := sys.Start(testCtx()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sys.Update(testCtx(), 0.1); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}
	reg.version = 2
	if err := sys.Update(testCtx(), 0.1); err != nil {
		t.Fatalf("second Update failed: %v", err)
	}

	calls := exports.(*goja.Object).Get("calls").Export().([]interface{})
	// start, update (v1, no restart), stop+start (restart on v2), update
	if len(calls) != 5 {
		t.Fatalf("expected 5 calls across restart, got %v", calls)
	}
	if calls[2] != "stop" || calls[3] != "start" {
		t.Fatalf("expected stop-then-start around the version bump, got %v", calls)
	}
}
