// Package jsworld adapts a script module into the ksystem.KSystem
// interface (spec §4.K): it detects which of the recognized module
// shapes the script exports, instantiates it, and re-instantiates on
// hot-reload version mismatch.
package jsworld

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/CalistaVerner/kalitech/internal/kalierr"
	"github.com/CalistaVerner/kalitech/internal/ksystem"
	"github.com/CalistaVerner/kalitech/internal/logging"
	"github.com/CalistaVerner/kalitech/internal/module"
	"github.com/CalistaVerner/kalitech/internal/scripting"
)

// Requirer is the narrow slice of *scripting.Registry the adapter needs;
// named as an interface so tests can supply a fake without a real
// goja.Runtime.
type Requirer interface {
	RequireRoot(id module.ID) (goja.Value, error)
	ModuleVersion(id module.ID) uint64
	Runtime() *goja.Runtime
}

var _ Requirer = (*scripting.Registry)(nil)

// JsWorldSystem wraps a script module behind the KSystem interface
// (spec §4.K).
type JsWorldSystem struct {
	moduleID       module.ID
	hotReload      bool
	registry       Requirer
	log            *logging.Logger
	instance       goja.Value
	appliedVersion uint64

	startFn  goja.Callable
	updateFn goja.Callable
	stopFn   goja.Callable
}

// New creates an adapter for moduleID. hotReload enables the per-update
// version check that triggers re-instantiation (spec §4.K onUpdate).
func New(moduleID module.ID, hotReload bool, registry Requirer, log *logging.Logger) *JsWorldSystem {
	return &JsWorldSystem{moduleID: moduleID, hotReload: hotReload, registry: registry, log: log}
}

// Start implements ksystem.KSystem (spec §4.K onStart: restartIfNeeded(force=true)).
func (s *JsWorldSystem) Start(ctx ksystem.SystemContext) error {
	return s.restartIfNeeded(ctx, true)
}

// Update implements ksystem.KSystem (spec §4.K onUpdate).
func (s *JsWorldSystem) Update(ctx ksystem.SystemContext, tpf float64) error {
	if s.hotReload {
		if err := s.restartIfNeeded(ctx, false); err != nil {
			return err
		}
	}
	if s.updateFn == nil {
		return nil
	}
	return s.guarded("update", func() (goja.Value, error) {
		return s.updateFn(s.instance, s.registry.Runtime().ToValue(tpf))
	})
}

// Stop implements ksystem.KSystem (spec §4.K onStop).
func (s *JsWorldSystem) Stop(ctx ksystem.SystemContext) error {
	return s.stopInstance()
}

// restartIfNeeded requires and instantiates the module, calling start on
// the new instance, when force is true or the module version has
// advanced past appliedVersion (spec §4.K).
func (s *JsWorldSystem) restartIfNeeded(ctx ksystem.SystemContext, force bool) error {
	if !force && s.instance != nil {
		current := s.registry.ModuleVersion(s.moduleID)
		if current == s.appliedVersion {
			return nil
		}
	}

	if s.instance != nil {
		if err := s.stopInstance(); err != nil {
			return err
		}
	}

	exportsVal, err := s.registry.RequireRoot(s.moduleID)
	if err != nil {
		return kalierr.ScriptRuntime(string(s.moduleID), err)
	}

	if err := s.instantiate(exportsVal); err != nil {
		return err
	}
	s.appliedVersion = s.registry.ModuleVersion(s.moduleID)

	if s.startFn == nil {
		return nil
	}
	return s.guarded("start", func() (goja.Value, error) {
		return s.startFn(s.instance)
	})
}

// instantiate detects the module's shape (spec §4.K, tried in order)
// and resolves the instance plus its lifecycle methods.
func (s *JsWorldSystem) instantiate(exportsVal goja.Value) error {
	instance := exportsVal

	if factory, ok := goja.AssertFunction(exportsVal); ok {
		result, err := factory(goja.Undefined())
		if err != nil {
			return kalierr.ScriptRuntime(string(s.moduleID), err)
		}
		instance = result
	} else if obj, ok := exportsVal.(*goja.Object); ok {
		if createFn, ok := goja.AssertFunction(obj.Get("create")); ok {
			result, err := createFn(obj)
			if err != nil {
				return kalierr.ScriptRuntime(string(s.moduleID), err)
			}
			instance = result
		}
	}

	obj, ok := instance.(*goja.Object)
	if !ok {
		return kalierr.ScriptRuntime(string(s.moduleID), fmt.Errorf("module did not produce an object instance"))
	}

	s.instance = obj
	s.startFn = firstCallable(obj, "start", "init")
	s.updateFn = firstCallable(obj, "update")
	s.stopFn = firstCallable(obj, "stop", "destroy")
	return nil
}

func firstCallable(obj *goja.Object, names ...string) goja.Callable {
	for _, name := range names {
		if fn, ok := goja.AssertFunction(obj.Get(name)); ok {
			return fn
		}
	}
	return nil
}

func (s *JsWorldSystem) stopInstance() error {
	if s.stopFn == nil {
		s.instance = nil
		s.startFn, s.updateFn, s.stopFn = nil, nil, nil
		return nil
	}
	instance := s.instance
	stopFn := s.stopFn
	s.instance = nil
	s.startFn, s.updateFn, s.stopFn = nil, nil, nil
	return s.guarded("stop", func() (goja.Value, error) {
		return stopFn(instance)
	})
}

// guarded runs fn, absorbing shutdown-signaled errors and recovered
// panics (the latter logged at warning level) and returning nil for
// them. Any other error is logged at warning level and returned wrapped
// as ScriptRuntime (spec §4.K "Shutdown-safe calls").
func (s *JsWorldSystem) guarded(phase string, fn func() (goja.Value, error)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if gojaErr, ok := r.(*goja.InterruptedError); ok {
				_ = gojaErr
				return
			}
			s.log.WithField("module", string(s.moduleID)).Warnf("%s panicked: %v", phase, r)
			err = nil
		}
	}()
	_, callErr := fn()
	if callErr == nil {
		return nil
	}
	if kalierr.IsContextCancelled(callErr) {
		return nil
	}
	s.log.WithField("module", string(s.moduleID)).WithError(callErr).Warnf("%s failed", phase)
	return kalierr.ScriptRuntime(string(s.moduleID), callErr)
}
