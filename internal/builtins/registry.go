package builtins

import (
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"github.com/CalistaVerner/kalitech/internal/hostapi"
	"github.com/CalistaVerner/kalitech/internal/kalierr"
	"github.com/CalistaVerner/kalitech/internal/kalitech"
	"github.com/CalistaVerner/kalitech/internal/logging"
	"github.com/CalistaVerner/kalitech/internal/module"
	"github.com/CalistaVerner/kalitech/internal/scripting"
)

// Metadata is the static descriptor every `@builtin/…` module exports
// alongside its factory (spec §4.M).
type Metadata struct {
	Name        string
	GlobalName  string
	Version     string
	Description string
	EngineMin   string
}

// Module pairs a builtin's metadata with its factory source. Factory is
// JavaScript rather than a Go closure: builtins are ordinary CommonJS
// modules shipped with the runtime, not a separate Go-side API surface,
// so hot-reload and the same require() machinery apply to them too.
type Module struct {
	Meta    Metadata
	Factory string
}

// Registry holds the fixed set of builtins the runtime ships with and
// installs them into a goja.Runtime on Bootstrap.
type Registry struct {
	modules map[string]Module
	log     *logging.Logger
}

// NewRegistry builds a Registry pre-populated with every builtin this
// runtime version ships.
func NewRegistry(log *logging.Logger) *Registry {
	r := &Registry{modules: make(map[string]Module), log: log}
	for _, m := range defaultModules() {
		r.modules[m.Meta.Name] = m
	}
	return r
}

// Lookup returns the source text `@builtin/<name>` should evaluate to:
// an IIFE that produces `{ factory, meta }` (spec §4.M).
func (r *Registry) Lookup(name string) (string, bool) {
	m, ok := r.modules[name]
	if !ok {
		return "", false
	}
	return wrapModuleSource(m), true
}

// RegisterInto loads every builtin's wrapped source into provider under
// its `@builtin/<name>` id, so the registry's own require() machinery
// (spec §4.B) serves builtins exactly like any other module.
func (r *Registry) RegisterInto(provider *scripting.BuiltinProvider) {
	for name, m := range r.modules {
		provider.Register(module.Normalize("@builtin/"+name), wrapModuleSource(m))
	}
}

// Names lists every registered builtin, for diagnostics.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.modules))
	for name := range r.modules {
		out = append(out, name)
	}
	return out
}

func wrapModuleSource(m Module) string {
	var b strings.Builder
	b.WriteString("(function(){\nvar factory = ")
	b.WriteString(m.Factory)
	b.WriteString(";\nreturn { factory: factory, meta: {")
	b.WriteString("name: " + strconv.Quote(m.Meta.Name) + ",")
	b.WriteString("globalName: " + strconv.Quote(m.Meta.GlobalName) + ",")
	b.WriteString("version: " + strconv.Quote(m.Meta.Version) + ",")
	b.WriteString("description: " + strconv.Quote(m.Meta.Description) + ",")
	b.WriteString("engineMin: " + strconv.Quote(m.Meta.EngineMin))
	b.WriteString("} };\n})()")
	return b.String()
}

// Bootstrap invokes every builtin's factory once with (engine, K) and,
// when exposeGlobals is set, installs the returned api under the
// builtin's globalName (spec §4.M). Builtins whose engineMin exceeds the
// running kalitech.Version are skipped with a warning rather than
// aborting startup.
func Bootstrap(vm *goja.Runtime, engine *hostapi.Engine, registry *Registry, log *logging.Logger, exposeGlobals bool) error {
	engineObj := BuildEngineObject(vm, engine)
	kit := BuildKitObject(vm)

	for _, name := range sortedNames(registry) {
		m := registry.modules[name]
		if m.Meta.EngineMin != "" && !versionAtLeast(kalitech.Version, m.Meta.EngineMin) {
			log.WithField("builtin", name).Warnf("skipped: requires engine >= %s, running %s", m.Meta.EngineMin, kalitech.Version)
			continue
		}

		wrapped, err := vm.RunString(wrapModuleSource(m))
		if err != nil {
			return kalierr.ScriptSyntax("@builtin/"+name, 0, 0, err.Error())
		}
		obj, ok := wrapped.(*goja.Object)
		if !ok {
			continue
		}
		factory, ok := goja.AssertFunction(obj.Get("factory"))
		if !ok {
			return kalierr.ScriptRuntime("@builtin/"+name, errNotAFactory(name))
		}

		api, err := factory(goja.Undefined(), engineObj, kit)
		if err != nil {
			log.WithField("builtin", name).WithError(err).Warn("factory call failed")
			continue
		}

		if exposeGlobals && m.Meta.GlobalName != "" {
			if err := vm.Set(m.Meta.GlobalName, api); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedNames(r *Registry) []string {
	names := r.Names()
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
	return names
}

type factoryError struct{ name string }

func (e factoryError) Error() string { return "builtin " + e.name + " did not export a factory function" }

func errNotAFactory(name string) error { return factoryError{name: name} }

// versionAtLeast compares dotted numeric versions ("0.9.0" >= "0.8.0").
// No third-party semver library covers this narrow a need in the
// dependency pack, so it is hand-rolled.
func versionAtLeast(running, required string) bool {
	rParts := strings.Split(running, ".")
	qParts := strings.Split(required, ".")
	for i := 0; i < len(rParts) || i < len(qParts); i++ {
		var r, q int
		if i < len(rParts) {
			r, _ = strconv.Atoi(rParts[i])
		}
		if i < len(qParts) {
			q, _ = strconv.Atoi(qParts[i])
		}
		if r != q {
			return r > q
		}
	}
	return true
}
