package scripting

import (
	"sync"

	"github.com/dop251/goja"

	"github.com/CalistaVerner/kalitech/internal/cache"
	"github.com/CalistaVerner/kalitech/internal/kalierr"
	"github.com/CalistaVerner/kalitech/internal/logging"
	"github.com/CalistaVerner/kalitech/internal/metrics"
	"github.com/CalistaVerner/kalitech/internal/module"
)

// Registry is the module registry (spec §4.B): it owns one goja.Runtime,
// resolves requests through a module.Chain, and evaluates each module
// exactly once per version, wiring `require` back to itself so cycles
// resolve through the Evaluating sentinel (spec §3).
//
// Every method here is expected to run on the host's main thread, same as
// script execution itself (spec §5); the registry does not add its own
// locking around evaluation, only around the modules map so diagnostics
// goroutines can read Describe() concurrently.
type Registry struct {
	mu       sync.RWMutex
	modules  map[module.ID]*Module
	provider SourceProvider
	chain    *module.Chain
	cache    cache.SourceCache
	vm       *goja.Runtime
	log      *logging.Logger
	metrics  *metrics.Metrics
}

// Options configures a new Registry.
type Options struct {
	Provider SourceProvider
	Chain    *module.Chain
	Cache    cache.SourceCache
	Logger   *logging.Logger
	Metrics  *metrics.Metrics
}

// New creates a Registry bound to a fresh goja.Runtime.
func New(opts Options) *Registry {
	if opts.Cache == nil {
		opts.Cache = cache.New(cache.DefaultConfig())
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewFromEnv("scripting")
	}
	r := &Registry{
		modules:  make(map[module.ID]*Module),
		provider: opts.Provider,
		chain:    opts.Chain,
		cache:    opts.Cache,
		vm:       goja.New(),
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
	return r
}

// Runtime exposes the underlying goja.Runtime so the host API facade and
// builtins can install globals/host objects into the same script world.
func (r *Registry) Runtime() *goja.Runtime { return r.vm }

func (r *Registry) getOrCreate(id module.ID) *Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[id]
	if !ok {
		m = &Module{ID: id, state: Unloaded}
		r.modules[id] = m
	}
	return m
}

func (r *Registry) peek(id module.ID) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[id]
	return m, ok
}

// resolveCandidate runs the resolver chain and picks the first candidate
// whose source actually exists, per spec §4.A.
func (r *Registry) resolveCandidate(from module.ID, request string) (module.ID, error) {
	base, ok := r.chain.Resolve(from, request)
	if !ok {
		return "", kalierr.UnresolvedRequire(string(from), request)
	}
	for _, candidate := range module.Candidates(base) {
		if r.provider.Exists(candidate) {
			return candidate, nil
		}
	}
	return "", kalierr.UnresolvedRequire(string(from), request)
}

// Require resolves request relative to from and returns its exports,
// loading/evaluating it if necessary (spec §4.B).
func (r *Registry) Require(from module.ID, request string) (goja.Value, error) {
	id, err := r.resolveCandidate(from, request)
	if err != nil {
		return nil, err
	}
	return r.requireByID(id)
}

func (r *Registry) requireByID(id module.ID) (goja.Value, error) {
	m := r.getOrCreate(id)

	switch m.State() {
	case Ready:
		return m.Exports(), nil
	case Evaluating:
		// Cycle: return the partial exports object bound before the
		// module body ran (spec §3 invariant); no reentrant evaluation.
		return m.Exports(), nil
	}

	return r.evaluate(m)
}

func (r *Registry) evaluate(m *Module) (goja.Value, error) {
	source, err := r.loadSource(m.ID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		err := kalierr.UnresolvedRequire("", string(m.ID))
		m.setFailed(err)
		return nil, err
	}
	hash := SHA1Hex(source)
	m.SourceHash = hash

	prg, err := goja.Compile(string(m.ID), wrapCommonJS(string(source)), false)
	if err != nil {
		syntaxErr := compileErrorToSyntaxError(m.ID, err)
		m.setFailed(syntaxErr)
		return nil, syntaxErr
	}

	moduleObj := r.vm.NewObject()
	exportsObj := r.vm.NewObject()
	_ = moduleObj.Set("exports", exportsObj)
	m.setEvaluating(exportsObj)

	wrapperFnVal, err := r.vm.RunProgram(prg)
	if err != nil {
		rtErr := kalierr.ScriptSyntax(string(m.ID), 0, 0, err.Error())
		m.setFailed(rtErr)
		return nil, rtErr
	}
	wrapperFn, ok := goja.AssertFunction(wrapperFnVal)
	if !ok {
		rtErr := kalierr.ScriptSyntax(string(m.ID), 0, 0, "module body did not compile to a function")
		m.setFailed(rtErr)
		return nil, rtErr
	}

	requireFn := r.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		req := call.Argument(0).String()
		val, err := r.Require(m.ID, req)
		if err != nil {
			panic(r.vm.NewGoError(err))
		}
		return val
	})

	_, callErr := wrapperFn(goja.Undefined(),
		moduleObj,
		exportsObj,
		requireFn,
		r.vm.ToValue(string(m.ID)),
		r.vm.ToValue(string(m.ID.Dir())),
	)
	if callErr != nil {
		rtErr := kalierr.ScriptRuntime(string(m.ID), callErr)
		m.setFailed(rtErr)
		if r.metrics != nil {
			r.metrics.ScriptErrors.WithLabelValues(string(m.ID), "evaluate").Inc()
		}
		return nil, rtErr
	}

	finalExports := moduleObj.Get("exports")
	m.setReady(finalExports)
	r.cache.Set(string(m.ID), source)
	if r.metrics != nil {
		r.metrics.ModuleReloads.WithLabelValues(string(m.ID)).Inc()
		r.metrics.ModuleVersion.WithLabelValues(string(m.ID)).Set(float64(m.Version()))
	}
	return finalExports, nil
}

func (r *Registry) loadSource(id module.ID) ([]byte, error) {
	if cached, ok := r.cache.Get(string(id)); ok {
		return cached, nil
	}
	source, err := r.provider.Source(id)
	if err != nil {
		return nil, err
	}
	return source, nil
}

// wrapCommonJS wraps raw module source in the standard CommonJS function
// signature, so `module`, `exports`, `require`, `__filename` and
// `__dirname` are available without polluting the global object.
func wrapCommonJS(source string) string {
	return "(function(module, exports, require, __filename, __dirname) {\n" + source + "\n})"
}

func compileErrorToSyntaxError(id module.ID, err error) *kalierr.RuntimeError {
	if compileErr, ok := err.(*goja.CompilerSyntaxError); ok {
		return kalierr.ScriptSyntax(string(id), 0, 0, compileErr.Error())
	}
	return kalierr.ScriptSyntax(string(id), 0, 0, err.Error())
}

// SourceHashOf returns the last-evaluated source hash of id, "" if never
// loaded. Used by the orchestrator's source-hash rebuild gate (spec §4.L).
func (r *Registry) SourceHashOf(id module.ID) string {
	m, ok := r.peek(id)
	if !ok {
		return ""
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.SourceHash
}

// ModuleVersion returns the current version of id, 0 if never loaded
// (spec §4.B). This is how JsWorldSystem detects staleness without
// subscribing to hotreload:changed directly.
func (r *Registry) ModuleVersion(id module.ID) uint64 {
	m, ok := r.peek(id)
	if !ok {
		return 0
	}
	return m.Version()
}

// Invalidate drops a module's cached state so the next Require re-evaluates
// it. Dependents are not touched; they observe the new value the next
// time they call require (spec §4.B).
func (r *Registry) Invalidate(id module.ID) {
	m, ok := r.peek(id)
	if !ok {
		return
	}
	m.setUnloaded()
	r.cache.Invalidate(string(id))
}

// InvalidateMany performs an atomic batch invalidation.
func (r *Registry) InvalidateMany(ids map[module.ID]struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range ids {
		if m, ok := r.modules[id]; ok {
			m.setUnloaded()
		}
		r.cache.Invalidate(string(id))
	}
}

// Describe returns a diagnostics snapshot of every known module.
func (r *Registry) Describe() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m.Describe())
	}
	return out
}

// RequireRoot requires id from an empty parent, for top-level callers
// (the orchestrator loading the main descriptor module).
func (r *Registry) RequireRoot(id module.ID) (goja.Value, error) {
	return r.requireByID(id)
}

// Reset clears every module record and its cache entry. The
// orchestrator's rebuildFromMain does not call it: a rebuild invalidates
// only the main descriptor module and resets ECS/physics.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules = make(map[module.ID]*Module)
	r.cache.InvalidateAll()
}
