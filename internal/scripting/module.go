// Package scripting implements the module registry (spec §4.B): loading,
// evaluating, caching and hot-invalidating script modules addressed by
// module.ID, backed by an embedded goja.Runtime (grounded on the
// teacher's internal/services/functions/tee_executor.go, which already
// runs tenant-authored JS through goja with a console shim and
// context-cancellation-aware error handling).
package scripting

import (
	"sync"

	"github.com/dop251/goja"

	"github.com/CalistaVerner/kalitech/internal/module"
)

// State is the module lifecycle state machine (spec §3).
type State int

const (
	Unloaded State = iota
	Evaluating
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Evaluating:
		return "evaluating"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Module is the registry's record for one loaded script module.
type Module struct {
	mu         sync.RWMutex
	ID         module.ID
	SourceHash string
	version    uint64
	exports    goja.Value
	state      State
	lastErr    error
}

// Version returns the module's current evaluation counter.
func (m *Module) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// State returns the module's current lifecycle state.
func (m *Module) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Exports returns the module's current export value. During Evaluating
// this is the sentinel partial-exports object bound before the module
// body ran, permitting require cycles (spec §3 invariant).
func (m *Module) Exports() goja.Value {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exports
}

// LastError returns the error recorded by the most recent failed
// evaluation, or nil.
func (m *Module) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Module) setEvaluating(sentinel goja.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Evaluating
	m.exports = sentinel
	m.lastErr = nil
}

func (m *Module) setReady(exports goja.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Ready
	m.exports = exports
	m.version++
	m.lastErr = nil
}

func (m *Module) setFailed(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Failed
	m.lastErr = err
}

func (m *Module) setUnloaded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Unloaded
	m.exports = nil
}

// Describe returns a diagnostics-friendly snapshot of the module's state.
func (m *Module) Describe() Descriptor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d := Descriptor{
		ID:         string(m.ID),
		SourceHash: m.SourceHash,
		Version:    m.version,
		State:      m.state.String(),
	}
	if m.lastErr != nil {
		d.LastError = m.lastErr.Error()
	}
	return d
}

// Descriptor is the JSON-friendly shape exposed by the diagnostics surface
// and by Registry.Describe (grounded on internal/engine/metadata.go's
// ModuleInfo, repurposed from service manifests to script modules).
type Descriptor struct {
	ID         string `json:"id"`
	SourceHash string `json:"sourceHash"`
	Version    uint64 `json:"version"`
	State      string `json:"state"`
	LastError  string `json:"lastError,omitempty"`
}
