package diagnostics

import (
	"github.com/CalistaVerner/kalitech/internal/orchestrator"
	"github.com/CalistaVerner/kalitech/internal/scripting"
)

// OrchestratorWorld adapts *orchestrator.Orchestrator to the World
// interface this package expects, keeping diagnostics' own types free
// of a dependency back on ksystem's Entry/KWorld shapes.
type OrchestratorWorld struct {
	Orchestrator *orchestrator.Orchestrator
}

// Describe reports the currently running world's system list.
func (o OrchestratorWorld) Describe() WorldSnapshot {
	world := o.Orchestrator.CurrentWorld()
	if world == nil {
		return WorldSnapshot{Built: false}
	}
	entries := world.Entries()
	systems := make([]SystemSnapshot, 0, len(entries))
	for _, e := range entries {
		systems = append(systems, SystemSnapshot{
			ProviderID: e.ProviderID,
			StableID:   e.StableID,
			Order:      e.Order,
		})
	}
	return WorldSnapshot{Built: true, Systems: systems}
}

// RequestReload forwards to the orchestrator's reload flag.
func (o OrchestratorWorld) RequestReload() { o.Orchestrator.RequestReload() }

// RegistryModules adapts *scripting.Registry to the ModuleLister
// interface.
type RegistryModules struct {
	Registry *scripting.Registry
}

// Describe converts scripting.Descriptor entries into diagnostics'
// transport-local ModuleSnapshot shape.
func (r RegistryModules) Describe() []ModuleSnapshot {
	descs := r.Registry.Describe()
	out := make([]ModuleSnapshot, 0, len(descs))
	for _, d := range descs {
		out = append(out, ModuleSnapshot{
			ID:         d.ID,
			SourceHash: d.SourceHash,
			Version:    d.Version,
			State:      d.State,
			LastError:  d.LastError,
		})
	}
	return out
}
