package worldbuild

import (
	"fmt"

	"github.com/CalistaVerner/kalitech/internal/jsworld"
	"github.com/CalistaVerner/kalitech/internal/ksystem"
	"github.com/CalistaVerner/kalitech/internal/logging"
	"github.com/CalistaVerner/kalitech/internal/module"
)

// JSSystemProviderID is the always-registered provider id for script
// systems (spec §4.I "a provider id jsSystem is always present").
const JSSystemProviderID = "jsSystem"

// NewJSSystemProvider builds the jsSystem provider bound to registry.
// Its config must carry `module: <ModuleId>` (spec §4.I).
func NewJSSystemProvider(registry jsworld.Requirer, log *logging.Logger) SystemProvider {
	return SystemProviderFunc(func(ctx ksystem.SystemContext, config any) (ksystem.KSystem, error) {
		cfgMap, ok := config.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("jsSystem config must be an object carrying a module id")
		}
		rawModule, ok := cfgMap["module"]
		if !ok {
			return nil, fmt.Errorf("jsSystem config missing required field module")
		}
		moduleStr, ok := rawModule.(string)
		if !ok || moduleStr == "" {
			return nil, fmt.Errorf("jsSystem config.module must be a non-empty string")
		}
		hotReload := true
		if v, ok := cfgMap["hotReload"].(bool); ok {
			hotReload = v
		}
		return jsworld.New(module.Normalize(moduleStr), hotReload, registry, log), nil
	})
}
