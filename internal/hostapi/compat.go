package hostapi

import "github.com/dop251/goja"

// legacyAliases declares, per capability name, optional method names a
// transitional script may still call against a retired method (spec §9:
// "a thin compatibility layer that swallows missing-method errors for a
// declared allow-list of optional methods"). Anything not listed here
// still fails the normal way: goja throws "is not a function".
var legacyAliases = map[string][]string{
	"surface": {"setLOD", "setCastShadows"},
	"physics": {"setFriction", "setRestitution"},
}

// InstallLegacyShim sets every alias declared for capability on obj to a
// no-op, unless obj already defines a method of that name. Call this
// after a capability's real methods have been set.
func InstallLegacyShim(obj *goja.Object, capability string) {
	for _, name := range legacyAliases[capability] {
		if _, ok := goja.AssertFunction(obj.Get(name)); ok {
			continue
		}
		_ = obj.Set(name, func(goja.FunctionCall) goja.Value { return goja.Undefined() })
	}
}
