package module

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Strategy resolves a (parent, request) pair into a base ID, or reports ok=false
// to let the next strategy in the chain try.
type Strategy interface {
	Resolve(parent ID, request string) (ID, bool)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(parent ID, request string) (ID, bool)

func (f StrategyFunc) Resolve(parent ID, request string) (ID, bool) { return f(parent, request) }

// DefaultBuiltinPrefix is the reserved namespace for runtime-shipped modules.
const DefaultBuiltinPrefix = "@builtin/"

// BuiltinStrategy returns requests already under the builtin prefix unchanged.
func BuiltinStrategy(prefix string) Strategy {
	if prefix == "" {
		prefix = DefaultBuiltinPrefix
	}
	return StrategyFunc(func(_ ID, request string) (ID, bool) {
		if strings.HasPrefix(request, prefix) {
			return ID(request), true
		}
		return "", false
	})
}

// NamespaceStrategy maps "<ns>:<path>" to "<modsRoot>/<ns>/<path>".
func NamespaceStrategy(modsRoot string) Strategy {
	return StrategyFunc(func(_ ID, request string) (ID, bool) {
		ns, rest, ok := strings.Cut(request, ":")
		if !ok || ns == "" || strings.ContainsAny(ns, "/\\") {
			return "", false
		}
		base := modsRoot + "/" + ns + "/" + strings.TrimPrefix(rest, "/")
		return Normalize(base), true
	})
}

// AliasResolver is a MutableAliasResolver (spec §6): a longest-prefix-wins
// map of request prefixes to replacement roots.
type AliasResolver struct {
	mu      sync.RWMutex
	aliases map[string]string
}

// NewAliasResolver creates an empty alias table.
func NewAliasResolver() *AliasResolver {
	return &AliasResolver{aliases: make(map[string]string)}
}

// SetAliases replaces the entire alias table atomically.
func (a *AliasResolver) SetAliases(aliases map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	clone := make(map[string]string, len(aliases))
	for k, v := range aliases {
		clone[k] = v
	}
	a.aliases = clone
}

// SetAlias sets a single alias prefix.
func (a *AliasResolver) SetAlias(prefix, root string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.aliases == nil {
		a.aliases = make(map[string]string)
	}
	a.aliases[prefix] = root
}

// Resolve implements Strategy: the longest matching alias prefix wins.
func (a *AliasResolver) Resolve(_ ID, request string) (ID, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var bestPrefix string
	var bestRoot string
	found := false
	for prefix, root := range a.aliases {
		if !strings.HasPrefix(request, prefix) {
			continue
		}
		if !found || len(prefix) > len(bestPrefix) {
			bestPrefix, bestRoot, found = prefix, root, true
		}
	}
	if !found {
		return "", false
	}
	remainder := strings.TrimPrefix(request[len(bestPrefix):], "/")
	base := bestRoot
	if remainder != "" {
		base = base + "/" + remainder
	}
	return Normalize(base), true
}

// RelativeStrategy resolves "./x" and "../x" against the parent module's
// directory, popping segments on "..". A pop past root fails.
func RelativeStrategy() Strategy {
	return StrategyFunc(func(parent ID, request string) (ID, bool) {
		if !strings.HasPrefix(request, "./") && !strings.HasPrefix(request, "../") {
			return "", false
		}
		segments := strings.Split(string(parent.Dir()), "/")
		if len(segments) == 1 && segments[0] == "" {
			segments = nil
		}
		for _, part := range strings.Split(request, "/") {
			switch part {
			case ".", "":
				continue
			case "..":
				if len(segments) == 0 {
					return "", false
				}
				segments = segments[:len(segments)-1]
			default:
				segments = append(segments, part)
			}
		}
		return Normalize(strings.Join(segments, "/")), true
	})
}

// PassThroughStrategy accepts requests that already sit under one of the
// allowed roots (e.g. "Scripts/", "Mods/") unchanged.
func PassThroughStrategy(allowedRoots ...string) Strategy {
	roots := append([]string(nil), allowedRoots...)
	return StrategyFunc(func(_ ID, request string) (ID, bool) {
		for _, root := range roots {
			root = strings.TrimSuffix(root, "/")
			if request == root || strings.HasPrefix(request, root+"/") {
				return Normalize(request), true
			}
		}
		return "", false
	})
}

// Chain runs an ordered list of strategies, returning the first hit.
type Chain struct {
	strategies []Strategy
}

// NewChain builds a resolver chain. Order matters: builtin, namespace,
// alias, relative, pass-through, per spec §4.A.
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Resolve runs the chain and returns the first matching base ID.
func (c *Chain) Resolve(parent ID, request string) (ID, bool) {
	for _, s := range c.strategies {
		if id, ok := s.Resolve(parent, request); ok {
			return id, true
		}
	}
	return "", false
}

// Candidates expands a resolved base ID into the ordered set of source
// paths the registry should probe (spec §4.A's "candidate expander").
func Candidates(base ID) []ID {
	if base.HasRecognizedExt() {
		return []ID{base}
	}
	s := strings.TrimSuffix(string(base), "/")
	return []ID{
		ID(s + "/index.js"),
		ID(s + ".js"),
	}
}

// UnresolvedError is returned by a caller that exhausted the chain and
// every candidate; kept here (rather than kalierr) to avoid an import
// cycle, and wrapped by callers into kalierr.UnresolvedRequire.
type UnresolvedError struct {
	Parent  ID
	Request string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved require %q from %q", e.Request, e.Parent)
}

// DefaultChain builds the standard five-strategy chain described in spec §4.A.
func DefaultChain(builtinPrefix, modsRoot string, aliases *AliasResolver, allowedRoots ...string) *Chain {
	return NewChain(
		BuiltinStrategy(builtinPrefix),
		NamespaceStrategy(modsRoot),
		aliases,
		RelativeStrategy(),
		PassThroughStrategy(allowedRoots...),
	)
}

// SortedAliasKeys is a small test/diagnostics helper returning alias
// prefixes in deterministic, longest-first order (mirrors the resolution
// priority for debugging output).
func (a *AliasResolver) SortedAliasKeys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	keys := make([]string, 0, len(a.aliases))
	for k := range a.aliases {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	return keys
}
