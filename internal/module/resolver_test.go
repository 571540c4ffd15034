package module

import "testing"

func TestAliasLongestPrefixWins(t *testing.T) {
	aliases := NewAliasResolver()
	aliases.SetAliases(map[string]string{
		"@core":      "Scripts/core",
		"@core/cam":  "Scripts/cameras",
	})

	chain := DefaultChain(DefaultBuiltinPrefix, "Mods", aliases, "Scripts", "Mods")

	got, ok := chain.Resolve(ID("Scripts/main.js"), "@core/cam/third")
	if !ok {
		t.Fatalf("expected resolution")
	}
	if got != "Scripts/cameras/third" {
		t.Fatalf("got %q, want longest-prefix alias to win: Scripts/cameras/third", got)
	}
}

func TestRelativeResolutionPopsSegments(t *testing.T) {
	chain := DefaultChain(DefaultBuiltinPrefix, "Mods", NewAliasResolver(), "Scripts", "Mods")

	got, ok := chain.Resolve(ID("Scripts/core/cam/third.js"), "../sky/day")
	if !ok {
		t.Fatalf("expected resolution")
	}
	if got != "Scripts/core/sky/day" {
		t.Fatalf("got %q, want Scripts/core/sky/day", got)
	}
}

func TestRelativePopPastRootFails(t *testing.T) {
	chain := DefaultChain(DefaultBuiltinPrefix, "Mods", NewAliasResolver(), "Scripts", "Mods")
	_, ok := chain.Resolve(ID("main.js"), "../../escape")
	if ok {
		t.Fatalf("expected pop-past-root to fail")
	}
}

func TestBuiltinStrategyPassesThroughUnchanged(t *testing.T) {
	chain := DefaultChain(DefaultBuiltinPrefix, "Mods", NewAliasResolver(), "Scripts", "Mods")
	got, ok := chain.Resolve(ID("Scripts/main.js"), "@builtin/entity")
	if !ok || got != "@builtin/entity" {
		t.Fatalf("got (%q, %v), want (@builtin/entity, true)", got, ok)
	}
}

func TestNamespaceStrategy(t *testing.T) {
	chain := DefaultChain(DefaultBuiltinPrefix, "Mods", NewAliasResolver(), "Scripts", "Mods")
	got, ok := chain.Resolve(ID("Scripts/main.js"), "communityPack:weapons/sword")
	if !ok {
		t.Fatalf("expected resolution")
	}
	if got != "Mods/communityPack/weapons/sword" {
		t.Fatalf("got %q", got)
	}
}

func TestPassThroughAndUnresolved(t *testing.T) {
	chain := DefaultChain(DefaultBuiltinPrefix, "Mods", NewAliasResolver(), "Scripts", "Mods")
	got, ok := chain.Resolve(ID("Scripts/main.js"), "Scripts/util/math")
	if !ok || got != "Scripts/util/math" {
		t.Fatalf("got (%q, %v)", got, ok)
	}

	_, ok = chain.Resolve(ID("Scripts/main.js"), "somewhere/off/limits")
	if ok {
		t.Fatalf("expected unresolved for a request outside allowed roots")
	}
}
