package module

import "testing"

func TestNormalizeIdempotent(t *testing.T) {
	cases := []string{
		"./Scripts/main.js",
		"Scripts\\core\\cam.js",
		"//Scripts//core/cam.js",
		"Scripts/core/cam.js/",
		"  Scripts/core/cam.js  ",
		"@builtin/entity",
	}
	for _, raw := range cases {
		once := Normalize(raw)
		twice := Normalize(string(once))
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", raw, once, twice)
		}
	}
}

func TestNormalizeRules(t *testing.T) {
	cases := map[string]string{
		"./Scripts/main.js":      "Scripts/main.js",
		"Scripts\\core\\cam.js":  "Scripts/core/cam.js",
		"//Scripts//core/cam.js": "Scripts/core/cam.js",
		"Scripts/core/cam.js/":   "Scripts/core/cam.js",
		"  Scripts/main.js  ":    "Scripts/main.js",
	}
	for raw, want := range cases {
		if got := Normalize(raw); string(got) != want {
			t.Errorf("Normalize(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestCandidatesExtensionPreserving(t *testing.T) {
	got := Candidates(ID("Scripts/core/cam"))
	want := []ID{"Scripts/core/cam/index.js", "Scripts/core/cam.js"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Candidates() = %v, want %v", got, want)
	}

	single := Candidates(ID("Scripts/core/data.json"))
	if len(single) != 1 || single[0] != "Scripts/core/data.json" {
		t.Fatalf("Candidates() for extensioned id = %v", single)
	}
}
