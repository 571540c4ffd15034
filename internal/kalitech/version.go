// Package kalitech holds engine-wide identity constants shared by every
// subsystem (version gating for builtins, the version reported by the
// diagnostics /healthz endpoint).
package kalitech

// Version is the running engine version, compared against a builtin's
// declared engineMin (spec §4.M) before the builtin is installed.
const Version = "0.9.0"

// Name is the runtime's stable identifier.
const Name = "kalitech"
