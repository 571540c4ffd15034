// Package kalierr implements the runtime's error taxonomy (spec §7),
// adapted from the teacher's infrastructure/errors.ServiceError: instead
// of carrying an HTTP status, a RuntimeError carries a Kind (for
// errors.As dispatch) and a Retryable hint (for callers deciding whether
// local recovery is possible).
package kalierr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the taxonomy entries from spec.md §7.
type Kind string

const (
	KindUnresolvedRequire Kind = "UNRESOLVED_REQUIRE"
	KindScriptSyntax      Kind = "SCRIPT_SYNTAX"
	KindScriptRuntime     Kind = "SCRIPT_RUNTIME"
	KindContextCancelled  Kind = "CONTEXT_CANCELLED"
	KindUnknownSystem     Kind = "UNKNOWN_SYSTEM"
	KindCapabilityMissing Kind = "CAPABILITY_MISSING"
	KindInvalidHandle     Kind = "INVALID_HANDLE"
)

// RuntimeError is the concrete error type raised across the core.
type RuntimeError struct {
	Kind      Kind
	Message   string
	Retryable bool
	Err       error
}

func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// Is reports whether target is a *RuntimeError of the same Kind, so
// errors.Is(err, kalierr.UnknownSystem("")) matches any UnknownSystem
// error; most callers instead use errors.As to inspect Kind directly.
func (e *RuntimeError) Is(target error) bool {
	var other *RuntimeError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

func new_(kind Kind, retryable bool, message string, err error) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: message, Retryable: retryable, Err: err}
}

// UnresolvedRequire reports a require(from, request) that no resolver
// strategy and no candidate expansion could satisfy.
func UnresolvedRequire(from, request string) *RuntimeError {
	return new_(KindUnresolvedRequire, false,
		fmt.Sprintf("cannot resolve %q from %q", request, from), nil)
}

// ScriptSyntax reports a parse failure surfaced before evaluation begins.
func ScriptSyntax(id string, line, col int, msg string) *RuntimeError {
	return new_(KindScriptSyntax, false,
		fmt.Sprintf("%s:%d:%d: %s", id, line, col, msg), nil)
}

// ScriptRuntime wraps an exception raised during module evaluation or a
// system's start/update/stop call.
func ScriptRuntime(id string, err error) *RuntimeError {
	return new_(KindScriptRuntime, true, fmt.Sprintf("runtime error in %s", id), err)
}

// ContextCancelled marks an error observed only because the runtime is
// shutting down; callers absorb it silently (spec §7).
func ContextCancelled(id string, err error) *RuntimeError {
	return new_(KindContextCancelled, false, fmt.Sprintf("%s: context cancelled", id), err)
}

// UnknownSystem reports a world descriptor entry naming an unregistered
// system provider id.
func UnknownSystem(id string) *RuntimeError {
	return new_(KindUnknownSystem, false, fmt.Sprintf("unknown system provider %q", id), nil)
}

// CapabilityMissing reports a capability call made against a facade that
// was never wired to a backing engine service.
func CapabilityMissing(capability, op string) *RuntimeError {
	return new_(KindCapabilityMissing, false,
		fmt.Sprintf("capability %q has no backing implementation for %q", capability, op), nil)
}

// InvalidHandle reports an argument error against a stale or foreign
// handle; callers must not mutate state after receiving this error.
func InvalidHandle(kind string, id int) *RuntimeError {
	return new_(KindInvalidHandle, false, fmt.Sprintf("invalid %s handle %d", kind, id), nil)
}

// IsContextCancelled reports whether msg looks like an interpreter
// cancellation/closure signal raised during shutdown (spec §4.K
// "shutdown-safe calls"). Matches are deliberately loose: goja and the
// host's own context machinery phrase this a few different ways.
func IsContextCancelled(err error) bool {
	if err == nil {
		return false
	}
	var re *RuntimeError
	if errors.As(err, &re) && re.Kind == KindContextCancelled {
		return true
	}
	msg := err.Error()
	for _, marker := range []string{"context cancelled", "context canceled", "runtime closed", "interrupted"} {
		if containsFold(msg, marker) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	h, n := []rune(haystack), []rune(needle)
	if len(n) == 0 || len(n) > len(h) {
		return len(n) == 0
	}
	lower := func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if lower(h[i+j]) != lower(n[j]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
