package eventbus

import "reflect"

// handlerPtr extracts a comparable identity for a Handler closure, used
// only by Off's best-effort function-value matching.
func handlerPtr(fn Handler) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}
