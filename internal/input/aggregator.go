// Package input implements the per-frame input aggregator (spec §4.G):
// raw engine events accumulate into key/mouse state, edges are computed
// once per frame, and a frame's snapshot is stable across repeated reads
// until endFrame() advances it.
package input

import "sync"

// Mouse button bitset (spec §3 mouseMask).
const (
	MouseLeft uint8 = 1 << iota
	MouseRight
	MouseMiddle
)

// Snapshot is the immutable per-frame view scripts observe via
// consumeSnapshot() (spec §3 InputSnapshot).
type Snapshot struct {
	DX, DY, Wheel   float64
	MX, MY          float64
	KeysDown        map[KeyCode]struct{}
	JustPressed     map[KeyCode]struct{}
	JustReleased    map[KeyCode]struct{}
	MouseMask       uint8
	Grabbed         bool
	CursorVisible   bool
}

// Aggregator accumulates raw input events and produces per-frame snapshots.
type Aggregator struct {
	mu sync.Mutex

	keysDown  map[KeyCode]struct{}
	mouseMask uint8
	mx, my    float64

	pendingKeyDown  map[KeyCode]struct{}
	pendingKeyUp    map[KeyCode]struct{}
	pendingDX       float64
	pendingDY       float64
	pendingWheel    float64
	grabbed         bool
	cursorVisible   bool

	justPressed  map[KeyCode]struct{}
	justReleased map[KeyCode]struct{}

	cached    *Snapshot
	dirty     bool
}

// New creates an empty aggregator with cursor visible and ungrabbed.
func New() *Aggregator {
	return &Aggregator{
		keysDown:       make(map[KeyCode]struct{}),
		pendingKeyDown: make(map[KeyCode]struct{}),
		pendingKeyUp:   make(map[KeyCode]struct{}),
		justPressed:    make(map[KeyCode]struct{}),
		justReleased:   make(map[KeyCode]struct{}),
		cursorVisible:  true,
		dirty:          true,
	}
}

// OnKeyDown queues a key-down raw event. Events that arrive while a
// snapshot is cached for the current frame apply to the *next* frame
// (spec §4.G ordering guarantee).
func (a *Aggregator) OnKeyDown(code KeyCode) {
	if code < 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pendingKeyDown[code] = struct{}{}
	delete(a.pendingKeyUp, code)
}

// OnKeyUp queues a key-up raw event.
func (a *Aggregator) OnKeyUp(code KeyCode) {
	if code < 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pendingKeyUp[code] = struct{}{}
	delete(a.pendingKeyDown, code)
}

// OnMouseMove accumulates a relative mouse delta and updates the last
// known absolute position.
func (a *Aggregator) OnMouseMove(dx, dy, mx, my float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pendingDX += dx
	a.pendingDY += dy
	a.mx = mx
	a.my = my
}

// OnWheel accumulates a scroll delta.
func (a *Aggregator) OnWheel(delta float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pendingWheel += delta
}

// OnMouseButton sets or clears a button bit in mouseMask.
func (a *Aggregator) OnMouseButton(button uint8, down bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if down {
		a.mouseMask |= button
	} else {
		a.mouseMask &^= button
	}
}

// SetGrabbed records the engine's cursor-grab state.
func (a *Aggregator) SetGrabbed(grabbed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.grabbed = grabbed
}

// SetCursorVisible records the engine's cursor-visibility state.
func (a *Aggregator) SetCursorVisible(visible bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cursorVisible = visible
}

// ConsumeSnapshot returns the snapshot for the current frame. Repeated
// calls within the same frame (before EndFrame) return an identical
// snapshot (spec §8 property 6): pending events are merged into state
// exactly once, on the first call after the previous EndFrame.
func (a *Aggregator) ConsumeSnapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dirty {
		a.mergeLocked()
		a.dirty = false
	}
	return *a.cached
}

func (a *Aggregator) mergeLocked() {
	for code := range a.pendingKeyDown {
		if _, already := a.keysDown[code]; !already {
			a.justPressed[code] = struct{}{}
		}
		a.keysDown[code] = struct{}{}
	}
	for code := range a.pendingKeyUp {
		if _, present := a.keysDown[code]; present {
			a.justReleased[code] = struct{}{}
		}
		delete(a.keysDown, code)
	}
	a.pendingKeyDown = make(map[KeyCode]struct{})
	a.pendingKeyUp = make(map[KeyCode]struct{})

	snap := Snapshot{
		DX:            a.pendingDX,
		DY:            a.pendingDY,
		Wheel:         a.pendingWheel,
		MX:            a.mx,
		MY:            a.my,
		KeysDown:      copyKeySet(a.keysDown),
		JustPressed:   copyKeySet(a.justPressed),
		JustReleased:  copyKeySet(a.justReleased),
		MouseMask:     a.mouseMask,
		Grabbed:       a.grabbed,
		CursorVisible: a.cursorVisible,
	}
	a.cached = &snap
}

func copyKeySet(src map[KeyCode]struct{}) map[KeyCode]struct{} {
	dst := make(map[KeyCode]struct{}, len(src))
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}

// EndFrame must be called exactly once per frame after scripts have read
// the snapshot: it clears deltas and edge sets, and marks the aggregator
// dirty so the next ConsumeSnapshot call merges newly arrived events
// (spec §4.G / §8 property 7).
func (a *Aggregator) EndFrame() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pendingDX = 0
	a.pendingDY = 0
	a.pendingWheel = 0
	a.justPressed = make(map[KeyCode]struct{})
	a.justReleased = make(map[KeyCode]struct{})
	a.dirty = true
}
