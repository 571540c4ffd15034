package input

import "testing"

func TestConsumeSnapshotIsStableWithinAFrame(t *testing.T) {
	a := New()
	a.OnMouseMove(1, 2, 10, 20)
	a.OnWheel(3)
	first := a.ConsumeSnapshot()
	a.OnMouseMove(100, 100, 999, 999) // arrives mid-frame, must not affect this frame
	second := a.ConsumeSnapshot()
	if first.DX != second.DX || first.DY != second.DY || first.Wheel != second.Wheel {
		t.Fatalf("expected identical dx/dy/wheel across repeated ConsumeSnapshot calls, got %+v vs %+v", first, second)
	}
	if len(first.JustPressed) != len(second.JustPressed) {
		t.Fatalf("expected identical justPressed across repeated calls")
	}
}

func TestEndFrameClearsDeltasAndEdges(t *testing.T) {
	a := New()
	wKey := Resolve("W")
	a.OnKeyDown(wKey)
	a.OnWheel(5)
	_ = a.ConsumeSnapshot()
	a.EndFrame()

	snap := a.ConsumeSnapshot()
	if snap.DX != 0 || snap.DY != 0 || snap.Wheel != 0 {
		t.Fatalf("expected zeroed deltas after EndFrame, got %+v", snap)
	}
	if len(snap.JustPressed) != 0 || len(snap.JustReleased) != 0 {
		t.Fatalf("expected empty justPressed/justReleased after EndFrame, got %+v", snap)
	}
}

func TestKeyPressReleaseLifecycleAcrossFrames(t *testing.T) {
	a := New()
	w := Resolve("W")

	// Frame N: key pressed during the frame.
	a.OnKeyDown(w)
	a.EndFrame() // simulate the frame boundary the event landed inside

	// Frame N+1: snapshot observes justPressed and keysDown.
	snap := a.ConsumeSnapshot()
	if _, ok := snap.JustPressed[w]; !ok {
		t.Fatalf("expected W in justPressed at frame N+1")
	}
	if _, ok := snap.KeysDown[w]; !ok {
		t.Fatalf("expected W in keysDown at frame N+1")
	}
	a.EndFrame()

	// Frame N+2: keysDown only, no longer justPressed.
	snap = a.ConsumeSnapshot()
	if _, ok := snap.JustPressed[w]; ok {
		t.Fatalf("expected W not in justPressed at frame N+2")
	}
	if _, ok := snap.KeysDown[w]; !ok {
		t.Fatalf("expected W still in keysDown at frame N+2")
	}
	a.EndFrame()

	// Frame N+3: release happens during the frame.
	a.OnKeyUp(w)
	a.EndFrame()

	// Frame N+4: justReleased, no longer keysDown.
	snap = a.ConsumeSnapshot()
	if _, ok := snap.JustReleased[w]; !ok {
		t.Fatalf("expected W in justReleased at frame N+4")
	}
	if _, ok := snap.KeysDown[w]; ok {
		t.Fatalf("expected W not in keysDown at frame N+4")
	}
}

func TestResolveUnknownKeyNameReturnsUnknown(t *testing.T) {
	if Resolve("NotAKey") != Unknown {
		t.Fatalf("expected unrecognized key name to resolve to Unknown")
	}
}

func TestResolveKnownNames(t *testing.T) {
	cases := []string{"A", "Z", "0", "9", "F1", "F12", "Up", "Space", "Enter", "Escape", "Shift"}
	for _, name := range cases {
		if Resolve(name) == Unknown {
			t.Fatalf("expected %q to resolve to a known code", name)
		}
	}
}

func TestMouseButtonMaskSetAndClear(t *testing.T) {
	a := New()
	a.OnMouseButton(MouseLeft, true)
	snap := a.ConsumeSnapshot()
	if snap.MouseMask&MouseLeft == 0 {
		t.Fatalf("expected MouseLeft bit set")
	}
	a.OnMouseButton(MouseLeft, false)
	a.EndFrame()
	snap = a.ConsumeSnapshot()
	if snap.MouseMask&MouseLeft != 0 {
		t.Fatalf("expected MouseLeft bit cleared")
	}
}
