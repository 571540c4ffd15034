package eventbus

import "testing"

func TestEmitSynchronousDelivery(t *testing.T) {
	b := New()
	var got any
	b.On("hotreload:changed", func(payload any) { got = payload })
	b.Emit("hotreload:changed", []string{"Scripts/a.js"})
	if got == nil {
		t.Fatalf("expected synchronous delivery before Emit returns")
	}
}

func TestSubscriberAddedDuringEmitWaitsForNextEmit(t *testing.T) {
	b := New()
	var secondCalls int
	b.On("topic", func(payload any) {
		b.On("topic", func(payload any) { secondCalls++ })
	})
	b.Emit("topic", nil)
	if secondCalls != 0 {
		t.Fatalf("expected subscriber added mid-emit to not fire this emit")
	}
	b.Emit("topic", nil)
	if secondCalls != 1 {
		t.Fatalf("expected subscriber added mid-emit to fire on next emit, got %d", secondCalls)
	}
}

func TestPanicInSubscriberDoesNotStopOthers(t *testing.T) {
	b := New()
	var secondRan bool
	b.On("topic", func(payload any) { panic("boom") })
	b.On("topic", func(payload any) { secondRan = true })
	b.Emit("topic", nil)
	if !secondRan {
		t.Fatalf("expected second subscriber to run despite first panicking")
	}
}

func TestOnceFiresOnlyOnce(t *testing.T) {
	b := New()
	var count int
	b.Once("topic", func(payload any) { count++ })
	b.Emit("topic", nil)
	b.Emit("topic", nil)
	if count != 1 {
		t.Fatalf("expected once handler to fire exactly once, got %d", count)
	}
}

func TestScopedTopics(t *testing.T) {
	b := New()
	var got any
	b.On("player.move", func(payload any) { got = payload })
	b.Scope("player").Emit("move", "north")
	if got != "north" {
		t.Fatalf("expected scoped emit to reach on(player.move), got %v", got)
	}
}

func TestUnsubscribeRemovesHandler(t *testing.T) {
	b := New()
	var calls int
	unsub := b.On("topic", func(payload any) { calls++ })
	unsub()
	b.Emit("topic", nil)
	if calls != 0 {
		t.Fatalf("expected unsubscribed handler to not fire, got %d calls", calls)
	}
}

func TestSubscriberRemovedDuringEmitByEarlierSlotDoesNotFireThisEmit(t *testing.T) {
	b := New()
	var cUnsub Unsubscribe
	var cCalls int
	b.On("topic", func(payload any) { cUnsub() })
	cUnsub = b.On("topic", func(payload any) { cCalls++ })
	b.Emit("topic", nil)
	if cCalls != 0 {
		t.Fatalf("expected subscriber removed by an earlier slot to not fire this emit, got %d calls", cCalls)
	}
	b.Emit("topic", nil)
	if cCalls != 0 {
		t.Fatalf("expected unsubscribed handler to stay removed, got %d calls", cCalls)
	}
}

func TestOffRemovedSubscriberDoesNotFireMidEmitEither(t *testing.T) {
	b := New()
	var target Handler
	var calls int
	target = func(payload any) { calls++ }
	b.On("topic", func(payload any) { b.Off("topic", target) })
	b.On("topic", target)
	b.Emit("topic", nil)
	if calls != 0 {
		t.Fatalf("expected Off'd subscriber to not fire this emit, got %d calls", calls)
	}
}
