package ksystem

import (
	"testing"

	"github.com/CalistaVerner/kalitech/internal/logging"
)

type recordingSystem struct {
	name   string
	events *[]string
	failOn string
}

func (s *recordingSystem) Start(ctx SystemContext) error {
	*s.events = append(*s.events, "start:"+s.name)
	if s.failOn == "start" {
		return errBoom
	}
	return nil
}

func (s *recordingSystem) Update(ctx SystemContext, tpf float64) error {
	*s.events = append(*s.events, "update:"+s.name)
	if s.failOn == "update" {
		return errBoom
	}
	return nil
}

func (s *recordingSystem) Stop(ctx SystemContext) error {
	*s.events = append(*s.events, "stop:"+s.name)
	return nil
}

type boomError struct{}

func (boomError) Error() string { return "boom" }

var errBoom = boomError{}

func newTestContext() SystemContext {
	return SystemContext{Log: logging.New("test", "error", "text"), StateBag: map[string]any{}, Tpf: func() float64 { return 0 }}
}

func TestStartAndStopOrdering(t *testing.T) {
	var events []string
	entries := []Entry{
		{ProviderID: "a", System: &recordingSystem{name: "a", events: &events}},
		{ProviderID: "b", System: &recordingSystem{name: "b", events: &events}},
	}
	w := New(entries, logging.New("test", "error", "text"))
	ctx := newTestContext()
	w.Start(ctx)
	w.Stop(ctx)

	want := []string{"start:a", "start:b", "stop:b", "stop:a"}
	if len(events) != len(want) {
		t.Fatalf("expected %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, events)
		}
	}
}

func TestFailingSystemDoesNotStopOthersFromUpdating(t *testing.T) {
	var events []string
	entries := []Entry{
		{ProviderID: "failing", System: &recordingSystem{name: "failing", events: &events, failOn: "update"}},
		{ProviderID: "ok", System: &recordingSystem{name: "ok", events: &events}},
	}
	w := New(entries, logging.New("test", "error", "text"))
	ctx := newTestContext()
	w.Update(ctx, 0.016)

	if len(events) != 2 || events[0] != "update:failing" || events[1] != "update:ok" {
		t.Fatalf("expected both systems to update despite failure, got %v", events)
	}
}

func TestStopIsNoOpWithoutPriorStart(t *testing.T) {
	var events []string
	entries := []Entry{{ProviderID: "a", System: &recordingSystem{name: "a", events: &events}}}
	w := New(entries, logging.New("test", "error", "text"))
	w.Stop(newTestContext())
	if len(events) != 0 {
		t.Fatalf("expected no stop calls before Start, got %v", events)
	}
}
