// Package ksystem defines the KSystem contract and the KWorld runner
// that drives an ordered collection of systems through a shared
// lifecycle each frame (spec §4.J).
package ksystem

import (
	"context"

	"github.com/CalistaVerner/kalitech/internal/ecs"
	"github.com/CalistaVerner/kalitech/internal/eventbus"
	"github.com/CalistaVerner/kalitech/internal/logging"
)

// SystemContext is passed to every KSystem; its lifetime equals the
// owning KWorld's lifetime (spec §3).
type SystemContext struct {
	Context  context.Context
	ECS      *ecs.Store
	Events   *eventbus.Bus
	Log      *logging.Logger
	StateBag map[string]any
	Tpf      func() float64
}

// KSystem is one orchestrated unit of per-frame behavior.
type KSystem interface {
	Start(ctx SystemContext) error
	Update(ctx SystemContext, tpf float64) error
	Stop(ctx SystemContext) error
}

// Entry pairs a built system with the metadata the builder recorded for
// it, so the runner can report failures with provider context.
type Entry struct {
	ProviderID string
	StableID   string
	Order      int
	System     KSystem
}

// KWorld holds a frozen, ordered list of systems (spec §4.J).
type KWorld struct {
	entries []Entry
	log     *logging.Logger
	started bool
}

// New freezes entries into a KWorld. entries must already be sorted by
// declared order; KWorld does not re-sort.
func New(entries []Entry, log *logging.Logger) *KWorld {
	return &KWorld{entries: entries, log: log}
}

// Entries returns the frozen, ordered system list.
func (w *KWorld) Entries() []Entry { return w.entries }

// Start starts every system in declared order. A system's Start failure
// is logged and does not prevent the remaining systems from starting
// (spec §8 boundary: "A system failing in start is logged; subsequent
// frames still call update for other systems").
func (w *KWorld) Start(ctx SystemContext) {
	for _, e := range w.entries {
		if err := e.System.Start(ctx); err != nil {
			w.log.WithField("system", e.ProviderID).WithError(err).Warn("system start failed")
		}
	}
	w.started = true
}

// Update ticks every system in declared order within a single frame. A
// system's failure during Update is logged, does not abort the frame,
// and does not remove the system (spec §4.J).
func (w *KWorld) Update(ctx SystemContext, tpf float64) {
	for _, e := range w.entries {
		if err := e.System.Update(ctx, tpf); err != nil {
			w.log.WithField("system", e.ProviderID).WithError(err).Warn("system update failed")
		}
	}
}

// Stop stops every system in reverse declared order (spec §4.J).
func (w *KWorld) Stop(ctx SystemContext) {
	if !w.started {
		return
	}
	for i := len(w.entries) - 1; i >= 0; i-- {
		e := w.entries[i]
		if err := e.System.Stop(ctx); err != nil {
			w.log.WithField("system", e.ProviderID).WithError(err).Warn("system stop failed")
		}
	}
	w.started = false
}
