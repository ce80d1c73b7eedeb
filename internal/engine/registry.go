package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

type registered struct {
	engine Engine
	tier   Tier
	order  int
}

// Registry holds the set of known engines and a process-wide probe cache.
// Engines are registered once at startup; the registry is read-only after
// that except for the probe cache, which fills lazily.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]registered
	names   []string // registration order
	probes  map[string]Availability
	group   singleflight.Group
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]registered),
		probes:  make(map[string]Availability),
	}
}

// Register adds an engine at the given fallback tier. Registering the same
// name twice replaces the earlier entry.
func (r *Registry) Register(e Engine, tier Tier) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := e.Name()
	// Replacement keeps the original registration slot so same-tier chain
	// ordering is stable across re-registration.
	if existing, ok := r.engines[name]; ok {
		r.engines[name] = registered{engine: e, tier: tier, order: existing.order}
		return
	}
	r.names = append(r.names, name)
	r.engines[name] = registered{engine: e, tier: tier, order: len(r.names)}
}

// Get returns a registered engine by name.
func (r *Registry) Get(name string) (Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.engines[name]
	if !ok {
		return nil, false
	}
	return reg.engine, true
}

// Probe returns the availability of the named engine, probing it at most
// once per process. Concurrent first probes of the same engine are
// collapsed through a per-key gate; probing can be expensive (model load).
func (r *Registry) Probe(ctx context.Context, name string) Availability {
	r.mu.RLock()
	if a, ok := r.probes[name]; ok {
		r.mu.RUnlock()
		return a
	}
	reg, ok := r.engines[name]
	r.mu.RUnlock()

	if !ok {
		return AvailabilityMissing
	}

	v, _, _ := r.group.Do(name, func() (interface{}, error) {
		a := reg.engine.Probe(ctx)
		log.Debug("engine probed", "engine", name, "availability", a)
		r.mu.Lock()
		r.probes[name] = a
		r.mu.Unlock()
		return a, nil
	})
	return v.(Availability)
}

// Invalidate drops the cached probe result for one engine, or for all
// engines when name is empty. Intended for tests and forced re-checks.
func (r *Registry) Invalidate(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		r.probes = make(map[string]Availability)
		return
	}
	delete(r.probes, name)
}

// Chain returns the ordered fallback chain: the primary engine first, then
// the configured fallback, then every remaining engine in tier order
// (conversational > quality > lightweight > mock). Unknown names are
// silently skipped; duplicates appear once.
func (r *Registry) Chain(primary, fallback string) []Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rest []registered
	for _, name := range r.names {
		rest = append(rest, r.engines[name])
	}
	sort.SliceStable(rest, func(i, j int) bool {
		if rest[i].tier != rest[j].tier {
			return rest[i].tier < rest[j].tier
		}
		return rest[i].order < rest[j].order
	})

	seen := make(map[string]bool, len(r.names))
	var chain []Engine
	add := func(name string) {
		reg, ok := r.engines[name]
		if !ok || seen[name] {
			return
		}
		seen[name] = true
		chain = append(chain, reg.engine)
	}

	add(primary)
	add(fallback)
	for _, reg := range rest {
		add(reg.engine.Name())
	}
	return chain
}

// BestAvailable returns the first usable engine in default tier order.
// Plan proposal uses this to cap speaker counts at what can actually be
// rendered.
func (r *Registry) BestAvailable(ctx context.Context) (Engine, bool) {
	for _, e := range r.Chain("", "") {
		if r.Probe(ctx, e.Name()).Usable() {
			return e, true
		}
	}
	return nil, false
}

// Descriptors lists every registered engine with its probed availability,
// in chain order.
func (r *Registry) Descriptors(ctx context.Context) []Descriptor {
	var out []Descriptor
	for _, e := range r.Chain("", "") {
		out = append(out, Descriptor{
			Name:         e.Name(),
			Capabilities: e.Capabilities(),
			Availability: r.Probe(ctx, e.Name()).String(),
		})
	}
	return out
}
