// Package registry tracks which analyzer implementations are usable for each
// pipeline stage. A probe builds an immutable snapshot that is atomically
// swapped in, so concurrently running pipeline invocations always observe a
// consistent view. Reprobing is the only writer.
package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/stage"
)

const defaultProbeTimeout = 10 * time.Second

// Descriptor records one (stage, implementation) candidate and its probed
// availability. Priority follows registration order: 0 is the most capable.
type Descriptor struct {
	Stage            domain.StageName `json:"stage"`
	ImplementationID string           `json:"implementation_id"`
	Priority         int              `json:"priority"`
	Available        bool             `json:"available"`
	// Neutral marks the designated fallback descriptor appended after every
	// real candidate. It is always available.
	Neutral        bool   `json:"neutral"`
	ProbeError     string `json:"probe_error,omitempty"`
	ProbeLatencyMs int64  `json:"probe_latency_ms"`

	analyzer stage.Analyzer
}

// Analyzer returns the implementation behind this descriptor.
func (d Descriptor) Analyzer() stage.Analyzer { return d.analyzer }

// Snapshot is an immutable view of per-stage capability. Selection reads from
// a snapshot; it is never mutated after construction.
type Snapshot struct {
	stages   map[domain.StageName][]Descriptor
	ProbedAt time.Time `json:"probed_at"`
}

// Select returns the highest-priority available descriptor for a stage. When
// no real implementation is available the stage's neutral descriptor is
// returned, so selection never fails.
func (s *Snapshot) Select(name domain.StageName) Descriptor {
	descs := s.stages[name]
	for _, d := range descs {
		if d.Available {
			return d
		}
	}
	// Unreachable for registered stages: the neutral descriptor is always
	// available. Covers stages that were never registered.
	return Descriptor{
		Stage:            name,
		ImplementationID: stage.NeutralID,
		Available:        true,
		Neutral:          true,
		analyzer:         stage.Neutral(name),
	}
}

// Descriptors returns the ordered candidate list for a stage.
func (s *Snapshot) Descriptors(name domain.StageName) []Descriptor {
	descs := s.stages[name]
	out := make([]Descriptor, len(descs))
	copy(out, descs)
	return out
}

// All returns every stage's ordered descriptor list, for the capability
// introspection endpoint.
func (s *Snapshot) All() map[domain.StageName][]Descriptor {
	out := make(map[domain.StageName][]Descriptor, len(s.stages))
	for name := range s.stages {
		out[name] = s.Descriptors(name)
	}
	return out
}

// Registry holds the registered candidates and the current snapshot.
type Registry struct {
	mu           sync.Mutex // serializes Register, Probe and MarkUnavailable
	candidates   map[domain.StageName][]stage.Analyzer
	snap         atomic.Pointer[Snapshot]
	probeTimeout time.Duration
	logger       logging.Logger
}

// New creates an empty registry. probeTimeout bounds each individual probe;
// zero means the default.
func New(logger logging.Logger, probeTimeout time.Duration) *Registry {
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	return &Registry{
		candidates:   make(map[domain.StageName][]stage.Analyzer),
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// Register adds a candidate implementation. Order of registration within a
// stage fixes priority: register the most capable implementation first.
// Registering the same (stage, implementation) pair twice is an error.
func (r *Registry) Register(a stage.Analyzer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := a.Stage()
	for _, existing := range r.candidates[name] {
		if existing.ID() == a.ID() {
			return fmt.Errorf("registry: duplicate implementation %q for stage %q", a.ID(), name)
		}
	}
	r.candidates[name] = append(r.candidates[name], a)
	return nil
}

// Probe checks every candidate's backing resource and swaps in a fresh
// snapshot. A failed probe downgrades that descriptor, never errors: the
// registry proceeds with the remaining candidates. Call it once at process
// start; call it again (reprobe) after installing an optional dependency to
// pick up new capability without restart.
func (r *Registry) Probe(ctx context.Context) *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := &Snapshot{
		stages:   make(map[domain.StageName][]Descriptor, len(r.candidates)),
		ProbedAt: time.Now(),
	}

	for _, name := range domain.Stages() {
		candidates := r.candidates[name]
		descs := make([]Descriptor, 0, len(candidates)+1)

		for i, a := range candidates {
			start := time.Now()
			err := r.safeProbe(ctx, a)
			d := Descriptor{
				Stage:            name,
				ImplementationID: a.ID(),
				Priority:         i,
				Available:        err == nil,
				ProbeLatencyMs:   time.Since(start).Milliseconds(),
				analyzer:         a,
			}
			if err != nil {
				d.ProbeError = err.Error()
				r.logger.Warn("implementation unavailable",
					logging.String("stage", string(name)),
					logging.String("implementation", a.ID()),
					logging.Error(err))
			} else {
				r.logger.Info("implementation available",
					logging.String("stage", string(name)),
					logging.String("implementation", a.ID()),
					logging.Int64("probe_latency_ms", d.ProbeLatencyMs))
			}
			descs = append(descs, d)
		}

		descs = append(descs, Descriptor{
			Stage:            name,
			ImplementationID: stage.NeutralID,
			Priority:         len(candidates),
			Available:        true,
			Neutral:          true,
			analyzer:         stage.Neutral(name),
		})
		snap.stages[name] = descs
	}

	r.snap.Store(snap)
	return snap
}

// safeProbe bounds one probe and converts panics into probe failures.
func (r *Registry) safeProbe(ctx context.Context, a stage.Analyzer) (err error) {
	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("probe panicked: %v", rec)
		}
	}()
	return a.Probe(probeCtx)
}

// Snapshot returns the current capability snapshot. Before the first probe it
// returns an unprobed snapshot where only neutral descriptors are available.
func (r *Registry) Snapshot() *Snapshot {
	if snap := r.snap.Load(); snap != nil {
		return snap
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if snap := r.snap.Load(); snap != nil {
		return snap
	}

	snap := &Snapshot{stages: make(map[domain.StageName][]Descriptor)}
	for _, name := range domain.Stages() {
		descs := make([]Descriptor, 0, len(r.candidates[name])+1)
		for i, a := range r.candidates[name] {
			descs = append(descs, Descriptor{
				Stage:            name,
				ImplementationID: a.ID(),
				Priority:         i,
				ProbeError:       "not probed",
				analyzer:         a,
			})
		}
		descs = append(descs, Descriptor{
			Stage:            name,
			ImplementationID: stage.NeutralID,
			Priority:         len(r.candidates[name]),
			Available:        true,
			Neutral:          true,
			analyzer:         stage.Neutral(name),
		})
		snap.stages[name] = descs
	}
	r.snap.Store(snap)
	return snap
}

// MarkUnavailable downgrades one descriptor in the current snapshot, e.g.
// after a sidecar became unreachable mid-run. The swap is copy-on-write;
// in-flight selections keep their snapshot.
func (r *Registry) MarkUnavailable(name domain.StageName, implementationID, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.snap.Load()
	if current == nil {
		return
	}

	next := &Snapshot{
		stages:   make(map[domain.StageName][]Descriptor, len(current.stages)),
		ProbedAt: current.ProbedAt,
	}
	changed := false
	for stageName, descs := range current.stages {
		copied := make([]Descriptor, len(descs))
		copy(copied, descs)
		if stageName == name {
			for i := range copied {
				if copied[i].ImplementationID == implementationID && !copied[i].Neutral && copied[i].Available {
					copied[i].Available = false
					copied[i].ProbeError = reason
					changed = true
				}
			}
		}
		next.stages[stageName] = copied
	}

	if !changed {
		return
	}

	r.logger.Warn("implementation downgraded",
		logging.String("stage", string(name)),
		logging.String("implementation", implementationID),
		logging.String("reason", reason))
	r.snap.Store(next)
}
