package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/stage"
)

// fakeAnalyzer is a scriptable stage implementation for registry tests.
type fakeAnalyzer struct {
	id          string
	stageName   domain.StageName
	probeErr    error
	probePanics bool
}

func (f *fakeAnalyzer) ID() string              { return f.id }
func (f *fakeAnalyzer) Stage() domain.StageName { return f.stageName }

func (f *fakeAnalyzer) Probe(context.Context) error {
	if f.probePanics {
		panic("model load exploded")
	}
	return f.probeErr
}

func (f *fakeAnalyzer) Analyze(_ context.Context, in stage.Input) (stage.Output, error) {
	return stage.Output{Stage: f.stageName, ImplementationID: f.id}, nil
}

func newTestRegistry(t *testing.T, analyzers ...stage.Analyzer) *Registry {
	t.Helper()
	reg := New(logging.NewNop(), 0)
	for _, a := range analyzers {
		if err := reg.Register(a); err != nil {
			t.Fatalf("register %s: %v", a.ID(), err)
		}
	}
	return reg
}

func TestRegister_DuplicateImplementation(t *testing.T) {
	reg := newTestRegistry(t, &fakeAnalyzer{id: "ml", stageName: domain.StageSentiment})
	err := reg.Register(&fakeAnalyzer{id: "ml", stageName: domain.StageSentiment})
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestProbe_SelectsHighestPriorityAvailable(t *testing.T) {
	reg := newTestRegistry(t,
		&fakeAnalyzer{id: "ml", stageName: domain.StageSentiment},
		&fakeAnalyzer{id: "lexicon", stageName: domain.StageSentiment},
	)

	snap := reg.Probe(context.Background())
	if got := snap.Select(domain.StageSentiment).ImplementationID; got != "ml" {
		t.Errorf("expected first-registered implementation, got %s", got)
	}
}

func TestProbe_FailedProbeDowngradesNotErrors(t *testing.T) {
	reg := newTestRegistry(t,
		&fakeAnalyzer{id: "ml", stageName: domain.StageSentiment, probeErr: errors.New("sidecar down")},
		&fakeAnalyzer{id: "lexicon", stageName: domain.StageSentiment},
	)

	snap := reg.Probe(context.Background())
	selected := snap.Select(domain.StageSentiment)
	if selected.ImplementationID != "lexicon" {
		t.Errorf("expected fallback selection, got %s", selected.ImplementationID)
	}

	descs := snap.Descriptors(domain.StageSentiment)
	if descs[0].Available {
		t.Error("failed probe should leave descriptor unavailable")
	}
	if descs[0].ProbeError == "" {
		t.Error("failed probe should record the error")
	}
}

func TestProbe_PanicIsContained(t *testing.T) {
	reg := newTestRegistry(t,
		&fakeAnalyzer{id: "ml", stageName: domain.StageEvent, probePanics: true},
		&fakeAnalyzer{id: "keyword", stageName: domain.StageEvent},
	)

	snap := reg.Probe(context.Background())
	if got := snap.Select(domain.StageEvent).ImplementationID; got != "keyword" {
		t.Errorf("panicking probe should downgrade, got selection %s", got)
	}
}

func TestSelect_AllUnavailableFallsToNeutral(t *testing.T) {
	reg := newTestRegistry(t,
		&fakeAnalyzer{id: "ml", stageName: domain.StageLocation, probeErr: errors.New("down")},
	)

	snap := reg.Probe(context.Background())
	selected := snap.Select(domain.StageLocation)
	if selected.ImplementationID != stage.NeutralID {
		t.Errorf("expected neutral fallback, got %s", selected.ImplementationID)
	}
	if !selected.Neutral || !selected.Available {
		t.Error("neutral descriptor must be available and flagged neutral")
	}
}

func TestSelect_UnregisteredStageStillServesNeutral(t *testing.T) {
	reg := newTestRegistry(t)
	snap := reg.Probe(context.Background())
	selected := snap.Select(domain.StageTranslation)
	if selected.ImplementationID != stage.NeutralID {
		t.Errorf("expected neutral for unregistered stage, got %s", selected.ImplementationID)
	}
}

func TestSnapshot_BeforeProbeOnlyNeutralAvailable(t *testing.T) {
	reg := newTestRegistry(t, &fakeAnalyzer{id: "ml", stageName: domain.StageSentiment})

	snap := reg.Snapshot()
	if got := snap.Select(domain.StageSentiment).ImplementationID; got != stage.NeutralID {
		t.Errorf("unprobed snapshot should select neutral, got %s", got)
	}
}

func TestReprobe_PicksUpRestoredCapability(t *testing.T) {
	flaky := &fakeAnalyzer{id: "ml", stageName: domain.StageSentiment, probeErr: errors.New("down")}
	reg := newTestRegistry(t, flaky)

	first := reg.Probe(context.Background())
	if first.Select(domain.StageSentiment).ImplementationID != stage.NeutralID {
		t.Fatal("expected neutral while sidecar is down")
	}

	flaky.probeErr = nil
	second := reg.Probe(context.Background())
	if got := second.Select(domain.StageSentiment).ImplementationID; got != "ml" {
		t.Errorf("reprobe should restore capability, got %s", got)
	}

	// The earlier snapshot is immutable.
	if first.Select(domain.StageSentiment).ImplementationID != stage.NeutralID {
		t.Error("old snapshot must not change after reprobe")
	}
}

func TestMarkUnavailable_DowngradesCurrentSnapshot(t *testing.T) {
	reg := newTestRegistry(t,
		&fakeAnalyzer{id: "ml", stageName: domain.StageSentiment},
		&fakeAnalyzer{id: "lexicon", stageName: domain.StageSentiment},
	)
	old := reg.Probe(context.Background())

	reg.MarkUnavailable(domain.StageSentiment, "ml", "connection refused")

	if got := reg.Snapshot().Select(domain.StageSentiment).ImplementationID; got != "lexicon" {
		t.Errorf("expected downgrade to lexicon, got %s", got)
	}
	if old.Select(domain.StageSentiment).ImplementationID != "ml" {
		t.Error("in-flight snapshot must keep its view")
	}
}

func TestMarkUnavailable_NeverDowngradesNeutral(t *testing.T) {
	reg := newTestRegistry(t)
	reg.Probe(context.Background())

	reg.MarkUnavailable(domain.StageEvent, stage.NeutralID, "should not happen")

	selected := reg.Snapshot().Select(domain.StageEvent)
	if !selected.Available {
		t.Error("neutral must stay available")
	}
}
