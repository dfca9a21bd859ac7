package evaluation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/registry"
	"github.com/crisislens/analyzer/internal/stage"
)

// labeler is a scriptable sentiment implementation.
type labeler struct {
	id     string
	labels map[string]string // text -> label
}

func (l *labeler) ID() string                  { return l.id }
func (l *labeler) Stage() domain.StageName     { return domain.StageSentiment }
func (l *labeler) Probe(context.Context) error { return nil }

func (l *labeler) Analyze(_ context.Context, in stage.Input) (stage.Output, error) {
	return stage.Output{
		Stage:            domain.StageSentiment,
		ImplementationID: l.id,
		Confidence:       0.8,
		Sentiment:        &domain.SentimentValue{Label: l.labels[in.EnglishText]},
	}, nil
}

func snapshotWith(t *testing.T, analyzers ...stage.Analyzer) *registry.Snapshot {
	t.Helper()
	reg := registry.New(logging.NewNop(), 0)
	for _, a := range analyzers {
		require.NoError(t, reg.Register(a))
	}
	return reg.Probe(context.Background())
}

func TestCompareStage_Agreement(t *testing.T) {
	texts := []string{"a", "b", "c", "d"}
	ml := &labeler{id: "ml", labels: map[string]string{
		"a": "negative", "b": "negative", "c": "positive", "d": "neutral",
	}}
	lexicon := &labeler{id: "lexicon", labels: map[string]string{
		"a": "negative", "b": "negative", "c": "negative", "d": "neutral",
	}}

	snap := snapshotWith(t, ml, lexicon)
	report, err := CompareStage(context.Background(), snap, domain.StageSentiment, texts)
	require.NoError(t, err)

	assert.Equal(t, domain.StageSentiment, report.Stage)
	assert.Equal(t, 4, report.InputCount)
	require.Len(t, report.Runs, 2)
	require.Len(t, report.Agreements, 1)

	// 3 of 4 inputs agree.
	assert.Equal(t, "ml", report.Agreements[0].A)
	assert.Equal(t, "lexicon", report.Agreements[0].B)
	assert.InDelta(t, 0.75, report.Agreements[0].Fraction, 1e-9)
	assert.InDelta(t, 0.8, report.Runs[0].MeanConfidence, 1e-9)
}

func TestCompareStage_NeedsTwoImplementations(t *testing.T) {
	snap := snapshotWith(t, &labeler{id: "only", labels: map[string]string{}})
	_, err := CompareStage(context.Background(), snap, domain.StageSentiment, []string{"a"})
	assert.Error(t, err)
}

func TestCompareStage_NeedsInputs(t *testing.T) {
	snap := snapshotWith(t,
		&labeler{id: "a", labels: map[string]string{}},
		&labeler{id: "b", labels: map[string]string{}},
	)
	_, err := CompareStage(context.Background(), snap, domain.StageSentiment, nil)
	assert.Error(t, err)
}
