package location

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/stage"
)

func newGazetteerForTest(t *testing.T) *Gazetteer {
	t.Helper()
	g := NewGazetteer(logging.NewNop())
	require.NoError(t, g.Probe(context.Background()))
	return g
}

func TestGazetteer_FindsCity(t *testing.T) {
	g := newGazetteerForTest(t)

	out, err := g.Analyze(context.Background(), stage.Input{
		EnglishText: "Heavy rain has caused flooding in Mumbai",
	})
	require.NoError(t, err)

	require.Len(t, out.Locations, 1)
	assert.Equal(t, "Mumbai", out.Locations[0].Name)
	assert.Equal(t, domain.LevelCity, out.Locations[0].Level)
	assert.InDelta(t, cityConfidence, out.Confidence, 1e-9)
}

func TestGazetteer_OrdersByFirstAppearance(t *testing.T) {
	g := newGazetteerForTest(t)

	out, err := g.Analyze(context.Background(), stage.Input{
		EnglishText: "From Chennai the relief convoy reached Kerala and then Mumbai",
	})
	require.NoError(t, err)

	require.Len(t, out.Locations, 3)
	assert.Equal(t, "Chennai", out.Locations[0].Name)
	assert.Equal(t, "Kerala", out.Locations[1].Name)
	assert.Equal(t, "Mumbai", out.Locations[2].Name)
	assert.Equal(t, domain.LevelState, out.Locations[1].Level)
}

func TestGazetteer_MultiWordSwallowsSubmatch(t *testing.T) {
	g := newGazetteerForTest(t)

	out, err := g.Analyze(context.Background(), stage.Input{
		EnglishText: "Protests reported in New Delhi today",
	})
	require.NoError(t, err)

	require.Len(t, out.Locations, 1)
	assert.Equal(t, "New Delhi", out.Locations[0].Name)
}

func TestGazetteer_LevelConfidences(t *testing.T) {
	g := newGazetteerForTest(t)

	tests := []struct {
		text string
		want float64
	}{
		{"earthquake near Tokyo", cityConfidence},
		{"floods across Kerala", stateConfidence},
		{"relief efforts in Nepal", countryConfidence},
	}
	for _, tt := range tests {
		out, err := g.Analyze(context.Background(), stage.Input{EnglishText: tt.text})
		require.NoError(t, err)
		assert.InDelta(t, tt.want, out.Confidence, 1e-9, "text: %s", tt.text)
	}
}

func TestGazetteer_NoMatchIsRealEmptyResult(t *testing.T) {
	g := newGazetteerForTest(t)

	out, err := g.Analyze(context.Background(), stage.Input{
		EnglishText: "nothing geographic mentioned here",
	})
	require.NoError(t, err)

	assert.NotNil(t, out.Locations)
	assert.Empty(t, out.Locations)
	assert.False(t, out.Degraded)
}

func TestGazetteer_AnalyzeBeforeProbe(t *testing.T) {
	g := NewGazetteer(logging.NewNop())
	_, err := g.Analyze(context.Background(), stage.Input{EnglishText: "Mumbai"})
	assert.ErrorIs(t, err, stage.ErrUnavailable)
}
