package language

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/stage"
)

func TestScript_DetectsByDominantScript(t *testing.T) {
	d := NewScript()
	require.NoError(t, d.Probe(context.Background()))

	tests := []struct {
		name string
		text string
		want string
	}{
		{"devanagari", "मुंबई में बाढ़ आ गई है", "hi"},
		{"bengali", "ঢাকায় বন্যা হয়েছে", "bn"},
		{"arabic", "فيضانات في المدينة", "ar"},
		{"cyrillic", "наводнение в городе", "ru"},
		{"latin", "flooding in the city", "en"},
		{"han", "城市发生洪水", "zh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := d.Analyze(context.Background(), stage.Input{RawText: tt.text})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Language)
			assert.Greater(t, out.Confidence, 0.0)
		})
	}
}

func TestScript_LatinConfidenceIsCapped(t *testing.T) {
	d := NewScript()

	out, err := d.Analyze(context.Background(), stage.Input{RawText: "plain english text"})
	require.NoError(t, err)
	assert.Equal(t, "en", out.Language)
	assert.LessOrEqual(t, out.Confidence, latinGuessConfidence)
}

func TestScript_NoLettersIsUnknown(t *testing.T) {
	d := NewScript()

	for _, text := range []string{"", "12345 !!!", "   "} {
		out, err := d.Analyze(context.Background(), stage.Input{RawText: text})
		require.NoError(t, err)
		assert.Equal(t, domain.LanguageUnknown, out.Language, "text: %q", text)
	}
}

func TestScript_MixedScriptPicksDominant(t *testing.T) {
	d := NewScript()

	out, err := d.Analyze(context.Background(), stage.Input{
		RawText: "RT मुंबई में भारी बारिश के कारण बाढ़ आ गई है",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", out.Language)
}
