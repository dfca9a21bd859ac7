package language

import (
	"context"
	"unicode"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/stage"
)

// ImplementationScript is the Unicode-script heuristic fallback. It is much
// weaker than the statistical detector but needs no model: a dominant
// non-Latin script pins the language down well enough for routing to the
// translator.
const ImplementationScript = "script"

// latinGuessConfidence caps the confidence when only Latin script is seen;
// Latin text could be any of a dozen languages.
const latinGuessConfidence = 0.5

type scriptRange struct {
	table *unicode.RangeTable
	code  string
}

// scriptRanges maps dominant scripts to the most common feed language using
// that script. Order matters: more specific scripts first.
var scriptRanges = []scriptRange{
	{unicode.Devanagari, "hi"},
	{unicode.Bengali, "bn"},
	{unicode.Tamil, "ta"},
	{unicode.Arabic, "ar"},
	{unicode.Han, "zh"},
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Hangul, "ko"},
	{unicode.Cyrillic, "ru"},
	{unicode.Thai, "th"},
	{unicode.Greek, "el"},
	{unicode.Latin, "en"},
}

// ScriptDetector guesses the language from the dominant Unicode script.
type ScriptDetector struct{}

// NewScript creates the script-heuristic detector.
func NewScript() *ScriptDetector { return &ScriptDetector{} }

// ID implements stage.Analyzer.
func (d *ScriptDetector) ID() string { return ImplementationScript }

// Stage implements stage.Analyzer.
func (d *ScriptDetector) Stage() domain.StageName { return domain.StageLanguage }

// Probe always succeeds: the heuristic has no backing resource.
func (d *ScriptDetector) Probe(context.Context) error { return nil }

// Analyze counts letters per script and reports the dominant one.
func (d *ScriptDetector) Analyze(_ context.Context, in stage.Input) (stage.Output, error) {
	out := stage.Output{
		Stage:            domain.StageLanguage,
		ImplementationID: ImplementationScript,
		Language:         domain.LanguageUnknown,
	}

	counts := make(map[string]int, len(scriptRanges))
	letters := 0
	for _, r := range in.RawText {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, sr := range scriptRanges {
			if unicode.Is(sr.table, r) {
				counts[sr.code]++
				break
			}
		}
	}
	if letters == 0 {
		return out, nil
	}

	bestCode, bestCount := "", 0
	for code, n := range counts {
		if n > bestCount {
			bestCode, bestCount = code, n
		}
	}
	if bestCode == "" {
		return out, nil
	}

	confidence := float64(bestCount) / float64(letters)
	if bestCode == "en" && confidence > latinGuessConfidence {
		confidence = latinGuessConfidence
	}

	out.Language = bestCode
	out.Confidence = confidence
	return out, nil
}
