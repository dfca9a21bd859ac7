// Package language provides language detection implementations.
package language

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/stage"
)

// ImplementationLingua is the statistical n-gram detector.
const ImplementationLingua = "lingua"

// detectorLanguages covers the languages seen in disaster feeds. Keeping the
// set small keeps the model load fast and the predictions sharper.
var detectorLanguages = []lingua.Language{
	lingua.English,
	lingua.Hindi,
	lingua.Spanish,
	lingua.French,
	lingua.Arabic,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Portuguese,
	lingua.German,
	lingua.Russian,
	lingua.Bengali,
	lingua.Tamil,
	lingua.Urdu,
	lingua.Italian,
	lingua.Turkish,
	lingua.Indonesian,
}

// LinguaDetector detects language with lingua's statistical models. The
// models load on Probe, not on construction: loading is the availability
// check.
type LinguaDetector struct {
	logger logging.Logger

	once     sync.Once
	detector lingua.LanguageDetector
}

// NewLingua creates an unloaded detector.
func NewLingua(logger logging.Logger) *LinguaDetector {
	return &LinguaDetector{logger: logger}
}

// ID implements stage.Analyzer.
func (d *LinguaDetector) ID() string { return ImplementationLingua }

// Stage implements stage.Analyzer.
func (d *LinguaDetector) Stage() domain.StageName { return domain.StageLanguage }

// Probe loads the language models.
func (d *LinguaDetector) Probe(_ context.Context) error {
	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectorLanguages...).
			Build()
	})
	if d.detector == nil {
		return fmt.Errorf("%w: lingua models failed to load", stage.ErrUnavailable)
	}
	return nil
}

// Analyze detects the language of the raw text.
func (d *LinguaDetector) Analyze(_ context.Context, in stage.Input) (stage.Output, error) {
	if d.detector == nil {
		return stage.Output{}, fmt.Errorf("%w: lingua detector not loaded", stage.ErrUnavailable)
	}

	out := stage.Output{
		Stage:            domain.StageLanguage,
		ImplementationID: ImplementationLingua,
		Language:         domain.LanguageUnknown,
	}

	text := strings.TrimSpace(in.RawText)
	if text == "" {
		return out, nil
	}

	detected, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return out, nil
	}

	out.Language = strings.ToLower(detected.IsoCode639_1().String())
	out.Confidence = d.detector.ComputeLanguageConfidence(text, detected)
	return out, nil
}
