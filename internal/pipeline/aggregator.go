package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/stage"
	"github.com/crisislens/analyzer/internal/textutil"
)

// ErrAggregation marks an invariant violation while merging stage outputs.
var ErrAggregation = errors.New("aggregation failed")

// PipelineError wraps a per-document failure with the document id.
type PipelineError struct {
	DocumentID string
	Err        error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline: document %s: %v", e.DocumentID, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Aggregate merges the five stage outputs into one record. It is a pure
// function of its inputs; the orchestrator owns all side effects.
func Aggregate(doc domain.Document, outputs map[domain.StageName]stage.Output, timings map[domain.StageName]time.Duration, lowConfidence float64) (*domain.AnalysisRecord, error) {
	for _, name := range domain.Stages() {
		if _, ok := outputs[name]; !ok {
			return nil, fmt.Errorf("%w: missing %s output", ErrAggregation, name)
		}
	}

	langOut := outputs[domain.StageLanguage]
	transOut := outputs[domain.StageTranslation]
	sentOut := outputs[domain.StageSentiment]
	eventOut := outputs[domain.StageEvent]
	locOut := outputs[domain.StageLocation]

	if sentOut.Sentiment == nil {
		return nil, fmt.Errorf("%w: sentiment output carries no value", ErrAggregation)
	}
	if eventOut.Event == nil {
		return nil, fmt.Errorf("%w: event output carries no value", ErrAggregation)
	}

	record := &domain.AnalysisRecord{
		DocumentID:         doc.ID,
		ContentHash:        textutil.Hash(doc.Text),
		Principal:          doc.Principal,
		DetectedLanguage:   langOut.Language,
		LanguageConfidence: langOut.Confidence,
		TranslatedText:     transOut.Translated,
		Sentiment:          *sentOut.Sentiment,
		Event:              *eventOut.Event,
		Locations:          locOut.Locations,
		Provenance:         make(map[domain.StageName]string, len(outputs)),
		Degraded:           make(map[domain.StageName]bool, len(outputs)),
		StageTimingsMs:     make(map[domain.StageName]int64, len(timings)),
		AnalyzedAt:         time.Now().UTC(),
	}

	if record.DetectedLanguage == "" {
		record.DetectedLanguage = domain.LanguageUnknown
	}
	if strings.TrimSpace(record.TranslatedText) == "" {
		record.TranslatedText = doc.Text
	}
	if record.Locations == nil {
		record.Locations = []domain.Location{}
	}

	for name, out := range outputs {
		record.Provenance[name] = out.ImplementationID
		record.Degraded[name] = out.Degraded
		if out.ErrorTag != "" {
			if record.StageErrors == nil {
				record.StageErrors = make(map[domain.StageName]string)
			}
			record.StageErrors[name] = out.ErrorTag
		}
	}
	for name, took := range timings {
		record.StageTimingsMs[name] = took.Milliseconds()
	}

	record.OverallStatus = computeStatus(record, lowConfidence)
	return record, nil
}

// computeStatus derives the overall outcome. Precedence, most severe first:
// timeout, minimal, partial, low_confidence_language, complete.
func computeStatus(r *domain.AnalysisRecord, lowConfidence float64) domain.Status {
	for _, tag := range r.StageErrors {
		if tag == TagTimeout {
			return domain.StatusTimeout
		}
	}
	if r.Degraded[domain.StageSentiment] && r.Degraded[domain.StageEvent] {
		return domain.StatusMinimal
	}
	for _, degraded := range r.Degraded {
		if degraded {
			return domain.StatusPartial
		}
	}
	if r.LanguageConfidence < lowConfidence {
		return domain.StatusLowConfidenceLanguage
	}
	return domain.StatusComplete
}
