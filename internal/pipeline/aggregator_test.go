package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/stage"
	"github.com/crisislens/analyzer/internal/textutil"
)

func baseOutputs() map[domain.StageName]stage.Output {
	return map[domain.StageName]stage.Output{
		domain.StageLanguage: {
			Stage: domain.StageLanguage, ImplementationID: "lingua",
			Language: "hi", Confidence: 0.95,
		},
		domain.StageTranslation: {
			Stage: domain.StageTranslation, ImplementationID: "translate-api",
			Translated: "flood in mumbai", Confidence: 1,
		},
		domain.StageSentiment: {
			Stage: domain.StageSentiment, ImplementationID: "lexicon",
			Sentiment: &domain.SentimentValue{Label: domain.SentimentNegative, Score: -0.4},
		},
		domain.StageEvent: {
			Stage: domain.StageEvent, ImplementationID: "keyword",
			Event: &domain.EventValue{Category: domain.EventFlood, Confidence: 0.5},
		},
		domain.StageLocation: {
			Stage: domain.StageLocation, ImplementationID: "gazetteer",
			Locations: []domain.Location{{Name: "Mumbai", Level: domain.LevelCity}},
		},
	}
}

func baseTimings() map[domain.StageName]time.Duration {
	timings := make(map[domain.StageName]time.Duration)
	for _, name := range domain.Stages() {
		timings[name] = 2 * time.Millisecond
	}
	return timings
}

func degrade(out stage.Output, tag string) stage.Output {
	out.Degraded = true
	out.ErrorTag = tag
	out.ImplementationID = stage.NeutralID
	return out
}

func TestAggregate_StatusPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[domain.StageName]stage.Output)
		want   domain.Status
	}{
		{
			name:   "all real outputs",
			mutate: func(map[domain.StageName]stage.Output) {},
			want:   domain.StatusComplete,
		},
		{
			name: "one non-core stage degraded",
			mutate: func(o map[domain.StageName]stage.Output) {
				o[domain.StageLocation] = degrade(o[domain.StageLocation], TagStageError)
			},
			want: domain.StatusPartial,
		},
		{
			name: "one core stage degraded",
			mutate: func(o map[domain.StageName]stage.Output) {
				o[domain.StageSentiment] = degrade(o[domain.StageSentiment], TagStageError)
			},
			want: domain.StatusPartial,
		},
		{
			name: "both core stages degraded",
			mutate: func(o map[domain.StageName]stage.Output) {
				o[domain.StageSentiment] = degrade(o[domain.StageSentiment], TagStageError)
				o[domain.StageEvent] = degrade(o[domain.StageEvent], TagStageError)
			},
			want: domain.StatusMinimal,
		},
		{
			name: "timeout outranks everything",
			mutate: func(o map[domain.StageName]stage.Output) {
				o[domain.StageSentiment] = degrade(o[domain.StageSentiment], TagTimeout)
				o[domain.StageEvent] = degrade(o[domain.StageEvent], TagStageError)
			},
			want: domain.StatusTimeout,
		},
		{
			name: "low language confidence",
			mutate: func(o map[domain.StageName]stage.Output) {
				lang := o[domain.StageLanguage]
				lang.Confidence = 0.2
				o[domain.StageLanguage] = lang
			},
			want: domain.StatusLowConfidenceLanguage,
		},
		{
			name: "degradation outranks low confidence",
			mutate: func(o map[domain.StageName]stage.Output) {
				lang := o[domain.StageLanguage]
				lang.Confidence = 0.2
				o[domain.StageLanguage] = lang
				o[domain.StageLocation] = degrade(o[domain.StageLocation], TagStageError)
			},
			want: domain.StatusPartial,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs := baseOutputs()
			tt.mutate(outputs)

			record, err := Aggregate(domain.Document{ID: "d1", Text: "raw"}, outputs, baseTimings(), 0.5)
			if err != nil {
				t.Fatalf("Aggregate: %v", err)
			}
			if record.OverallStatus != tt.want {
				t.Errorf("status: got %s, want %s", record.OverallStatus, tt.want)
			}
		})
	}
}

func TestAggregate_MissingStageOutputFails(t *testing.T) {
	outputs := baseOutputs()
	delete(outputs, domain.StageEvent)

	_, err := Aggregate(domain.Document{ID: "d1"}, outputs, baseTimings(), 0.5)
	if !errors.Is(err, ErrAggregation) {
		t.Fatalf("expected ErrAggregation, got %v", err)
	}
}

func TestAggregate_EmptyTranslationFallsBackToRawText(t *testing.T) {
	outputs := baseOutputs()
	trans := outputs[domain.StageTranslation]
	trans.Translated = ""
	outputs[domain.StageTranslation] = trans

	record, err := Aggregate(domain.Document{ID: "d1", Text: "original text"}, outputs, baseTimings(), 0.5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if record.TranslatedText != "original text" {
		t.Errorf("expected raw-text fallback, got %q", record.TranslatedText)
	}
}

func TestAggregate_NilLocationsBecomesEmptySlice(t *testing.T) {
	outputs := baseOutputs()
	loc := outputs[domain.StageLocation]
	loc.Locations = nil
	outputs[domain.StageLocation] = loc

	record, err := Aggregate(domain.Document{ID: "d1", Text: "x"}, outputs, baseTimings(), 0.5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if record.Locations == nil {
		t.Error("locations must never be nil")
	}
}

func TestAggregate_ContentHashFingerprintsRawText(t *testing.T) {
	first, err := Aggregate(domain.Document{ID: "d1", Text: "flood in mumbai"}, baseOutputs(), baseTimings(), 0.5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if first.ContentHash != textutil.Hash("flood in mumbai") {
		t.Errorf("content hash does not match the raw text: %q", first.ContentHash)
	}

	// The same text under a different document id hashes identically, so a
	// resubmitted post is detectable downstream.
	second, err := Aggregate(domain.Document{ID: "d2", Text: "flood in mumbai"}, baseOutputs(), baseTimings(), 0.5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if second.ContentHash != first.ContentHash {
		t.Errorf("identical text produced different hashes: %q vs %q", first.ContentHash, second.ContentHash)
	}

	other, err := Aggregate(domain.Document{ID: "d3", Text: "fire in delhi"}, baseOutputs(), baseTimings(), 0.5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if other.ContentHash == first.ContentHash {
		t.Error("different texts must not share a content hash")
	}
}

func TestAggregate_CarriesProvenanceAndTimings(t *testing.T) {
	record, err := Aggregate(domain.Document{ID: "d1", Text: "x", Principal: "svc-ingest"}, baseOutputs(), baseTimings(), 0.5)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if record.Principal != "svc-ingest" {
		t.Errorf("principal not carried: %q", record.Principal)
	}
	if got := record.Provenance[domain.StageLanguage]; got != "lingua" {
		t.Errorf("language provenance: %s", got)
	}
	if len(record.StageTimingsMs) != 5 {
		t.Errorf("expected 5 timings, got %d", len(record.StageTimingsMs))
	}
	if record.AnalyzedAt.IsZero() {
		t.Error("analyzed_at must be set")
	}
}
