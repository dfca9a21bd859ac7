// Package domain defines the core types shared across the analyzer service.
package domain

import "time"

// StageName identifies one pipeline stage.
type StageName string

// Pipeline stages, in execution order. Language detection and translation are
// strictly sequential; sentiment, event and location run concurrently on the
// translated text.
const (
	StageLanguage    StageName = "language"
	StageTranslation StageName = "translation"
	StageSentiment   StageName = "sentiment"
	StageEvent       StageName = "event"
	StageLocation    StageName = "location"
)

// Stages returns all pipeline stages in execution order.
func Stages() []StageName {
	return []StageName{StageLanguage, StageTranslation, StageSentiment, StageEvent, StageLocation}
}

// Status is the overall outcome of a pipeline run.
type Status string

const (
	// StatusComplete means no stage was degraded.
	StatusComplete Status = "complete"
	// StatusPartial means at least one stage was degraded but at least one
	// core stage (sentiment, event) produced a real result.
	StatusPartial Status = "partial"
	// StatusMinimal means both core stages were degraded.
	StatusMinimal Status = "minimal"
	// StatusLowConfidenceLanguage means the run completed but language
	// detection fell below the confidence threshold.
	StatusLowConfidenceLanguage Status = "low_confidence_language"
	// StatusTimeout means the caller's budget ran out before every stage
	// resolved; unresolved stages carry neutral degraded outputs.
	StatusTimeout Status = "timeout"
)

// LanguageUnknown is the detected-language value when no detector could
// classify the text.
const LanguageUnknown = "unknown"

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Disaster event categories.
const (
	EventFlood        = "flood"
	EventFire         = "fire"
	EventEarthquake   = "earthquake"
	EventLandslide    = "landslide"
	EventTerrorAttack = "terror_attack"
	EventOther        = "other"
)

// LocationLevel classifies how specific a mentioned location is.
type LocationLevel string

const (
	LevelCity    LocationLevel = "city"
	LevelState   LocationLevel = "state"
	LevelCountry LocationLevel = "country"
	LevelUnknown LocationLevel = "unknown"
)

// Location is one mentioned place, in order of first appearance in the text.
type Location struct {
	Name  string        `json:"name"`
	Level LocationLevel `json:"level"`
}

// SentimentValue is the sentiment stage result.
type SentimentValue struct {
	Label  string             `json:"label"`
	Score  float64            `json:"score"`
	Scores map[string]float64 `json:"scores,omitempty"`
}

// EventValue is the event classification stage result.
type EventValue struct {
	Category        string   `json:"category"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// Document is one input to the pipeline.
type Document struct {
	// ID identifies the document; assigned if empty.
	ID string `json:"id"`
	// Text is the raw multilingual input text.
	Text string `json:"text"`
	// SourceHint is an optional declared source language (ISO 639-1).
	SourceHint string `json:"source_hint,omitempty"`
	// Principal is the opaque caller identity, recorded for audit only.
	Principal string `json:"principal,omitempty"`
}

// AnalysisRecord is the immutable result of one pipeline run. It is created
// once per document and never mutated afterwards; corrections create a new
// record version under a new document id.
//
// Every stage field is always present, even when degraded. Degradation is
// signalled by the per-stage Degraded flag, never by absence.
type AnalysisRecord struct {
	DocumentID string `json:"document_id"`
	// ContentHash fingerprints the raw text so consumers can spot the same
	// post resubmitted under a different document id.
	ContentHash        string  `json:"content_hash"`
	Principal          string  `json:"principal,omitempty"`
	DetectedLanguage   string  `json:"detected_language"`
	LanguageConfidence float64 `json:"language_confidence"`
	// TranslatedText is always present; it falls back to the original text
	// when no translation was available.
	TranslatedText string         `json:"translated_text"`
	Sentiment      SentimentValue `json:"sentiment"`
	Event          EventValue     `json:"event"`
	Locations      []Location     `json:"locations"`

	// Provenance records which implementation produced each stage's output.
	Provenance map[StageName]string `json:"provenance"`
	// Degraded marks stages whose output came from a fallback/neutral
	// implementation rather than a real one.
	Degraded map[StageName]bool `json:"degraded"`
	// StageErrors carries the error tag for each degraded stage, when known.
	StageErrors map[StageName]string `json:"stage_errors,omitempty"`
	// StageTimingsMs records per-stage wall time in milliseconds.
	StageTimingsMs map[StageName]int64 `json:"stage_timings_ms"`

	OverallStatus Status    `json:"overall_status"`
	AnalyzedAt    time.Time `json:"analyzed_at"`
}
