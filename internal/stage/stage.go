// Package stage defines the contract every analyzer implementation satisfies.
package stage

import (
	"context"
	"errors"

	"github.com/crisislens/analyzer/internal/domain"
)

// ErrUnavailable indicates an analyzer's backing resource (model, sidecar,
// dictionary) is not usable. Probe failures and call-time connection failures
// wrap this sentinel so the registry can downgrade availability.
var ErrUnavailable = errors.New("analyzer unavailable")

// Input carries the stage-specific payload. Exactly the fields a stage needs
// are set: language detection reads RawText; translation reads RawText and
// SourceLanguage; sentiment, event and location read EnglishText. Inputs are
// immutable once constructed.
type Input struct {
	RawText        string
	SourceLanguage string
	EnglishText    string
}

// Output is one stage's typed result plus provenance. One value field is set
// per stage; the rest stay zero.
type Output struct {
	Stage            domain.StageName `json:"stage"`
	ImplementationID string           `json:"implementation_id"`
	// Degraded marks a fallback/neutral result produced because no real
	// implementation was available or the selected one failed.
	Degraded   bool    `json:"degraded"`
	Confidence float64 `json:"confidence"`
	ErrorTag   string  `json:"error_tag,omitempty"`

	Language   string                 `json:"language,omitempty"`
	Translated string                 `json:"translated,omitempty"`
	Sentiment  *domain.SentimentValue `json:"sentiment,omitempty"`
	Event      *domain.EventValue     `json:"event,omitempty"`
	Locations  []domain.Location      `json:"locations,omitempty"`
}

// Analyzer is one implementation of one pipeline stage.
//
// Analyze must behave as a pure function of its input: no shared mutable
// state, safe for concurrent invocation across documents. If a backing
// resource is not safe for concurrent calls, the implementation serializes
// internally; it must never require the orchestrator to serialize.
type Analyzer interface {
	// ID returns the implementation identifier, unique within its stage.
	ID() string
	// Stage returns the pipeline stage this implementation serves.
	Stage() domain.StageName
	// Probe performs a best-effort load of the backing resource and reports
	// whether the implementation is usable. It must not panic.
	Probe(ctx context.Context) error
	// Analyze runs the stage on the given input.
	Analyze(ctx context.Context, in Input) (Output, error)
}
