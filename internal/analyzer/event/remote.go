package event

import (
	"context"
	"fmt"
	"strings"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/sidecar"
	"github.com/crisislens/analyzer/internal/stage"
)

// ImplementationRemote is the event classification sidecar.
const ImplementationRemote = "event-ml"

var knownCategories = map[string]bool{
	domain.EventFlood:        true,
	domain.EventFire:         true,
	domain.EventEarthquake:   true,
	domain.EventLandslide:    true,
	domain.EventTerrorAttack: true,
	domain.EventOther:        true,
}

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// RemoteClassifier calls the event classification sidecar.
type RemoteClassifier struct {
	baseURL string
	logger  logging.Logger
}

// NewRemote creates a sidecar-backed event classifier.
func NewRemote(baseURL string, logger logging.Logger) *RemoteClassifier {
	return &RemoteClassifier{baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// ID implements stage.Analyzer.
func (c *RemoteClassifier) ID() string { return ImplementationRemote }

// Stage implements stage.Analyzer.
func (c *RemoteClassifier) Stage() domain.StageName { return domain.StageEvent }

// Probe checks the sidecar's health endpoint.
func (c *RemoteClassifier) Probe(ctx context.Context) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: no event sidecar configured", stage.ErrUnavailable)
	}
	if _, err := sidecar.Health(ctx, c.baseURL); err != nil {
		return fmt.Errorf("%w: %v", stage.ErrUnavailable, err)
	}
	return nil
}

// Analyze sends the English text to the sidecar.
func (c *RemoteClassifier) Analyze(ctx context.Context, in stage.Input) (stage.Output, error) {
	var resp classifyResponse
	if err := sidecar.Post(ctx, c.baseURL, "/classify", classifyRequest{Text: in.EnglishText}, &resp); err != nil {
		return stage.Output{}, fmt.Errorf("%w: %v", stage.ErrUnavailable, err)
	}

	category := strings.ToLower(resp.Category)
	if !knownCategories[category] {
		return stage.Output{}, fmt.Errorf("sidecar returned unknown category %q", resp.Category)
	}

	return stage.Output{
		Stage:            domain.StageEvent,
		ImplementationID: ImplementationRemote,
		Confidence:       resp.Confidence,
		Event: &domain.EventValue{
			Category:   category,
			Confidence: resp.Confidence,
		},
	}, nil
}
