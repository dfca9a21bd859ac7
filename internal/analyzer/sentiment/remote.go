package sentiment

import (
	"context"
	"fmt"
	"strings"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/sidecar"
	"github.com/crisislens/analyzer/internal/stage"
	"github.com/crisislens/analyzer/internal/textutil"
)

// ImplementationRemote is the transformer sidecar. It is the most capable
// sentiment implementation and probes first in registry order.
const ImplementationRemote = "sentiment-ml"

// maxSidecarChars bounds the text sent to the sidecar; transformer models
// truncate anyway and shorter payloads keep latency predictable.
const maxSidecarChars = 2000

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores,omitempty"`
}

// RemoteAnalyzer calls the sentiment sidecar.
type RemoteAnalyzer struct {
	baseURL string
	logger  logging.Logger
}

// NewRemote creates a sidecar-backed sentiment analyzer.
func NewRemote(baseURL string, logger logging.Logger) *RemoteAnalyzer {
	return &RemoteAnalyzer{baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// ID implements stage.Analyzer.
func (a *RemoteAnalyzer) ID() string { return ImplementationRemote }

// Stage implements stage.Analyzer.
func (a *RemoteAnalyzer) Stage() domain.StageName { return domain.StageSentiment }

// Probe checks the sidecar's health endpoint.
func (a *RemoteAnalyzer) Probe(ctx context.Context) error {
	if a.baseURL == "" {
		return fmt.Errorf("%w: no sentiment sidecar configured", stage.ErrUnavailable)
	}
	if _, err := sidecar.Health(ctx, a.baseURL); err != nil {
		return fmt.Errorf("%w: %v", stage.ErrUnavailable, err)
	}
	return nil
}

// Analyze sends the English text to the sidecar.
func (a *RemoteAnalyzer) Analyze(ctx context.Context, in stage.Input) (stage.Output, error) {
	text := textutil.Truncate(in.EnglishText, maxSidecarChars)

	var resp analyzeResponse
	if err := sidecar.Post(ctx, a.baseURL, "/sentiment", analyzeRequest{Text: text}, &resp); err != nil {
		return stage.Output{}, fmt.Errorf("%w: %v", stage.ErrUnavailable, err)
	}

	label := strings.ToLower(resp.Label)
	switch label {
	case domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral:
	default:
		return stage.Output{}, fmt.Errorf("sidecar returned unknown label %q", resp.Label)
	}

	score := resp.Confidence
	if label == domain.SentimentNegative {
		score = -score
	}
	if label == domain.SentimentNeutral {
		score = 0
	}

	return stage.Output{
		Stage:            domain.StageSentiment,
		ImplementationID: ImplementationRemote,
		Confidence:       resp.Confidence,
		Sentiment: &domain.SentimentValue{
			Label:  label,
			Score:  score,
			Scores: resp.Scores,
		},
	}, nil
}
