// Package translate provides the translation stage: a rate-limited client for
// the translation sidecar plus the identity path for English input.
package translate

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/sidecar"
	"github.com/crisislens/analyzer/internal/stage"
)

// ImplementationRemote is the translation sidecar client.
const ImplementationRemote = "translate-api"

const (
	defaultRequestsPerSecond = 5
	defaultBurst             = 10
)

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	TranslatedText string  `json:"translated_text"`
	DetectedSource string  `json:"detected_source,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
}

// Client calls the translation sidecar. Upstream translation providers
// throttle aggressively, so calls go through a local rate limiter rather than
// burning the provider quota on bursts.
type Client struct {
	baseURL string
	limiter *rate.Limiter
	logger  logging.Logger
}

// NewClient creates a translation client. rps <= 0 applies the default limit.
func NewClient(baseURL string, rps float64, logger logging.Logger) *Client {
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(rps), defaultBurst),
		logger:  logger,
	}
}

// ID implements stage.Analyzer.
func (c *Client) ID() string { return ImplementationRemote }

// Stage implements stage.Analyzer.
func (c *Client) Stage() domain.StageName { return domain.StageTranslation }

// Probe checks the sidecar's health endpoint.
func (c *Client) Probe(ctx context.Context) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: no translation sidecar configured", stage.ErrUnavailable)
	}
	if _, err := sidecar.Health(ctx, c.baseURL); err != nil {
		return fmt.Errorf("%w: %v", stage.ErrUnavailable, err)
	}
	return nil
}

// Analyze translates the raw text to English.
func (c *Client) Analyze(ctx context.Context, in stage.Input) (stage.Output, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return stage.Output{}, fmt.Errorf("rate limit wait: %w", err)
	}

	req := translateRequest{Text: in.RawText, Source: in.SourceLanguage, Target: "en"}
	var resp translateResponse
	if err := sidecar.Post(ctx, c.baseURL, "/translate", req, &resp); err != nil {
		return stage.Output{}, fmt.Errorf("%w: %v", stage.ErrUnavailable, err)
	}

	if strings.TrimSpace(resp.TranslatedText) == "" {
		return stage.Output{}, fmt.Errorf("translator returned empty text for source %q", in.SourceLanguage)
	}

	confidence := resp.Confidence
	if confidence == 0 {
		confidence = 1
	}

	return stage.Output{
		Stage:            domain.StageTranslation,
		ImplementationID: ImplementationRemote,
		Translated:       resp.TranslatedText,
		Confidence:       confidence,
	}, nil
}
