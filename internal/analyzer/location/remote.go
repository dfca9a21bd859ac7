package location

import (
	"context"
	"fmt"
	"strings"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/sidecar"
	"github.com/crisislens/analyzer/internal/stage"
)

// ImplementationRemote is the NER sidecar. It sees places the gazetteer
// does not know, so it probes first in registry order.
const ImplementationRemote = "ner-ml"

type entitiesRequest struct {
	Text string `json:"text"`
}

type entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

type entitiesResponse struct {
	Entities []entity `json:"entities"`
}

// RemoteExtractor calls the NER sidecar and keeps the geo-political and
// location entities.
type RemoteExtractor struct {
	baseURL string
	logger  logging.Logger
}

// NewRemote creates a sidecar-backed location extractor.
func NewRemote(baseURL string, logger logging.Logger) *RemoteExtractor {
	return &RemoteExtractor{baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// ID implements stage.Analyzer.
func (e *RemoteExtractor) ID() string { return ImplementationRemote }

// Stage implements stage.Analyzer.
func (e *RemoteExtractor) Stage() domain.StageName { return domain.StageLocation }

// Probe checks the sidecar's health endpoint.
func (e *RemoteExtractor) Probe(ctx context.Context) error {
	if e.baseURL == "" {
		return fmt.Errorf("%w: no NER sidecar configured", stage.ErrUnavailable)
	}
	if _, err := sidecar.Health(ctx, e.baseURL); err != nil {
		return fmt.Errorf("%w: %v", stage.ErrUnavailable, err)
	}
	return nil
}

// Analyze extracts locations via the sidecar, preserving entity order.
func (e *RemoteExtractor) Analyze(ctx context.Context, in stage.Input) (stage.Output, error) {
	var resp entitiesResponse
	if err := sidecar.Post(ctx, e.baseURL, "/entities", entitiesRequest{Text: in.EnglishText}, &resp); err != nil {
		return stage.Output{}, fmt.Errorf("%w: %v", stage.ErrUnavailable, err)
	}

	out := stage.Output{
		Stage:            domain.StageLocation,
		ImplementationID: ImplementationRemote,
		Locations:        []domain.Location{},
	}

	seen := make(map[string]bool)
	for _, ent := range resp.Entities {
		if ent.Label != "GPE" && ent.Label != "LOC" {
			continue
		}
		name := strings.TrimSpace(ent.Text)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		// The gazetteer settles the level for known names; unknown GPE
		// entities default to city, which is what they usually are.
		level, ok := Level(key)
		if !ok {
			level = domain.LevelCity
		}
		out.Locations = append(out.Locations, domain.Location{
			Name:  titleCaser.String(key),
			Level: level,
		})
	}

	if len(out.Locations) > 0 {
		out.Confidence = cityConfidence
	}
	return out, nil
}
