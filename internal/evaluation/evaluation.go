// Package evaluation compares the implementations of one pipeline stage by
// running them all over the same input texts and measuring how often they
// agree. Operators use it to judge whether a lighter fallback is good enough
// before taking a heavier dependency out of service.
package evaluation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/registry"
	"github.com/crisislens/analyzer/internal/stage"
)

// Run is one implementation's pass over the input set.
type Run struct {
	ImplementationID string `json:"implementation_id"`
	// Values holds the canonical result per input, aligned with the input
	// order; failed invocations hold an empty value.
	Values         []string `json:"values"`
	Errors         int      `json:"errors"`
	MeanConfidence float64  `json:"mean_confidence"`
	TotalMs        int64    `json:"total_ms"`
}

// Agreement is the fraction of inputs on which two implementations produced
// the same canonical value.
type Agreement struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	Fraction float64 `json:"fraction"`
}

// Report is the outcome of one stage evaluation.
type Report struct {
	Stage       domain.StageName `json:"stage"`
	InputCount  int              `json:"input_count"`
	Runs        []Run            `json:"runs"`
	Agreements  []Agreement      `json:"agreements"`
	EvaluatedAt time.Time        `json:"evaluated_at"`
}

// CompareStage runs every available implementation of one stage over the
// given texts. Texts are treated as already-English for the post-translation
// stages and as raw input for language detection and translation.
func CompareStage(ctx context.Context, snap *registry.Snapshot, name domain.StageName, texts []string) (*Report, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("evaluation: no input texts")
	}

	var available []registry.Descriptor
	for _, d := range snap.Descriptors(name) {
		if d.Available && !d.Neutral {
			available = append(available, d)
		}
	}
	if len(available) < 2 {
		return nil, fmt.Errorf("evaluation: stage %s has %d available implementation(s), need at least 2", name, len(available))
	}

	report := &Report{
		Stage:       name,
		InputCount:  len(texts),
		Runs:        make([]Run, 0, len(available)),
		EvaluatedAt: time.Now().UTC(),
	}

	for _, desc := range available {
		run := Run{
			ImplementationID: desc.ImplementationID,
			Values:           make([]string, len(texts)),
		}
		start := time.Now()
		confSum := 0.0
		confCount := 0
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			in := stage.Input{RawText: text, EnglishText: text}
			out, err := desc.Analyzer().Analyze(ctx, in)
			if err != nil {
				run.Errors++
				continue
			}
			run.Values[i] = canonicalValue(name, out)
			confSum += out.Confidence
			confCount++
		}
		run.TotalMs = time.Since(start).Milliseconds()
		if confCount > 0 {
			run.MeanConfidence = confSum / float64(confCount)
		}
		report.Runs = append(report.Runs, run)
	}

	for i := 0; i < len(report.Runs); i++ {
		for j := i + 1; j < len(report.Runs); j++ {
			report.Agreements = append(report.Agreements, Agreement{
				A:        report.Runs[i].ImplementationID,
				B:        report.Runs[j].ImplementationID,
				Fraction: agreement(report.Runs[i].Values, report.Runs[j].Values),
			})
		}
	}
	return report, nil
}

// canonicalValue reduces a stage output to the single comparable value that
// defines agreement for that stage.
func canonicalValue(name domain.StageName, out stage.Output) string {
	switch name {
	case domain.StageLanguage:
		return out.Language
	case domain.StageTranslation:
		return strings.ToLower(strings.TrimSpace(out.Translated))
	case domain.StageSentiment:
		if out.Sentiment != nil {
			return out.Sentiment.Label
		}
	case domain.StageEvent:
		if out.Event != nil {
			return out.Event.Category
		}
	case domain.StageLocation:
		names := make([]string, 0, len(out.Locations))
		for _, loc := range out.Locations {
			names = append(names, strings.ToLower(loc.Name))
		}
		sort.Strings(names)
		return strings.Join(names, ",")
	}
	return ""
}

// agreement counts matching positions where both runs produced a value.
// Positions where either run failed do not count against agreement.
func agreement(a, b []string) float64 {
	matched, counted := 0, 0
	for i := range a {
		if a[i] == "" || b[i] == "" {
			continue
		}
		counted++
		if a[i] == b[i] {
			matched++
		}
	}
	if counted == 0 {
		return 0
	}
	return float64(matched) / float64(counted)
}
