package stage

import (
	"context"

	"github.com/crisislens/analyzer/internal/domain"
)

// NeutralID is the implementation id of the designated fallback for every
// stage. It is always available and always produces a degraded output.
const NeutralID = "neutral"

// NeutralOutput returns the designated neutral result for a stage:
// identity translation over the original text, neutral sentiment, an "other"
// event, an empty location list, or an unknown language. The output is always
// marked degraded; errorTag records why the fallback was taken.
func NeutralOutput(name domain.StageName, in Input, errorTag string) Output {
	out := Output{
		Stage:            name,
		ImplementationID: NeutralID,
		Degraded:         true,
		ErrorTag:         errorTag,
	}

	switch name {
	case domain.StageLanguage:
		out.Language = domain.LanguageUnknown
	case domain.StageTranslation:
		out.Translated = in.RawText
	case domain.StageSentiment:
		out.Sentiment = &domain.SentimentValue{Label: domain.SentimentNeutral}
	case domain.StageEvent:
		out.Event = &domain.EventValue{Category: domain.EventOther}
	case domain.StageLocation:
		out.Locations = []domain.Location{}
	}

	return out
}

// Neutral returns the fallback analyzer for a stage. The registry appends it
// after every real candidate so selection degrades instead of failing.
func Neutral(name domain.StageName) Analyzer {
	return neutralAnalyzer{stage: name}
}

type neutralAnalyzer struct {
	stage domain.StageName
}

func (n neutralAnalyzer) ID() string              { return NeutralID }
func (n neutralAnalyzer) Stage() domain.StageName { return n.stage }

func (n neutralAnalyzer) Probe(context.Context) error { return nil }

func (n neutralAnalyzer) Analyze(_ context.Context, in Input) (Output, error) {
	return NeutralOutput(n.stage, in, ""), nil
}
