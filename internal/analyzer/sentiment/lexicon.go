// Package sentiment provides sentiment analysis implementations.
package sentiment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/stage"
)

// ImplementationLexicon is the valence-lexicon scorer. It is the least
// capable implementation and the last fallback before neutral.
const ImplementationLexicon = "lexicon"

const (
	// positiveThreshold / negativeThreshold split the compound score into
	// labels, matching the usual lexicon convention.
	positiveThreshold = 0.05
	negativeThreshold = -0.05
	// compoundNormalizer dampens the raw valence sum into [-1, 1].
	compoundNormalizer = 15.0
	// negationWindow is how many tokens back a negation flips valence.
	negationWindow = 3
	// boosterStep is the valence increment a booster word adds.
	boosterStep = 0.293
)

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "none": true, "neither": true,
	"nobody": true, "nothing": true, "cannot": true, "cant": true, "wont": true,
	"dont": true, "didnt": true, "isnt": true, "wasnt": true, "without": true,
}

var boosters = map[string]float64{
	"very": boosterStep, "extremely": boosterStep, "really": boosterStep,
	"absolutely": boosterStep, "completely": boosterStep, "totally": boosterStep,
	"so": boosterStep, "highly": boosterStep,
	"slightly": -boosterStep, "somewhat": -boosterStep, "barely": -boosterStep,
}

// LexiconAnalyzer scores text against an embedded valence lexicon. Stateless
// after Probe; safe for concurrent invocation.
type LexiconAnalyzer struct {
	logger  logging.Logger
	lexicon map[string]float64
}

// NewLexicon creates an unloaded lexicon analyzer.
func NewLexicon(logger logging.Logger) *LexiconAnalyzer {
	return &LexiconAnalyzer{logger: logger}
}

// ID implements stage.Analyzer.
func (a *LexiconAnalyzer) ID() string { return ImplementationLexicon }

// Stage implements stage.Analyzer.
func (a *LexiconAnalyzer) Stage() domain.StageName { return domain.StageSentiment }

// Probe loads the valence lexicon.
func (a *LexiconAnalyzer) Probe(context.Context) error {
	if a.lexicon == nil {
		a.lexicon = defaultLexicon()
	}
	if len(a.lexicon) == 0 {
		return fmt.Errorf("%w: empty sentiment lexicon", stage.ErrUnavailable)
	}
	return nil
}

// Analyze scores the English text. Confidence is the strength of the
// compound score.
func (a *LexiconAnalyzer) Analyze(_ context.Context, in stage.Input) (stage.Output, error) {
	if a.lexicon == nil {
		return stage.Output{}, fmt.Errorf("%w: lexicon not loaded", stage.ErrUnavailable)
	}

	tokens := tokenize(in.EnglishText)

	var sum float64
	var positives, negatives, neutrals int
	for i, tok := range tokens {
		valence, ok := a.lexicon[tok]
		if !ok {
			if !negations[tok] {
				if _, boost := boosters[tok]; !boost {
					neutrals++
				}
			}
			continue
		}

		// Boosters directly before the word amplify or dampen it.
		for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
			if step, ok := boosters[tokens[j]]; ok {
				if valence < 0 {
					valence -= step
				} else {
					valence += step
				}
			}
		}

		// A negation within the window flips the valence.
		for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
			if negations[tokens[j]] {
				valence = -valence
				break
			}
		}

		if valence > 0 {
			positives++
		} else if valence < 0 {
			negatives++
		}
		sum += valence
	}

	compound := sum / math.Sqrt(sum*sum+compoundNormalizer)

	label := domain.SentimentNeutral
	switch {
	case compound >= positiveThreshold:
		label = domain.SentimentPositive
	case compound <= negativeThreshold:
		label = domain.SentimentNegative
	}

	total := positives + negatives + neutrals
	scores := map[string]float64{"compound": round3(compound)}
	if total > 0 {
		scores["positive"] = round3(float64(positives) / float64(total))
		scores["negative"] = round3(float64(negatives) / float64(total))
		scores["neutral"] = round3(float64(neutrals) / float64(total))
	}

	return stage.Output{
		Stage:            domain.StageSentiment,
		ImplementationID: ImplementationLexicon,
		Confidence:       round3(math.Abs(compound)),
		Sentiment: &domain.SentimentValue{
			Label:  label,
			Score:  round3(compound),
			Scores: scores,
		},
	}, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '\'')
	})
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
