// Package event provides disaster event classification implementations.
// keywords.go is an Aho-Corasick keyword engine: one pass through the text
// regardless of how many categories and keywords are registered.
package event

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/stage"
)

// ImplementationKeyword is the embedded keyword classifier.
const ImplementationKeyword = "keyword"

// maxMatchedKeywords limits how many matched keywords the result carries.
const maxMatchedKeywords = 5

// Rule maps one event category to its keywords. Keywords may be multi-word
// phrases and may be in any script.
type Rule struct {
	Category string
	Keywords []string
}

// KeywordClassifier matches category keywords with a shared automaton.
// UpdateRules hot-reloads rules without restart.
type KeywordClassifier struct {
	mu       sync.RWMutex
	matcher  *ahocorasick.Matcher
	keywords []string // padded with spaces, in automaton order
	category []string // keyword index -> category
	display  []string // keyword index -> original keyword
	ranked   []string // categories in rule order, for deterministic ties
	rules    []Rule
	logger   logging.Logger
}

// NewKeyword creates a classifier with the given rules; nil means the default
// disaster rule set.
func NewKeyword(rules []Rule, logger logging.Logger) *KeywordClassifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &KeywordClassifier{rules: rules, logger: logger}
}

// ID implements stage.Analyzer.
func (c *KeywordClassifier) ID() string { return ImplementationKeyword }

// Stage implements stage.Analyzer.
func (c *KeywordClassifier) Stage() domain.StageName { return domain.StageEvent }

// Probe builds the automaton from the rules.
func (c *KeywordClassifier) Probe(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebuildLocked()
	if c.matcher == nil {
		return fmt.Errorf("%w: no event keywords to match", stage.ErrUnavailable)
	}
	return nil
}

// rebuildLocked constructs the automaton. Keywords are normalized and padded
// with spaces so "rain" cannot match inside "train"; the input text gets the
// same treatment.
func (c *KeywordClassifier) rebuildLocked() {
	c.keywords = c.keywords[:0]
	c.category = c.category[:0]
	c.display = c.display[:0]
	c.ranked = c.ranked[:0]

	seen := make(map[string]bool, len(c.rules))
	for _, rule := range c.rules {
		if !seen[rule.Category] {
			seen[rule.Category] = true
			c.ranked = append(c.ranked, rule.Category)
		}
		for _, kw := range rule.Keywords {
			normalized := normalizeText(kw)
			if normalized == "" {
				continue
			}
			c.keywords = append(c.keywords, " "+normalized+" ")
			c.category = append(c.category, rule.Category)
			c.display = append(c.display, kw)
		}
	}

	if len(c.keywords) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(c.keywords)
	} else {
		c.matcher = nil
	}
}

// UpdateRules swaps the rule set and rebuilds the automaton atomically.
func (c *KeywordClassifier) UpdateRules(rules []Rule) {
	c.mu.Lock()
	c.rules = rules
	c.rebuildLocked()
	keywordCount := len(c.keywords)
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("event keyword rules updated",
			logging.Int("rules", len(rules)),
			logging.Int("keywords", keywordCount))
	}
}

// Analyze classifies the text into a disaster event category. Confidence is
// the matched-keyword count normalized by text length, so a short post about
// a flood scores higher than a long ramble that mentions water once.
func (c *KeywordClassifier) Analyze(_ context.Context, in stage.Input) (stage.Output, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.matcher == nil {
		return stage.Output{}, fmt.Errorf("%w: keyword automaton not built", stage.ErrUnavailable)
	}

	out := stage.Output{
		Stage:            domain.StageEvent,
		ImplementationID: ImplementationKeyword,
		Event:            &domain.EventValue{Category: domain.EventOther},
	}

	text := " " + normalizeText(in.EnglishText) + " "
	words := len(strings.Fields(text))
	if words == 0 {
		return out, nil
	}

	hits := c.matcher.Match([]byte(text))
	if len(hits) == 0 {
		return out, nil
	}

	scores := make(map[string]int)
	matched := make(map[string][]string)
	for _, idx := range hits {
		if idx >= len(c.category) {
			continue
		}
		cat := c.category[idx]
		scores[cat]++
		matched[cat] = append(matched[cat], c.display[idx])
	}

	// Walk categories in rule order so a tie always resolves to the
	// earliest-registered rule; repeated analysis of the same text must
	// yield the same category.
	bestCategory, bestScore := "", 0
	for _, cat := range c.ranked {
		if score := scores[cat]; score > bestScore {
			bestCategory, bestScore = cat, score
		}
	}

	confidence := float64(bestScore) / float64(words)
	if confidence > 1 {
		confidence = 1
	}

	keywords := matched[bestCategory]
	if len(keywords) > maxMatchedKeywords {
		keywords = keywords[:maxMatchedKeywords]
	}

	out.Confidence = confidence
	out.Event = &domain.EventValue{
		Category:        bestCategory,
		Confidence:      confidence,
		MatchedKeywords: keywords,
	}
	return out, nil
}

// normalizeText lowercases and replaces everything that is not a letter or
// digit with a single space. Works for any script, so Hindi keywords match
// untranslated text too.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastSpace := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
