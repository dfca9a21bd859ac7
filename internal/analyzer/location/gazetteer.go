// Package location provides location extraction implementations.
package location

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/crisislens/analyzer/internal/domain"
	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/stage"
)

// ImplementationGazetteer is the embedded gazetteer matcher.
const ImplementationGazetteer = "gazetteer"

// Confidence by best specificity found.
const (
	cityConfidence    = 0.9
	stateConfidence   = 0.75
	countryConfidence = 0.6
)

var titleCaser = cases.Title(language.English)

// Gazetteer finds known place names with a single automaton pass and orders
// them by first appearance in the text.
type Gazetteer struct {
	matcher *ahocorasick.Matcher
	names   []string // padded with spaces, automaton order
	plain   []string // unpadded lowercase names
	logger  logging.Logger
}

// NewGazetteer creates an unloaded gazetteer analyzer.
func NewGazetteer(logger logging.Logger) *Gazetteer {
	return &Gazetteer{logger: logger}
}

// ID implements stage.Analyzer.
func (g *Gazetteer) ID() string { return ImplementationGazetteer }

// Stage implements stage.Analyzer.
func (g *Gazetteer) Stage() domain.StageName { return domain.StageLocation }

// Probe builds the automaton over all gazetteer entries.
func (g *Gazetteer) Probe(context.Context) error {
	if g.matcher != nil {
		return nil
	}

	names := make([]string, 0, len(gazetteerCities)+len(gazetteerStates)+len(gazetteerCountries))
	for city := range gazetteerCities {
		names = append(names, city)
	}
	for state := range gazetteerStates {
		names = append(names, state)
	}
	for country := range gazetteerCountries {
		names = append(names, country)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return fmt.Errorf("%w: empty gazetteer", stage.ErrUnavailable)
	}

	padded := make([]string, len(names))
	for i, n := range names {
		padded[i] = " " + n + " "
	}

	g.plain = names
	g.names = padded
	g.matcher = ahocorasick.NewStringMatcher(padded)
	return nil
}

// Analyze extracts mentioned locations, ordered by first appearance. Finding
// nothing is a real (non-degraded) empty result.
func (g *Gazetteer) Analyze(_ context.Context, in stage.Input) (stage.Output, error) {
	if g.matcher == nil {
		return stage.Output{}, fmt.Errorf("%w: gazetteer not loaded", stage.ErrUnavailable)
	}

	out := stage.Output{
		Stage:            domain.StageLocation,
		ImplementationID: ImplementationGazetteer,
		Locations:        []domain.Location{},
	}

	text := " " + normalizeText(in.EnglishText) + " "
	hits := g.matcher.Match([]byte(text))
	if len(hits) == 0 {
		return out, nil
	}

	matchedNames := make([]string, 0, len(hits))
	for _, idx := range hits {
		if idx < len(g.plain) {
			matchedNames = append(matchedNames, g.plain[idx])
		}
	}

	// "delhi" should not surface when "new delhi" matched too.
	matchedNames = dropSubmatches(matchedNames)

	type positioned struct {
		name string
		pos  int
	}
	ordered := make([]positioned, 0, len(matchedNames))
	for _, name := range matchedNames {
		pos := strings.Index(text, " "+name+" ")
		if pos < 0 {
			continue
		}
		ordered = append(ordered, positioned{name: name, pos: pos})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].pos < ordered[j].pos })

	best := 0.0
	for _, m := range ordered {
		level, _ := Level(m.name)
		out.Locations = append(out.Locations, domain.Location{
			Name:  titleCaser.String(m.name),
			Level: level,
		})
		switch level {
		case domain.LevelCity:
			best = max(best, cityConfidence)
		case domain.LevelState:
			best = max(best, stateConfidence)
		case domain.LevelCountry:
			best = max(best, countryConfidence)
		}
	}

	out.Confidence = best
	return out, nil
}

// dropSubmatches removes matched names that appear as a word sequence inside
// another matched name.
func dropSubmatches(names []string) []string {
	kept := make([]string, 0, len(names))
	for _, candidate := range names {
		contained := false
		for _, other := range names {
			if other != candidate && strings.Contains(" "+other+" ", " "+candidate+" ") {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// normalizeText lowercases and strips everything but letters, digits and
// single spaces, mirroring how gazetteer entries are stored.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastSpace := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
			lastSpace = false
		} else if !lastSpace {
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
