package resolve

import (
	"fmt"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Match strength, strongest first. Axis scoring weighs strong matches above
// weak ones so a header row of full day names always beats a data row whose
// teacher initials happen to look like abbreviations.
const (
	matchNone int = iota
	matchFuzzy
	matchPrefix
	matchToken
	matchExact
)

const (
	// minPrefixLen guards abbreviation matching; single letters are too
	// ambiguous ("M" could be Montag or Mittwoch).
	minPrefixLen = 2
	// maxFuzzyDistance bounds the edit distance tolerated for slightly
	// garbled labels.
	maxFuzzyDistance = 2
	// minFuzzyLen keeps short tokens out of fuzzy matching entirely.
	minFuzzyLen = 4
)

// Vocabulary is the fixed, ordered set of weekday names a timetable may use.
// Order is significant: it defines output ordering. Matching is tolerant of
// case, trailing punctuation, abbreviations (unique prefixes), embedded
// dates ("Montag 12.05.") and small spelling distortions.
type Vocabulary struct {
	names   []string // canonical names as configured
	norm    []string // uppercased forms used for matching
	scanner *ahocorasick.Matcher
}

// DefaultWeekdays is the German school week.
var DefaultWeekdays = []string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag"}

// DefaultVocabulary returns the vocabulary for the German school week.
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary(DefaultWeekdays)
	if err != nil {
		// The fixed default list cannot fail validation.
		panic(err)
	}
	return v
}

// NewVocabulary builds a vocabulary from an ordered list of weekday names.
func NewVocabulary(names []string) (*Vocabulary, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("weekday vocabulary is empty")
	}
	norm := make([]string, len(names))
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		n := normalizeLabel(name)
		if n == "" {
			return nil, fmt.Errorf("weekday name %d is blank", i)
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("duplicate weekday name %q", name)
		}
		seen[n] = struct{}{}
		norm[i] = n
	}
	return &Vocabulary{
		names:   names,
		norm:    norm,
		scanner: ahocorasick.NewStringMatcher(norm),
	}, nil
}

// Size returns the number of weekdays in the vocabulary.
func (v *Vocabulary) Size() int { return len(v.names) }

// Day returns the canonical name at position i.
func (v *Vocabulary) Day(i int) string { return v.names[i] }

// Days returns the canonical names in order.
func (v *Vocabulary) Days() []string { return v.names }

// Match reports which weekday a header cell names, if any, together with the
// match strength. Candidates are tried strongest-first: whole-cell equality,
// token equality or an embedded full name, unique prefix abbreviation, then
// bounded edit distance. Ambiguous candidates (two days equally plausible)
// report no match.
func (v *Vocabulary) Match(cell string) (day int, strength int) {
	normCell := normalizeLabel(cell)
	if normCell == "" {
		return -1, matchNone
	}

	for i, n := range v.norm {
		if normCell == n {
			return i, matchExact
		}
	}

	tokens := strings.Fields(normCell)
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,:;()[]")
		for i, n := range v.norm {
			if tok == n {
				return i, matchToken
			}
		}
	}

	// Full names embedded without a delimiter ("MONTAG12.05"): one pass over
	// the whole cell against every name at once.
	if hits := v.scanner.Match([]byte(normCell)); len(hits) == 1 {
		return hits[0], matchToken
	}

	if day := v.matchPrefix(tokens); day >= 0 {
		return day, matchPrefix
	}
	if day := v.matchFuzzy(tokens); day >= 0 {
		return day, matchFuzzy
	}
	return -1, matchNone
}

// matchPrefix accepts a token that is a prefix of exactly one weekday name.
func (v *Vocabulary) matchPrefix(tokens []string) int {
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,:;()[]")
		if len(tok) < minPrefixLen {
			continue
		}
		found := -1
		for i, n := range v.norm {
			if strings.HasPrefix(n, tok) {
				if found >= 0 {
					found = -1
					break
				}
				found = i
			}
		}
		if found >= 0 {
			return found
		}
	}
	return -1
}

// matchFuzzy accepts a token within maxFuzzyDistance edits of exactly one
// weekday name.
func (v *Vocabulary) matchFuzzy(tokens []string) int {
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,:;()[]")
		if len(tok) < minFuzzyLen {
			continue
		}
		best, bestDist, ties := -1, maxFuzzyDistance+1, 0
		for i, n := range v.norm {
			d := fuzzy.LevenshteinDistance(tok, n)
			switch {
			case d < bestDist:
				best, bestDist, ties = i, d, 1
			case d == bestDist:
				ties++
			}
		}
		if best >= 0 && bestDist <= maxFuzzyDistance && ties == 1 {
			return best
		}
	}
	return -1
}

// normalizeLabel uppercases with German casing rules and collapses
// whitespace.
func normalizeLabel(s string) string {
	s = cases.Upper(language.German).String(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), " ")
}
