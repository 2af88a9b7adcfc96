package interpreter

import (
	"regexp"
	"sort"
	"strings"
)

var (
	tokenPattern    = regexp.MustCompile(`[a-z0-9]+(?:['-][a-z0-9]+)*`)
	letsPattern     = regexp.MustCompile(`(?i)\blet'?s\b`)
	sentenceEndings = regexp.MustCompile(`[.!?]+(\s|$)`)
	apostrophes     = strings.NewReplacer("’", "'", "‘", "'")
)

// Tokenize splits lowercase text into word tokens, keeping internal
// apostrophes and hyphens ("what's", "twenty-one").
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

// simplifier normalises raw utterances before classification and parsing.
type simplifier struct {
	contractions map[string]string
	pattern      *regexp.Regexp
}

func newSimplifier(contractions map[string]string) *simplifier {
	s := &simplifier{contractions: make(map[string]string, len(contractions))}
	keys := make([]string, 0, len(contractions))
	for k, v := range contractions {
		k = strings.ToLower(k)
		s.contractions[k] = v
		keys = append(keys, regexp.QuoteMeta(k))
	}
	if len(keys) > 0 {
		// longest first so alternation prefers the full contraction
		sort.Slice(keys, func(i, j int) bool {
			if len(keys[i]) != len(keys[j]) {
				return len(keys[i]) > len(keys[j])
			}
			return keys[i] < keys[j]
		})
		s.pattern = regexp.MustCompile(`\b(?:` + strings.Join(keys, "|") + `)\b`)
	}
	return s
}

// Simplify lowercases the utterance, drops "let's", expands contractions,
// strips sentence punctuation and collapses whitespace. Commas are kept
// for segmentation.
func (s *simplifier) Simplify(utterance string) string {
	text := apostrophes.Replace(utterance)
	text = letsPattern.ReplaceAllString(text, " ")
	text = strings.ToLower(text)
	if s.pattern != nil {
		text = s.pattern.ReplaceAllStringFunc(text, func(m string) string {
			return s.contractions[m]
		})
	}
	text = sentenceEndings.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}
