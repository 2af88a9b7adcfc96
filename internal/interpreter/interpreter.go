// Package interpreter turns free-text customer utterances into structured
// order commands.
//
// The pipeline is: simplify the utterance, classify its intent, split it into
// segments, then extract one Command per segment against the menu catalog.
// Every stage is driven by an ordered rule table so results are
// deterministic and the table can be swapped at runtime.
package interpreter

import (
	"fmt"
	"regexp"
	"strings"

	"cantina/internal/models"
)

// Interpreter is a compiled rule table. It holds no per-conversation state
// and is safe for concurrent use.
type Interpreter struct {
	lexicon     *Lexicon
	simplifier  *simplifier
	tables      []intentTable
	addWords    map[string]struct{}
	removeWords map[string]struct{}
	delimiters  *regexp.Regexp
	sizes       map[string]struct{}
	defaultSize string
	modPatterns []modPattern
}

type intentTable struct {
	intent   Intent
	keywords map[string]struct{}
}

// New compiles a validated rule table.
func New(rules Rules) (*Interpreter, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}

	in := &Interpreter{
		lexicon:     NewLexicon(),
		simplifier:  newSimplifier(rules.Contractions),
		addWords:    rules.keywords(IntentAddItem),
		removeWords: rules.keywords(IntentRemoveItem),
		sizes:       make(map[string]struct{}, len(rules.Sizes)),
		defaultSize: rules.DefaultSize,
		modPatterns: compileModPatterns(rules.Modifications),
	}

	for _, rule := range rules.Intents {
		t := intentTable{intent: rule.Intent, keywords: make(map[string]struct{}, len(rule.Keywords))}
		for _, kw := range rule.Keywords {
			t.keywords[kw] = struct{}{}
		}
		in.tables = append(in.tables, t)
	}

	for _, s := range rules.Sizes {
		s = strings.ToLower(s)
		in.sizes[s] = struct{}{}
	}

	parts := make([]string, 0, len(rules.Delimiters))
	for _, d := range rules.Delimiters {
		q := regexp.QuoteMeta(strings.ToLower(d))
		if isWord(d) {
			q = `\b` + q + `\b`
		}
		parts = append(parts, q)
	}
	in.delimiters = regexp.MustCompile(`\s*(?:` + strings.Join(parts, "|") + `)\s*`)

	return in, nil
}

// MustNew is New for rule tables known to be valid.
func MustNew(rules Rules) *Interpreter {
	in, err := New(rules)
	if err != nil {
		panic(err)
	}
	return in
}

// Default compiles DefaultRules.
func Default() *Interpreter {
	return MustNew(DefaultRules())
}

// Simplify normalises an utterance the same way Parse and Classify do.
func (in *Interpreter) Simplify(utterance string) string {
	return in.simplifier.Simplify(utterance)
}

// Parse runs segmentation and extraction over an utterance. The first
// segment's intent defaults to add_item; an add or remove keyword in any
// segment carries over to the segments after it.
func (in *Interpreter) Parse(utterance string, catalog []models.MenuItem) []Command {
	intent := IntentAddItem
	var commands []Command
	for _, segment := range in.Segment(utterance) {
		var cmd *Command
		cmd, intent = in.Extract(segment, intent, catalog)
		if cmd != nil {
			commands = append(commands, *cmd)
		}
	}
	return commands
}

// ImpliedOrder parses an utterance that carries no order verb, such as
// "2 crunchy tacos and 3 bean burritos". It returns the commands only when
// the utterance states a quantity and names at least one catalog item, and
// nil otherwise, so "show me the tacos" stays a listing.
func (in *Interpreter) ImpliedOrder(utterance string, catalog []models.MenuItem) []Command {
	quantified := false
	for _, tok := range Tokenize(in.Simplify(utterance)) {
		if in.lexicon.IsQuantity(tok) {
			quantified = true
			break
		}
	}
	if !quantified {
		return nil
	}

	commands := in.Parse(utterance, catalog)
	for _, cmd := range commands {
		if cmd.Recognized() {
			return commands
		}
	}
	return nil
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
