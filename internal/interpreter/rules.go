package interpreter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Intent is the classified purpose of an utterance
type Intent string

const (
	IntentAddItem        Intent = "add_item"
	IntentRemoveItem     Intent = "remove_item"
	IntentGetPrice       Intent = "get_price"
	IntentGetDescription Intent = "get_description"
	IntentGetTacos       Intent = "get_tacos"
	IntentGetBurritos    Intent = "get_burritos"
	IntentGetNachos      Intent = "get_nachos"
	IntentGetBowls       Intent = "get_bowls"
	IntentGetSides       Intent = "get_sides"
	IntentGetDrinks      Intent = "get_drinks"
	IntentGetSauces      Intent = "get_sauces"
	IntentGetDairy       Intent = "get_dairy"
	IntentGetGlutenFree  Intent = "get_gluten_free"
	IntentGetMenu        Intent = "get_menu"
	IntentAskQuestion    Intent = "ask_question"
	IntentViewOrder      Intent = "view_order"
	IntentCompleteOrder  Intent = "complete_order"
	IntentCancelOrder    Intent = "cancel_order"
	IntentUnknown        Intent = "unknown"
)

var knownIntents = map[Intent]bool{
	IntentAddItem: true, IntentRemoveItem: true, IntentGetPrice: true, IntentGetDescription: true,
	IntentGetTacos: true, IntentGetBurritos: true, IntentGetNachos: true, IntentGetBowls: true,
	IntentGetSides: true, IntentGetDrinks: true, IntentGetSauces: true, IntentGetDairy: true,
	IntentGetGlutenFree: true, IntentGetMenu: true, IntentAskQuestion: true, IntentViewOrder: true,
	IntentCompleteOrder: true, IntentCancelOrder: true,
}

// IsOrderIntent reports whether the intent runs the command pipeline.
func (i Intent) IsOrderIntent() bool {
	return i == IntentAddItem || i == IntentRemoveItem
}

// IntentRule maps a keyword table to an intent. Rules are scanned in slice order.
type IntentRule struct {
	Intent   Intent   `yaml:"intent"`
	Keywords []string `yaml:"keywords"`
}

// ModificationRules lists the trigger words of each directive family.
type ModificationRules struct {
	Remove         []string `yaml:"remove"`
	Add            []string `yaml:"add"`
	Substitute     []string `yaml:"substitute"`
	SubstituteJoin []string `yaml:"substitute_join"`
}

// Rules is the externally configurable rule table of the interpreter.
type Rules struct {
	Intents       []IntentRule      `yaml:"intents"`
	Delimiters    []string          `yaml:"delimiters"`
	Sizes         []string          `yaml:"sizes"`
	DefaultSize   string            `yaml:"default_size"`
	Modifications ModificationRules `yaml:"modifications"`
	Contractions  map[string]string `yaml:"contractions"`
}

// ValidationError describes an invalid rule table entry
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// DefaultRules returns the built-in rule table.
//
// Declaration order is the tie-break: cancel and checkout are checked before
// the order verbs, and the order verbs before the menu categories, so
// "I want two tacos" is an add and "cancel my order" is a cancel.
func DefaultRules() Rules {
	return Rules{
		Intents: []IntentRule{
			{Intent: IntentCancelOrder, Keywords: []string{"cancel", "nevermind", "scrap"}},
			{Intent: IntentCompleteOrder, Keywords: []string{"done", "finish", "finished", "complete", "checkout", "pay"}},
			{Intent: IntentGetMenu, Keywords: []string{"menu"}},
			{Intent: IntentRemoveItem, Keywords: []string{"remove", "delete", "drop", "minus", "subtract"}},
			{Intent: IntentAddItem, Keywords: []string{"add", "want", "get", "have", "like", "take", "need", "give", "plus", "gimme"}},
			{Intent: IntentViewOrder, Keywords: []string{"view", "review", "cart", "total", "receipt", "current"}},
			{Intent: IntentGetPrice, Keywords: []string{"price", "prices", "cost", "costs", "much"}},
			{Intent: IntentGetDescription, Keywords: []string{"describe", "description", "ingredients", "contain", "contains", "made"}},
			{Intent: IntentGetTacos, Keywords: []string{"taco", "tacos"}},
			{Intent: IntentGetBurritos, Keywords: []string{"burrito", "burritos"}},
			{Intent: IntentGetNachos, Keywords: []string{"nacho", "nachos"}},
			{Intent: IntentGetBowls, Keywords: []string{"bowl", "bowls", "salad", "salads"}},
			{Intent: IntentGetSides, Keywords: []string{"side", "sides", "snack", "snacks"}},
			{Intent: IntentGetDrinks, Keywords: []string{"drink", "drinks", "beverage", "beverages", "soda"}},
			{Intent: IntentGetSauces, Keywords: []string{"sauce", "sauces"}},
			{Intent: IntentGetDairy, Keywords: []string{"dairy", "lactose"}},
			{Intent: IntentGetGlutenFree, Keywords: []string{"gluten", "gluten-free", "celiac"}},
			{Intent: IntentAskQuestion, Keywords: []string{"what", "why", "how", "when", "where", "who", "which", "hours", "open"}},
		},
		Delimiters:  []string{",", "and", ";", "&"},
		Sizes:       []string{"small", "medium", "large"},
		DefaultSize: "medium",
		Modifications: ModificationRules{
			Remove:         []string{"no", "without"},
			Add:            []string{"extra", "additional", "more"},
			Substitute:     []string{"substitute", "swap", "replace"},
			SubstituteJoin: []string{"with"},
		},
		Contractions: map[string]string{
			"what's":  "what is",
			"i'd":     "i would",
			"i'll":    "i will",
			"i'm":     "i am",
			"can't":   "can not",
			"don't":   "do not",
			"that's":  "that is",
			"how's":   "how is",
			"where's": "where is",
			"gimme":   "give me",
		},
	}
}

// LoadRules reads a rule table from a YAML file and validates it.
func LoadRules(path string) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

// Validate checks that every keyword maps to exactly one known intent and
// that the size and modification tables are usable.
func (r Rules) Validate() error {
	if len(r.Intents) == 0 {
		return ValidationError{Field: "intents", Message: "at least one intent rule is required"}
	}

	seenIntent := make(map[Intent]bool)
	owner := make(map[string]Intent)
	for i, rule := range r.Intents {
		field := fmt.Sprintf("intents[%d]", i)
		if !knownIntents[rule.Intent] {
			return ValidationError{Field: field + ".intent", Message: fmt.Sprintf("unknown intent %q", rule.Intent)}
		}
		if seenIntent[rule.Intent] {
			return ValidationError{Field: field + ".intent", Message: fmt.Sprintf("intent %q declared twice", rule.Intent)}
		}
		seenIntent[rule.Intent] = true

		if len(rule.Keywords) == 0 {
			return ValidationError{Field: field + ".keywords", Message: "must not be empty"}
		}
		for _, kw := range rule.Keywords {
			toks := Tokenize(kw)
			if len(toks) != 1 || toks[0] != kw {
				return ValidationError{Field: field + ".keywords", Message: fmt.Sprintf("keyword %q must be a single lowercase token", kw)}
			}
			if prev, ok := owner[kw]; ok {
				return ValidationError{Field: field + ".keywords", Message: fmt.Sprintf("keyword %q already triggers %q", kw, prev)}
			}
			owner[kw] = rule.Intent
		}
	}

	if len(r.Delimiters) == 0 {
		return ValidationError{Field: "delimiters", Message: "must not be empty"}
	}
	if len(r.Sizes) == 0 {
		return ValidationError{Field: "sizes", Message: "must not be empty"}
	}
	defaultListed := false
	for _, s := range r.Sizes {
		if s == r.DefaultSize {
			defaultListed = true
		}
	}
	if !defaultListed {
		return ValidationError{Field: "default_size", Message: fmt.Sprintf("%q is not one of the sizes", r.DefaultSize)}
	}

	m := r.Modifications
	if len(m.Remove) == 0 || len(m.Add) == 0 || len(m.Substitute) == 0 || len(m.SubstituteJoin) == 0 {
		return ValidationError{Field: "modifications", Message: "every directive family needs trigger words"}
	}
	return nil
}

// keywords returns the keyword set of the given intent.
func (r Rules) keywords(intent Intent) map[string]struct{} {
	set := make(map[string]struct{})
	for _, rule := range r.Intents {
		if rule.Intent == intent {
			for _, kw := range rule.Keywords {
				set[kw] = struct{}{}
			}
		}
	}
	return set
}
