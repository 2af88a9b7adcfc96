package interpreter

import (
	"regexp"
	"sort"
	"strings"

	"cantina/internal/models"
)

// ModificationKind is the family of a modification directive
type ModificationKind string

const (
	ModRemove     ModificationKind = "remove"
	ModAdd        ModificationKind = "add"
	ModSubstitute ModificationKind = "substitute"
)

// NoModifications is the rendering of an empty modification list.
const NoModifications = "No modifications."

// Modification is a single customisation of a menu item
type Modification struct {
	Kind        ModificationKind `json:"kind"`
	Ingredient  string           `json:"ingredient"`
	Replacement string           `json:"replacement,omitempty"`
}

func (m Modification) String() string {
	switch m.Kind {
	case ModRemove:
		return "no " + m.Ingredient
	case ModAdd:
		return "extra " + m.Ingredient
	case ModSubstitute:
		return "substitute " + m.Ingredient + " with " + m.Replacement
	}
	return ""
}

// RenderModifications joins directives in order. Equal lists render to equal
// strings, which is what order line keys rely on.
func RenderModifications(mods []Modification) string {
	if len(mods) == 0 {
		return NoModifications
	}
	parts := make([]string, len(mods))
	for i, m := range mods {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}

type modPattern struct {
	kind ModificationKind
	re   *regexp.Regexp
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
	}
	return `(?:` + strings.Join(quoted, "|") + `)`
}

func compileModPatterns(rules ModificationRules) []modPattern {
	const word = `([a-z][a-z'-]*)`
	return []modPattern{
		{kind: ModRemove, re: regexp.MustCompile(`\b` + alternation(rules.Remove) + `\s+` + word)},
		{kind: ModAdd, re: regexp.MustCompile(`\b` + alternation(rules.Add) + `\s+` + word)},
		{kind: ModSubstitute, re: regexp.MustCompile(`\b` + alternation(rules.Substitute) + `\s+` + word +
			`\s+` + alternation(rules.SubstituteJoin) + `\s+` + word)},
	}
}

type positioned struct {
	at  int
	mod Modification
}

// DetectModifications scans text for directives applicable to item.
// Removals and substitutions must name one of the item's ingredients;
// additions must name something the item does not already contain and that
// is not a size ("extra large" is a size).
func (in *Interpreter) DetectModifications(text string, item models.MenuItem) []Modification {
	text = strings.ToLower(text)

	var found []positioned
	for _, p := range in.modPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			target := text[m[2]:m[3]]
			var mod Modification
			switch p.kind {
			case ModRemove:
				if !item.HasIngredient(target) {
					continue
				}
				mod = Modification{Kind: ModRemove, Ingredient: target}
			case ModAdd:
				if _, isSize := in.sizes[target]; isSize || item.HasIngredient(target) {
					continue
				}
				mod = Modification{Kind: ModAdd, Ingredient: target}
			case ModSubstitute:
				if !item.HasIngredient(target) {
					continue
				}
				mod = Modification{Kind: ModSubstitute, Ingredient: target, Replacement: text[m[4]:m[5]]}
			}
			found = append(found, positioned{at: m[0], mod: mod})
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].at < found[j].at })

	var mods []Modification
	seen := make(map[Modification]bool)
	for _, f := range found {
		if seen[f.mod] {
			continue
		}
		seen[f.mod] = true
		mods = append(mods, f.mod)
	}
	return mods
}
