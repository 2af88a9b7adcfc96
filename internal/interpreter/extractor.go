package interpreter

import (
	"strings"

	"cantina/internal/models"
)

// Command is one resolved order operation. A nil Item means the segment named
// nothing on the menu.
type Command struct {
	Intent        Intent           `json:"intent"`
	Item          *models.MenuItem `json:"item,omitempty"`
	Quantity      int              `json:"quantity"`
	Modifications []Modification   `json:"modifications,omitempty"`
	Size          string           `json:"size,omitempty"`
}

// Recognized reports whether the command resolved to a menu item.
func (c Command) Recognized() bool {
	return c.Item != nil
}

// Extract resolves one segment into at most one Command and returns the
// intent to carry into the next segment.
//
// An add or remove keyword overrides the carried intent and is left out of the
// item text. A segment that overrides the intent but names no item is only an
// intent marker ("and remove") and yields no command.
func (in *Interpreter) Extract(segment string, carried Intent, catalog []models.MenuItem) (*Command, Intent) {
	intent := carried
	overridden := false

	var rest []string
	for _, field := range strings.Fields(strings.ToLower(segment)) {
		tok := strings.Trim(field, `,.!?;:"()`)
		if tok == "" {
			continue
		}
		if _, ok := in.addWords[tok]; ok {
			if !overridden {
				intent, overridden = IntentAddItem, true
			}
			continue
		}
		if _, ok := in.removeWords[tok]; ok {
			if !overridden {
				intent, overridden = IntentRemoveItem, true
			}
			continue
		}
		rest = append(rest, tok)
	}

	quantity, at := in.adjacentQuantity(rest)
	if at >= 0 {
		rest = append(rest[:at:at], rest[at+1:]...)
	}

	item := FindItem(strings.Join(rest, " "), catalog)
	if item == nil {
		if overridden {
			return nil, intent
		}
		return &Command{Intent: intent, Quantity: quantity}, intent
	}

	cmd := &Command{
		Intent:        intent,
		Item:          item,
		Quantity:      quantity,
		Modifications: in.DetectModifications(segment, *item),
	}
	if item.IsDrink() {
		cmd.Size = in.detectSize(rest)
	}
	return cmd, intent
}

// adjacentQuantity reads the quantity from the token directly before the item
// phrase (the first token) or, failing that, directly after it (the last).
// Number words are checked before digit runs. It returns 1 and -1 when
// neither end holds a quantity.
func (in *Interpreter) adjacentQuantity(tokens []string) (int, int) {
	if len(tokens) == 0 {
		return 1, -1
	}
	ends := []int{0, len(tokens) - 1}
	for _, i := range ends {
		if n, ok := in.lexicon.Value(tokens[i]); ok {
			return n, i
		}
	}
	for _, i := range ends {
		if n, ok := digitQuantity(tokens[i]); ok {
			return n, i
		}
	}
	return 1, -1
}

func (in *Interpreter) detectSize(tokens []string) string {
	for _, tok := range tokens {
		if _, ok := in.sizes[tok]; ok {
			return tok
		}
	}
	return in.defaultSize
}

// FindItem returns a copy of the first catalog item, in catalog order, whose
// lowercase name occurs in text. It returns nil when nothing matches.
func FindItem(text string, catalog []models.MenuItem) *models.MenuItem {
	text = strings.ToLower(text)
	for i := range catalog {
		name := strings.ToLower(strings.TrimSpace(catalog[i].Name))
		if name != "" && strings.Contains(text, name) {
			item := catalog[i]
			return &item
		}
	}
	return nil
}
