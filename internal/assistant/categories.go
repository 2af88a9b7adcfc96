package assistant

import (
	"strings"

	"cantina/internal/interpreter"
	"cantina/internal/models"
)

type category struct {
	label   string
	include func(*models.MenuItem) bool
}

func tagged(tag string) func(*models.MenuItem) bool {
	return func(item *models.MenuItem) bool { return item.HasTag(tag) }
}

var categories = map[interpreter.Intent]category{
	interpreter.IntentGetTacos:      {label: "tacos", include: tagged("taco")},
	interpreter.IntentGetBurritos:   {label: "burritos", include: tagged("burrito")},
	interpreter.IntentGetNachos:     {label: "nachos", include: tagged("nachos")},
	interpreter.IntentGetBowls:      {label: "bowls", include: tagged("bowl")},
	interpreter.IntentGetSides:      {label: "sides", include: tagged("side")},
	interpreter.IntentGetDrinks:     {label: "drinks", include: tagged(models.TagDrink)},
	interpreter.IntentGetSauces:     {label: "sauces", include: tagged("sauce")},
	interpreter.IntentGetDairy:      {label: "items containing dairy", include: tagged(models.TagDairy)},
	interpreter.IntentGetGlutenFree: {label: "gluten-free items", include: func(item *models.MenuItem) bool { return !item.HasTag(models.TagGluten) }},
}

func (c category) reply(catalog []models.MenuItem) string {
	var matched []models.MenuItem
	for i := range catalog {
		if c.include(&catalog[i]) {
			matched = append(matched, catalog[i])
		}
	}
	if len(matched) == 0 {
		return "We don't have any " + c.label + " on the menu right now."
	}
	return "Here are our " + c.label + ":\n\n" + listItems(matched)
}

// listItems renders one "{Name} - ${price} : {description}" line per item.
func listItems(items []models.MenuItem) string {
	lines := make([]string, len(items))
	for i := range items {
		lines[i] = items[i].Line()
	}
	return strings.Join(lines, "\n\n")
}
