// Package ledger holds the running order of one conversation.
package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"cantina/internal/interpreter"
	"cantina/internal/models"
)

// Line is one composite-key entry of the order.
type Line struct {
	Key           string                     `json:"key"`
	Item          models.MenuItem            `json:"item"`
	Size          string                     `json:"size,omitempty"`
	Modifications []interpreter.Modification `json:"modifications,omitempty"`
	Quantity      int                        `json:"quantity"`
}

// Subtotal is the line quantity times the item price.
func (l Line) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Ledger is an insertion-ordered set of order lines with a running total.
// It is not safe for concurrent use; the owning session serialises access.
type Ledger struct {
	keys  []string
	lines map[string]*Line
	total decimal.Decimal
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{lines: make(map[string]*Line)}
}

// Key builds the composite line key: the capitalised size prefix for drinks,
// the item name, and the parenthesised modification summary when there is
// one. The "No modifications." sentinel never appears in a key.
func Key(name, size string, mods []interpreter.Modification) string {
	return describe(name, size, mods, false)
}

func describe(name, size string, mods []interpreter.Modification, plural bool) string {
	var b strings.Builder
	if size != "" {
		b.WriteString(strings.ToUpper(size[:1]) + size[1:])
		b.WriteByte(' ')
	}
	b.WriteString(name)
	if plural {
		b.WriteByte('s')
	}
	if len(mods) > 0 {
		b.WriteString(" (")
		b.WriteString(interpreter.RenderModifications(mods))
		b.WriteByte(')')
	}
	return b.String()
}

// Add increases the line for item by quantity, creating it at the end of the
// order if absent. Non-positive quantities are ignored.
func (l *Ledger) Add(item models.MenuItem, size string, mods []interpreter.Modification, quantity int) Line {
	key := Key(item.Name, size, mods)
	if quantity < 1 {
		if line, ok := l.lines[key]; ok {
			return *line
		}
		return Line{Key: key, Item: item, Size: size, Modifications: mods}
	}

	line, ok := l.lines[key]
	if !ok {
		line = &Line{Key: key, Item: item, Size: size, Modifications: mods}
		l.lines[key] = line
		l.keys = append(l.keys, key)
	}
	line.Quantity += quantity
	l.total = l.total.Add(line.Item.Price.Mul(decimal.NewFromInt(int64(quantity))))
	return *line
}

// Remove decreases the line for item by at most quantity and returns how many
// units were actually removed. A line that reaches zero is deleted; re-adding
// it later places it at the end of the order.
func (l *Ledger) Remove(item models.MenuItem, size string, mods []interpreter.Modification, quantity int) int {
	key := Key(item.Name, size, mods)
	line, ok := l.lines[key]
	if !ok || quantity < 1 {
		return 0
	}

	removed := quantity
	if removed > line.Quantity {
		removed = line.Quantity
	}
	line.Quantity -= removed
	l.total = l.total.Sub(line.Item.Price.Mul(decimal.NewFromInt(int64(removed))))

	if line.Quantity == 0 {
		l.delete(key)
	}
	if l.total.IsNegative() {
		l.total = decimal.Zero
	}
	return removed
}

func (l *Ledger) delete(key string) {
	delete(l.lines, key)
	for i, k := range l.keys {
		if k == key {
			l.keys = append(l.keys[:i], l.keys[i+1:]...)
			return
		}
	}
}

// Quantity returns the quantity of the line with the given key, or 0.
func (l *Ledger) Quantity(key string) int {
	if line, ok := l.lines[key]; ok {
		return line.Quantity
	}
	return 0
}

// Lines returns copies of the order lines in insertion order.
func (l *Ledger) Lines() []Line {
	out := make([]Line, 0, len(l.keys))
	for _, k := range l.keys {
		out = append(out, *l.lines[k])
	}
	return out
}

// Len is the number of distinct lines.
func (l *Ledger) Len() int {
	return len(l.keys)
}

// IsEmpty reports whether the order has no lines.
func (l *Ledger) IsEmpty() bool {
	return len(l.keys) == 0
}

// Total is the running order total.
func (l *Ledger) Total() decimal.Decimal {
	return l.total
}

// Clear drops every line and resets the total to zero.
func (l *Ledger) Clear() {
	l.keys = nil
	l.lines = make(map[string]*Line)
	l.total = decimal.Zero
}

// Summary renders the order as "{qty} x {key}" lines separated by blank lines.
func (l *Ledger) Summary() string {
	parts := make([]string, 0, len(l.keys))
	for _, line := range l.Lines() {
		parts = append(parts, formatLine(line))
	}
	return strings.Join(parts, "\n\n")
}

func formatLine(line Line) string {
	return fmt.Sprintf("%d x %s", line.Quantity, line.Key)
}
