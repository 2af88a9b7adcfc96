package ledger

import (
	"fmt"
	"strings"

	"cantina/internal/interpreter"
)

// UnrecognizedItem is reported for a command that names nothing on the menu.
const UnrecognizedItem = "An item in the user's order could not be recognized."

// Result is the outcome of applying one command.
type Result struct {
	Command  interpreter.Command `json:"command"`
	Key      string              `json:"key,omitempty"`
	Applied  int                 `json:"applied"`
	Sentence string              `json:"sentence"`
}

// Apply runs commands against the ledger in order and returns the situational
// summary: one sentence per command joined by a single space.
func Apply(l *Ledger, commands []interpreter.Command) (string, []Result) {
	results := make([]Result, 0, len(commands))
	sentences := make([]string, 0, len(commands))
	for _, cmd := range commands {
		res := applyOne(l, cmd)
		results = append(results, res)
		sentences = append(sentences, res.Sentence)
	}
	return strings.Join(sentences, " "), results
}

func applyOne(l *Ledger, cmd interpreter.Command) Result {
	if cmd.Item == nil {
		return Result{Command: cmd, Sentence: UnrecognizedItem}
	}

	item := *cmd.Item
	res := Result{Command: cmd, Key: Key(item.Name, cmd.Size, cmd.Modifications)}

	switch cmd.Intent {
	case interpreter.IntentRemoveItem:
		res.Applied = l.Remove(item, cmd.Size, cmd.Modifications, cmd.Quantity)
		if res.Applied == 0 {
			res.Sentence = fmt.Sprintf("%s was not in your order.", describe(item.Name, cmd.Size, cmd.Modifications, false))
			break
		}
		res.Sentence = sentence(res.Applied, item.Name, cmd, "removed from")
	default:
		l.Add(item, cmd.Size, cmd.Modifications, cmd.Quantity)
		res.Applied = cmd.Quantity
		res.Sentence = sentence(res.Applied, item.Name, cmd, "added to")
	}
	return res
}

// sentence reads "2 Crunchy Tacos (no cheese) have been added to your order."
// The count decides both pluralisation and the verb.
func sentence(n int, name string, cmd interpreter.Command, action string) string {
	verb := "has"
	if n != 1 {
		verb = "have"
	}
	return fmt.Sprintf("%d %s %s been %s your order.", n, describe(name, cmd.Size, cmd.Modifications, n != 1), verb, action)
}
