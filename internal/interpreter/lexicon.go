package interpreter

import (
	"strconv"
	"strings"
)

var (
	unitWords = []string{
		"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
		"eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen",
	}
	tensWords = []string{"twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}
)

// Lexicon maps number words ("one" through "ninety-nine") to integers and back.
type Lexicon struct {
	values map[string]int
	words  map[int]string
}

// NewLexicon builds the static number word table. Compound numbers are
// hyphenated ("twenty-one").
func NewLexicon() *Lexicon {
	l := &Lexicon{
		values: make(map[string]int, 99),
		words:  make(map[int]string, 99),
	}
	for i, w := range unitWords {
		l.add(w, i+1)
	}
	for i, tens := range tensWords {
		base := 20 + 10*i
		l.add(tens, base)
		for u := 1; u <= 9; u++ {
			l.add(tens+"-"+unitWords[u-1], base+u)
		}
	}
	return l
}

func (l *Lexicon) add(word string, n int) {
	l.values[word] = n
	l.words[n] = word
}

// Value returns the integer for a number word.
func (l *Lexicon) Value(word string) (int, bool) {
	n, ok := l.values[strings.ToLower(word)]
	return n, ok
}

// Word returns the number word for n in [1, 99].
func (l *Lexicon) Word(n int) (string, bool) {
	w, ok := l.words[n]
	return w, ok
}

// compound joins a tens word and a unit word written apart ("twenty",
// "one") into the hyphenated form the table holds.
func (l *Lexicon) compound(tens, unit string) (string, bool) {
	t, ok := l.Value(tens)
	if !ok || t < 20 || t%10 != 0 {
		return "", false
	}
	u, ok := l.Value(unit)
	if !ok || u > 9 {
		return "", false
	}
	return l.Word(t + u)
}

// IsNumberWord reports whether token is a number word.
func (l *Lexicon) IsNumberWord(token string) bool {
	_, ok := l.Value(token)
	return ok
}

// digitQuantity parses a positive digit run. Zero, signs and overflow are
// not quantities.
func digitQuantity(token string) (int, bool) {
	if token == "" {
		return 0, false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// IsQuantity reports whether token is a number word or a positive digit run.
func (l *Lexicon) IsQuantity(token string) bool {
	if l.IsNumberWord(token) {
		return true
	}
	_, ok := digitQuantity(token)
	return ok
}
