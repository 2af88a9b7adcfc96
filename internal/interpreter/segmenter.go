package interpreter

import "strings"

// segmentBreak never survives strings.Fields as part of a word.
const segmentBreak = "\x1f"

// Segment splits an utterance into candidate commands.
//
// Configured delimiters always break. A standalone quantity token also starts
// a new segment, so "two tacos three burritos" yields two segments. A
// quantity used for anything else ("one of those") can split a phrase; that
// false split is accepted. Number words written apart ("twenty one") count
// as one quantity. Empty segments are dropped.
func (in *Interpreter) Segment(utterance string) []string {
	marked := in.delimiters.ReplaceAllString(in.Simplify(utterance), " "+segmentBreak+" ")

	var (
		segments []string
		current  []string
	)
	flush := func() {
		if len(current) > 0 {
			segments = append(segments, strings.Join(current, " "))
			current = nil
		}
	}

	for _, field := range in.joinNumberWords(strings.Fields(marked)) {
		if field == segmentBreak {
			flush()
			continue
		}
		if in.lexicon.IsQuantity(field) {
			flush()
		}
		current = append(current, field)
	}
	flush()

	return segments
}

// joinNumberWords rewrites "twenty one" as "twenty-one" so the pair is read
// as one quantity.
func (in *Interpreter) joinNumberWords(fields []string) []string {
	out := make([]string, 0, len(fields))
	for i := 0; i < len(fields); i++ {
		if i+1 < len(fields) {
			if joined, ok := in.lexicon.compound(fields[i], fields[i+1]); ok {
				out = append(out, joined)
				i++
				continue
			}
		}
		out = append(out, fields[i])
	}
	return out
}
