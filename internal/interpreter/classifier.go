package interpreter

// Classify maps an utterance to exactly one intent.
//
// Tables are scanned in declaration order and, within a table, every token of
// the utterance is tested. The first table holding any token wins, so a later
// token can still win for an earlier-declared intent: "two tacos, and cancel"
// is a cancel. Utterances matching no table are IntentUnknown.
func (in *Interpreter) Classify(utterance string) Intent {
	return in.ClassifyTokens(Tokenize(in.Simplify(utterance)))
}

// ClassifyTokens is Classify over an already tokenized utterance.
func (in *Interpreter) ClassifyTokens(tokens []string) Intent {
	for _, table := range in.tables {
		for _, tok := range tokens {
			if _, ok := table.keywords[tok]; ok {
				return table.intent
			}
		}
	}
	return IntentUnknown
}
