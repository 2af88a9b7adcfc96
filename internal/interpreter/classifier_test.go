package interpreter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	in := Default()

	tests := []struct {
		utterance string
		want      Intent
	}{
		{"I want two crunchy tacos", IntentAddItem},
		{"cancel my order", IntentCancelOrder},
		{"please remove the burrito", IntentRemoveItem},
		{"how much is the horchata", IntentGetPrice},
		{"What's on the menu?", IntentGetMenu},
		{"what drinks are there", IntentGetDrinks},
		{"I'm done", IntentCompleteOrder},
		{"Let's view my cart", IntentViewOrder},
		{"describe the bean burrito", IntentGetDescription},
		{"show me the tacos", IntentGetTacos},
		{"which sauces are spicy", IntentGetSauces},
		{"anything gluten-free?", IntentGetGlutenFree},
		{"what are your hours", IntentAskQuestion},
		{"hello there", IntentUnknown},
		{"", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, in.Classify(tt.utterance))
		})
	}
}

func TestClassify_TableOrderBeatsTokenOrder(t *testing.T) {
	in := Default()

	// "tacos" comes first but cancel_order is declared before get_tacos
	assert.Equal(t, IntentCancelOrder, in.Classify("two tacos, and cancel"))
	// "have" is an add keyword, so this question is an add; accepted false positive
	assert.Equal(t, IntentAddItem, in.Classify("what drinks do you have"))
}

func TestClassifyTokens_CustomOrder(t *testing.T) {
	rules := DefaultRules()
	// move ask_question to the front
	last := rules.Intents[len(rules.Intents)-1]
	rules.Intents = append([]IntentRule{last}, rules.Intents[:len(rules.Intents)-1]...)
	in := MustNew(rules)

	assert.Equal(t, IntentAskQuestion, in.ClassifyTokens([]string{"how", "much"}))
	assert.Equal(t, IntentGetPrice, Default().ClassifyTokens([]string{"how", "much"}))
}
