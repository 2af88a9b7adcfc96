package interpreter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"cantina/internal/models"
)

func TestDetectModifications(t *testing.T) {
	in := Default()
	item := models.MenuItem{
		Name:        "Crunchy Taco",
		Ingredients: models.StringSlice{"lettuce", "cheese", "beef"},
	}

	tests := []struct {
		name string
		text string
		want []Modification
	}{
		{name: "remove present", text: "no lettuce", want: []Modification{{Kind: ModRemove, Ingredient: "lettuce"}}},
		{name: "remove absent", text: "no pickles", want: nil},
		{name: "without", text: "Without Cheese", want: []Modification{{Kind: ModRemove, Ingredient: "cheese"}}},
		{name: "extra absent", text: "extra guacamole", want: []Modification{{Kind: ModAdd, Ingredient: "guacamole"}}},
		{name: "extra present", text: "extra cheese", want: nil},
		{name: "extra size", text: "an extra large taco", want: nil},
		{
			name: "substitute",
			text: "swap beef with chicken",
			want: []Modification{{Kind: ModSubstitute, Ingredient: "beef", Replacement: "chicken"}},
		},
		{name: "substitute absent", text: "replace pork with chicken", want: nil},
		{
			name: "detection order",
			text: "more salsa but without lettuce and substitute beef with beans",
			want: []Modification{
				{Kind: ModAdd, Ingredient: "salsa"},
				{Kind: ModRemove, Ingredient: "lettuce"},
				{Kind: ModSubstitute, Ingredient: "beef", Replacement: "beans"},
			},
		},
		{name: "duplicates collapse", text: "no cheese, no cheese", want: []Modification{{Kind: ModRemove, Ingredient: "cheese"}}},
		{name: "no directives", text: "two crunchy tacos", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := in.DetectModifications(tt.text, item)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DetectModifications() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderModifications(t *testing.T) {
	assert.Equal(t, NoModifications, RenderModifications(nil))
	assert.Equal(t, "no cheese", RenderModifications([]Modification{{Kind: ModRemove, Ingredient: "cheese"}}))
	assert.Equal(t, "extra salsa, substitute beef with chicken", RenderModifications([]Modification{
		{Kind: ModAdd, Ingredient: "salsa"},
		{Kind: ModSubstitute, Ingredient: "beef", Replacement: "chicken"},
	}))
}
