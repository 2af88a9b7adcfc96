package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMenuItem(t *testing.T) {
	tests := []struct {
		name      string
		item      MenuItem
		wantField string
	}{
		{
			name: "valid item",
			item: MenuItem{Name: "Crunchy Taco", Price: decimal.RequireFromString("1.69"), Ingredients: StringSlice{"beef", "lettuce"}},
		},
		{
			name:      "missing name",
			item:      MenuItem{Name: "  ", Price: decimal.RequireFromString("1.00")},
			wantField: "name",
		},
		{
			name:      "negative price",
			item:      MenuItem{Name: "Refund Taco", Price: decimal.RequireFromString("-0.50")},
			wantField: "price",
		},
		{
			name:      "uppercase ingredient",
			item:      MenuItem{Name: "Soft Taco", Price: decimal.RequireFromString("1.49"), Ingredients: StringSlice{"Cheese"}},
			wantField: "ingredients",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMenuItem(&tt.item)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestMenuItem_IsDrink(t *testing.T) {
	soda := MenuItem{Name: "Baja Blast", Tags: StringSlice{"Drink"}}
	taco := MenuItem{Name: "Crunchy Taco", Tags: StringSlice{"taco", "gluten"}}

	assert.True(t, soda.IsDrink())
	assert.False(t, taco.IsDrink())
	assert.True(t, taco.HasTag("GLUTEN"))
}

func TestMenuItem_Line(t *testing.T) {
	item := MenuItem{Name: "Bean Burrito", Price: decimal.RequireFromString("1.9"), Description: "Beans and cheese."}
	assert.Equal(t, "Bean Burrito - $1.90 : Beans and cheese.", item.Line())
}

func TestStringSlice_ValueScan(t *testing.T) {
	in := StringSlice{"lettuce", "cheese"}
	v, err := in.Value()
	require.NoError(t, err)
	assert.Equal(t, `["lettuce","cheese"]`, v)

	var out StringSlice
	require.NoError(t, out.Scan([]byte(`["lettuce","cheese"]`)))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	assert.Empty(t, out)

	assert.Error(t, out.Scan(42))
}
