package models

import (
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// MenuItem represents a dish or drink on the menu
type MenuItem struct {
	gorm.Model
	Name        string          `gorm:"unique_index;not null" json:"name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Description string          `gorm:"type:text" json:"description"`
	Ingredients StringSlice     `gorm:"type:text" json:"ingredients"`
	Tags        StringSlice     `gorm:"type:text" json:"tags"`
}

// TableName sets the table name for MenuItem
func (MenuItem) TableName() string {
	return "menu_items"
}

// Menu tags with special meaning
const (
	TagDrink  = "drink"
	TagDairy  = "dairy"
	TagGluten = "gluten"
)

// ValidationError describes a rejected field value
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateMenuItem validates a menu item
func ValidateMenuItem(item *MenuItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return ValidationError{Field: "name", Message: "menu item name is required"}
	}
	if item.Price.IsNegative() {
		return ValidationError{Field: "price", Message: "menu item price must not be negative"}
	}
	for _, ing := range item.Ingredients {
		if ing != strings.ToLower(ing) {
			return ValidationError{Field: "ingredients", Message: fmt.Sprintf("ingredient %q must be lowercase", ing)}
		}
	}
	return nil
}

// IsDrink reports whether size options apply to the item
func (mi *MenuItem) IsDrink() bool {
	return mi.HasTag(TagDrink)
}

// HasIngredient checks if the item contains a specific ingredient
func (mi *MenuItem) HasIngredient(ingredient string) bool {
	for _, ing := range mi.Ingredients {
		if ing == ingredient {
			return true
		}
	}
	return false
}

// HasTag checks if the item carries a classification tag
func (mi *MenuItem) HasTag(tag string) bool {
	for _, t := range mi.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Line renders the item as a single menu listing line.
func (mi *MenuItem) Line() string {
	return fmt.Sprintf("%s - $%s : %s", mi.Name, mi.Price.StringFixed(2), mi.Description)
}
