package database

import (
	"context"
	"fmt"
	"os"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"cantina/internal/models"
)

type menuFile struct {
	Items []menuEntry `yaml:"items"`
}

type menuEntry struct {
	Name        string   `yaml:"name"`
	Price       float64  `yaml:"price"`
	Description string   `yaml:"description"`
	Ingredients []string `yaml:"ingredients"`
	Tags        []string `yaml:"tags"`
}

// LoadMenuFile reads menu items from a YAML seed file
func LoadMenuFile(path string) ([]models.MenuItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}

	var f menuFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse menu file: %w", err)
	}

	items := make([]models.MenuItem, 0, len(f.Items))
	for i, e := range f.Items {
		item := models.MenuItem{
			Name:        e.Name,
			Price:       decimal.NewFromFloat(e.Price),
			Description: e.Description,
			Ingredients: models.StringSlice(e.Ingredients),
			Tags:        models.StringSlice(e.Tags),
		}
		if err := models.ValidateMenuItem(&item); err != nil {
			return nil, fmt.Errorf("menu item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Seed upserts items in one transaction and returns how many were created
func Seed(ctx context.Context, db *gorm.DB, items []models.MenuItem) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return 0, fmt.Errorf("failed to begin seed transaction: %w", tx.Error)
	}

	created := 0
	for i := range items {
		item := items[i]
		ok, err := upsert(tx, &item)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if ok {
			created++
		}
	}

	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return created, nil
}

// EnsureMenu seeds the catalog when it is empty, from path if given or from
// DefaultMenu otherwise
func EnsureMenu(ctx context.Context, db *gorm.DB, path string) (int, error) {
	n, err := NewMenuRepository(db).Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	items := DefaultMenu()
	if path != "" {
		if items, err = LoadMenuFile(path); err != nil {
			return 0, err
		}
	}
	return Seed(ctx, db, items)
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultMenu is the built-in catalog. Order matters: item lookup takes the
// first name found in the utterance.
func DefaultMenu() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Crunchy Taco", Price: price("1.69"), Description: "Seasoned beef, lettuce and cheddar in a crunchy corn shell.",
			Ingredients: models.StringSlice{"beef", "lettuce", "cheese"}, Tags: models.StringSlice{"taco", "dairy"}},
		{Name: "Soft Taco", Price: price("1.89"), Description: "Seasoned beef, lettuce and cheddar in a warm flour tortilla.",
			Ingredients: models.StringSlice{"beef", "lettuce", "cheese", "tortilla"}, Tags: models.StringSlice{"taco", "dairy", "gluten"}},
		{Name: "Spicy Potato Taco", Price: price("1.29"), Description: "Crispy potatoes, chipotle sauce, lettuce and cheddar in a flour tortilla.",
			Ingredients: models.StringSlice{"potatoes", "chipotle", "lettuce", "cheese", "tortilla"}, Tags: models.StringSlice{"taco", "dairy", "gluten", "vegetarian"}},
		{Name: "Bean Burrito", Price: price("1.99"), Description: "Refried beans, onions, red sauce and cheddar wrapped in a flour tortilla.",
			Ingredients: models.StringSlice{"beans", "onions", "sauce", "cheese", "tortilla"}, Tags: models.StringSlice{"burrito", "dairy", "gluten", "vegetarian"}},
		{Name: "Beefy Melt Burrito", Price: price("2.49"), Description: "Seasoned beef, rice, tortilla chips and nacho cheese in a flour tortilla.",
			Ingredients: models.StringSlice{"beef", "rice", "chips", "cheese", "tortilla"}, Tags: models.StringSlice{"burrito", "dairy", "gluten"}},
		{Name: "Chicken Burrito", Price: price("3.49"), Description: "Grilled chicken, rice, creamy chipotle and cheddar in a flour tortilla.",
			Ingredients: models.StringSlice{"chicken", "rice", "chipotle", "cheese", "tortilla"}, Tags: models.StringSlice{"burrito", "dairy", "gluten"}},
		{Name: "Nachos Supreme", Price: price("3.99"), Description: "Tortilla chips with beef, beans, nacho cheese, tomatoes and cream.",
			Ingredients: models.StringSlice{"chips", "beef", "beans", "cheese", "tomatoes", "cream"}, Tags: models.StringSlice{"nachos", "dairy"}},
		{Name: "Loaded Nachos", Price: price("2.49"), Description: "Tortilla chips with nacho cheese, beef and jalapenos.",
			Ingredients: models.StringSlice{"chips", "cheese", "beef", "jalapenos"}, Tags: models.StringSlice{"nachos", "dairy"}},
		{Name: "Power Bowl", Price: price("5.49"), Description: "Chicken, rice, black beans, lettuce, guacamole, tomatoes and cheddar.",
			Ingredients: models.StringSlice{"chicken", "rice", "beans", "lettuce", "guacamole", "tomatoes", "cheese"}, Tags: models.StringSlice{"bowl", "dairy"}},
		{Name: "Veggie Bowl", Price: price("4.99"), Description: "Rice, black beans, lettuce, guacamole and tomatoes.",
			Ingredients: models.StringSlice{"rice", "beans", "lettuce", "guacamole", "tomatoes"}, Tags: models.StringSlice{"bowl", "vegetarian"}},
		{Name: "Cinnamon Twists", Price: price("1.29"), Description: "Puffed corn twists tossed in cinnamon sugar.",
			Ingredients: models.StringSlice{"twists", "cinnamon", "sugar"}, Tags: models.StringSlice{"side", "gluten", "vegetarian"}},
		{Name: "Cheesy Fiesta Potatoes", Price: price("2.19"), Description: "Seasoned potato bites with nacho cheese and cream.",
			Ingredients: models.StringSlice{"potatoes", "cheese", "cream"}, Tags: models.StringSlice{"side", "dairy", "vegetarian"}},
		{Name: "Black Beans", Price: price("1.49"), Description: "Slow-simmered black beans with onions.",
			Ingredients: models.StringSlice{"beans", "onions"}, Tags: models.StringSlice{"side", "vegetarian"}},
		{Name: "Horchata", Price: price("2.29"), Description: "Sweet rice milk with cinnamon.",
			Ingredients: models.StringSlice{"rice", "cinnamon", "milk"}, Tags: models.StringSlice{"drink", "dairy"}},
		{Name: "Lemonade", Price: price("1.99"), Description: "Fresh-squeezed lemonade.",
			Ingredients: models.StringSlice{"lemon", "sugar", "ice"}, Tags: models.StringSlice{"drink"}},
		{Name: "Fountain Soda", Price: price("1.79"), Description: "Your choice of fountain soda.",
			Ingredients: models.StringSlice{"ice"}, Tags: models.StringSlice{"drink"}},
		{Name: "Mild Sauce", Price: price("0.00"), Description: "A gentle tomato sauce.",
			Ingredients: models.StringSlice{"tomatoes", "vinegar"}, Tags: models.StringSlice{"sauce"}},
		{Name: "Fire Sauce", Price: price("0.00"), Description: "Hot chili sauce.",
			Ingredients: models.StringSlice{"chili", "vinegar"}, Tags: models.StringSlice{"sauce"}},
		{Name: "Creamy Jalapeno Sauce", Price: price("0.50"), Description: "Jalapenos blended with cream.",
			Ingredients: models.StringSlice{"jalapenos", "cream"}, Tags: models.StringSlice{"sauce", "dairy"}},
	}
}
