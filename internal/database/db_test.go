package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cantina/internal/config"
	"cantina/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "nosuchdb", DSN: "x"})
	assert.Error(t, err)
}

func TestSeedAndList(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	created, err := Seed(ctx, db, DefaultMenu())
	require.NoError(t, err)
	assert.Equal(t, len(DefaultMenu()), created)

	repo := NewMenuRepository(db)
	items, err := repo.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, len(DefaultMenu()))

	for i, want := range DefaultMenu() {
		assert.Equal(t, want.Name, items[i].Name, "catalog order must be preserved")
		assert.True(t, want.Price.Equal(items[i].Price), "%s price %s", want.Name, items[i].Price)
		assert.Equal(t, want.Ingredients, items[i].Ingredients)
		assert.Equal(t, want.Tags, items[i].Tags)
	}

	// seeding again updates in place
	created, err = Seed(ctx, db, DefaultMenu())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultMenu()), n)
}

func TestSeed_RejectsInvalidItemAtomically(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	items := []models.MenuItem{
		{Name: "Crunchy Taco", Price: decimal.RequireFromString("1.69")},
		{Name: "", Price: decimal.RequireFromString("1.00")},
	}
	_, err := Seed(ctx, db, items)
	var verr models.ValidationError
	require.True(t, errors.As(err, &verr))

	n, err := NewMenuRepository(db).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFindByName(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, err := Seed(ctx, db, DefaultMenu())
	require.NoError(t, err)
	repo := NewMenuRepository(db)

	item, err := repo.FindByName(ctx, "  horchata ")
	require.NoError(t, err)
	assert.Equal(t, "Horchata", item.Name)
	assert.True(t, item.IsDrink())

	_, err = repo.FindByName(ctx, "Pizza")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpsert_UpdatesPrice(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewMenuRepository(db)

	created, err := repo.Upsert(ctx, &models.MenuItem{Name: "Soft Taco", Price: decimal.RequireFromString("1.49")})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Upsert(ctx, &models.MenuItem{Name: "soft taco", Price: decimal.RequireFromString("1.99")})
	require.NoError(t, err)
	assert.False(t, created)

	item, err := repo.FindByName(ctx, "Soft Taco")
	require.NoError(t, err)
	assert.Equal(t, "1.99", item.Price.StringFixed(2))
}

func TestEnsureMenu(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	created, err := EnsureMenu(ctx, db, filepath.Join("..", "..", "configs", "menu.yaml"))
	require.NoError(t, err)
	assert.Greater(t, created, 0)

	created, err = EnsureMenu(ctx, db, "")
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestLoadMenuFile_MatchesDefaultMenu(t *testing.T) {
	items, err := LoadMenuFile(filepath.Join("..", "..", "configs", "menu.yaml"))
	require.NoError(t, err)

	defaults := DefaultMenu()
	require.Len(t, items, len(defaults))
	for i := range defaults {
		assert.Equal(t, defaults[i].Name, items[i].Name)
		assert.True(t, defaults[i].Price.Equal(items[i].Price), defaults[i].Name)
		assert.Equal(t, defaults[i].Ingredients, items[i].Ingredients)
	}
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewOrderRepository(db)

	order := &models.Order{
		SessionID:     "sess-1",
		Status:        string(models.OrderStatusCompleted),
		Total:         decimal.RequireFromString("5.67"),
		TimeCompleted: time.Now(),
		Lines: []models.OrderLine{
			{Key: "Crunchy Taco (no cheese)", ItemName: "Crunchy Taco", Modifications: "no cheese", Quantity: 2, UnitPrice: decimal.RequireFromString("1.69")},
			{Key: "Large Horchata", ItemName: "Horchata", Size: "large", Quantity: 1, UnitPrice: decimal.RequireFromString("2.29")},
		},
	}
	require.NoError(t, repo.SaveOrder(ctx, order))
	require.NotZero(t, order.ID)

	got, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, "5.67", got.Total.StringFixed(2))
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "Crunchy Taco (no cheese)", got.Lines[0].Key)
	assert.Equal(t, 2, got.Lines[0].Quantity)

	orders, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = repo.GetOrder(ctx, 9999)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestRepository_CancelledContext(t *testing.T) {
	db := openTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMenuRepository(db).ListItems(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, NewOrderRepository(db).SaveOrder(ctx, &models.Order{}), context.Canceled)
}
