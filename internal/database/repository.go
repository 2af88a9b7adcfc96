package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jinzhu/gorm"

	"cantina/internal/models"
)

// MenuRepository reads and writes the menu catalog
type MenuRepository struct {
	db *gorm.DB
}

// NewMenuRepository creates a menu repository over db
func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// ListItems returns every menu item in catalog order
func (r *MenuRepository) ListItems(ctx context.Context) ([]models.MenuItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var items []models.MenuItem
	if err := r.db.Order("id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	return items, nil
}

// FindByName looks an item up by case-insensitive name
func (r *MenuRepository) FindByName(ctx context.Context, name string) (*models.MenuItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var item models.MenuItem
	err := r.db.Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).First(&item).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find menu item %q: %w", name, err)
	}
	return &item, nil
}

// Count returns the number of catalog items
func (r *MenuRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	if err := r.db.Model(&models.MenuItem{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	return n, nil
}

// Upsert validates item and inserts it, or updates the existing item with the
// same name. It reports whether a new row was created.
func (r *MenuRepository) Upsert(ctx context.Context, item *models.MenuItem) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return upsert(r.db, item)
}

func upsert(db *gorm.DB, item *models.MenuItem) (bool, error) {
	if err := models.ValidateMenuItem(item); err != nil {
		return false, err
	}

	var existing models.MenuItem
	err := db.Where("LOWER(name) = ?", strings.ToLower(item.Name)).First(&existing).Error
	switch {
	case gorm.IsRecordNotFoundError(err):
		if err := db.Create(item).Error; err != nil {
			return false, fmt.Errorf("failed to create menu item %q: %w", item.Name, err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to look up menu item %q: %w", item.Name, err)
	}

	item.ID = existing.ID
	item.CreatedAt = existing.CreatedAt
	if err := db.Save(item).Error; err != nil {
		return false, fmt.Errorf("failed to update menu item %q: %w", item.Name, err)
	}
	return false, nil
}

// OrderRepository archives checked-out and cancelled orders
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an order repository over db
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// SaveOrder stores the order together with its lines
func (r *OrderRepository) SaveOrder(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

// GetOrder loads an archived order and its lines
func (r *OrderRepository) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var order models.Order
	err := r.db.Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).First(&order, id).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}
	return &order, nil
}

// ListBySession returns the archived orders of a session, oldest first
func (r *OrderRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var orders []models.Order
	err := r.db.Preload("Lines").Where("session_id = ?", sessionID).Order("id asc").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for session %s: %w", sessionID, err)
	}
	return orders, nil
}
