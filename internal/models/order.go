package models

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// Order is an archived, checked-out customer order
type Order struct {
	gorm.Model
	SessionID     string          `gorm:"index"`
	Status        string
	Total         decimal.Decimal `gorm:"type:decimal(10,2)"`
	TimeCompleted time.Time
	Lines         []OrderLine `gorm:"foreignkey:OrderID"`
}

// OrderLine is one composite-key line of an archived order
type OrderLine struct {
	gorm.Model
	OrderID       uint
	Key           string
	ItemName      string
	Size          string
	Modifications string
	Quantity      int
	UnitPrice     decimal.Decimal `gorm:"type:decimal(10,2)"`
}

// OrderStatus represents the possible states of an archived order
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)
