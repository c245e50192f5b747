package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is the mutable pre-checkout basket. One cart per user, created
// lazily on the first add and kept for the user's lifetime.
type Cart struct {
	ID        string     `gorm:"type:uuid;primaryKey"`
	UserID    string     `gorm:"type:uuid;uniqueIndex;not null"`
	Items     []CartItem `gorm:"foreignKey:CartID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Cart) TableName() string {
	return "carts"
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CartItem holds no price: cart lines are always priced from the current
// product row at read time.
type CartItem struct {
	ID        string  `gorm:"type:uuid;primaryKey"`
	CartID    string  `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null"`
	ProductID string  `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null"`
	Quantity  int     `gorm:"not null"`
	Product   Product `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *CartItem) TableName() string {
	return "cart_items"
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// CartItemView is a cart line joined with the live product state.
type CartItemView struct {
	ID        string
	ProductID string
	SKU       string
	Name      string
	Images    []string
	Quantity  int
	UnitPrice decimal.Decimal
	ItemTotal decimal.Decimal
	Stock     int
	IsActive  bool
}

// CartView is the advisory, recomputed-on-every-read projection of a cart.
type CartView struct {
	ID     string
	UserID string
	Items  []CartItemView
	Total  decimal.Decimal
}
