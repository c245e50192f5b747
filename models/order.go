package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is the immutable priced result of a checkout. Total and line
// prices are fixed at creation and never follow later catalog edits.
type Order struct {
	ID              string          `gorm:"type:uuid;primaryKey"`
	OrderNumber     string          `gorm:"uniqueIndex;not null"`
	UserID          string          `gorm:"type:uuid;index;not null"`
	Status          OrderStatus     `gorm:"not null"`
	Total           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ShippingAddress string          `gorm:"not null"`
	BillingAddress  string          `gorm:"not null"`
	PaymentMethod   string
	PaymentStatus   string `gorm:"not null;default:PENDING"`
	Notes           string
	Items           []OrderItem `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (o *Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem carries the snapshot unit price taken when the order was
// created.
type OrderItem struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	OrderID   string          `gorm:"type:uuid;index;not null"`
	ProductID string          `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Product   Product         `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
