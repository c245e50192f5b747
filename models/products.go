package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable catalog entry. Price and stock are the live values
// carts display; orders and quotations snapshot the price at creation time.
type Product struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	SKU       string          `gorm:"uniqueIndex;not null"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock     int             `gorm:"not null;default:0"`
	IsActive  bool            `gorm:"not null;default:true"`
	Images    []string        `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
