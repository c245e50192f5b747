package models

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	toMigrate := []any{
		&Product{}, &Cart{}, &CartItem{},
		&Order{}, &OrderItem{},
		&Quotation{}, &QuotationItem{},
	}
	for _, m := range toMigrate {
		if err := db.AutoMigrate(m); err != nil {
			t.Fatalf("migrate %T: %v", m, err)
		}
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, sku, price string, stock int, active bool) Product {
	t.Helper()
	p := Product{
		SKU:      sku,
		Name:     "Product " + sku,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: active,
		Images:   []string{"https://img.example/" + sku + ".jpg"},
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product %s: %v", sku, err)
	}
	return p
}

func productStock(t *testing.T, db *gorm.DB, productID string) int {
	t.Helper()
	var p Product
	if err := db.First(&p, "id = ?", productID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	return p.Stock
}
