package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ProductsRepository covers the read paths the rest of the system needs
// from the catalog. Writes to price/name/etc. belong to the external
// catalog management tooling; stock mutation belongs to the
// InventoryRepository.
type ProductsRepository struct {
	db *gorm.DB
}

type ProductFilters struct {
	SKU        string
	ActiveOnly bool
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func (r *ProductsRepository) GetFilteredProducts(ctx context.Context, offset, limit int, filters ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{})

	if filters.SKU != "" {
		query = query.Where("sku = ?", filters.SKU)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination
	if err := query.Order("sku").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, ErrProductNotFound)
	}
	return &product, nil
}

func (r *ProductsRepository) GetBySKU(ctx context.Context, sku string) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error; err != nil {
		return nil, translateNotFound(err, ErrProductNotFound)
	}
	return &product, nil
}

// translateNotFound maps gorm's record-not-found onto the given domain
// error and passes every other DB error through untouched.
func translateNotFound(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}
