package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// MaxStock bounds compensating restores; nothing legitimate gets close.
const MaxStock = 1_000_000

// InventoryRepository is the only place product stock is mutated. Both
// mutations are single conditional UPDATEs guarded by a rows-affected
// check, so a concurrent writer can never drive stock negative or past
// MaxStock: a plain read-then-write would lose updates under load.
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// WithTx returns a repository bound to the caller's transaction so stock
// mutations commit or roll back with the enclosing operation.
func (r *InventoryRepository) WithTx(tx *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: tx}
}

// DecrementStock atomically subtracts qty, failing if remaining stock is
// insufficient. Zero rows affected means either the product is gone or
// the stock guard failed; a follow-up read tells the two apart.
func (r *InventoryRepository) DecrementStock(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	res := r.db.WithContext(ctx).Model(&Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumns(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.explainGuardFailure(ctx, productID, ErrInsufficientStock)
	}
	return nil
}

// IncrementStock re-credits stock, typically as the compensating step of a
// cancellation.
func (r *InventoryRepository) IncrementStock(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	res := r.db.WithContext(ctx).Model(&Product{}).
		Where("id = ? AND stock + ? <= ?", productID, qty, MaxStock).
		UpdateColumns(map[string]any{
			"stock":      gorm.Expr("stock + ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.explainGuardFailure(ctx, productID, ErrStockLimitExceeded)
	}
	return nil
}

// IsPurchasable is the advisory read-side check used before committing a
// multi-item transaction. It reports why a purchase would fail; the final
// defense against oversell remains the conditional write above.
func (r *InventoryRepository) IsPurchasable(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	var p Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", productID).Error; err != nil {
		return translateNotFound(err, ErrProductNotFound)
	}
	if !p.IsActive {
		return ErrProductInactive
	}
	if p.Stock < qty {
		return ErrInsufficientStock
	}
	return nil
}

func (r *InventoryRepository) explainGuardFailure(ctx context.Context, productID string, guardErr error) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", productID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return guardErr
}
