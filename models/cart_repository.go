package models

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartsRepository maintains the mutable pre-checkout basket. Cart reads
// are advisory: stock and price are joined live and never persisted, so
// none of these operations need the checkout-grade locking the orders
// repository uses.
type CartsRepository struct {
	db        *gorm.DB
	inventory *InventoryRepository
}

func NewCartsRepository(db *gorm.DB) *CartsRepository {
	return &CartsRepository{
		db:        db,
		inventory: NewInventoryRepository(db),
	}
}

// GetOrCreate returns the user's cart, creating it on first use. Two
// concurrent first adds race on the user_id unique index; the loser of
// the insert fetches the winner's row instead of failing.
func (r *CartsRepository) GetOrCreate(ctx context.Context, userID string) (*Cart, error) {
	return r.getOrCreate(r.db.WithContext(ctx), userID)
}

func (r *CartsRepository) getOrCreate(db *gorm.DB, userID string) (*Cart, error) {
	var cart Cart
	err := db.Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = Cart{UserID: userID}
	err = db.Create(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}
	// lost the insert race; the other writer's cart is ours
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem merges qty into an existing line or inserts a new one.
// Availability goes through the inventory ledger and covers the combined
// line quantity, not just the increment.
func (r *CartsRepository) AddItem(ctx context.Context, userID, productID string, qty int) (*CartItem, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	var item *CartItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := r.getOrCreate(tx, userID)
		if err != nil {
			return err
		}
		inv := r.inventory.WithTx(tx)

		var existing CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&existing).Error
		switch {
		case err == nil:
			newQty := existing.Quantity + qty
			if err := inv.IsPurchasable(ctx, productID, newQty); err != nil {
				return err
			}
			if err := tx.Model(&existing).Update("quantity", newQty).Error; err != nil {
				return err
			}
			existing.Quantity = newQty
			item = &existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := inv.IsPurchasable(ctx, productID, qty); err != nil {
				return err
			}
			created := CartItem{CartID: cart.ID, ProductID: productID, Quantity: qty}
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
			item = &created
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem sets the absolute quantity of a line the user owns, subject
// to the same ledger availability check as AddItem.
func (r *CartsRepository) UpdateItem(ctx context.Context, userID, itemID string, qty int) (*CartItem, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	var item CartItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.ownedItem(tx, userID, itemID, &item); err != nil {
			return err
		}
		if err := r.inventory.WithTx(tx).IsPurchasable(ctx, item.ProductID, qty); err != nil {
			return err
		}

		if err := tx.Model(&item).Update("quantity", qty).Error; err != nil {
			return err
		}
		item.Quantity = qty
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartsRepository) RemoveItem(ctx context.Context, userID, itemID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item CartItem
		if err := r.ownedItem(tx, userID, itemID, &item); err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
}

// Clear empties the cart. A user without a cart clears to nothing.
func (r *CartsRepository) Clear(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("cart_id IN (?)", r.db.Model(&Cart{}).Select("id").Where("user_id = ?", userID)).
		Delete(&CartItem{}).Error
}

// Get joins every line with the current product row and computes the
// advisory totals. The result is never persisted.
func (r *CartsRepository) Get(ctx context.Context, userID string) (*CartView, error) {
	db := r.db.WithContext(ctx)

	var cart Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CartView{UserID: userID, Items: []CartItemView{}, Total: decimal.Zero}, nil
		}
		return nil, err
	}

	var items []CartItem
	if err := db.Preload("Product").Where("cart_id = ?", cart.ID).Order("created_at").Find(&items).Error; err != nil {
		return nil, err
	}

	view := CartView{
		ID:     cart.ID,
		UserID: cart.UserID,
		Items:  make([]CartItemView, 0, len(items)),
		Total:  decimal.Zero,
	}
	for _, it := range items {
		lineTotal := it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		view.Items = append(view.Items, CartItemView{
			ID:        it.ID,
			ProductID: it.ProductID,
			SKU:       it.Product.SKU,
			Name:      it.Product.Name,
			Images:    it.Product.Images,
			Quantity:  it.Quantity,
			UnitPrice: it.Product.Price,
			ItemTotal: lineTotal,
			Stock:     it.Product.Stock,
			IsActive:  it.Product.IsActive,
		})
		view.Total = view.Total.Add(lineTotal)
	}
	return &view, nil
}

// ownedItem loads the item only if it sits in a cart owned by userID, so
// a guessed item id from another user's cart reads as not found.
func (r *CartsRepository) ownedItem(tx *gorm.DB, userID, itemID string, out *CartItem) error {
	err := tx.
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, userID).
		First(out).Error
	if err != nil {
		return translateNotFound(err, ErrCartItemNotFound)
	}
	return nil
}
