package models

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrdersRepository owns the order state machine and the checkout and
// cancellation transactions. Every multi-statement write runs inside one
// database transaction: a failure at any step leaves no partial order and
// no partial stock mutation.
type OrdersRepository struct {
	db        *gorm.DB
	inventory *InventoryRepository
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		db:        db,
		inventory: NewInventoryRepository(db),
	}
}

type CheckoutInput struct {
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
	Notes           string
}

type OrderFilters struct {
	UserID string
	Status OrderStatus
}

// CreateFromCart converts the user's cart into an order in one
// transaction: validate lines against the live product rows, snapshot
// prices and total, insert the order, decrement stock, clear the cart.
// The per-item decrement re-checks stock atomically, so two checkouts
// racing for the last unit cannot both commit.
func (r *OrdersRepository) CreateFromCart(ctx context.Context, userID string, in CheckoutInput) (*Order, error) {
	var order *Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart Cart
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			return translateNotFound(err, ErrCartEmpty)
		}

		var items []CartItem
		if err := tx.Preload("Product").Where("cart_id = ?", cart.ID).Order("created_at").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrCartEmpty
		}

		total := decimal.Zero
		orderItems := make([]OrderItem, 0, len(items))
		for _, it := range items {
			if !it.Product.IsActive {
				return ErrProductUnavailable
			}
			if it.Product.Stock < it.Quantity {
				return ErrInsufficientStock
			}
			total = total.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			orderItems = append(orderItems, OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Product.Price,
			})
		}

		o := Order{
			UserID:          userID,
			Status:          OrderStatusPending,
			Total:           total,
			ShippingAddress: in.ShippingAddress,
			BillingAddress:  in.BillingAddress,
			PaymentMethod:   in.PaymentMethod,
			PaymentStatus:   "PENDING",
			Notes:           in.Notes,
			Items:           orderItems,
		}
		if err := createNumbered(tx, &o, func(n string) { o.OrderNumber = n }, NewOrderNumber); err != nil {
			return err
		}

		inv := r.inventory.WithTx(tx)
		for _, it := range items {
			if err := inv.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&CartItem{}).Error; err != nil {
			return err
		}

		order = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus is the privileged transition path. Transitions are checked
// against the central table; moving to CANCELLED through here restores
// stock exactly like Cancel.
func (r *OrdersRepository) UpdateStatus(ctx context.Context, orderID string, next OrderStatus, paymentStatus string) (*Order, error) {
	if !next.Valid() {
		return nil, ErrInvalidTransition
	}

	var order Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			return translateNotFound(err, ErrOrderNotFound)
		}
		if !order.Status.CanTransitionTo(next) {
			return ErrInvalidTransition
		}

		updates := map[string]any{"status": next}
		if paymentStatus != "" {
			updates["payment_status"] = paymentStatus
		}
		// the status guard makes concurrent transitions first-writer-wins
		res := tx.Model(&Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		if next == OrderStatusCancelled {
			if err := r.restoreStock(ctx, tx, order.Items); err != nil {
				return err
			}
		}

		order.Status = next
		if paymentStatus != "" {
			order.PaymentStatus = paymentStatus
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Cancel moves a pre-shipment order to CANCELLED and re-credits the stock
// its items had consumed. Cancelling an already-terminal order fails and
// must not credit stock a second time: the conditional status flip is the
// guard that makes the compensation run at most once.
func (r *OrdersRepository) Cancel(ctx context.Context, orderID, userID string, isAdmin bool) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			return translateNotFound(err, ErrOrderNotFound)
		}
		if !isAdmin && order.UserID != userID {
			return ErrNotOwner
		}
		if !order.Status.Cancellable() {
			return ErrOrderNotCancellable
		}

		res := tx.Model(&Order{}).
			Where("id = ? AND status IN ?", order.ID, cancellableStatuses).
			Update("status", OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotCancellable
		}

		if err := r.restoreStock(ctx, tx, order.Items); err != nil {
			return err
		}

		order.Status = OrderStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrdersRepository) restoreStock(ctx context.Context, tx *gorm.DB, items []OrderItem) error {
	inv := r.inventory.WithTx(tx)
	for _, it := range items {
		if err := inv.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrdersRepository) FindAll(ctx context.Context, offset, limit int, filters OrderFilters) ([]Order, int64, error) {
	var orders []Order
	var total int64

	query := r.db.WithContext(ctx).Model(&Order{})
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrdersRepository) FindByID(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, ErrOrderNotFound)
	}
	return &order, nil
}

func (r *OrdersRepository) FindByNumber(ctx context.Context, number string) (*Order, error) {
	var order Order
	if err := r.db.WithContext(ctx).Preload("Items").Where("order_number = ?", number).First(&order).Error; err != nil {
		return nil, translateNotFound(err, ErrOrderNotFound)
	}
	return &order, nil
}

// createNumbered inserts a record that carries a generated document
// number, regenerating on a unique-index collision. Each attempt runs in
// a savepoint so a failed insert does not poison the outer transaction.
func createNumbered(tx *gorm.DB, record any, setNumber func(string), generate func() string) error {
	for attempt := 0; attempt < numberAttempts; attempt++ {
		setNumber(generate())
		err := tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(record).Error
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return ErrNumberCollision
}
