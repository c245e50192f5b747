package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuotationsRepository produces price-locked proposals and materializes
// approved ones into orders. Creating a quotation locks prices but holds
// no stock; availability is re-checked only at conversion time.
type QuotationsRepository struct {
	db        *gorm.DB
	inventory *InventoryRepository
}

func NewQuotationsRepository(db *gorm.DB) *QuotationsRepository {
	return &QuotationsRepository{
		db:        db,
		inventory: NewInventoryRepository(db),
	}
}

type QuotationItemInput struct {
	ProductID string
	Quantity  int
}

type QuotationInput struct {
	Items         []QuotationItemInput
	ValidUntil    time.Time
	Notes         string
	CustomerNotes string
}

type QuotationFilters struct {
	UserID string
	Status QuotationStatus
}

// Create snapshots the current price of every requested product into a
// PENDING quotation. Products must exist and be active; stock is not
// checked and not reserved.
func (r *QuotationsRepository) Create(ctx context.Context, userID string, in QuotationInput) (*Quotation, error) {
	if len(in.Items) == 0 {
		return nil, ErrItemsRequired
	}
	if !in.ValidUntil.After(time.Now()) {
		return nil, ErrInvalidValidUntil
	}

	var quotation *Quotation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		items := make([]QuotationItem, 0, len(in.Items))
		for _, it := range in.Items {
			if it.Quantity < 1 {
				return ErrInvalidQuantity
			}
			var product Product
			if err := tx.First(&product, "id = ?", it.ProductID).Error; err != nil {
				return translateNotFound(err, ErrProductNotFound)
			}
			if !product.IsActive {
				return ErrProductUnavailable
			}
			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
			items = append(items, QuotationItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     product.Price,
			})
		}

		q := Quotation{
			UserID:        userID,
			Status:        QuotationStatusPending,
			Total:         total,
			ValidUntil:    in.ValidUntil,
			Notes:         in.Notes,
			CustomerNotes: in.CustomerNotes,
			Items:         items,
		}
		if err := createNumbered(tx, &q, func(n string) { q.QuotationNumber = n }, NewQuotationNumber); err != nil {
			return err
		}
		quotation = &q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quotation, nil
}

// UpdateStatus is the privileged review path. CONVERTED is machine-set by
// ConvertToOrder and rejected here like any other illegal transition.
func (r *QuotationsRepository) UpdateStatus(ctx context.Context, id string, next QuotationStatus, notes string) (*Quotation, error) {
	if !next.Valid() || next == QuotationStatusConverted {
		return nil, ErrInvalidTransition
	}

	var quotation Quotation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&quotation, "id = ?", id).Error; err != nil {
			return translateNotFound(err, ErrQuotationNotFound)
		}
		if !quotation.Status.CanTransitionTo(next) {
			return ErrInvalidTransition
		}

		updates := map[string]any{"status": next}
		if notes != "" {
			updates["notes"] = notes
		}
		res := tx.Model(&Quotation{}).
			Where("id = ? AND status = ?", quotation.ID, quotation.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		quotation.Status = next
		if notes != "" {
			quotation.Notes = notes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

// ConvertToOrder turns an approved, unexpired quotation into an order at
// the quotation's locked prices, not the current catalog prices. The
// APPROVED→CONVERTED flip is a conditional write, so one quotation can
// fund at most one order no matter how many conversions race. Stock and
// active flags are re-validated because time has passed since the quote.
func (r *QuotationsRepository) ConvertToOrder(ctx context.Context, quotationID, userID, shippingAddress, billingAddress string) (*Order, error) {
	var order *Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q Quotation
		if err := tx.Preload("Items").First(&q, "id = ?", quotationID).Error; err != nil {
			return translateNotFound(err, ErrQuotationNotFound)
		}
		if q.UserID != userID {
			return ErrNotOwner
		}
		if q.Status != QuotationStatusApproved {
			return ErrQuotationNotApproved
		}
		if !q.ValidUntil.After(time.Now()) {
			return ErrQuotationExpired
		}

		res := tx.Model(&Quotation{}).
			Where("id = ? AND status = ?", q.ID, QuotationStatusApproved).
			Update("status", QuotationStatusConverted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrQuotationNotApproved
		}

		orderItems := make([]OrderItem, 0, len(q.Items))
		for _, it := range q.Items {
			var product Product
			if err := tx.First(&product, "id = ?", it.ProductID).Error; err != nil {
				return translateNotFound(err, ErrProductUnavailable)
			}
			if !product.IsActive {
				return ErrProductUnavailable
			}
			if product.Stock < it.Quantity {
				return ErrInsufficientStock
			}
			orderItems = append(orderItems, OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Price, // locked at quotation time
			})
		}

		o := Order{
			UserID:          userID,
			Status:          OrderStatusPending,
			Total:           q.Total,
			ShippingAddress: shippingAddress,
			BillingAddress:  billingAddress,
			PaymentStatus:   "PENDING",
			Notes:           q.Notes,
			Items:           orderItems,
		}
		if err := createNumbered(tx, &o, func(n string) { o.OrderNumber = n }, NewOrderNumber); err != nil {
			return err
		}

		inv := r.inventory.WithTx(tx)
		for _, it := range q.Items {
			if err := inv.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		order = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes a quotation that is still under review. Anything past
// PENDING is part of the audit trail and stays.
func (r *QuotationsRepository) Delete(ctx context.Context, id, userID string, isAdmin bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q Quotation
		if err := tx.First(&q, "id = ?", id).Error; err != nil {
			return translateNotFound(err, ErrQuotationNotFound)
		}
		if !isAdmin && q.UserID != userID {
			return ErrNotOwner
		}
		if q.Status != QuotationStatusPending {
			return ErrQuotationNotDeletable
		}
		if err := tx.Where("quotation_id = ?", q.ID).Delete(&QuotationItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&q).Error
	})
}

func (r *QuotationsRepository) FindAll(ctx context.Context, offset, limit int, filters QuotationFilters) ([]Quotation, int64, error) {
	var quotations []Quotation
	var total int64

	query := r.db.WithContext(ctx).Model(&Quotation{})
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&quotations).Error; err != nil {
		return nil, 0, err
	}
	return quotations, total, nil
}

func (r *QuotationsRepository) FindByID(ctx context.Context, id string) (*Quotation, error) {
	var q Quotation
	if err := r.db.WithContext(ctx).Preload("Items").First(&q, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err, ErrQuotationNotFound)
	}
	return &q, nil
}

func (r *QuotationsRepository) FindByNumber(ctx context.Context, number string) (*Quotation, error) {
	var q Quotation
	if err := r.db.WithContext(ctx).Preload("Items").Where("quotation_number = ?", number).First(&q).Error; err != nil {
		return nil, translateNotFound(err, ErrQuotationNotFound)
	}
	return &q, nil
}
