package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuotationStatus string

const (
	QuotationStatusPending   QuotationStatus = "PENDING"
	QuotationStatusApproved  QuotationStatus = "APPROVED"
	QuotationStatusRejected  QuotationStatus = "REJECTED"
	QuotationStatusExpired   QuotationStatus = "EXPIRED"
	QuotationStatusConverted QuotationStatus = "CONVERTED"
)

// quotationValidNext mirrors the order transition table. CONVERTED is set
// only by ConvertToOrder, never through UpdateStatus.
var quotationValidNext = map[QuotationStatus]map[QuotationStatus]bool{
	QuotationStatusPending:   {QuotationStatusApproved: true, QuotationStatusRejected: true, QuotationStatusExpired: true},
	QuotationStatusApproved:  {QuotationStatusRejected: true, QuotationStatusExpired: true, QuotationStatusConverted: true},
	QuotationStatusRejected:  {},
	QuotationStatusExpired:   {},
	QuotationStatusConverted: {},
}

func (s QuotationStatus) Valid() bool {
	_, ok := quotationValidNext[s]
	return ok
}

func (s QuotationStatus) CanTransitionTo(next QuotationStatus) bool {
	return quotationValidNext[s][next]
}

// Quotation is a price-locked, non-binding proposal. Stock is not held;
// availability is re-checked only when the quotation is converted.
type Quotation struct {
	ID              string          `gorm:"type:uuid;primaryKey"`
	QuotationNumber string          `gorm:"uniqueIndex;not null"`
	UserID          string          `gorm:"type:uuid;index;not null"`
	Status          QuotationStatus `gorm:"not null"`
	Total           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ValidUntil      time.Time       `gorm:"not null"`
	Notes           string
	CustomerNotes   string
	Items           []QuotationItem `gorm:"foreignKey:QuotationID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (q *Quotation) TableName() string {
	return "quotations"
}

func (q *Quotation) BeforeCreate(*gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// QuotationItem carries the unit price locked at quotation time.
type QuotationItem struct {
	ID          string          `gorm:"type:uuid;primaryKey"`
	QuotationID string          `gorm:"type:uuid;index;not null"`
	ProductID   string          `gorm:"type:uuid;not null"`
	Quantity    int             `gorm:"not null"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Product     Product         `gorm:"foreignKey:ProductID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (i *QuotationItem) TableName() string {
	return "quotation_items"
}

func (i *QuotationItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
