package models

// ErrorKind classifies a domain failure so the transport layer can map it
// to a status code without inspecting individual errors.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindValidation
	KindConflict
	KindForbidden
)

// Error is a domain failure with a stable machine-readable code.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func notFound(code, msg string) *Error   { return &Error{Kind: KindNotFound, Code: code, Message: msg} }
func validation(code, msg string) *Error { return &Error{Kind: KindValidation, Code: code, Message: msg} }
func conflict(code, msg string) *Error   { return &Error{Kind: KindConflict, Code: code, Message: msg} }
func forbidden(code, msg string) *Error  { return &Error{Kind: KindForbidden, Code: code, Message: msg} }

var (
	ErrProductNotFound   = notFound("product_not_found", "product not found")
	ErrCartItemNotFound  = notFound("cart_item_not_found", "cart item not found")
	ErrOrderNotFound     = notFound("order_not_found", "order not found")
	ErrQuotationNotFound = notFound("quotation_not_found", "quotation not found")

	ErrProductInactive       = validation("product_inactive", "product is not active")
	ErrProductUnavailable    = validation("product_unavailable", "product is no longer available")
	ErrInsufficientStock     = validation("insufficient_stock", "insufficient stock")
	ErrStockLimitExceeded    = validation("stock_limit_exceeded", "stock would exceed the allowed maximum")
	ErrInvalidQuantity       = validation("invalid_quantity", "quantity must be at least 1")
	ErrCartEmpty             = validation("cart_empty", "cart is empty")
	ErrInvalidTransition     = validation("invalid_status_transition", "status transition is not allowed")
	ErrOrderNotCancellable   = validation("order_not_cancellable", "order can no longer be cancelled")
	ErrItemsRequired         = validation("items_required", "at least one item is required")
	ErrInvalidValidUntil     = validation("invalid_valid_until", "validUntil must be in the future")
	ErrQuotationNotApproved  = validation("quotation_not_approved", "quotation is not approved")
	ErrQuotationExpired      = validation("quotation_expired", "quotation has expired")
	ErrQuotationNotDeletable = validation("quotation_not_deletable", "only pending quotations can be deleted")

	ErrNumberCollision = conflict("duplicate_number", "could not generate a unique document number")

	ErrNotOwner = forbidden("not_owner", "resource belongs to another user")
)
