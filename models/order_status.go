package models

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// orderValidNext is the single source of truth for order transitions.
// Forward along the fulfilment path, with CANCELLED reachable from any
// pre-shipment state.
var orderValidNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:    {OrderStatusConfirmed: true, OrderStatusCancelled: true},
	OrderStatusConfirmed:  {OrderStatusProcessing: true, OrderStatusCancelled: true},
	OrderStatusProcessing: {OrderStatusShipped: true, OrderStatusCancelled: true},
	OrderStatusShipped:    {OrderStatusDelivered: true},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderValidNext[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return orderValidNext[s][next]
}

// Cancellable reports whether an order in this status may still be
// cancelled (and its stock restored).
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

// cancellableStatuses is used in conditional UPDATE guards.
var cancellableStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
}
