package services

import (
	"fmt"

	"go-storefront/models"
)

// StatusPolicy decides which order statuses a vendor may move an order out of to reach a target.
type StatusPolicy interface {
	// From returns the statuses an order may be in to move to `to`. Nil means any.
	From(to models.OrderStatus) []models.OrderStatus
}

// PermissivePolicy lets a vendor set any valid status from any status.
type PermissivePolicy struct{}

func (PermissivePolicy) From(models.OrderStatus) []models.OrderStatus { return nil }

var validNext = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.OrderPending:    {models.OrderProcessing: true, models.OrderCancelled: true},
	models.OrderProcessing: {models.OrderShipped: true, models.OrderCancelled: true},
	models.OrderShipped:    {models.OrderDelivered: true},
	models.OrderDelivered:  {},
	models.OrderCancelled:  {},
}

// CanTransition reports whether the strict lifecycle allows from -> to.
func CanTransition(from, to models.OrderStatus) bool {
	return validNext[from][to]
}

// StrictPolicy only allows forward moves along the order lifecycle.
type StrictPolicy struct{}

func (StrictPolicy) From(to models.OrderStatus) []models.OrderStatus {
	from := []models.OrderStatus{}
	for _, s := range models.OrderStatuses {
		if CanTransition(s, to) {
			from = append(from, s)
		}
	}
	return from
}

// PolicyByName returns the policy for ORDER_STATUS_POLICY.
func PolicyByName(name string) (StatusPolicy, error) {
	switch name {
	case "", "permissive":
		return PermissivePolicy{}, nil
	case "strict":
		return StrictPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown order status policy %q", name)
	}
}
