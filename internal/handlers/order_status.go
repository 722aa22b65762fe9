package handlers

import (
	"fmt"

	"phonestore/internal/models"
)

// statusRank orders the delivery chain. Cancelled is not part of the chain.
var statusRank = map[string]int{
	models.OrderStatusPending:   0,
	models.OrderStatusConfirmed: 1,
	models.OrderStatusShipping:  2,
	models.OrderStatusDelivered: 3,
}

func isValidOrderStatus(status string) bool {
	if status == models.OrderStatusCancelled {
		return true
	}
	_, ok := statusRank[status]
	return ok
}

// validateStatusTransition enforces forward movement along the delivery
// chain. Cancellation is only possible before the order ships.
func validateStatusTransition(from, to string) error {
	if !isValidOrderStatus(to) {
		return fmt.Errorf("unknown status: %s", to)
	}
	if from == to {
		return fmt.Errorf("order is already %s", from)
	}

	if from == models.OrderStatusCancelled {
		return fmt.Errorf("cancelled orders cannot change status")
	}

	if to == models.OrderStatusCancelled {
		if from == models.OrderStatusPending || from == models.OrderStatusConfirmed {
			return nil
		}
		return fmt.Errorf("cannot cancel an order that is %s", from)
	}

	fromRank, ok := statusRank[from]
	if !ok {
		return fmt.Errorf("unknown status: %s", from)
	}
	if statusRank[to] < fromRank {
		return fmt.Errorf("cannot move order back from %s to %s", from, to)
	}
	return nil
}
