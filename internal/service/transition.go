package service

import (
	"fmt"

	"github.com/muze-cafe/api/internal/database"
)

// allowedTransitions lists every legal forward move. completed and
// cancelled are terminal.
var allowedTransitions = map[database.OrderStatus][]database.OrderStatus{
	database.OrderStatusPending: {
		database.OrderStatusPreparing,
		database.OrderStatusCancelled,
	},
	database.OrderStatusPreparing: {
		database.OrderStatusReady,
		database.OrderStatusCancelled,
	},
	database.OrderStatusReady: {
		database.OrderStatusCompleted,
		database.OrderStatusCancelled,
	},
}

// ValidateTransition returns an error wrapping ErrInvalidTransition unless
// current -> next is a legal move.
func ValidateTransition(current, next database.OrderStatus) error {
	for _, s := range allowedTransitions[current] {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
}

// IsTerminal reports whether no further transition is possible.
func IsTerminal(s database.OrderStatus) bool {
	return len(allowedTransitions[s]) == 0
}
