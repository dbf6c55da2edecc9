package models

import "fmt"

// OrderState is the lifecycle state of an order.
type OrderState string

const (
	OrderPending  OrderState = "pending"
	OrderAccepted OrderState = "accepted"
	OrderRejected OrderState = "rejected"
)

// orderTransitions lists the states reachable from each state.
// Accepted and Rejected are terminal.
var orderTransitions = map[OrderState][]OrderState{
	OrderPending: {OrderAccepted, OrderRejected},
}

// ParseOrderState validates a client-supplied state.
func ParseOrderState(s string) (OrderState, error) {
	switch st := OrderState(s); st {
	case OrderPending, OrderAccepted, OrderRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown order state %q: %w", s, ErrBadRequest)
}

// CanTransition reports whether an order may move from s to next.
func (s OrderState) CanTransition(next OrderState) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s OrderState) Terminal() bool {
	return len(orderTransitions[s]) == 0
}
