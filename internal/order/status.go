package order

import "fmt"

// transitions is the legal admin-facing status graph. Delivered and cancelled
// are terminal; backwards moves are not allowed. Payment-provider webhooks
// drive PaymentStatus separately and do not consult this graph.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition checks if a transition from `from` to `to` is valid.
func CanTransition(from, to Status) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Transition validates and applies a status change on the order.
func Transition(o *Order, to Status) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	return nil
}

// AllowedTransitions returns the legal next statuses from the current one.
func AllowedTransitions(from Status) []Status {
	allowed, ok := transitions[from]
	if !ok {
		return []Status{}
	}
	out := make([]Status, len(allowed))
	copy(out, allowed)
	return out
}
