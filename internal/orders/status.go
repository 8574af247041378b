package orders

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// CanTransitionTo enforces the forward order flow
// pending -> confirmed -> shipped -> delivered, with cancellation allowed
// only before shipping.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusShipped || next == StatusCancelled
	case StatusShipped:
		return next == StatusDelivered
	}
	return false
}

// CanBeCancelled reports whether stock for this order can still be restored.
func (s Status) CanBeCancelled() bool {
	return s == StatusPending || s == StatusConfirmed
}
