package order

// Status is the order lifecycle state. Orders move forward through
// unpaid → preparing → ready → collected; cancelled and rejected are terminal
// exits available from any non-terminal state. No backward transitions exist.
type Status string

const (
	StatusUnpaid    Status = "unpaid"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCollected Status = "collected"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

var forward = map[Status]Status{
	StatusUnpaid:    StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusCollected,
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusUnpaid, StatusPreparing, StatusReady,
		StatusCollected, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCollected, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// Active reports whether the order counts against slot capacity.
func (s Status) Active() bool {
	return s != StatusCancelled && s != StatusRejected
}

// CanTransitionTo reports whether next is a legal transition from s: the next
// step in the forward chain, or a terminal exit from any non-terminal state.
func (s Status) CanTransitionTo(next Status) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	if next == StatusCancelled || next == StatusRejected {
		return true
	}
	return forward[s] == next
}
