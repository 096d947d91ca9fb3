package orderflow

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
)

// StateConflictError is returned for a transition attempted from an
// invalid source state. It names both sides; callers map it to 409.
type StateConflictError struct {
	OrderID   int
	Current   Status
	Requested Status
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("order %d is %s, cannot move to %s", e.OrderID, e.Current, e.Requested)
}
