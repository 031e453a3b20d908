package slice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

// Lifecycle phases of an async operation
const (
	PhasePending   = "pending"
	PhaseFulfilled = "fulfilled"
	PhaseRejected  = "rejected"
)

// Dispatcher is the single mutation entry point of the store
type Dispatcher interface {
	Dispatch(ctx context.Context, slice, actionType, requestID string, payload any) error
}

// Rejection is the payload of every rejected action
type Rejection struct {
	Message string `json:"message"`
}

// RejectedError is returned by Run when the operation rejected
type RejectedError struct {
	Type    string
	Message string
	Err     error
}

func (e *RejectedError) Error() string {
	return e.Message
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

func Pending(actionType string) string   { return actionType + "/" + PhasePending }
func Fulfilled(actionType string) string { return actionType + "/" + PhaseFulfilled }
func Rejected(actionType string) string  { return actionType + "/" + PhaseRejected }

// Split separates "cart/addToCart/fulfilled" into the operation type and its
// phase. Synchronous actions have an empty phase.
func Split(actionType string) (base, phase string) {
	i := strings.LastIndex(actionType, "/")
	if i < 0 {
		return actionType, ""
	}
	switch suffix := actionType[i+1:]; suffix {
	case PhasePending, PhaseFulfilled, PhaseRejected:
		return actionType[:i], suffix
	}
	return actionType, ""
}

// Run executes op as a thunk: pending is dispatched first, then exactly one
// of fulfilled (carrying the result) or rejected (carrying the message). A
// rejected outcome is returned as *RejectedError.
func Run[T any](
	ctx context.Context,
	d Dispatcher,
	sliceName, actionType, fallback string,
	op func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	requestID := uuid.New().String()

	if err := d.Dispatch(ctx, sliceName, Pending(actionType), requestID, nil); err != nil {
		return zero, fmt.Errorf("dispatch %s: %w", Pending(actionType), err)
	}

	result, opErr := op(ctx)

	// The terminal action must land even when the caller's context is done.
	settleCtx := context.WithoutCancel(ctx)
	if opErr != nil {
		msg := api.Message(opErr, fallback)
		if err := d.Dispatch(settleCtx, sliceName, Rejected(actionType), requestID, Rejection{Message: msg}); err != nil {
			return zero, fmt.Errorf("dispatch %s: %w", Rejected(actionType), err)
		}
		return zero, &RejectedError{Type: actionType, Message: msg, Err: opErr}
	}

	if err := d.Dispatch(settleCtx, sliceName, Fulfilled(actionType), requestID, result); err != nil {
		return zero, fmt.Errorf("dispatch %s: %w", Fulfilled(actionType), err)
	}
	return result, nil
}

// RejectionMessage decodes the message of a rejected action
func RejectionMessage(action store.Action) string {
	var r Rejection
	if err := action.Decode(&r); err != nil {
		return api.GenericMessage
	}
	return r.Message
}
