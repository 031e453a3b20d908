package ui

import (
	"fmt"

	"github.com/example/ec-storefront/internal/infrastructure/store"
)

// State holds the single active toast. Seq increases on every show so a
// repeated identical message is still a new toast.
type State struct {
	Toast *Toast `json:"toast"`
	Seq   int    `json:"seq"`
}

func Initial() State {
	return State{}
}

// Reduce applies a ui action to state
func Reduce(state State, action store.Action) (State, error) {
	switch action.Type {
	case ActionShowToastMessage:
		var toast Toast
		if err := action.Decode(&toast); err != nil {
			return state, err
		}
		state.Toast = &toast
		state.Seq++
	case ActionHideToast:
		state.Toast = nil
	default:
		return state, fmt.Errorf("ui: unknown action %s", action.Type)
	}
	return state, nil
}
