package user

import (
	"fmt"

	"github.com/example/ec-storefront/internal/domain/slice"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/readmodel"
)

type State struct {
	User              *readmodel.User `json:"user"`
	Loading           bool            `json:"loading"`
	LoginError        string          `json:"loginError"`
	RegistrationError string          `json:"registrationError"`
}

func Initial() State {
	return State{}
}

// Reduce applies a user action to state. The silent token restore never
// touches loading or loginError.
func Reduce(state State, action store.Action) (State, error) {
	base, phase := slice.Split(action.Type)

	switch base {
	case ActionLoginWithEmail, ActionLoginWithGoogle:
		switch phase {
		case slice.PhasePending:
			state.Loading = true
		case slice.PhaseFulfilled:
			u, err := decodeUser(action)
			if err != nil {
				return state, err
			}
			state.Loading = false
			state.User = u
			state.LoginError = ""
		case slice.PhaseRejected:
			state.Loading = false
			state.LoginError = slice.RejectionMessage(action)
		}
	case ActionLoginWithToken:
		switch phase {
		case slice.PhaseFulfilled:
			u, err := decodeUser(action)
			if err != nil {
				return state, err
			}
			state.User = u
		case slice.PhaseRejected:
			state.User = nil
		}
	case ActionRegisterUser:
		switch phase {
		case slice.PhasePending:
			state.Loading = true
		case slice.PhaseFulfilled:
			state.Loading = false
			state.RegistrationError = ""
		case slice.PhaseRejected:
			state.Loading = false
			state.RegistrationError = slice.RejectionMessage(action)
		}
	case ActionClearErrors:
		state.LoginError = ""
		state.RegistrationError = ""
	default:
		return state, fmt.Errorf("user: unknown action %s", action.Type)
	}
	return state, nil
}

func decodeUser(action store.Action) (*readmodel.User, error) {
	var u readmodel.User
	if err := action.Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}
