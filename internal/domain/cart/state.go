package cart

import (
	"fmt"

	"github.com/example/ec-storefront/internal/domain/slice"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/readmodel"
)

type State struct {
	CartList      []readmodel.CartItem `json:"cartList"`
	CartItemCount int                  `json:"cartItemCount"`
	TotalPrice    int                  `json:"totalPrice"`
	Loading       bool                 `json:"loading"`
	Error         string               `json:"error"`
}

func Initial() State {
	return State{CartList: []readmodel.CartItem{}}
}

// Reduce applies a cart action to state. Count actions only touch the badge
// count; list actions replace the list and recompute the total.
func Reduce(state State, action store.Action) (State, error) {
	base, phase := slice.Split(action.Type)

	switch phase {
	case slice.PhasePending:
		state.Loading = true
		return state, nil
	case slice.PhaseRejected:
		state.Loading = false
		state.Error = slice.RejectionMessage(action)
		return state, nil
	case slice.PhaseFulfilled:
		state.Loading = false
		state.Error = ""
	}

	switch base {
	case ActionAddToCart, ActionDeleteCartItem, ActionGetCartQty:
		var qty int
		if err := action.Decode(&qty); err != nil {
			return state, err
		}
		state.CartItemCount = max(qty, 0)
	case ActionGetCartList, ActionUpdateQty:
		var items []readmodel.CartItem
		if err := action.Decode(&items); err != nil {
			return state, err
		}
		if items == nil {
			items = []readmodel.CartItem{}
		}
		state.CartList = items
		state.TotalPrice = readmodel.TotalPrice(items)
	case ActionInitialCart:
		state.CartItemCount = 0
	default:
		return state, fmt.Errorf("cart: unknown action %s", action.Type)
	}
	return state, nil
}
