package product

import (
	"bytes"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/slice"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/readmodel"
)

type State struct {
	ProductList     []readmodel.Product `json:"productList"`
	SelectedProduct *readmodel.Product  `json:"selectedProduct"`
	TotalPageNum    int                 `json:"totalPageNum"`
	Loading         bool                `json:"loading"`
	Error           string              `json:"error"`
	// Success tells the admin dialog whether the last mutation went through
	Success bool `json:"success"`
}

func Initial() State {
	return State{ProductList: []readmodel.Product{}, TotalPageNum: 1}
}

// Reduce applies a product action to state
func Reduce(state State, action store.Action) (State, error) {
	base, phase := slice.Split(action.Type)

	switch base {
	case ActionGetProductList:
		switch phase {
		case slice.PhasePending:
			state.Loading = true
		case slice.PhaseFulfilled:
			var res ListResult
			if err := action.Decode(&res); err != nil {
				return state, err
			}
			state.Loading = false
			state.Error = ""
			state.ProductList = nonNil(res.Data)
			state.TotalPageNum = max(res.TotalPageNum, 1)
		case slice.PhaseRejected:
			state.Loading = false
			state.Error = slice.RejectionMessage(action)
		}
	case ActionGetProductDetail:
		switch phase {
		case slice.PhasePending:
			state.Loading = true
			state.SelectedProduct = nil
		case slice.PhaseFulfilled:
			var p readmodel.Product
			if err := action.Decode(&p); err != nil {
				return state, err
			}
			state.Loading = false
			state.Error = ""
			state.Success = true
			state.SelectedProduct = &p
		case slice.PhaseRejected:
			state.Loading = false
			state.Error = slice.RejectionMessage(action)
			state.Success = false
			state.SelectedProduct = nil
		}
	case ActionCreateProduct, ActionEditProduct, ActionDeleteProduct:
		switch phase {
		case slice.PhasePending:
			state.Loading = true
		case slice.PhaseFulfilled:
			state.Loading = false
			state.Error = ""
			state.Success = true
		case slice.PhaseRejected:
			state.Loading = false
			state.Error = slice.RejectionMessage(action)
			state.Success = false
		}
	case ActionSetSelectedProduct:
		if len(action.Payload) == 0 || bytes.Equal(action.Payload, []byte("null")) {
			state.SelectedProduct = nil
			break
		}
		var p readmodel.Product
		if err := action.Decode(&p); err != nil {
			return state, err
		}
		state.SelectedProduct = &p
	case ActionClearError:
		state.Error = ""
		state.Success = false
	default:
		return state, fmt.Errorf("product: unknown action %s", action.Type)
	}
	return state, nil
}

func nonNil(list []readmodel.Product) []readmodel.Product {
	if list == nil {
		return []readmodel.Product{}
	}
	return list
}
