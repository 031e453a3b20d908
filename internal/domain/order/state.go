package order

import (
	"bytes"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/slice"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/readmodel"
)

type State struct {
	OrderList     []readmodel.Order `json:"orderList"`
	OrderNum      string            `json:"orderNum"`
	SelectedOrder *readmodel.Order  `json:"selectedOrder"`
	TotalPageNum  int               `json:"totalPageNum"`
	Loading       bool              `json:"loading"`
	Error         string            `json:"error"`
	Success       bool              `json:"success"`
}

func Initial() State {
	return State{OrderList: []readmodel.Order{}, TotalPageNum: 1}
}

// Reduce applies an order action to state
func Reduce(state State, action store.Action) (State, error) {
	base, phase := slice.Split(action.Type)

	if base == ActionSetSelectedOrder {
		if len(action.Payload) == 0 || bytes.Equal(action.Payload, []byte("null")) {
			state.SelectedOrder = nil
			return state, nil
		}
		var o readmodel.Order
		if err := action.Decode(&o); err != nil {
			return state, err
		}
		state.SelectedOrder = &o
		return state, nil
	}

	switch base {
	case ActionCreateOrder, ActionGetOrder, ActionGetOrderList, ActionUpdateOrder:
	default:
		return state, fmt.Errorf("order: unknown action %s", action.Type)
	}

	switch phase {
	case slice.PhasePending:
		state.Loading = true
		return state, nil
	case slice.PhaseRejected:
		state.Loading = false
		state.Error = slice.RejectionMessage(action)
		if base == ActionUpdateOrder {
			state.Success = false
		}
		return state, nil
	case slice.PhaseFulfilled:
	default:
		return state, fmt.Errorf("order: unknown action %s", action.Type)
	}

	state.Loading = false
	state.Error = ""
	switch base {
	case ActionCreateOrder:
		var num string
		if err := action.Decode(&num); err != nil {
			return state, err
		}
		state.OrderNum = num
	case ActionGetOrder, ActionGetOrderList:
		var res ListResult
		if err := action.Decode(&res); err != nil {
			return state, err
		}
		if res.Data == nil {
			res.Data = []readmodel.Order{}
		}
		state.OrderList = res.Data
		state.TotalPageNum = max(res.TotalPageNum, 1)
	case ActionUpdateOrder:
		state.Success = true
	}
	return state, nil
}
