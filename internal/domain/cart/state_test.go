package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/domain/slice"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

func action(t *testing.T, typ string, payload any) store.Action {
	t.Helper()
	a := store.Action{Slice: SliceName, Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		a.Payload = raw
	}
	return a
}

func apply(t *testing.T, state State, actions ...store.Action) State {
	t.Helper()
	for _, a := range actions {
		var err error
		state, err = Reduce(state, a)
		require.NoError(t, err)
	}
	return state
}

func TestReduce_LastSettlementWins(t *testing.T) {
	state := apply(t, Initial(),
		action(t, slice.Pending(ActionUpdateQty), nil),
		action(t, slice.Pending(ActionUpdateQty), nil),
		action(t, slice.Rejected(ActionUpdateQty), slice.Rejection{Message: "stock exceeded"}),
	)
	assert.False(t, state.Loading)
	assert.Equal(t, "stock exceeded", state.Error)

	state = apply(t, state, action(t, slice.Fulfilled(ActionUpdateQty), cartItems()))
	assert.Empty(t, state.Error)
	assert.Equal(t, 39000, state.TotalPrice)
}

func TestReduce_DoesNotShareList(t *testing.T) {
	first := apply(t, Initial(), action(t, slice.Fulfilled(ActionGetCartList), cartItems()))
	second := apply(t, first, action(t, slice.Fulfilled(ActionGetCartList), cartItems()[:1]))

	assert.Len(t, first.CartList, 2)
	assert.Len(t, second.CartList, 1)
}

func TestReduce_NegativeCountClamped(t *testing.T) {
	state := apply(t, Initial(), action(t, slice.Fulfilled(ActionGetCartQty), -3))
	assert.Equal(t, 0, state.CartItemCount)
}

func TestReduce_EmptyListFromNull(t *testing.T) {
	state := apply(t, Initial(), action(t, slice.Fulfilled(ActionGetCartList), []int(nil)))
	assert.NotNil(t, state.CartList)
	assert.Equal(t, 0, state.TotalPrice)
}

func TestReduce_UnknownAction(t *testing.T) {
	_, err := Reduce(Initial(), store.Action{Type: "cart/checkout"})
	assert.Error(t, err)
}
