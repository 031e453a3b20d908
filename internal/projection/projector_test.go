package projection

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/slice"
	"github.com/example/ec-storefront/internal/domain/ui"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

func action(t *testing.T, sliceName, typ string, payload any) store.Action {
	t.Helper()
	a := store.Action{Slice: sliceName, Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		a.Payload = raw
	}
	return a
}

func TestApply_RoutesBySlice(t *testing.T) {
	state := Initial()

	state, err := Apply(state, action(t, cart.SliceName, slice.Fulfilled(cart.ActionGetCartQty), 5))
	require.NoError(t, err)
	state, err = Apply(state, action(t, ui.SliceName, ui.ActionShowToastMessage, ui.Toast{Message: "hi", Status: ui.StatusSuccess}))
	require.NoError(t, err)

	assert.Equal(t, 5, state.Cart.CartItemCount)
	require.NotNil(t, state.UI.Toast)
	assert.Equal(t, "hi", state.UI.Toast.Message)
	assert.Equal(t, 1, state.Product.TotalPageNum)
}

func TestApply_ResetReturnsInitial(t *testing.T) {
	state, err := Apply(Initial(), action(t, cart.SliceName, slice.Fulfilled(cart.ActionGetCartQty), 5))
	require.NoError(t, err)

	state, err = Apply(state, action(t, SliceApp, ActionReset, nil))
	require.NoError(t, err)
	assert.Equal(t, Initial(), state)
}

func TestApply_UnknownSlice(t *testing.T) {
	_, err := Apply(Initial(), store.Action{Slice: "wishlist", Type: "wishlist/add"})
	assert.Error(t, err)

	_, err = Apply(Initial(), store.Action{Slice: SliceApp, Type: "app/boot"})
	assert.Error(t, err)
}

func TestRehydrated_ClearsTransientFlags(t *testing.T) {
	state := Initial()
	state.Cart.Loading = true
	state.Product.Loading = true
	state.User.Loading = true
	state.Order.Loading = true
	state.UI.Toast = &ui.Toast{Message: "x", Status: ui.StatusError}
	state.UI.Seq = 3
	state.Cart.CartItemCount = 2

	out := Rehydrated(state)

	assert.False(t, out.Cart.Loading || out.Product.Loading || out.User.Loading || out.Order.Loading)
	assert.Nil(t, out.UI.Toast)
	assert.Equal(t, 3, out.UI.Seq)
	assert.Equal(t, 2, out.Cart.CartItemCount)
}

func TestProjector_HandleActionPerClient(t *testing.T) {
	log, hook := test.NewNullLogger()
	p := NewProjector(log)
	ctx := context.Background()

	require.NoError(t, p.HandleAction(ctx, "c1", action(t, cart.SliceName, slice.Fulfilled(cart.ActionGetCartQty), 3)))
	require.NoError(t, p.HandleAction(ctx, "c2", action(t, product.SliceName, slice.Pending(product.ActionGetProductList), nil)))

	c1, ok := p.State("c1")
	require.True(t, ok)
	assert.Equal(t, 3, c1.Cart.CartItemCount)

	c2, ok := p.State("c2")
	require.True(t, ok)
	assert.True(t, c2.Product.Loading)
	assert.Equal(t, 0, c2.Cart.CartItemCount)

	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "c2", hook.LastEntry().Data["client"])
}

func TestProjector_HandleActionUnknownSlice(t *testing.T) {
	log, hook := test.NewNullLogger()
	p := NewProjector(log)

	assert.Error(t, p.HandleAction(context.Background(), "c1", store.Action{Slice: "nope", Type: "nope/x"}))
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	_, ok := p.State("c1")
	assert.False(t, ok)
}
