package command

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/api/mocks"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/ui"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/projection/projectiontest"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/example/ec-storefront/internal/session"
)

type nopNavigator struct{}

func (nopNavigator) Push(string)   {}
func (nopNavigator) Reload(string) {}

type fixture struct {
	handler   *Handler
	requester *mocks.MockRequester
	store     *projectiontest.Store
	session   *session.Session
}

func newFixture() *fixture {
	log, _ := test.NewNullLogger()
	f := &fixture{
		requester: mocks.NewMockRequester(),
		store:     projectiontest.New(),
		session:   session.New(session.NewMemoryStorage()),
	}
	toast := ui.NewService(f.store)
	cartSvc := cart.NewService(f.requester, f.store, toast, log)
	userSvc := user.NewService(f.requester, f.store, toast, f.session, nopNavigator{}, cartSvc, log)
	orderSvc := order.NewService(f.requester, f.store, toast, cartSvc, log)
	f.handler = NewHandler(userSvc, cartSvc, orderSvc, f.store, log)
	return f
}

var bob = readmodel.User{ID: "u2", Email: "bob@example.com", Name: "Bob", Role: "customer"}

func token(t *testing.T) string {
	t.Helper()
	tok, _, err := auth.NewIssuer("secret", time.Hour).IssueAt(time.Now(), bob.ID, bob.Email, bob.Role)
	require.NoError(t, err)
	return tok
}

func TestHandler_RestoreSession_LoadsCartQty(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.session.Begin(token(t)))
	f.requester.Respond(http.MethodGet, "/user/me", map[string]any{"user": bob})
	f.requester.Respond(http.MethodGet, "/cart/qty", map[string]any{"qty": 4})

	u, err := f.handler.RestoreSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bob.Email, u.Email)

	state := f.store.State()
	assert.Equal(t, 4, state.Cart.CartItemCount)
	require.NotNil(t, state.User.User)
	assert.Equal(t, bob.ID, state.User.User.ID)
}

func TestHandler_RestoreSession_NoTokenResetsCart(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.store.Dispatch(context.Background(), cart.SliceName, cart.ActionGetCartQty+"/fulfilled", "", 5))

	_, err := f.handler.RestoreSession(context.Background())
	assert.Error(t, err)

	assert.Zero(t, f.requester.CallCount(http.MethodGet, "/user/me"))
	assert.Zero(t, f.requester.CallCount(http.MethodGet, "/cart/qty"))
	assert.Equal(t, 0, f.store.State().Cart.CartItemCount)
	assert.Nil(t, f.store.State().User.User)
}

func TestHandler_RestoreSession_RejectedTokenEndsSession(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.session.Begin(token(t)))
	f.requester.FailWith(http.MethodGet, "/user/me", http.StatusUnauthorized, "invalid token")

	_, err := f.handler.RestoreSession(context.Background())
	assert.Error(t, err)

	assert.False(t, f.session.HasToken())
	assert.Zero(t, f.requester.CallCount(http.MethodGet, "/cart/qty"))
	assert.Empty(t, f.store.State().User.LoginError)
}

func TestHandler_LoginWithEmail_ThenCartQty(t *testing.T) {
	f := newFixture()
	f.requester.Respond(http.MethodPost, "/auth/login", map[string]any{"token": token(t), "user": bob})
	f.requester.Respond(http.MethodGet, "/cart/qty", map[string]any{"qty": 2})

	_, err := f.handler.LoginWithEmail(context.Background(), LoginWithEmail{Email: bob.Email, Password: "secret123"})
	require.NoError(t, err)

	assert.True(t, f.session.HasToken())
	assert.Equal(t, 2, f.store.State().Cart.CartItemCount)

	login := f.requester.Calls[0]
	assert.Equal(t, "/auth/login", login.Path)
	assert.Equal(t, "/cart/qty", f.requester.LastCall().Path)
}

func TestHandler_LoginWithEmail_FailureSkipsCart(t *testing.T) {
	f := newFixture()
	f.requester.FailWith(http.MethodPost, "/auth/login", http.StatusBadRequest, "wrong password")

	_, err := f.handler.LoginWithEmail(context.Background(), LoginWithEmail{Email: bob.Email, Password: "nope"})
	assert.Error(t, err)

	assert.Equal(t, "wrong password", f.store.State().User.LoginError)
	assert.Zero(t, f.requester.CallCount(http.MethodGet, "/cart/qty"))
}

func TestHandler_LoginWithGoogle_CartQtyFailureIsNotLoginFailure(t *testing.T) {
	f := newFixture()
	f.requester.Respond(http.MethodPost, "/auth/google", map[string]any{"token": token(t), "user": bob})
	f.requester.FailWith(http.MethodGet, "/cart/qty", http.StatusInternalServerError, "boom")

	u, err := f.handler.LoginWithGoogle(context.Background(), LoginWithGoogle{IDToken: "google-id-token"})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, u.ID)
	assert.Equal(t, "boom", f.store.State().Cart.Error)
}

func TestHandler_PlaceOrder_EmptyCart(t *testing.T) {
	f := newFixture()

	_, err := f.handler.PlaceOrder(context.Background(), PlaceOrder{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.requester.Calls)
}

func TestHandler_PlaceOrder_BuildsRequestFromCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	items := []readmodel.CartItem{
		{ID: "l1", Product: readmodel.Product{ID: "p1", Price: 1200}, Size: "s", Qty: 2},
		{ID: "l2", Product: readmodel.Product{ID: "p2", Price: 500}, Size: "m", Qty: 1},
	}
	require.NoError(t, f.store.Dispatch(ctx, cart.SliceName, cart.ActionGetCartList+"/fulfilled", "", items))
	f.requester.Respond(http.MethodPost, "/order", map[string]any{"orderNum": "A-1001"})
	f.requester.Respond(http.MethodGet, "/cart/qty", map[string]any{"qty": 0})

	num, err := f.handler.PlaceOrder(ctx, PlaceOrder{
		ShipTo:  readmodel.ShipTo{Address: "1 Main St", City: "Seoul", Zip: "04524"},
		Contact: readmodel.Contact{FirstName: "Bob", LastName: "Lee", Contact: "010-0000-0000"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A-1001", num)

	req, ok := f.requester.Calls[0].Body.(readmodel.OrderRequest)
	require.True(t, ok)
	assert.Equal(t, 2900, req.TotalPrice)
	require.Len(t, req.OrderList, 2)
	assert.Equal(t, readmodel.OrderLine{ProductID: "p1", Size: "s", Qty: 2, Price: 1200}, req.OrderList[0])
	assert.Equal(t, "Seoul", req.ShipTo.City)

	state := f.store.State()
	assert.Equal(t, "A-1001", state.Order.OrderNum)
	assert.Equal(t, 0, state.Cart.CartItemCount)
	assert.Equal(t, 1, f.requester.CallCount(http.MethodGet, "/cart/qty"))
}
