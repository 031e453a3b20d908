package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/api/mocks"
	"github.com/example/ec-storefront/internal/domain/slice/slicetest"
	"github.com/example/ec-storefront/internal/domain/ui"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/example/ec-storefront/internal/search"
)

type fakeCart struct {
	st        *slicetest.Store[State]
	calls     int
	seenTypes []string
	err       error
}

func (c *fakeCart) GetCartQty(ctx context.Context) (int, error) {
	c.calls++
	c.seenTypes = c.st.Types()
	return 0, c.err
}

func newTestOrderService() (*Service, *mocks.MockRequester, *slicetest.Store[State], *fakeCart) {
	requester := mocks.NewMockRequester()
	st := slicetest.New(SliceName, Initial(), Reduce)
	cart := &fakeCart{st: st}
	log, _ := test.NewNullLogger()
	return NewService(requester, st, ui.NewService(st), cart, log), requester, st, cart
}

func orderRequest() readmodel.OrderRequest {
	return readmodel.OrderRequest{
		TotalPrice: 30000,
		ShipTo:     readmodel.ShipTo{Address: "1 Main St", City: "Seoul", Zip: "04524"},
		Contact:    readmodel.Contact{FirstName: "Ada", LastName: "Kim", Contact: "010-0000-0000"},
		OrderList:  []readmodel.OrderLine{{ProductID: "p1", Size: "m", Qty: 2, Price: 15000}},
	}
}

func lastToast(t *testing.T, st *slicetest.Store[State]) ui.Toast {
	t.Helper()
	raws := st.Payloads(ui.ActionShowToastMessage)
	require.NotEmpty(t, raws)
	var toast ui.Toast
	require.NoError(t, json.Unmarshal(raws[len(raws)-1], &toast))
	return toast
}

// ============================================
// CreateOrder Tests
// ============================================

func TestService_CreateOrder_RefreshesCartAfterFulfilment(t *testing.T) {
	service, requester, st, cart := newTestOrderService()
	requester.Respond(http.MethodPost, "/order", map[string]any{"orderNum": "ORD-1001"})

	num, err := service.CreateOrder(context.Background(), orderRequest())
	require.NoError(t, err)
	assert.Equal(t, "ORD-1001", num)
	assert.Equal(t, "ORD-1001", st.State().OrderNum)

	assert.Equal(t, 1, cart.calls)
	assert.Equal(t, []string{"order/createOrder/pending", "order/createOrder/fulfilled"}, cart.seenTypes)
}

func TestService_CreateOrder_CartRefreshFailureIsNotFatal(t *testing.T) {
	service, requester, _, cart := newTestOrderService()
	cart.err = errors.New("cart unavailable")
	requester.Respond(http.MethodPost, "/order", map[string]any{"orderNum": "ORD-1002"})

	_, err := service.CreateOrder(context.Background(), orderRequest())
	assert.NoError(t, err)
}

func TestService_CreateOrder_Rejected(t *testing.T) {
	service, requester, st, cart := newTestOrderService()
	requester.FailWith(http.MethodPost, "/order", http.StatusBadRequest, "Shirt (m) is out of stock")

	_, err := service.CreateOrder(context.Background(), orderRequest())
	require.Error(t, err)

	assert.Equal(t, 0, cart.calls)
	assert.Equal(t, "Shirt (m) is out of stock", st.State().Error)
	assert.Equal(t, ui.Toast{Message: "Shirt (m) is out of stock", Status: ui.StatusError}, lastToast(t, st))
}

func TestService_CreateOrder_RejectedWithoutMessage(t *testing.T) {
	service, requester, st, _ := newTestOrderService()
	requester.Respond(http.MethodPost, "/order", map[string]any{})

	_, err := service.CreateOrder(context.Background(), orderRequest())
	require.Error(t, err)
	assert.Equal(t, MsgCreateFailed, lastToast(t, st).Message)
}

func TestService_CreateOrder_Empty(t *testing.T) {
	service, requester, _, _ := newTestOrderService()

	_, err := service.CreateOrder(context.Background(), readmodel.OrderRequest{})

	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Empty(t, requester.Calls)
}

// ============================================
// List Tests
// ============================================

func TestService_GetOrder(t *testing.T) {
	service, requester, st, _ := newTestOrderService()
	requester.Respond(http.MethodGet, "/order/me", map[string]any{
		"data":         []readmodel.Order{{ID: "o1", OrderNum: "ORD-1", Status: StatusPreparing}},
		"totalPageNum": 2,
	})

	_, err := service.GetOrder(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, "2", requester.LastCall().Params.Get("page"))
	state := st.State()
	assert.Len(t, state.OrderList, 1)
	assert.Equal(t, 2, state.TotalPageNum)
}

func TestService_GetOrderList_RejectedShowsToast(t *testing.T) {
	service, requester, st, _ := newTestOrderService()
	requester.FailWith(http.MethodGet, "/order", http.StatusForbidden, "admin only")

	_, err := service.GetOrderList(context.Background(), search.New(1).With("orderNum", "ORD"))
	require.Error(t, err)

	assert.Equal(t, "admin only", st.State().Error)
	assert.Equal(t, ui.Toast{Message: MsgLoadFailed, Status: ui.StatusError}, lastToast(t, st))
	assert.Equal(t, "ORD", requester.LastCall().Params.Get("orderNum"))
}

// ============================================
// UpdateOrder Tests
// ============================================

func TestService_UpdateOrder_RefreshesFirstPage(t *testing.T) {
	service, requester, st, _ := newTestOrderService()
	requester.Respond(http.MethodPut, "/order", nil)
	requester.Respond(http.MethodGet, "/order", map[string]any{"data": []readmodel.Order{}, "totalPageNum": 1})

	require.NoError(t, service.UpdateOrder(context.Background(), "o1", StatusShipping))

	assert.Equal(t, 1, requester.CallCount(http.MethodPut, "/order"))
	assert.Equal(t, UpdateRequest{ID: "o1", Status: StatusShipping}, requester.Calls[0].Body)
	assert.Equal(t, "1", requester.LastCall().Params.Get("page"))
	assert.True(t, st.State().Success)
	assert.Equal(t, ui.Toast{Message: MsgUpdated, Status: ui.StatusSuccess}, lastToast(t, st))
}

func TestService_UpdateOrder_Rejected(t *testing.T) {
	service, requester, st, _ := newTestOrderService()
	requester.FailWith(http.MethodPut, "/order", http.StatusBadRequest, "invalid status")

	err := service.UpdateOrder(context.Background(), "o1", "lost")
	require.Error(t, err)

	assert.False(t, st.State().Success)
	assert.Equal(t, 0, requester.CallCount(http.MethodGet, "/order"))
}

func TestService_SetSelectedOrder(t *testing.T) {
	service, _, st, _ := newTestOrderService()
	ctx := context.Background()

	require.NoError(t, service.SetSelectedOrder(ctx, &readmodel.Order{ID: "o9"}))
	require.NotNil(t, st.State().SelectedOrder)
	assert.Equal(t, "o9", st.State().SelectedOrder.ID)

	require.NoError(t, service.SetSelectedOrder(ctx, nil))
	assert.Nil(t, st.State().SelectedOrder)
}
