package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/projection"
	"github.com/example/ec-storefront/internal/readmodel"
)

type staticState projection.RootState

func (s staticState) State() projection.RootState { return projection.RootState(s) }

func newTestQueryHandler(mutate func(*projection.RootState)) *Handler {
	state := projection.Initial()
	mutate(&state)
	return NewHandler(staticState(state))
}

// ============================================
// Cart Query Tests
// ============================================

func TestHandler_CartSummary(t *testing.T) {
	handler := newTestQueryHandler(func(s *projection.RootState) {
		s.Cart.CartList = []readmodel.CartItem{
			{ID: "l1", Product: readmodel.Product{ID: "p1", Name: "Shirt", Price: 15000}, Size: "m", Qty: 2},
		}
		s.Cart.TotalPrice = 30000
		s.Cart.CartItemCount = 1
	})

	summary := handler.CartSummary()

	assert.False(t, summary.Empty)
	assert.Equal(t, 1, summary.ItemCount)
	assert.Equal(t, "₩ 30,000", summary.Total)
	require.Len(t, summary.Lines, 1)
	assert.Equal(t, "₩ 15,000", summary.Lines[0].Price)
	assert.Equal(t, "₩ 30,000", summary.Lines[0].Subtotal)
}

func TestHandler_CartSummary_Empty(t *testing.T) {
	handler := newTestQueryHandler(func(*projection.RootState) {})

	summary := handler.CartSummary()

	assert.True(t, summary.Empty)
	assert.Equal(t, "₩ 0", summary.Total)
	assert.NotNil(t, summary.Lines)
}

// ============================================
// Product Query Tests
// ============================================

func TestHandler_ProductList(t *testing.T) {
	handler := newTestQueryHandler(func(s *projection.RootState) {
		s.Product.ProductList = []readmodel.Product{
			{ID: "p1", Name: "Shirt", Price: 1200, Stock: map[string]int{"s": 2, "m": 0}},
			{ID: "p2", Name: "Cap", Price: 900},
		}
		s.Product.TotalPageNum = 3
	})

	view := handler.ProductList()

	assert.Equal(t, 3, view.TotalPageNum)
	require.Len(t, view.Rows, 2)
	assert.Equal(t, "₩ 1,200", view.Rows[0].Price)
	assert.Equal(t, []SizeOption{
		{Size: "m", Stock: 0, SoldOut: true},
		{Size: "s", Stock: 2, SoldOut: false},
	}, view.Rows[0].Sizes)
	assert.Empty(t, view.Rows[1].Sizes)
}

func TestHandler_SelectedProduct(t *testing.T) {
	handler := newTestQueryHandler(func(*projection.RootState) {})
	_, ok := handler.SelectedProduct()
	assert.False(t, ok)

	handler = newTestQueryHandler(func(s *projection.RootState) {
		s.Product.SelectedProduct = &readmodel.Product{ID: "p9", Name: "Coat", Price: 99000}
	})
	row, ok := handler.SelectedProduct()
	require.True(t, ok)
	assert.Equal(t, "Coat", row.Name)
	assert.Equal(t, "₩ 99,000", row.Price)
}

// ============================================
// Order Query Tests
// ============================================

func TestHandler_OrderList(t *testing.T) {
	created := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	handler := newTestQueryHandler(func(s *projection.RootState) {
		s.Order.OrderList = []readmodel.Order{{
			ID:         "o1",
			OrderNum:   "A-1",
			Items:      []readmodel.OrderItem{{Qty: 1}, {Qty: 2}},
			TotalPrice: 45000,
			Status:     "preparing",
			ShipTo:     readmodel.ShipTo{Address: "1 Main St", City: "Seoul"},
			Contact:    readmodel.Contact{FirstName: "Bob", LastName: "Lee"},
			CreatedAt:  created,
		}}
		s.Order.Loading = true
	})

	view := handler.OrderList()

	assert.True(t, view.Loading)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, OrderRow{
		ID:        "o1",
		OrderNum:  "A-1",
		CreatedAt: "2026-03-05",
		Contact:   "Bob Lee",
		Address:   "1 Main St Seoul",
		ItemCount: 2,
		Total:     "₩ 45,000",
		Status:    "preparing",
	}, view.Rows[0])
}
