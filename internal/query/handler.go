package query

import (
	"sort"
	"strings"

	"github.com/example/ec-storefront/internal/format"
	"github.com/example/ec-storefront/internal/projection"
	"github.com/example/ec-storefront/internal/readmodel"
)

const dateLayout = "2006-01-02"

// StateReader exposes the current root state
type StateReader interface {
	State() projection.RootState
}

type Handler struct {
	state StateReader
}

func NewHandler(state StateReader) *Handler {
	return &Handler{state: state}
}

// Cart
func (h *Handler) CartSummary() CartSummary {
	c := h.state.State().Cart
	lines := make([]CartLineView, 0, len(c.CartList))
	for _, item := range c.CartList {
		lines = append(lines, CartLineView{
			ID:        item.ID,
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Size:      item.Size,
			Qty:       item.Qty,
			Price:     format.Currency(item.Price()),
			Subtotal:  format.Currency(item.Price() * item.Qty),
		})
	}
	return CartSummary{
		ItemCount:  c.CartItemCount,
		Lines:      lines,
		TotalPrice: c.TotalPrice,
		Total:      format.Currency(c.TotalPrice),
		Empty:      len(lines) == 0,
	}
}

// Products
func (h *Handler) ProductList() ProductListView {
	p := h.state.State().Product
	rows := make([]ProductRow, 0, len(p.ProductList))
	for _, item := range p.ProductList {
		rows = append(rows, productRow(item))
	}
	return ProductListView{
		Rows:         rows,
		TotalPageNum: p.TotalPageNum,
		Loading:      p.Loading,
		Error:        p.Error,
	}
}

// SelectedProduct returns the product shown by the detail view
func (h *Handler) SelectedProduct() (*ProductRow, bool) {
	p := h.state.State().Product.SelectedProduct
	if p == nil {
		return nil, false
	}
	row := productRow(*p)
	return &row, true
}

func productRow(p readmodel.Product) ProductRow {
	return ProductRow{
		ID:     p.ID,
		SKU:    p.SKU,
		Name:   p.Name,
		Price:  format.Currency(p.Price),
		Image:  p.Image,
		Status: p.Status,
		Sizes:  SizeOptions(p.Stock),
	}
}

// SizeOptions lists the sizes of a stock map in name order
func SizeOptions(stock map[string]int) []SizeOption {
	sizes := make([]string, 0, len(stock))
	for size := range stock {
		sizes = append(sizes, size)
	}
	sort.Strings(sizes)

	options := make([]SizeOption, 0, len(sizes))
	for _, size := range sizes {
		options = append(options, SizeOption{
			Size:    size,
			Stock:   stock[size],
			SoldOut: stock[size] <= 0,
		})
	}
	return options
}

// Orders
func (h *Handler) OrderList() OrderListView {
	o := h.state.State().Order
	rows := make([]OrderRow, 0, len(o.OrderList))
	for _, order := range o.OrderList {
		rows = append(rows, orderRow(order))
	}
	return OrderListView{
		Rows:         rows,
		TotalPageNum: o.TotalPageNum,
		Loading:      o.Loading,
		Error:        o.Error,
	}
}

func orderRow(o readmodel.Order) OrderRow {
	row := OrderRow{
		ID:        o.ID,
		OrderNum:  o.OrderNum,
		Contact:   strings.TrimSpace(o.Contact.FirstName + " " + o.Contact.LastName),
		Address:   strings.TrimSpace(o.ShipTo.Address + " " + o.ShipTo.City),
		ItemCount: len(o.Items),
		Total:     format.Currency(o.TotalPrice),
		Status:    o.Status,
	}
	if !o.CreatedAt.IsZero() {
		row.CreatedAt = o.CreatedAt.Format(dateLayout)
	}
	return row
}
