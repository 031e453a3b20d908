package query

// CartSummary is the cart view: badge count, lines and formatted total
type CartSummary struct {
	ItemCount  int            `json:"itemCount"`
	Lines      []CartLineView `json:"lines"`
	TotalPrice int            `json:"totalPrice"`
	Total      string         `json:"total"`
	Empty      bool           `json:"empty"`
}

type CartLineView struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
	Price     string `json:"price"`
	Subtotal  string `json:"subtotal"`
}

// SizeOption is one entry of the size picker. Sold-out sizes are listed
// but cannot be selected.
type SizeOption struct {
	Size    string `json:"size"`
	Stock   int    `json:"stock"`
	SoldOut bool   `json:"soldOut"`
}

type ProductRow struct {
	ID     string       `json:"id"`
	SKU    string       `json:"sku"`
	Name   string       `json:"name"`
	Price  string       `json:"price"`
	Image  string       `json:"image"`
	Status string       `json:"status"`
	Sizes  []SizeOption `json:"sizes"`
}

type ProductListView struct {
	Rows         []ProductRow `json:"rows"`
	TotalPageNum int          `json:"totalPageNum"`
	Loading      bool         `json:"loading"`
	Error        string       `json:"error"`
}

type OrderRow struct {
	ID        string `json:"id"`
	OrderNum  string `json:"orderNum"`
	CreatedAt string `json:"createdAt"`
	Contact   string `json:"contact"`
	Address   string `json:"address"`
	ItemCount int    `json:"itemCount"`
	Total     string `json:"total"`
	Status    string `json:"status"`
}

type OrderListView struct {
	Rows         []OrderRow `json:"rows"`
	TotalPageNum int        `json:"totalPageNum"`
	Loading      bool       `json:"loading"`
	Error        string     `json:"error"`
}
