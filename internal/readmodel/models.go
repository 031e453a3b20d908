package readmodel

import "time"

// Product statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is the profile returned by the auth endpoints
type User struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user may use the admin panel
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// Product is the client-side read model of a catalog product
type Product struct {
	ID          string         `json:"_id"`
	SKU         string         `json:"sku"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       int            `json:"price"`
	Image       string         `json:"image"`
	Category    []string       `json:"category"`
	Status      string         `json:"status"`
	Stock       map[string]int `json:"stock"`
}

// ProductInput is the body sent when creating or editing a product
type ProductInput struct {
	SKU         string         `json:"sku"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       int            `json:"price"`
	Image       string         `json:"image"`
	Category    []string       `json:"category"`
	Status      string         `json:"status"`
	Stock       map[string]int `json:"stock"`
}

// CartItem is a cart line with the product populated by the backend
type CartItem struct {
	ID      string  `json:"_id"`
	Product Product `json:"productId"`
	Size    string  `json:"size"`
	Qty     int     `json:"qty"`
}

// Price is the unit price derived from the populated product
func (c CartItem) Price() int {
	return c.Product.Price
}

// TotalPrice sums price*qty over the given cart lines
func TotalPrice(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Price() * item.Qty
	}
	return total
}

// OrderItem represents a line of a placed order
type OrderItem struct {
	ID      string  `json:"_id,omitempty"`
	Product Product `json:"productId"`
	Size    string  `json:"size"`
	Qty     int     `json:"qty"`
	Price   int     `json:"price"`
}

// ShipTo is the shipping address of an order
type ShipTo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

// Contact is the recipient of an order
type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Contact   string `json:"contact"`
}

// Order is the client-side read model of an order
type Order struct {
	ID         string      `json:"_id"`
	OrderNum   string      `json:"orderNum"`
	Items      []OrderItem `json:"items"`
	TotalPrice int         `json:"totalPrice"`
	Status     string      `json:"status"`
	ShipTo     ShipTo      `json:"shipTo"`
	Contact    Contact     `json:"contact"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// OrderLine is a line of an order creation request
type OrderLine struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
	Price     int    `json:"price"`
}

// OrderRequest is the body sent when placing an order
type OrderRequest struct {
	TotalPrice int         `json:"totalPrice"`
	ShipTo     ShipTo      `json:"shipTo"`
	Contact    Contact     `json:"contact"`
	OrderList  []OrderLine `json:"orderList"`
}

// OrderLinesFromCart converts cart lines into order lines
func OrderLinesFromCart(items []CartItem) []OrderLine {
	lines := make([]OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, OrderLine{
			ProductID: item.Product.ID,
			Size:      item.Size,
			Qty:       item.Qty,
			Price:     item.Price(),
		})
	}
	return lines
}
