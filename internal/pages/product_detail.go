package pages

import (
	"context"
	"sync"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/query"
	"github.com/example/ec-storefront/internal/readmodel"
)

type ProductDetailPage struct {
	products *product.Service
	cart     *cart.Service
	state    StateReader
	nav      Pusher

	mu        sync.Mutex
	size      string
	sizeError bool
}

func NewProductDetailPage(products *product.Service, cartSvc *cart.Service, state StateReader, nav Pusher) *ProductDetailPage {
	return &ProductDetailPage{products: products, cart: cartSvc, state: state, nav: nav}
}

// Load shows the product with the given id and resets the size picker
func (p *ProductDetailPage) Load(ctx context.Context, id string) error {
	p.mu.Lock()
	p.size = ""
	p.sizeError = false
	p.mu.Unlock()

	_, err := p.products.GetProductDetail(ctx, id)
	return err
}

func (p *ProductDetailPage) Product() *readmodel.Product {
	return p.state.State().Product.SelectedProduct
}

func (p *ProductDetailPage) Sizes() []query.SizeOption {
	selected := p.Product()
	if selected == nil {
		return []query.SizeOption{}
	}
	return query.SizeOptions(selected.Stock)
}

// SelectSize picks a size. Sold-out sizes cannot be picked.
func (p *ProductDetailPage) SelectSize(size string) error {
	for _, opt := range p.Sizes() {
		if opt.Size != size {
			continue
		}
		if opt.SoldOut {
			return ErrSoldOut
		}
		p.mu.Lock()
		p.size = size
		p.sizeError = false
		p.mu.Unlock()
		return nil
	}
	return ErrUnknownSize
}

func (p *ProductDetailPage) Size() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// SizeError is true after an add attempt without a size
func (p *ProductDetailPage) SizeError() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sizeError
}

// AddItemToCart adds one unit in the picked size. Without a size it flags
// the picker; without a user it goes to the login view.
func (p *ProductDetailPage) AddItemToCart(ctx context.Context) error {
	selected := p.Product()
	if selected == nil {
		return ErrNoSelection
	}

	p.mu.Lock()
	size := p.size
	if size == "" {
		p.sizeError = true
	}
	p.mu.Unlock()
	if size == "" {
		return ErrSizeRequired
	}

	if p.state.State().User.User == nil {
		p.nav.Push(user.LoginPath)
		return ErrLoginRequired
	}

	_, err := p.cart.AddToCart(ctx, selected.ID, size)
	return err
}
