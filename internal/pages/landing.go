package pages

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/listview"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/example/ec-storefront/internal/search"
)

const msgNoProducts = "No products registered"

// LandingPage is the product grid filtered by the name in the URL
type LandingPage struct {
	list  *listview.Synchronizer
	state StateReader
}

func NewLandingPage(products *product.Service, nav listview.Navigator, state StateReader, log logrus.FieldLogger) *LandingPage {
	fetch := func(ctx context.Context, q search.Query) error {
		_, err := products.GetProductList(ctx, q)
		return err
	}
	return &LandingPage{
		list:  listview.New(nav, LandingPath, SearchField, fetch, listview.WithLogger(log)),
		state: state,
	}
}

func (p *LandingPage) Mount(ctx context.Context) error { return p.list.Mount(ctx) }
func (p *LandingPage) Unmount()                        { p.list.Unmount() }

func (p *LandingPage) Search(ctx context.Context, keyword string) error {
	return p.list.Search(ctx, keyword)
}

func (p *LandingPage) Clear(ctx context.Context) error {
	return p.list.Clear(ctx)
}

func (p *LandingPage) SelectPage(ctx context.Context, index int) error {
	return p.list.SelectPage(ctx, index)
}

func (p *LandingPage) List() *listview.Synchronizer { return p.list }

func (p *LandingPage) Products() []readmodel.Product {
	return p.state.State().Product.ProductList
}

// Loading is true while the first fetch or any later fetch is in flight
func (p *LandingPage) Loading() bool {
	return p.list.InitialLoading() || p.state.State().Product.Loading
}

// EmptyMessage is the text shown instead of the grid, or "" when the grid
// has items or is still loading
func (p *LandingPage) EmptyMessage() string {
	if p.Loading() || len(p.Products()) > 0 {
		return ""
	}
	if name := p.list.Query().Get(SearchField); name != "" {
		return fmt.Sprintf("No results for %s", name)
	}
	return msgNoProducts
}
