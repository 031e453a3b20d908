package pages

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/slice"
	"github.com/example/ec-storefront/internal/domain/ui"
	"github.com/example/ec-storefront/internal/listview"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/example/ec-storefront/internal/search"
)

// AdminProductPage is the product table of the admin panel
type AdminProductPage struct {
	products *product.Service
	toast    ui.Notifier
	state    StateReader
	list     *listview.Synchronizer
	dialog   *ProductDialog
	log      logrus.FieldLogger
}

func NewAdminProductPage(
	products *product.Service,
	toast ui.Notifier,
	nav listview.Navigator,
	state StateReader,
	log logrus.FieldLogger,
) *AdminProductPage {
	p := &AdminProductPage{
		products: products,
		toast:    toast,
		state:    state,
		log:      log.WithField("component", "admin-product"),
	}
	fetch := func(ctx context.Context, q search.Query) error {
		_, err := products.GetProductList(ctx, q)
		return err
	}
	p.list = listview.New(nav, AdminProductPath, SearchField, fetch, listview.WithLogger(log))
	p.dialog = NewProductDialog(products, state, p.RefreshList, log)
	return p
}

func (p *AdminProductPage) Mount(ctx context.Context) error { return p.list.Mount(ctx) }
func (p *AdminProductPage) Unmount()                        { p.list.Unmount() }

func (p *AdminProductPage) List() *listview.Synchronizer { return p.list }
func (p *AdminProductPage) Dialog() *ProductDialog       { return p.dialog }

func (p *AdminProductPage) Products() []readmodel.Product {
	return p.state.State().Product.ProductList
}

func (p *AdminProductPage) Search(ctx context.Context, keyword string) error {
	return p.list.Search(ctx, keyword)
}

func (p *AdminProductPage) SelectPage(ctx context.Context, index int) error {
	return p.list.SelectPage(ctx, index)
}

// RefreshList goes back to page 1 keeping the filter
func (p *AdminProductPage) RefreshList(ctx context.Context) error {
	return p.list.SetQuery(ctx, p.list.Query().WithPage(1))
}

// DeleteItem deletes a product and reloads the table. Deleting the only
// row of a later page moves one page back.
func (p *AdminProductPage) DeleteItem(ctx context.Context, id string) error {
	rows := len(p.Products())

	if _, err := p.products.DeleteProduct(ctx, id); err != nil {
		var rejected *slice.RejectedError
		if errors.As(err, &rejected) {
			if toastErr := p.toast.ShowToastMessage(ctx, rejected.Message, ui.StatusError); toastErr != nil {
				p.log.WithError(toastErr).Warn("show toast")
			}
		}
		return err
	}

	q := p.list.Query()
	if rows == 1 && q.Page > 1 {
		return p.list.SetQuery(ctx, q.WithPage(q.Page-1))
	}
	return p.list.Refresh(ctx)
}

// OpenEditForm selects item and opens the dialog in edit mode
func (p *AdminProductPage) OpenEditForm(ctx context.Context, item readmodel.Product) error {
	if err := p.products.SetSelectedProduct(ctx, &item); err != nil {
		return err
	}
	return p.dialog.Open(ctx, ModeEdit)
}

func (p *AdminProductPage) NewItem(ctx context.Context) error {
	return p.dialog.Open(ctx, ModeNew)
}
