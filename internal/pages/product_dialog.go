package pages

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/readmodel"
)

type DialogMode string

const (
	ModeNew  DialogMode = "new"
	ModeEdit DialogMode = "edit"
)

// StockEntry is one editable size row of the form
type StockEntry struct {
	Size string
	Qty  int
}

type ProductForm struct {
	SKU         string
	Name        string
	Description string
	Price       int
	Image       string
	Category    []string
	Status      string
	Stock       []StockEntry
}

func newProductForm() ProductForm {
	return ProductForm{Category: []string{}, Status: readmodel.StatusActive, Stock: []StockEntry{}}
}

func formFromProduct(p readmodel.Product) ProductForm {
	form := ProductForm{
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
		Category:    slices.Clone(p.Category),
		Status:      p.Status,
		Stock:       make([]StockEntry, 0, len(p.Stock)),
	}
	for size, qty := range p.Stock {
		form.Stock = append(form.Stock, StockEntry{Size: size, Qty: qty})
	}
	sort.Slice(form.Stock, func(i, j int) bool { return form.Stock[i].Size < form.Stock[j].Size })
	return form
}

// Input folds the stock rows into the request body. A later row for the
// same size wins.
func (f ProductForm) Input() readmodel.ProductInput {
	stock := make(map[string]int, len(f.Stock))
	for _, entry := range f.Stock {
		stock[entry.Size] = entry.Qty
	}
	return readmodel.ProductInput{
		SKU:         f.SKU,
		Name:        f.Name,
		Description: f.Description,
		Price:       f.Price,
		Image:       f.Image,
		Category:    f.Category,
		Status:      f.Status,
		Stock:       stock,
	}
}

// ProductDialog creates or edits a product
type ProductDialog struct {
	products *product.Service
	state    StateReader
	refresh  func(ctx context.Context) error
	log      logrus.FieldLogger

	mu         sync.Mutex
	mode       DialogMode
	visible    bool
	form       ProductForm
	stockError bool
}

func NewProductDialog(products *product.Service, state StateReader, refresh func(ctx context.Context) error, log logrus.FieldLogger) *ProductDialog {
	return &ProductDialog{
		products: products,
		state:    state,
		refresh:  refresh,
		log:      log.WithField("component", "product-dialog"),
		mode:     ModeNew,
		form:     newProductForm(),
	}
}

// Open shows the dialog. Edit mode starts from the selected product; new
// mode starts from an empty form. Errors of an earlier attempt are cleared.
func (d *ProductDialog) Open(ctx context.Context, mode DialogMode) error {
	st := d.state.State().Product
	if st.Error != "" || !st.Success {
		if err := d.products.ClearError(ctx); err != nil {
			return err
		}
	}

	form := newProductForm()
	if mode == ModeEdit {
		if st.SelectedProduct == nil {
			return ErrNoSelection
		}
		form = formFromProduct(*st.SelectedProduct)
	}

	d.mu.Lock()
	d.mode = mode
	d.form = form
	d.stockError = false
	d.visible = true
	d.mu.Unlock()
	return nil
}

func (d *ProductDialog) Close() {
	d.mu.Lock()
	d.visible = false
	d.mu.Unlock()
}

func (d *ProductDialog) Visible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible
}

func (d *ProductDialog) Mode() DialogMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

func (d *ProductDialog) Form() ProductForm {
	d.mu.Lock()
	defer d.mu.Unlock()
	form := d.form
	form.Category = slices.Clone(d.form.Category)
	form.Stock = slices.Clone(d.form.Stock)
	return form
}

// Update edits the form in place
func (d *ProductDialog) Update(fn func(form *ProductForm)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(&d.form)
}

func (d *ProductDialog) AddStock() {
	d.Update(func(f *ProductForm) { f.Stock = append(f.Stock, StockEntry{}) })
}

func (d *ProductDialog) DeleteStock(index int) {
	d.Update(func(f *ProductForm) {
		if index >= 0 && index < len(f.Stock) {
			f.Stock = slices.Delete(f.Stock, index, index+1)
		}
	})
}

func (d *ProductDialog) SetStock(index int, size string, qty int) {
	d.Update(func(f *ProductForm) {
		if index >= 0 && index < len(f.Stock) {
			f.Stock[index] = StockEntry{Size: size, Qty: qty}
		}
	})
}

// ToggleCategory adds the category or removes it when already present
func (d *ProductDialog) ToggleCategory(category string) {
	d.Update(func(f *ProductForm) {
		if i := slices.Index(f.Category, category); i >= 0 {
			f.Category = slices.Delete(f.Category, i, i+1)
			return
		}
		f.Category = append(f.Category, category)
	})
}

func (d *ProductDialog) StockError() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stockError
}

// Submit saves the form. A new product refreshes the table from page 1;
// an edit reloads page 1 through the product slice.
func (d *ProductDialog) Submit(ctx context.Context) error {
	d.mu.Lock()
	mode := d.mode
	form := d.form
	empty := len(form.Stock) == 0
	d.stockError = empty
	d.mu.Unlock()

	if empty {
		return ErrStockRequired
	}
	for _, entry := range form.Stock {
		if entry.Size == "" {
			return ErrStockSizeRequired
		}
	}

	switch mode {
	case ModeEdit:
		selected := d.state.State().Product.SelectedProduct
		if selected == nil {
			return ErrNoSelection
		}
		if _, err := d.products.EditProduct(ctx, selected.ID, form.Input()); err != nil {
			return err
		}
	default:
		if _, err := d.products.CreateProduct(ctx, form.Input()); err != nil {
			return err
		}
		if err := d.refresh(ctx); err != nil {
			d.log.WithError(err).Warn("refresh product list")
		}
	}

	d.Close()
	return nil
}
