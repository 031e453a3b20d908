// Package pages holds the view controllers of the storefront. A controller
// owns the view-local state (form fields, inline errors, dialog visibility)
// and drives the slices and the list-view synchronizer.
package pages

import (
	"errors"

	"github.com/example/ec-storefront/internal/projection"
)

// Paths of the list views
const (
	LandingPath      = "/"
	AdminProductPath = "/admin/product"
	ProductPathBase  = "/product/"
)

// SearchField is the query key the product search boxes filter on
const SearchField = "name"

// Inline validation errors. None of them sends a request.
var (
	ErrSizeRequired        = errors.New("please select a size")
	ErrUnknownSize         = errors.New("size is not offered")
	ErrSoldOut             = errors.New("size is sold out")
	ErrLoginRequired       = errors.New("login required")
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrPolicyRequired      = errors.New("terms must be accepted")
	ErrStockRequired       = errors.New("at least one stock entry is required")
	ErrStockSizeRequired   = errors.New("every stock entry needs a size")
	ErrNoSelection         = errors.New("no product selected")
)

// StateReader exposes the current root state
type StateReader interface {
	State() projection.RootState
}

// Pusher navigates to a new location
type Pusher interface {
	Push(raw string)
}
