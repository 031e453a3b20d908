package product

import "github.com/example/ec-storefront/internal/readmodel"

const SliceName = "product"

const (
	ActionGetProductList     = "product/getProductList"
	ActionGetProductDetail   = "product/getProductDetail"
	ActionCreateProduct      = "product/createProduct"
	ActionEditProduct        = "product/editProduct"
	ActionDeleteProduct      = "product/deleteProduct"
	ActionSetSelectedProduct = "product/setSelectedProduct"
	ActionClearError         = "product/clearError"
)

// Toast and fallback messages
const (
	MsgCreated      = "Product created"
	MsgEdited       = "Product updated"
	MsgDeleted      = "Product deleted"
	MsgListFailed   = "Failed to load products"
	MsgDetailFailed = "Failed to load product"
	MsgCreateFailed = "Failed to create product"
	MsgEditFailed   = "Failed to update product"
	MsgDeleteFailed = "Failed to delete product"
)

// ListResult is the body of GET /product
type ListResult struct {
	Data         []readmodel.Product `json:"data"`
	TotalPageNum int                 `json:"totalPageNum"`
}
