package cart

const SliceName = "cart"

const (
	ActionAddToCart      = "cart/addToCart"
	ActionGetCartList    = "cart/getCartList"
	ActionDeleteCartItem = "cart/deleteCartItem"
	ActionUpdateQty      = "cart/updateQty"
	ActionGetCartQty     = "cart/getCartQty"
	ActionInitialCart    = "cart/initialCart"
)

// Toast and fallback messages
const (
	MsgItemAdded        = "Item added to cart"
	MsgAddFailed        = "Failed to add item to cart"
	MsgListFailed       = "Failed to load cart"
	MsgDeleteFailed     = "Failed to remove cart item"
	MsgUpdateQtyFailed  = "Failed to change quantity"
	MsgGetCartQtyFailed = "Failed to load cart quantity"
)

// AddToCartRequest is the body of POST /cart
type AddToCartRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
}

// UpdateQtyRequest is the body of PUT /cart/:id
type UpdateQtyRequest struct {
	Qty int `json:"qty"`
}
