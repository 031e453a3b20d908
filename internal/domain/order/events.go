package order

import "github.com/example/ec-storefront/internal/readmodel"

const SliceName = "order"

const (
	ActionCreateOrder      = "order/createOrder"
	ActionGetOrder         = "order/getOrder"
	ActionGetOrderList     = "order/getOrderList"
	ActionUpdateOrder      = "order/updateOrder"
	ActionSetSelectedOrder = "order/setSelectedOrder"
)

// Order statuses used by the admin panel
const (
	StatusPreparing = "preparing"
	StatusShipping  = "shipping"
	StatusDelivered = "delivered"
	StatusRefund    = "refund"
)

// Toast and fallback messages
const (
	MsgCreateFailed = "Failed to place order"
	MsgLoadFailed   = "Failed to load orders"
	MsgUpdated      = "Order status updated"
	MsgUpdateFailed = "Failed to update order"
)

// ListResult is the body of GET /order and GET /order/me
type ListResult struct {
	Data         []readmodel.Order `json:"data"`
	TotalPageNum int               `json:"totalPageNum"`
}

// UpdateRequest is the body of PUT /order
type UpdateRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
