package command

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/projection"
	"github.com/example/ec-storefront/internal/readmodel"
)

var ErrEmptyCart = errors.New("cart is empty")

// StateReader exposes the current root state
type StateReader interface {
	State() projection.RootState
}

// Handler sequences operations that span slices. Each follow-up starts only
// after the operation it depends on has settled.
type Handler struct {
	userSvc  *user.Service
	cartSvc  *cart.Service
	orderSvc *order.Service
	state    StateReader
	log      logrus.FieldLogger
}

func NewHandler(
	userSvc *user.Service,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	state StateReader,
	log logrus.FieldLogger,
) *Handler {
	return &Handler{
		userSvc:  userSvc,
		cartSvc:  cartSvc,
		orderSvc: orderSvc,
		state:    state,
		log:      log.WithField("component", "command"),
	}
}

// RestoreSession tries the stored token. A restored session loads the cart
// count; a failed one resets it without contacting the cart endpoint.
func (h *Handler) RestoreSession(ctx context.Context) (*readmodel.User, error) {
	u, err := h.userSvc.LoginWithToken(ctx)
	if err != nil {
		if resetErr := h.cartSvc.InitialCart(ctx); resetErr != nil {
			h.log.WithError(resetErr).Warn("reset cart after failed restore")
		}
		h.log.WithError(err).Debug("session not restored")
		return nil, err
	}

	h.refreshCartQty(ctx)
	return u, nil
}

// LoginWithEmail logs in and then loads the cart count
func (h *Handler) LoginWithEmail(ctx context.Context, cmd LoginWithEmail) (*readmodel.User, error) {
	u, err := h.userSvc.LoginWithEmail(ctx, cmd.Email, cmd.Password)
	if err != nil {
		return nil, err
	}
	h.refreshCartQty(ctx)
	return u, nil
}

// LoginWithGoogle logs in with a federated token and then loads the cart count
func (h *Handler) LoginWithGoogle(ctx context.Context, cmd LoginWithGoogle) (*readmodel.User, error) {
	u, err := h.userSvc.LoginWithGoogle(ctx, cmd.IDToken)
	if err != nil {
		return nil, err
	}
	h.refreshCartQty(ctx)
	return u, nil
}

// PlaceOrder turns the loaded cart into an order. The cart count is
// refreshed by the order slice once the order is confirmed.
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (string, error) {
	items := h.state.State().Cart.CartList
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	return h.orderSvc.CreateOrder(ctx, readmodel.OrderRequest{
		TotalPrice: readmodel.TotalPrice(items),
		ShipTo:     cmd.ShipTo,
		Contact:    cmd.Contact,
		OrderList:  readmodel.OrderLinesFromCart(items),
	})
}

func (h *Handler) refreshCartQty(ctx context.Context) {
	if _, err := h.cartSvc.GetCartQty(ctx); err != nil {
		h.log.WithError(err).Warn("load cart quantity")
	}
}
