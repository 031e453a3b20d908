package cart

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/domain/slice"
	"github.com/example/ec-storefront/internal/domain/ui"
	"github.com/example/ec-storefront/internal/readmodel"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidProduct  = errors.New("productId is required")
	ErrInvalidItem     = errors.New("cart item id is required")
)

type Service struct {
	api        api.Requester
	dispatcher slice.Dispatcher
	toast      ui.Notifier
	log        logrus.FieldLogger
}

func NewService(client api.Requester, d slice.Dispatcher, toast ui.Notifier, log logrus.FieldLogger) *Service {
	return &Service{
		api:        client,
		dispatcher: d,
		toast:      toast,
		log:        log.WithField("component", "cart"),
	}
}

// AddToCart posts a quantity-1 line. The badge takes the count returned by
// the server; the cart list is left alone.
func (s *Service) AddToCart(ctx context.Context, productID, size string) (int, error) {
	if productID == "" {
		return 0, ErrInvalidProduct
	}

	qty, err := slice.Run(ctx, s.dispatcher, SliceName, ActionAddToCart, MsgAddFailed, func(ctx context.Context) (int, error) {
		resp, err := s.api.Do(ctx, http.MethodPost, "/cart", AddToCartRequest{ProductID: productID, Size: size, Qty: 1}, nil)
		if err != nil {
			return 0, err
		}
		var qty int
		if err := resp.Field("cartItemQty", &qty); err != nil {
			return 0, err
		}
		return qty, nil
	})
	if err != nil {
		s.notifyRejected(ctx, err)
		return 0, err
	}

	s.notify(ctx, MsgItemAdded, ui.StatusSuccess)
	return qty, nil
}

// GetCartList fetches the cart detail
func (s *Service) GetCartList(ctx context.Context) ([]readmodel.CartItem, error) {
	return slice.Run(ctx, s.dispatcher, SliceName, ActionGetCartList, MsgListFailed, func(ctx context.Context) ([]readmodel.CartItem, error) {
		resp, err := s.api.Do(ctx, http.MethodGet, "/cart", nil, nil)
		if err != nil {
			return nil, err
		}
		return decodeItems(resp)
	})
}

// DeleteCartItem removes a line, takes the new count from the server and
// then refreshes the list.
func (s *Service) DeleteCartItem(ctx context.Context, id string) (int, error) {
	if id == "" {
		return 0, ErrInvalidItem
	}

	qty, err := slice.Run(ctx, s.dispatcher, SliceName, ActionDeleteCartItem, MsgDeleteFailed, func(ctx context.Context) (int, error) {
		resp, err := s.api.Do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(id), nil, nil)
		if err != nil {
			return 0, err
		}
		var qty int
		if err := resp.Field("cartItemQty", &qty); err != nil {
			return 0, err
		}
		return qty, nil
	})
	if err != nil {
		return 0, err
	}

	if _, err := s.GetCartList(ctx); err != nil {
		s.log.WithError(err).Warn("refresh cart list after delete")
	}
	return qty, nil
}

// UpdateQty changes the quantity of a line. The server returns the whole
// list, which replaces the local one.
func (s *Service) UpdateQty(ctx context.Context, id string, qty int) ([]readmodel.CartItem, error) {
	if id == "" {
		return nil, ErrInvalidItem
	}
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	return slice.Run(ctx, s.dispatcher, SliceName, ActionUpdateQty, MsgUpdateQtyFailed, func(ctx context.Context) ([]readmodel.CartItem, error) {
		resp, err := s.api.Do(ctx, http.MethodPut, "/cart/"+url.PathEscape(id), UpdateQtyRequest{Qty: qty}, nil)
		if err != nil {
			return nil, err
		}
		return decodeItems(resp)
	})
}

// GetCartQty fetches just the badge count
func (s *Service) GetCartQty(ctx context.Context) (int, error) {
	return slice.Run(ctx, s.dispatcher, SliceName, ActionGetCartQty, MsgGetCartQtyFailed, func(ctx context.Context) (int, error) {
		resp, err := s.api.Do(ctx, http.MethodGet, "/cart/qty", nil, nil)
		if err != nil {
			return 0, err
		}
		var qty int
		if err := resp.Field("qty", &qty); err != nil {
			return 0, err
		}
		return qty, nil
	})
}

// InitialCart resets the badge count without a request
func (s *Service) InitialCart(ctx context.Context) error {
	return s.dispatcher.Dispatch(ctx, SliceName, ActionInitialCart, "", nil)
}

func decodeItems(resp *api.Response) ([]readmodel.CartItem, error) {
	var items []readmodel.CartItem
	if err := resp.Field("data", &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []readmodel.CartItem{}
	}
	return items, nil
}

func (s *Service) notify(ctx context.Context, message, status string) {
	if err := s.toast.ShowToastMessage(ctx, message, status); err != nil {
		s.log.WithError(err).Warn("show toast")
	}
}

func (s *Service) notifyRejected(ctx context.Context, err error) {
	var rejected *slice.RejectedError
	if errors.As(err, &rejected) {
		s.notify(ctx, rejected.Message, ui.StatusError)
	}
}
