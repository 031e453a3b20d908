package order

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/domain/slice"
	"github.com/example/ec-storefront/internal/domain/ui"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/example/ec-storefront/internal/search"
)

var (
	ErrEmptyOrder    = errors.New("order has no items")
	ErrInvalidOrder  = errors.New("order id is required")
	ErrInvalidStatus = errors.New("order status is required")
)

// CartRefresher reloads the cart badge after an order is placed
type CartRefresher interface {
	GetCartQty(ctx context.Context) (int, error)
}

type Service struct {
	api        api.Requester
	dispatcher slice.Dispatcher
	toast      ui.Notifier
	cart       CartRefresher
	log        logrus.FieldLogger
}

func NewService(client api.Requester, d slice.Dispatcher, toast ui.Notifier, cart CartRefresher, log logrus.FieldLogger) *Service {
	return &Service{
		api:        client,
		dispatcher: d,
		toast:      toast,
		cart:       cart,
		log:        log.WithField("component", "order"),
	}
}

// CreateOrder places an order and stores its number. The cart badge is
// refreshed once the order is confirmed.
func (s *Service) CreateOrder(ctx context.Context, req readmodel.OrderRequest) (string, error) {
	if len(req.OrderList) == 0 {
		return "", ErrEmptyOrder
	}

	num, err := slice.Run(ctx, s.dispatcher, SliceName, ActionCreateOrder, MsgCreateFailed, func(ctx context.Context) (string, error) {
		resp, err := s.api.Do(ctx, http.MethodPost, "/order", req, nil)
		if err != nil {
			return "", err
		}
		var num string
		if err := resp.Field("orderNum", &num); err != nil {
			return "", err
		}
		return num, nil
	})
	if err != nil {
		s.notifyRejected(ctx, err)
		return "", err
	}

	if _, err := s.cart.GetCartQty(ctx); err != nil {
		s.log.WithError(err).Warn("refresh cart quantity after order")
	}
	return num, nil
}

// GetOrder loads one page of the current user's orders
func (s *Service) GetOrder(ctx context.Context, page int) (ListResult, error) {
	params := url.Values{}
	params.Set(search.PageKey, strconv.Itoa(max(page, 1)))
	return s.list(ctx, ActionGetOrder, "/order/me", params)
}

// GetOrderList loads one page of all orders for the admin view
func (s *Service) GetOrderList(ctx context.Context, q search.Query) (ListResult, error) {
	return s.list(ctx, ActionGetOrderList, "/order", q.Values())
}

func (s *Service) list(ctx context.Context, actionType, path string, params url.Values) (ListResult, error) {
	res, err := slice.Run(ctx, s.dispatcher, SliceName, actionType, MsgLoadFailed, func(ctx context.Context) (ListResult, error) {
		resp, err := s.api.Do(ctx, http.MethodGet, path, nil, params)
		if err != nil {
			return ListResult{}, err
		}
		var res ListResult
		if err := resp.Decode(&res); err != nil {
			return ListResult{}, err
		}
		if res.Data == nil {
			res.Data = []readmodel.Order{}
		}
		return res, nil
	})
	if err != nil {
		s.notify(ctx, MsgLoadFailed, ui.StatusError)
		return ListResult{}, err
	}
	return res, nil
}

// UpdateOrder changes an order status, then reloads the admin list from
// page 1
func (s *Service) UpdateOrder(ctx context.Context, id, status string) error {
	if id == "" {
		return ErrInvalidOrder
	}
	if status == "" {
		return ErrInvalidStatus
	}

	_, err := slice.Run(ctx, s.dispatcher, SliceName, ActionUpdateOrder, MsgUpdateFailed, func(ctx context.Context) (struct{}, error) {
		_, err := s.api.Do(ctx, http.MethodPut, "/order", UpdateRequest{ID: id, Status: status}, nil)
		return struct{}{}, err
	})
	if err != nil {
		return err
	}

	s.notify(ctx, MsgUpdated, ui.StatusSuccess)
	if _, err := s.GetOrderList(ctx, search.New(1)); err != nil {
		s.log.WithError(err).Warn("refresh order list after update")
	}
	return nil
}

// SetSelectedOrder replaces the selection; nil clears it
func (s *Service) SetSelectedOrder(ctx context.Context, o *readmodel.Order) error {
	var payload any
	if o != nil {
		payload = o
	}
	return s.dispatcher.Dispatch(ctx, SliceName, ActionSetSelectedOrder, "", payload)
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
