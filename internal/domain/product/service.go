package product

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
	"github.com/example/ec-storefront/internal/search"
)

var (
	ErrInvalidSKU    = errors.New("sku is required")
	ErrInvalidName   = errors.New("name is required")
	ErrInvalidPrice  = errors.New("price must not be negative")
	ErrInvalidStock  = errors.New("stock quantities must not be negative")
	ErrInvalidStatus = errors.New("status must be active or inactive")
	ErrInvalidID     = errors.New("product id is required")
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
		log:        log.WithField("component", "product"),
	}
}

// ValidateInput checks a product body before it is sent
func ValidateInput(in readmodel.ProductInput) error {
	if in.SKU == "" {
		return ErrInvalidSKU
	}
	if in.Name == "" {
		return ErrInvalidName
	}
	if in.Price < 0 {
		return ErrInvalidPrice
	}
	for _, qty := range in.Stock {
		if qty < 0 {
			return ErrInvalidStock
		}
	}
	if in.Status != "" && in.Status != readmodel.StatusActive && in.Status != readmodel.StatusInactive {
		return ErrInvalidStatus
	}
	return nil
}

// GetProductList fetches one page of products for q. The result replaces
// the list held in state.
func (s *Service) GetProductList(ctx context.Context, q search.Query) (ListResult, error) {
	return slice.Run(ctx, s.dispatcher, SliceName, ActionGetProductList, MsgListFailed, func(ctx context.Context) (ListResult, error) {
		resp, err := s.api.Do(ctx, http.MethodGet, "/product", nil, q.Values())
		if err != nil {
			return ListResult{}, err
		}
		var res ListResult
		if err := resp.Decode(&res); err != nil {
			return ListResult{}, err
		}
		if res.Data == nil {
			res.Data = []readmodel.Product{}
		}
		return res, nil
	})
}

// GetProductDetail loads one product. The previous selection is cleared as
// soon as the request starts.
func (s *Service) GetProductDetail(ctx context.Context, id string) (*readmodel.Product, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	return slice.Run(ctx, s.dispatcher, SliceName, ActionGetProductDetail, MsgDetailFailed, func(ctx context.Context) (*readmodel.Product, error) {
		resp, err := s.api.Do(ctx, http.MethodGet, "/product/"+url.PathEscape(id), nil, nil)
		if err != nil {
			return nil, err
		}
		var p readmodel.Product
		if err := resp.Field("data", &p); err != nil {
			return nil, err
		}
		return &p, nil
	})
}

func (s *Service) CreateProduct(ctx context.Context, in readmodel.ProductInput) (*readmodel.Product, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	p, err := slice.Run(ctx, s.dispatcher, SliceName, ActionCreateProduct, MsgCreateFailed, func(ctx context.Context) (*readmodel.Product, error) {
		resp, err := s.api.Do(ctx, http.MethodPost, "/product", in, nil)
		if err != nil {
			return nil, err
		}
		return optionalProduct(resp)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, MsgCreated)
	return p, nil
}

// EditProduct saves a product and then reloads the list from page 1
func (s *Service) EditProduct(ctx context.Context, id string, in readmodel.ProductInput) (*readmodel.Product, error) {
	if id == "" {
		return nil, ErrInvalidID
	}
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	p, err := slice.Run(ctx, s.dispatcher, SliceName, ActionEditProduct, MsgEditFailed, func(ctx context.Context) (*readmodel.Product, error) {
		resp, err := s.api.Do(ctx, http.MethodPut, "/product/"+url.PathEscape(id), in, nil)
		if err != nil {
			return nil, err
		}
		return optionalProduct(resp)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, MsgEdited)
	if _, err := s.GetProductList(ctx, search.New(1)); err != nil {
		s.log.WithError(err).Warn("refresh product list after edit")
	}
	return p, nil
}

// DeleteProduct removes a product and returns its id. The caller decides
// which page to reload.
func (s *Service) DeleteProduct(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrInvalidID
	}
	deleted, err := slice.Run(ctx, s.dispatcher, SliceName, ActionDeleteProduct, MsgDeleteFailed, func(ctx context.Context) (string, error) {
		if _, err := s.api.Do(ctx, http.MethodDelete, "/product/"+url.PathEscape(id), nil, nil); err != nil {
			return "", err
		}
		return id, nil
	})
	if err != nil {
		return "", err
	}
	s.notify(ctx, MsgDeleted)
	return deleted, nil
}

// SetSelectedProduct replaces the selection; nil clears it
func (s *Service) SetSelectedProduct(ctx context.Context, p *readmodel.Product) error {
	var payload any
	if p != nil {
		payload = p
	}
	return s.dispatcher.Dispatch(ctx, SliceName, ActionSetSelectedProduct, "", payload)
}

// ClearError resets error and success
func (s *Service) ClearError(ctx context.Context) error {
	return s.dispatcher.Dispatch(ctx, SliceName, ActionClearError, "", nil)
}

func optionalProduct(resp *api.Response) (*readmodel.Product, error) {
	if !resp.Has("data") {
		return nil, nil
	}
	var p readmodel.Product
	if err := resp.Field("data", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) notify(ctx context.Context, message string) {
	if err := s.toast.ShowToastMessage(ctx, message, ui.StatusSuccess); err != nil {
		s.log.WithError(err).Warn("show toast")
	}
}
