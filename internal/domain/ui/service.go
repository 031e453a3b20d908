package ui

import (
	"context"
	"errors"

	"github.com/example/ec-storefront/internal/domain/slice"
)

var (
	ErrEmptyMessage  = errors.New("toast message is required")
	ErrInvalidStatus = errors.New("toast status must be success or error")
)

// Notifier is the toast channel the other slices write to
type Notifier interface {
	ShowToastMessage(ctx context.Context, message, status string) error
}

type Service struct {
	dispatcher slice.Dispatcher
}

func NewService(d slice.Dispatcher) *Service {
	return &Service{dispatcher: d}
}

// ShowToastMessage replaces the active toast
func (s *Service) ShowToastMessage(ctx context.Context, message, status string) error {
	if message == "" {
		return ErrEmptyMessage
	}
	if status != StatusSuccess && status != StatusError {
		return ErrInvalidStatus
	}
	return s.dispatcher.Dispatch(ctx, SliceName, ActionShowToastMessage, "", Toast{Message: message, Status: status})
}

func (s *Service) HideToast(ctx context.Context) error {
	return s.dispatcher.Dispatch(ctx, SliceName, ActionHideToast, "", nil)
}
