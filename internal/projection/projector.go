package projection

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/ui"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store"
)

// App-level actions
const (
	SliceApp    = "app"
	ActionReset = "app/reset"
)

// RootState combines every slice
type RootState struct {
	User    user.State    `json:"user"`
	Cart    cart.State    `json:"cart"`
	Product product.State `json:"product"`
	Order   order.State   `json:"order"`
	UI      ui.State      `json:"ui"`
}

func Initial() RootState {
	return RootState{
		User:    user.Initial(),
		Cart:    cart.Initial(),
		Product: product.Initial(),
		Order:   order.Initial(),
		UI:      ui.Initial(),
	}
}

// Apply routes action to the reducer of its slice. A reset returns the
// initial state, as a full page reload would.
func Apply(state RootState, action store.Action) (RootState, error) {
	var err error
	switch action.Slice {
	case user.SliceName:
		state.User, err = user.Reduce(state.User, action)
	case cart.SliceName:
		state.Cart, err = cart.Reduce(state.Cart, action)
	case product.SliceName:
		state.Product, err = product.Reduce(state.Product, action)
	case order.SliceName:
		state.Order, err = order.Reduce(state.Order, action)
	case ui.SliceName:
		state.UI, err = ui.Reduce(state.UI, action)
	case SliceApp:
		if action.Type != ActionReset {
			return state, fmt.Errorf("app: unknown action %s", action.Type)
		}
		return Initial(), nil
	default:
		return state, fmt.Errorf("unknown slice %q", action.Slice)
	}
	return state, err
}

// Rehydrated clears what only makes sense while a request is in flight or
// a toast is on screen. It is applied after a replay.
func Rehydrated(state RootState) RootState {
	state.User.Loading = false
	state.Cart.Loading = false
	state.Product.Loading = false
	state.Order.Loading = false
	state.UI.Toast = nil
	return state
}

// Projector folds the action stream of many clients into one RootState per
// client. It backs the journal tail.
type Projector struct {
	mu     sync.Mutex
	states map[string]RootState
	log    logrus.FieldLogger
}

func NewProjector(log logrus.FieldLogger) *Projector {
	return &Projector{
		states: make(map[string]RootState),
		log:    log.WithField("component", "projector"),
	}
}

// HandleAction folds one published action into the state of client
func (p *Projector) HandleAction(ctx context.Context, client string, action store.Action) error {
	p.mu.Lock()
	state, ok := p.states[client]
	if !ok {
		state = Initial()
	}
	next, err := Apply(state, action)
	if err == nil {
		p.states[client] = next
	}
	p.mu.Unlock()

	entry := p.log.WithFields(logrus.Fields{
		"client":  client,
		"slice":   action.Slice,
		"type":    action.Type,
		"version": action.Version,
	})
	if err != nil {
		entry.WithError(err).Warn("action not applied")
		return err
	}
	entry.WithFields(logrus.Fields{
		"cart_count": next.Cart.CartItemCount,
		"logged_in":  next.User.User != nil,
	}).Info("action applied")
	return nil
}

// State returns the folded state of client
func (p *Projector) State(client string) (RootState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.states[client]
	return s, ok
}
