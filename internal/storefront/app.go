package storefront

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/domain/ui"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/history"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/notification"
	"github.com/example/ec-storefront/internal/pages"
	"github.com/example/ec-storefront/internal/query"
	"github.com/example/ec-storefront/internal/session"
)

var ErrNoAPIURL = errors.New("api url is required")

// Config describes one storefront client
type Config struct {
	APIURL string
	// Storage keeps the session token; memory storage when nil
	Storage session.Storage
	// Journal records every action; an in-memory journal when nil
	Journal store.JournalInterface
	// Replay rebuilds the state from Journal on Start
	Replay bool
	// Sink receives every new toast; toasts are only logged when nil
	Sink      notification.Sink
	Tracing   bool
	Timeout   time.Duration
	Transport http.RoundTripper
	// InitialPath is the first history entry, "/" when empty
	InitialPath string
	Log         logrus.FieldLogger
}

// App wires the store, the slices and the view controllers together
type App struct {
	Store    *Store
	Session  *session.Session
	History  *history.History
	Client   *api.Client
	UI       *ui.Service
	User     *user.Service
	Cart     *cart.Service
	Product  *product.Service
	Order    *order.Service
	Commands *command.Handler
	Query    *query.Handler

	notifications *notification.Handler
	replay        bool
	log           logrus.FieldLogger
}

func New(cfg Config) (*App, error) {
	if cfg.APIURL == "" {
		return nil, ErrNoAPIURL
	}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	storage := cfg.Storage
	if storage == nil {
		storage = session.NewMemoryStorage()
	}
	journal := cfg.Journal
	if journal == nil {
		journal = store.NewMemoryJournal("local", nil, store.WithLogger(log))
	}
	initial := cfg.InitialPath
	if initial == "" {
		initial = pages.LandingPath
	}
	sink := cfg.Sink
	if sink == nil {
		sink = notification.NewLogSink(log)
	}

	a := &App{
		Store:   NewStore(journal, log),
		Session: session.New(storage),
		History: history.New(initial),
		replay:  cfg.Replay,
		log:     log.WithField("component", "app"),
	}

	opts := []api.Option{api.WithLogger(log)}
	if cfg.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.Timeout))
	}
	if cfg.Transport != nil {
		opts = append(opts, api.WithTransport(cfg.Transport))
	}
	if cfg.Tracing {
		opts = append(opts, api.WithTracing())
	}
	a.Client = api.NewClient(cfg.APIURL, a.Session, opts...)

	a.UI = ui.NewService(a.Store)
	a.Cart = cart.NewService(a.Client, a.Store, a.UI, log)
	a.User = user.NewService(a.Client, a.Store, a.UI, a.Session, a.History, a.Cart, log)
	a.Product = product.NewService(a.Client, a.Store, a.UI, log)
	a.Order = order.NewService(a.Client, a.Store, a.UI, a.Cart, log)
	a.Commands = command.NewHandler(a.User, a.Cart, a.Order, a.Store, log)
	a.Query = query.NewHandler(a.Store)

	a.notifications = notification.NewHandler(sink)
	a.Store.Subscribe(a.notifications.HandleAction)

	// a full reload drops everything held in memory
	a.History.OnReload(func() {
		if err := a.Store.Reset(context.Background()); err != nil {
			a.log.WithError(err).Error("reset store on reload")
		}
		a.notifications.Reset()
	})

	return a, nil
}

// Start restores the previous state and session. A session that cannot be
// restored is not an error.
func (a *App) Start(ctx context.Context) error {
	if a.replay {
		if err := a.Store.Replay(ctx); err != nil {
			return err
		}
	}
	if _, err := a.Commands.RestoreSession(ctx); err != nil {
		a.log.WithError(err).Debug("starting without a session")
	}
	return nil
}

func (a *App) LandingPage() *pages.LandingPage {
	return pages.NewLandingPage(a.Product, a.History, a.Store, a.log)
}

func (a *App) ProductDetailPage() *pages.ProductDetailPage {
	return pages.NewProductDetailPage(a.Product, a.Cart, a.Store, a.History)
}

func (a *App) LoginPage() *pages.LoginPage {
	return pages.NewLoginPage(a.User, a.Commands, a.Store, a.History)
}

func (a *App) RegisterPage() *pages.RegisterPage {
	return pages.NewRegisterPage(a.User)
}

func (a *App) AdminProductPage() *pages.AdminProductPage {
	return pages.NewAdminProductPage(a.Product, a.UI, a.History, a.Store, a.log)
}
