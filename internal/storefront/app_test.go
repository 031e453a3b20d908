package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-storefront/internal/api/apitest"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/ui"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/example/ec-storefront/internal/notification"
	"github.com/example/ec-storefront/internal/pages"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/example/ec-storefront/internal/session"
)

type testEnv struct {
	app     *App
	backend *apitest.Server
	storage *session.MemoryStorage
	journal *store.MemoryJournal
	toasts  []ui.Toast
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		backend: apitest.NewServer(),
		storage: session.NewMemoryStorage(),
		journal: store.NewMemoryJournal("test-client", nil),
	}
	t.Cleanup(env.backend.Close)
	env.app = env.newApp(t, false)
	return env
}

func (env *testEnv) newApp(t *testing.T, replay bool) *App {
	t.Helper()
	log, _ := test.NewNullLogger()
	app, err := New(Config{
		APIURL:  env.backend.URL,
		Storage: env.storage,
		Journal: env.journal,
		Replay:  replay,
		Sink:    notification.SinkFunc(func(toast ui.Toast) { env.toasts = append(env.toasts, toast) }),
		Log:     log,
	})
	require.NoError(t, err)
	return app
}

func TestNew_RequiresAPIURL(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNoAPIURL)
}

func TestApp_ShoppingFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	app := env.app
	shirt := env.backend.AddProduct(readmodel.Product{SKU: "SH-1", Name: "Shirt", Price: 15000, Stock: map[string]int{"m": 5}})
	env.backend.AddProduct(readmodel.Product{SKU: "CP-1", Name: "Cap", Price: 9000, Stock: map[string]int{"free": 1}})

	require.NoError(t, app.Start(ctx))
	assert.Nil(t, app.Store.State().User.User)

	// register then log in
	register := app.RegisterPage()
	require.NoError(t, register.Submit(ctx, pages.RegisterForm{
		Email: "jun@example.com", Name: "Jun", Password: "password1", ConfirmPassword: "password1", Policy: true,
	}))
	assert.Equal(t, "/login", app.History.Current().Path)

	login := app.LoginPage()
	require.NoError(t, login.LoginWithEmail(ctx, "jun@example.com", "password1"))
	assert.Equal(t, "/", app.History.Current().Path)
	assert.True(t, app.Session.HasToken())

	// browse and search
	landing := app.LandingPage()
	require.NoError(t, landing.Mount(ctx))
	assert.Len(t, landing.Products(), 2)
	require.NoError(t, landing.Search(ctx, "shirt"))
	assert.Len(t, landing.Products(), 1)
	landing.Unmount()

	// add to cart
	detail := app.ProductDetailPage()
	require.NoError(t, detail.Load(ctx, shirt.ID))
	require.NoError(t, detail.SelectSize("m"))
	require.NoError(t, detail.AddItemToCart(ctx))
	assert.Equal(t, 1, app.Store.State().Cart.CartItemCount)

	_, err := app.Cart.GetCartList(ctx)
	require.NoError(t, err)
	summary := app.Query.CartSummary()
	assert.Equal(t, "₩ 15,000", summary.Total)

	// checkout
	num, err := app.Commands.PlaceOrder(ctx, command.PlaceOrder{
		ShipTo:  readmodel.ShipTo{Address: "1 Main St", City: "Busan", Zip: "48058"},
		Contact: readmodel.Contact{FirstName: "Jun", LastName: "Park", Contact: "010-1234-5678"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-0001", num)
	assert.Equal(t, 0, app.Store.State().Cart.CartItemCount)

	_, err = app.Order.GetOrder(ctx, 1)
	require.NoError(t, err)
	require.Len(t, app.Query.OrderList().Rows, 1)

	// logout reloads into the login view with a fresh state
	require.NoError(t, app.User.Logout(ctx))
	assert.Equal(t, "/login", app.History.Current().Path)
	assert.False(t, app.Session.HasToken())
	state := app.Store.State()
	assert.Nil(t, state.User.User)
	assert.Empty(t, state.Order.OrderList)
	assert.Empty(t, state.Cart.CartList)

	require.NotEmpty(t, env.toasts)
	assert.Equal(t, "Registration complete!", env.toasts[0].Message)
}

func TestApp_StartRestoresSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.backend.AddUser("mia@example.com", "Mia", "password1", "customer")
	require.NoError(t, err)
	token, err := env.backend.Issue("mia@example.com")
	require.NoError(t, err)
	require.NoError(t, env.storage.Set(session.TokenKey, token))

	app := env.newApp(t, false)
	require.NoError(t, app.Start(ctx))

	state := app.Store.State()
	require.NotNil(t, state.User.User)
	assert.Equal(t, "Mia", state.User.User.Name)
	assert.Equal(t, 1, env.backend.Count("GET", "/cart/qty"))
}

func TestApp_StartWithoutSessionSendsNothing(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.app.Start(context.Background()))

	assert.Empty(t, env.backend.Requests())
	assert.Equal(t, 0, env.app.Store.State().Cart.CartItemCount)
}

func TestApp_ReplayRebuildsStateFromJournal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.backend.AddProduct(readmodel.Product{SKU: "SH-1", Name: "Shirt", Price: 15000})

	landing := env.app.LandingPage()
	require.NoError(t, landing.Mount(ctx))
	require.Len(t, env.app.Store.State().Product.ProductList, 1)

	restored := env.newApp(t, true)
	require.NoError(t, restored.Start(ctx))

	products := restored.Store.State().Product.ProductList
	require.Len(t, products, 1)
	assert.Equal(t, "Shirt", products[0].Name)
	assert.Equal(t, len(env.journal.GetAllActions()), restored.Store.Version())
}

func TestApp_StartFailsWhenJournalCannotBeRead(t *testing.T) {
	backend := apitest.NewServer()
	t.Cleanup(backend.Close)
	journal := mocks.NewMockJournal()
	journal.GetActionsErr = errors.New("connection reset")
	log, _ := test.NewNullLogger()

	app, err := New(Config{APIURL: backend.URL, Journal: journal, Replay: true, Log: log})
	require.NoError(t, err)

	err = app.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, backend.Requests())
}
