package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/pages"
	"github.com/example/ec-storefront/internal/search"
	"github.com/example/ec-storefront/internal/storefront"
)

var errUsage = errors.New("invalid arguments")

type runner func(ctx context.Context, app *storefront.App, args []string) error

var commands = map[string]runner{
	"products":           runProducts,
	"product":            runProduct,
	"login":              runLogin,
	"login-google":       runLoginGoogle,
	"register":           runRegister,
	"logout":             runLogout,
	"cart":               runCart,
	"add":                runAdd,
	"remove":             runRemove,
	"qty":                runQty,
	"checkout":           runCheckout,
	"orders":             runOrders,
	"admin-products":     runAdminProducts,
	"admin-delete":       runAdminDelete,
	"admin-orders":       runAdminOrders,
	"admin-order-status": runAdminOrderStatus,
}

func usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(os.Stderr, "usage: storefront <command> [flags]\n\ncommands: %s\n", strings.Join(names, ", "))
}

func run(ctx context.Context, app *storefront.App, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		usage()
		return fmt.Errorf("unknown command %q", name)
	}
	return cmd(ctx, app, args)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func requireLogin(app *storefront.App) error {
	if app.Store.State().User.User == nil {
		return pages.ErrLoginRequired
	}
	return nil
}

func runProducts(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	name := fs.String("name", "", "filter by product name")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	landing := app.LandingPage()
	if err := landing.Mount(ctx); err != nil {
		return err
	}
	defer landing.Unmount()

	q := search.New(*page).With(pages.SearchField, *name)
	if !q.Equal(landing.List().Query()) {
		if err := landing.List().SetQuery(ctx, q); err != nil {
			return err
		}
	}
	if msg := landing.EmptyMessage(); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	return printJSON(app.Query.ProductList())
}

func runProduct(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("product", flag.ContinueOnError)
	id := fs.String("id", "", "product id")
	if err := fs.Parse(args); err != nil || *id == "" {
		return errUsage
	}

	detail := app.ProductDetailPage()
	if err := detail.Load(ctx, *id); err != nil {
		return err
	}
	row, ok := app.Query.SelectedProduct()
	if !ok {
		return fmt.Errorf("product %s not found", *id)
	}
	return printJSON(row)
}

func runLogin(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("STOREFRONT_PASSWORD"), "account password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	login := app.LoginPage()
	if err := login.Mount(ctx); err != nil {
		return err
	}
	if err := login.LoginWithEmail(ctx, *email, *password); err != nil {
		if msg := login.LoginError(); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	return printJSON(app.Store.State().User.User)
}

func runLoginGoogle(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("login-google", flag.ContinueOnError)
	credential := fs.String("credential", "", "Google ID token")
	if err := fs.Parse(args); err != nil || *credential == "" {
		return errUsage
	}

	login := app.LoginPage()
	if err := login.LoginWithGoogle(ctx, *credential); err != nil {
		if msg := login.LoginError(); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	return printJSON(app.Store.State().User.User)
}

func runRegister(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var form pages.RegisterForm
	fs.StringVar(&form.Email, "email", "", "account email")
	fs.StringVar(&form.Name, "name", "", "display name")
	fs.StringVar(&form.Password, "password", "", "password")
	fs.StringVar(&form.ConfirmPassword, "confirm", "", "password again")
	fs.BoolVar(&form.Policy, "accept-policy", false, "accept the terms of use")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := app.RegisterPage().Submit(ctx, form); err != nil {
		if msg := app.Store.State().User.RegistrationError; msg != "" {
			return errors.New(msg)
		}
		return err
	}
	return nil
}

func runLogout(ctx context.Context, app *storefront.App, _ []string) error {
	return app.User.Logout(ctx)
}

func runCart(ctx context.Context, app *storefront.App, _ []string) error {
	if err := requireLogin(app); err != nil {
		return err
	}
	if _, err := app.Cart.GetCartList(ctx); err != nil {
		return err
	}
	return printJSON(app.Query.CartSummary())
}

func runAdd(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	id := fs.String("id", "", "product id")
	size := fs.String("size", "", "size to add")
	if err := fs.Parse(args); err != nil || *id == "" {
		return errUsage
	}

	detail := app.ProductDetailPage()
	if err := detail.Load(ctx, *id); err != nil {
		return err
	}
	if *size != "" {
		if err := detail.SelectSize(*size); err != nil {
			return err
		}
	}
	if err := detail.AddItemToCart(ctx); err != nil {
		return err
	}
	fmt.Printf("cart items: %d\n", app.Store.State().Cart.CartItemCount)
	return nil
}

func runRemove(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	id := fs.String("id", "", "cart line id")
	if err := fs.Parse(args); err != nil || *id == "" {
		return errUsage
	}
	if err := requireLogin(app); err != nil {
		return err
	}
	if _, err := app.Cart.DeleteCartItem(ctx, *id); err != nil {
		return err
	}
	return printJSON(app.Query.CartSummary())
}

func runQty(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("qty", flag.ContinueOnError)
	id := fs.String("id", "", "cart line id")
	qty := fs.Int("qty", 1, "new quantity")
	if err := fs.Parse(args); err != nil || *id == "" {
		return errUsage
	}
	if err := requireLogin(app); err != nil {
		return err
	}
	if _, err := app.Cart.UpdateQty(ctx, *id, *qty); err != nil {
		return err
	}
	return printJSON(app.Query.CartSummary())
}

func runCheckout(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	var cmd command.PlaceOrder
	fs.StringVar(&cmd.ShipTo.Address, "address", "", "street address")
	fs.StringVar(&cmd.ShipTo.City, "city", "", "city")
	fs.StringVar(&cmd.ShipTo.Zip, "zip", "", "postal code")
	fs.StringVar(&cmd.Contact.FirstName, "first-name", "", "recipient first name")
	fs.StringVar(&cmd.Contact.LastName, "last-name", "", "recipient last name")
	fs.StringVar(&cmd.Contact.Contact, "contact", "", "recipient phone number")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := requireLogin(app); err != nil {
		return err
	}
	if _, err := app.Cart.GetCartList(ctx); err != nil {
		return err
	}
	orderNum, err := app.Commands.PlaceOrder(ctx, cmd)
	if err != nil {
		return err
	}
	fmt.Printf("order placed: %s\n", orderNum)
	return nil
}

func runOrders(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := requireLogin(app); err != nil {
		return err
	}
	if _, err := app.Order.GetOrder(ctx, *page); err != nil {
		return err
	}
	return printJSON(app.Query.OrderList())
}

func requireAdmin(app *storefront.App) error {
	if !app.Store.State().User.User.IsAdmin() {
		return errors.New("admin account required")
	}
	return nil
}

func runAdminProducts(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("admin-products", flag.ContinueOnError)
	name := fs.String("name", "", "filter by product name")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := requireAdmin(app); err != nil {
		return err
	}

	app.History.Push(pages.AdminProductPath)
	admin := app.AdminProductPage()
	if err := admin.Mount(ctx); err != nil {
		return err
	}
	defer admin.Unmount()

	q := search.New(*page).With(pages.SearchField, *name)
	if !q.Equal(admin.List().Query()) {
		if err := admin.List().SetQuery(ctx, q); err != nil {
			return err
		}
	}
	return printJSON(app.Query.ProductList())
}

func runAdminDelete(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("admin-delete", flag.ContinueOnError)
	id := fs.String("id", "", "product id")
	if err := fs.Parse(args); err != nil || *id == "" {
		return errUsage
	}
	if err := requireAdmin(app); err != nil {
		return err
	}

	app.History.Push(pages.AdminProductPath)
	admin := app.AdminProductPage()
	if err := admin.Mount(ctx); err != nil {
		return err
	}
	defer admin.Unmount()
	if err := admin.DeleteItem(ctx, *id); err != nil {
		return err
	}
	return printJSON(app.Query.ProductList())
}

func runAdminOrders(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("admin-orders", flag.ContinueOnError)
	orderNum := fs.String("ordernum", "", "filter by order number")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := requireAdmin(app); err != nil {
		return err
	}
	if _, err := app.Order.GetOrderList(ctx, search.New(*page).With("ordernum", *orderNum)); err != nil {
		return err
	}
	return printJSON(app.Query.OrderList())
}

func runAdminOrderStatus(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("admin-order-status", flag.ContinueOnError)
	id := fs.String("id", "", "order id")
	status := fs.String("status", "", "preparing, shipping, delivered or refund")
	if err := fs.Parse(args); err != nil || *id == "" {
		return errUsage
	}
	if err := requireAdmin(app); err != nil {
		return err
	}
	if err := app.Order.UpdateOrder(ctx, *id, *status); err != nil {
		return err
	}
	return printJSON(app.Query.OrderList())
}
