// Package apitest runs an in-process storefront backend for client tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/readmodel"
)

// PageSize is the number of rows per list page
const PageSize = 5

const secret = "apitest-signing-key"

// Request is a recorded request
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
}

type account struct {
	user readmodel.User
	hash string
}

// Server is a fake backend speaking the storefront REST contract
type Server struct {
	*httptest.Server
	issuer *auth.Issuer

	mu        sync.Mutex
	accounts  map[string]*account // by email
	google    map[string]string   // id token -> email
	products  []readmodel.Product
	carts     map[string][]readmodel.CartItem // by user id
	orders    []readmodel.Order
	owners    map[string]string // order id -> user id
	orderSeq  int
	overrides map[string]http.HandlerFunc
	requests  []Request
}

func NewServer() *Server {
	s := &Server{
		issuer:    auth.NewIssuer(secret, time.Hour),
		accounts:  make(map[string]*account),
		google:    make(map[string]string),
		carts:     make(map[string][]readmodel.CartItem),
		owners:    make(map[string]string),
		overrides: make(map[string]http.HandlerFunc),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

// Issue signs a token for an existing account
func (s *Server) Issue(email string) (string, error) {
	s.mu.Lock()
	acc, ok := s.accounts[email]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("no account for %s", email)
	}
	token, _, err := s.issuer.Issue(acc.user.ID, acc.user.Email, acc.user.Role)
	return token, err
}

// AddUser registers an account directly
func (s *Server) AddUser(email, name, password, role string) (readmodel.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return readmodel.User{}, err
	}
	u := readmodel.User{ID: uuid.New().String(), Email: email, Name: name, Role: role}
	s.mu.Lock()
	s.accounts[email] = &account{user: u, hash: hash}
	s.mu.Unlock()
	return u, nil
}

// AddGoogleToken makes idToken log in as the account with email
func (s *Server) AddGoogleToken(idToken, email string) {
	s.mu.Lock()
	s.google[idToken] = email
	s.mu.Unlock()
}

// AddProduct stores p and returns it with an id
func (s *Server) AddProduct(p readmodel.Product) readmodel.Product {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = readmodel.StatusActive
	}
	s.mu.Lock()
	s.products = append(s.products, p)
	s.mu.Unlock()
	return p
}

// Override replaces the handler for method and path
func (s *Server) Override(method, path string, fn http.HandlerFunc) {
	s.mu.Lock()
	s.overrides[method+" "+path] = fn
	s.mu.Unlock()
}

// Requests returns every request served so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests matched method and path
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			s.login(w, r)
		default:
			fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/auth/google", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			s.loginWithGoogle(w, r)
		default:
			fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			s.register(w, r)
		default:
			fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/user/me", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.me(w, r)
		default:
			fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/product", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.listProducts(w, r)
		case http.MethodPost:
			s.createProduct(w, r)
		default:
			fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/product/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/product/")
		switch r.Method {
		case http.MethodGet:
			s.getProduct(w, id)
		case http.MethodPut:
			s.editProduct(w, r, id)
		case http.MethodDelete:
			s.deleteProduct(w, r, id)
		default:
			fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/cart", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.getCart(w, r)
		case http.MethodPost:
			s.addToCart(w, r)
		default:
			fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/cart/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/cart/")
		switch {
		case id == "qty" && r.Method == http.MethodGet:
			s.cartQty(w, r)
		case r.Method == http.MethodPut:
			s.updateCartQty(w, r, id)
		case r.Method == http.MethodDelete:
			s.deleteCartItem(w, r, id)
		default:
			fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/order", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.listOrders(w, r)
		case http.MethodPost:
			s.createOrder(w, r)
		case http.MethodPut:
			s.updateOrder(w, r)
		default:
			fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/order/me", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.myOrders(w, r)
		default:
			fail(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	return s.withRecording(mux)
}

func (s *Server) withRecording(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		override := s.overrides[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if override != nil {
			override(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helpers

func respond(w http.ResponseWriter, status int, body map[string]any) {
	out := map[string]any{"status": "success"}
	for k, v := range body {
		out[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(out)
}

func fail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"status": "fail", "error": message})
}

func page(r *http.Request) int {
	p, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

func paginate[T any](items []T, p int) ([]T, int) {
	total := max((len(items)+PageSize-1)/PageSize, 1)
	start := min((p-1)*PageSize, len(items))
	end := min(start+PageSize, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, total
}

// authenticate returns the account of the bearer token. It writes a 401 and
// returns nil when there is none.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) *account {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		fail(w, http.StatusUnauthorized, "Authorization header required")
		return nil
	}
	claims, err := s.issuer.Validate(token)
	if err != nil {
		fail(w, http.StatusUnauthorized, err.Error())
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.accounts[claims.Email]
	if !exists {
		fail(w, http.StatusUnauthorized, "user not found")
		return nil
	}
	return acc
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) *account {
	acc := s.authenticate(w, r)
	if acc == nil {
		return nil
	}
	if !acc.user.IsAdmin() {
		fail(w, http.StatusForbidden, "admin only")
		return nil
	}
	return acc
}

// Auth

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	s.mu.Unlock()
	if !ok || !auth.CheckPassword(req.Password, acc.hash) {
		fail(w, http.StatusBadRequest, "invalid email or password")
		return
	}
	s.issueSession(w, acc)
}

func (s *Server) loginWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	acc := s.accounts[s.google[req.Token]]
	s.mu.Unlock()
	if acc == nil {
		fail(w, http.StatusBadRequest, "google login failed")
		return
	}
	s.issueSession(w, acc)
}

func (s *Server) issueSession(w http.ResponseWriter, acc *account) {
	token, _, err := s.issuer.Issue(acc.user.ID, acc.user.Email, acc.user.Role)
	if err != nil {
		fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, map[string]any{"token": token, "user": acc.user})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	_, exists := s.accounts[req.Email]
	s.mu.Unlock()
	if exists {
		fail(w, http.StatusBadRequest, "User already exists")
		return
	}
	if _, err := s.AddUser(req.Email, req.Name, req.Password, "customer"); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	respond(w, http.StatusOK, nil)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	acc := s.authenticate(w, r)
	if acc == nil {
		return
	}
	respond(w, http.StatusOK, map[string]any{"user": acc.user})
}

// Products

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.URL.Query().Get("name"))

	s.mu.Lock()
	matched := make([]readmodel.Product, 0, len(s.products))
	for _, p := range s.products {
		if name == "" || strings.Contains(strings.ToLower(p.Name), name) {
			matched = append(matched, p)
		}
	}
	s.mu.Unlock()

	data, total := paginate(matched, page(r))
	respond(w, http.StatusOK, map[string]any{"data": data, "totalPageNum": total})
}

func (s *Server) getProduct(w http.ResponseWriter, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			respond(w, http.StatusOK, map[string]any{"data": p})
			return
		}
	}
	fail(w, http.StatusNotFound, "product not found")
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}
	var in readmodel.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	for _, p := range s.products {
		if p.SKU == in.SKU {
			s.mu.Unlock()
			fail(w, http.StatusBadRequest, "sku already exists")
			return
		}
	}
	s.mu.Unlock()

	p := s.AddProduct(productFromInput("", in))
	respond(w, http.StatusOK, map[string]any{"data": p})
}

func (s *Server) editProduct(w http.ResponseWriter, r *http.Request, id string) {
	if s.requireAdmin(w, r) == nil {
		return
	}
	var in readmodel.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products[i] = productFromInput(id, in)
			respond(w, http.StatusOK, map[string]any{"data": s.products[i]})
			return
		}
	}
	fail(w, http.StatusNotFound, "product not found")
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request, id string) {
	if s.requireAdmin(w, r) == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			respond(w, http.StatusOK, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "product not found")
}

func productFromInput(id string, in readmodel.ProductInput) readmodel.Product {
	return readmodel.Product{
		ID:          id,
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Image:       in.Image,
		Category:    in.Category,
		Status:      in.Status,
		Stock:       in.Stock,
	}
}

// Cart

func (s *Server) findProduct(id string) (readmodel.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return readmodel.Product{}, false
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	acc := s.authenticate(w, r)
	if acc == nil {
		return
	}
	s.mu.Lock()
	items := append([]readmodel.CartItem{}, s.carts[acc.user.ID]...)
	s.mu.Unlock()
	respond(w, http.StatusOK, map[string]any{"data": items})
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	acc := s.authenticate(w, r)
	if acc == nil {
		return
	}
	var req struct {
		ProductID string `json:"productId"`
		Size      string `json:"size"`
		Qty       int    `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.findProduct(req.ProductID)
	if !ok {
		fail(w, http.StatusNotFound, "product not found")
		return
	}
	items := s.carts[acc.user.ID]
	for _, item := range items {
		if item.Product.ID == req.ProductID && item.Size == req.Size {
			fail(w, http.StatusBadRequest, "item already in cart")
			return
		}
	}
	items = append(items, readmodel.CartItem{ID: uuid.New().String(), Product: p, Size: req.Size, Qty: max(req.Qty, 1)})
	s.carts[acc.user.ID] = items
	respond(w, http.StatusOK, map[string]any{"data": items, "cartItemQty": len(items)})
}

func (s *Server) updateCartQty(w http.ResponseWriter, r *http.Request, id string) {
	acc := s.authenticate(w, r)
	if acc == nil {
		return
	}
	var req struct {
		Qty int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[acc.user.ID]
	for i := range items {
		if items[i].ID == id {
			items[i].Qty = req.Qty
			respond(w, http.StatusOK, map[string]any{"data": append([]readmodel.CartItem{}, items...)})
			return
		}
	}
	fail(w, http.StatusNotFound, "cart item not found")
}

func (s *Server) deleteCartItem(w http.ResponseWriter, r *http.Request, id string) {
	acc := s.authenticate(w, r)
	if acc == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[acc.user.ID]
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			s.carts[acc.user.ID] = items
			respond(w, http.StatusOK, map[string]any{"cartItemQty": len(items)})
			return
		}
	}
	fail(w, http.StatusNotFound, "cart item not found")
}

func (s *Server) cartQty(w http.ResponseWriter, r *http.Request) {
	acc := s.authenticate(w, r)
	if acc == nil {
		return
	}
	s.mu.Lock()
	qty := len(s.carts[acc.user.ID])
	s.mu.Unlock()
	respond(w, http.StatusOK, map[string]any{"qty": qty})
}

// Orders

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	acc := s.authenticate(w, r)
	if acc == nil {
		return
	}
	var req readmodel.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]readmodel.OrderItem, 0, len(req.OrderList))
	for _, line := range req.OrderList {
		p, ok := s.findProduct(line.ProductID)
		if !ok {
			fail(w, http.StatusBadRequest, "product not found")
			return
		}
		if p.Stock[line.Size] < line.Qty {
			fail(w, http.StatusBadRequest, fmt.Sprintf("%s %s is out of stock", p.SKU, line.Size))
			return
		}
		items = append(items, readmodel.OrderItem{Product: p, Size: line.Size, Qty: line.Qty, Price: line.Price})
	}

	s.orderSeq++
	o := readmodel.Order{
		ID:         uuid.New().String(),
		OrderNum:   fmt.Sprintf("ORD-%04d", s.orderSeq),
		Items:      items,
		TotalPrice: req.TotalPrice,
		Status:     "preparing",
		ShipTo:     req.ShipTo,
		Contact:    req.Contact,
		CreatedAt:  time.Now().UTC(),
	}
	s.orders = append(s.orders, o)
	s.owners[o.ID] = acc.user.ID
	delete(s.carts, acc.user.ID)

	respond(w, http.StatusOK, map[string]any{"orderNum": o.OrderNum})
}

func (s *Server) myOrders(w http.ResponseWriter, r *http.Request) {
	acc := s.authenticate(w, r)
	if acc == nil {
		return
	}
	s.mu.Lock()
	mine := make([]readmodel.Order, 0)
	for _, o := range s.orders {
		if s.owners[o.ID] == acc.user.ID {
			mine = append(mine, o)
		}
	}
	s.mu.Unlock()

	data, total := paginate(newestFirst(mine), page(r))
	respond(w, http.StatusOK, map[string]any{"data": data, "totalPageNum": total})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}
	num := r.URL.Query().Get("ordernum")

	s.mu.Lock()
	matched := make([]readmodel.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if num == "" || strings.Contains(o.OrderNum, num) {
			matched = append(matched, o)
		}
	}
	s.mu.Unlock()

	data, total := paginate(newestFirst(matched), page(r))
	respond(w, http.StatusOK, map[string]any{"data": data, "totalPageNum": total})
}

func (s *Server) updateOrder(w http.ResponseWriter, r *http.Request) {
	if s.requireAdmin(w, r) == nil {
		return
	}
	var req struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == req.ID {
			s.orders[i].Status = req.Status
			respond(w, http.StatusOK, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "order not found")
}

func newestFirst(orders []readmodel.Order) []readmodel.Order {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders
}
