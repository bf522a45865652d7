package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ForeverInLaw/airdealer/internal/config"
	"github.com/ForeverInLaw/airdealer/internal/gate"
	"github.com/ForeverInLaw/airdealer/internal/identity"
	"github.com/ForeverInLaw/airdealer/internal/reports"
	"github.com/ForeverInLaw/airdealer/internal/testutil"
	"github.com/ForeverInLaw/airdealer/internal/workflow"
	"github.com/ForeverInLaw/airdealer/models"
	"github.com/ForeverInLaw/airdealer/repository"
)

type harness struct {
	router http.Handler
	admins *repository.AdminRepository
	orders *repository.OrderRepository
	users  *repository.UserRepository
}

func newHarness(t *testing.T, name string) *harness {
	t.Helper()
	d := testutil.OpenInMemoryDB(t, name)
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour

	admins := repository.NewAdminRepository(d)
	orders := repository.NewOrderRepository(d)
	users := repository.NewUserRepository(d)
	products := repository.NewProductRepository(d)
	catalog := repository.NewCatalogRepository(d)
	idp := identity.NewProvider(d, 4)
	g := gate.New(idp, admins)

	router := NewRouter(Deps{
		Config:   cfg,
		Identity: idp,
		Gate:     g,
		Workflow: workflow.New(orders),
		Reports:  reports.NewService(orders, users, products),
		Admins:   admins,
		Orders:   orders,
		Users:    users,
		Products: products,
		Catalog:  catalog,
	})
	return &harness{router: router, admins: admins, orders: orders, users: users}
}

func (h *harness) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req = testutil.WithBearer(req, token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

// register + login helpers returning the session token and gate state.
func (h *harness) register(t *testing.T, email string) {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "password": "secret123", "first_name": "T", "last_name": "User",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (h *harness) login(t *testing.T, email string) (token, state string) {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m := decodeMap(t, rec)
	return m["token"].(string), m["state"].(string)
}

func (h *harness) approveByIdentity(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()
	list, err := h.admins.List(ctx, 100, 0)
	require.NoError(t, err)
	for _, a := range list {
		if a.Email == email {
			require.NoError(t, h.admins.SetApproval(ctx, a.ID, true))
			return
		}
	}
	t.Fatalf("no admin record for %s", email)
}

func TestAuthFlow_RegisterPendingThenApproved(t *testing.T) {
	h := newHarness(t, "apiflow")

	h.register(t, "flow@example.com")
	token, state := h.login(t, "flow@example.com")
	assert.Equal(t, "pending_approval", state)

	// Pending admins are kept out of the admin area with a distinct code.
	rec := h.do(t, http.MethodGet, "/api/v1/admin/dashboard", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "pending_approval", decodeMap(t, rec)["error"])

	h.approveByIdentity(t, "flow@example.com")
	token, state = h.login(t, "flow@example.com")
	assert.Equal(t, "approved", state)

	rec = h.do(t, http.MethodGet, "/api/v1/admin/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAuthFlow_MissingAndBadTokens(t *testing.T) {
	h := newHarness(t, "apitokens")

	rec := h.do(t, http.MethodGet, "/api/v1/admin/orders/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/admin/orders/", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthFlow_Logout(t *testing.T) {
	h := newHarness(t, "apilogout")
	h.register(t, "out@example.com")
	token, _ := h.login(t, "out@example.com")

	rec := h.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := newHarness(t, "apibadlogin")
	h.register(t, "who@example.com")

	rec := h.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "who@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decodeMap(t, rec)["error"])
}

func TestRegister_Duplicate(t *testing.T) {
	h := newHarness(t, "apidup")
	h.register(t, "dup@example.com")

	rec := h.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "dup@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_registered", decodeMap(t, rec)["error"])
}

func TestAdmins_SelfApprovalForbidden(t *testing.T) {
	h := newHarness(t, "apiself")
	h.register(t, "root@example.com")
	h.approveByIdentity(t, "root@example.com")
	token, _ := h.login(t, "root@example.com")

	list, err := h.admins.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	rec := h.do(t, http.MethodPost, "/api/v1/admin/admins/1/revoke", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "unauthorized", decodeMap(t, rec)["error"])
}

func seedOrder(t *testing.T, h *harness, status models.OrderStatus) *models.Order {
	t.Helper()
	ctx := context.Background()
	u, err := h.users.GetByID(ctx, 1)
	require.NoError(t, err)
	if u == nil {
		u, err = h.users.Create(ctx, &models.User{ID: 1})
		require.NoError(t, err)
	}
	o, err := h.orders.Create(ctx, &models.Order{
		UserID:        u.ID,
		Status:        status,
		PaymentMethod: "card",
		TotalAmount:   decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)
	return o
}

func TestOrders_StatusEndpoint(t *testing.T) {
	h := newHarness(t, "apiorders")
	h.register(t, "root@example.com")
	h.approveByIdentity(t, "root@example.com")
	token, _ := h.login(t, "root@example.com")

	o := seedOrder(t, h, models.OrderStatusPendingAdminApproval)

	// Transition listing reflects the table.
	rec := h.do(t, http.MethodGet, "/api/v1/admin/orders/1/transitions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decodeMap(t, rec)
	assert.Len(t, m["transitions"], 2)
	assert.Equal(t, false, m["terminal"])

	// Illegal transition is 409 and leaves the order alone.
	rec = h.do(t, http.MethodPost, "/api/v1/admin/orders/1/status", token, map[string]interface{}{
		"current_status": "pending_admin_approval",
		"target_status":  "shipped",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "illegal_transition", decodeMap(t, rec)["error"])

	// Legal transition with a note.
	rec = h.do(t, http.MethodPost, "/api/v1/admin/orders/1/status", token, map[string]interface{}{
		"current_status": "pending_admin_approval",
		"target_status":  "admin_approved_pending_payment",
		"admin_notes":    "checked manually",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	m = decodeMap(t, rec)
	assert.Equal(t, "admin_approved_pending_payment", m["status"])
	assert.Equal(t, "checked manually", m["admin_notes"])

	// A second admin working from the stale status gets a distinct error.
	rec = h.do(t, http.MethodPost, "/api/v1/admin/orders/1/status", token, map[string]interface{}{
		"current_status": "pending_admin_approval",
		"target_status":  "rejected_by_admin",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "concurrent_modification", decodeMap(t, rec)["error"])

	stored, err := h.orders.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusApprovedPendingPayment, stored.Status)
}

func TestStart_BusyAddressFails(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := &config.Config{}
	cfg.HTTP.Address = ln.Addr().String()
	_, err = Start(Deps{Config: cfg})
	require.Error(t, err, "a busy address must fail Start, not be swallowed")
}

func TestCatalog_ProductCRUD(t *testing.T) {
	h := newHarness(t, "apicatalog")
	h.register(t, "root@example.com")
	h.approveByIdentity(t, "root@example.com")
	token, _ := h.login(t, "root@example.com")

	rec := h.do(t, http.MethodPost, "/api/v1/admin/manufacturers/", token, map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = h.do(t, http.MethodPost, "/api/v1/admin/categories/", token, map[string]string{"name": "Widgets"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/api/v1/admin/products/", token, map[string]interface{}{
		"name": "Widget Mini", "manufacturer_id": 1, "category_id": 1,
		"price": "19.99", "cost": "7.40",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	m := decodeMap(t, rec)
	assert.Equal(t, "19.99", m["price"])
	assert.Equal(t, "Acme", m["manufacturer_name"])

	// Bad decimal is rejected before it reaches the store.
	rec = h.do(t, http.MethodPost, "/api/v1/admin/products/", token, map[string]interface{}{
		"name": "Bad", "manufacturer_id": 1, "category_id": 1,
		"price": "nineteen", "cost": "1.00",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/v1/admin/products/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decodeMap(t, rec)["products"].([]interface{})
	assert.Len(t, products, 1)
}
