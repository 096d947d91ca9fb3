package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_inventory/internal/fulfillment"
	"github.com/Skotchmaster/lab_inventory/internal/identity"
	"github.com/Skotchmaster/lab_inventory/internal/models"
	"github.com/Skotchmaster/lab_inventory/internal/notify"
	"github.com/Skotchmaster/lab_inventory/internal/orderflow"
	"github.com/Skotchmaster/lab_inventory/internal/stock"
)

type testEnv struct {
	E     *echo.Echo
	DB    *gorm.DB
	Svc   *orderflow.Service
	Queue *fulfillment.MemoryQueue
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}))

	queue := fulfillment.NewMemoryQueue(64)
	svc := orderflow.NewService(db, stock.NewLedger(db), queue, notify.NewBus(nil, nil), nil)

	return &testEnv{E: echo.New(), DB: db, Svc: svc, Queue: queue}
}

func (env *testEnv) createProduct(t *testing.T, name string, stockUnits, threshold int) *models.Product {
	p := &models.Product{
		Name:              name,
		Category:          models.CategoryGlassware,
		Price:             decimal.NewFromFloat(12.99),
		StockQuantity:     stockUnits,
		LowStockThreshold: threshold,
	}
	require.NoError(t, env.DB.Create(p).Error)
	return p
}

func (env *testEnv) doJSONRequest(method, target string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	c.Set(identity.ContextKey, identity.Identity{UserID: 7, Username: "marie", Role: "admin"})
	return rec, c
}

func TestSearchMatchesPrefixInStockOnly(t *testing.T) {
	env := newTestEnv(t)
	env.createProduct(t, "Beaker 250ml", 5, 10)
	env.createProduct(t, "Beaker 500ml", 0, 10)
	env.createProduct(t, "Pipette 10ml", 60, 15)

	h := &SearchHandler{DB: env.DB}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/search?search=beak", nil)
	require.NoError(t, h.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message []searchMatch `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Message, 1)
	require.Equal(t, "Beaker 250ml", resp.Message[0].Name)
	require.Equal(t, 5, resp.Message[0].Stock)
}

func TestSearchEmptyQuery(t *testing.T) {
	env := newTestEnv(t)
	env.createProduct(t, "Beaker 250ml", 5, 10)

	h := &SearchHandler{DB: env.DB}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/search?search=+", nil)
	require.NoError(t, h.Search(c))

	var resp struct {
		Message []searchMatch `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Message)
}

func TestSearchCapped(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 15; i++ {
		env.createProduct(t, fmt.Sprintf("Beaker %dml", 100+i), 5, 1)
	}

	h := &SearchHandler{DB: env.DB}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/search?search=Beaker", nil)
	require.NoError(t, h.Search(c))

	var resp struct {
		Message []searchMatch `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Message, searchLimit)
}

func TestUpdateStockEndpoint(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Beaker 250ml", 42, 10)
	h := &ProductHandler{DB: env.DB, Svc: env.Svc}

	rec, c := env.doJSONRequest(http.MethodPost, "/", map[string]int{"stock_quantity": 7})
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(p.ID))
	require.NoError(t, h.UpdateStock(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Stock updated to 7")

	var got models.Product
	require.NoError(t, env.DB.First(&got, p.ID).Error)
	require.Equal(t, 7, got.StockQuantity)
}

func TestUpdateStockMissingField(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Beaker 250ml", 42, 10)
	h := &ProductHandler{DB: env.DB, Svc: env.Svc}

	rec, c := env.doJSONRequest(http.MethodPost, "/", map[string]string{})
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(p.ID))
	require.NoError(t, h.UpdateStock(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "stock_quantity is required")
}

func TestUpdateStockUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	h := &ProductHandler{DB: env.DB, Svc: env.Svc}

	rec, c := env.doJSONRequest(http.MethodPost, "/", map[string]int{"stock_quantity": 7})
	c.SetParamNames("id")
	c.SetParamValues("999")
	require.NoError(t, h.UpdateStock(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrdersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Beaker 250ml", 10, 2)
	h := &OrderHandler{Svc: env.Svc}

	payload := []map[string]any{
		{"item_id": p.ID, "item_name": "Beaker 250ml", "item_quantity": 2},
		{"item_name": "Unknown Thing", "item_quantity": 1},
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders", payload)
	require.NoError(t, h.CreateOrders(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "Order Created")

	var count int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestCreateSingleOrderObject(t *testing.T) {
	env := newTestEnv(t)
	h := &OrderHandler{Svc: env.Svc}

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders",
		map[string]any{"item_name": "Beaker", "item_quantity": 1})
	require.NoError(t, h.CreateOrders(c))
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateOrderInvalidQuantity(t *testing.T) {
	env := newTestEnv(t)
	h := &OrderHandler{Svc: env.Svc}

	rec, c := env.doJSONRequest(http.MethodPost, "/api/v1/orders",
		map[string]any{"item_name": "Beaker", "item_quantity": 0})
	require.NoError(t, h.CreateOrders(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAcceptEndpoint(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Beaker 250ml", 5, 1)
	order, err := env.Svc.Create(context.Background(), orderflow.CreateOrderInput{
		ItemID: &p.ID, ItemName: p.Name, ItemQuantity: 2,
	}, orderflow.Identity{UserID: 7, Username: "marie"})
	require.NoError(t, err)

	h := &OrderHandler{Svc: env.Svc}

	rec, c := env.doJSONRequest(http.MethodPost, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(order.ID))
	require.NoError(t, h.AcceptOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "processing queue")

	// second accept conflicts
	rec, c = env.doJSONRequest(http.MethodPost, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(order.ID))
	require.NoError(t, h.AcceptOrder(c))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAcceptEndpointInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Beaker 250ml", 1, 1)
	order, err := env.Svc.Create(context.Background(), orderflow.CreateOrderInput{
		ItemID: &p.ID, ItemName: p.Name, ItemQuantity: 3,
	}, orderflow.Identity{UserID: 7, Username: "marie"})
	require.NoError(t, err)

	h := &OrderHandler{Svc: env.Svc}

	rec, c := env.doJSONRequest(http.MethodPost, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(order.ID))
	require.NoError(t, h.AcceptOrder(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "Only 1 available")
}

func TestAcceptEndpointUnknownOrder(t *testing.T) {
	env := newTestEnv(t)
	h := &OrderHandler{Svc: env.Svc}

	rec, c := env.doJSONRequest(http.MethodPost, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("12345")
	require.NoError(t, h.AcceptOrder(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelEndpoint(t *testing.T) {
	env := newTestEnv(t)
	order, err := env.Svc.Create(context.Background(), orderflow.CreateOrderInput{
		ItemName: "Beaker", ItemQuantity: 1,
	}, orderflow.Identity{UserID: 7, Username: "marie"})
	require.NoError(t, err)

	h := &OrderHandler{Svc: env.Svc}

	rec, c := env.doJSONRequest(http.MethodPost, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(order.ID))
	require.NoError(t, h.CancelOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "cancelled successfully")
}

func TestLowStockEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.createProduct(t, "Spill Kit", 0, 2)
	env.createProduct(t, "Beaker 250ml", 50, 10)

	h := &ProductHandler{DB: env.DB, Svc: env.Svc}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/products/low-stock", nil)
	require.NoError(t, h.GetLowStockProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		LowStockProducts []lowStockProduct `json:"low_stock_products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.LowStockProducts, 1)
	require.Equal(t, "Spill Kit", resp.LowStockProducts[0].Name)
	require.True(t, resp.LowStockProducts[0].IsOutOfStock)
}

func TestUserOrdersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.Svc.Create(context.Background(), orderflow.CreateOrderInput{
		ItemName: "Beaker", ItemQuantity: 1,
	}, orderflow.Identity{UserID: 7, Username: "marie"})
	require.NoError(t, err)

	h := &OrderHandler{Svc: env.Svc}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/orders/user", nil)
	require.NoError(t, h.UserOrders(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 1)
	require.Equal(t, "marie", resp.Orders[0].Username)
}

func TestSalesAnalytics(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProduct(t, "Beaker 250ml", 10, 1)

	order, err := env.Svc.Create(context.Background(), orderflow.CreateOrderInput{
		ItemID: &p.ID, ItemName: p.Name, ItemQuantity: 2,
	}, orderflow.Identity{UserID: 7, Username: "marie"})
	require.NoError(t, err)
	_, err = env.Svc.Accept(context.Background(), order.ID)
	require.NoError(t, err)

	h := &AnalyticsHandler{DB: env.DB}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/v1/admin/analytics/sales", nil)
	require.NoError(t, h.Sales(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		UnitsAccepted   int64   `json:"units_accepted"`
		RevenueAccepted float64 `json:"revenue_accepted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 2, resp.UnitsAccepted)
	require.InDelta(t, 25.98, resp.RevenueAccepted, 0.001)
}
