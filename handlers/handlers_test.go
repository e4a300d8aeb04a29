package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"food-delivery-backend/middleware"
	"food-delivery-backend/models"
	"food-delivery-backend/payment"
	"food-delivery-backend/realtime"
)

type testApp struct {
	db      *gorm.DB
	handler *Handler
	router  *gin.Engine
	redis   *miniredis.Miniredis
}

// setupApp builds a full handler stack over a named shared in-memory
// sqlite (so every pooled connection sees the same database) and a
// miniredis-backed publisher.
func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(10000)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Restaurant{}, &models.MenuItem{},
		&models.Order{}, &models.OrderItem{}, &models.OrderStatusHistory{},
		&models.RecurringOrder{}, &models.Address{}, &models.Coupon{},
	))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	h := &Handler{
		DB:        db,
		Logger:    zap.NewNop().Sugar(),
		Auth:      middleware.NewAuth("test_secret", time.Hour),
		Publisher: realtime.NewPublisherWithClient(client, zap.NewNop().Sugar()),
		Payments:  payment.NewVerifier("test_payment_secret"),
	}

	router := gin.New()
	registerTestRoutes(router, h)

	return &testApp{db: db, handler: h, router: router, redis: mr}
}

// registerTestRoutes mirrors routes.SetupRoutes; duplicated here to
// avoid an import cycle between routes and the handler tests
func registerTestRoutes(r *gin.Engine, h *Handler) {
	auth := h.Auth

	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)

	customer := r.Group("/api/customer")
	customer.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", h.PlaceOrder)
		customer.GET("/orders", h.GetMyOrders)
		customer.GET("/orders/:id", h.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", h.CancelOrder)
		customer.POST("/payments/verify", h.VerifyPayment)
		customer.POST("/recurring", h.CreateRecurringOrder)
	}

	restaurant := r.Group("/api/restaurant")
	restaurant.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleRestaurant))
	{
		restaurant.GET("/orders", h.GetRestaurantOrders)
		restaurant.PUT("/orders/:id/status", h.UpdateOrderStatus)
	}

	delivery := r.Group("/api/delivery")
	delivery.Use(auth.AuthRequired(), middleware.RoleRequired(models.RoleDelivery))
	{
		delivery.GET("/orders/available", h.GetAvailableOrders)
		delivery.GET("/orders/my", h.GetMyDeliveries)
		delivery.PUT("/orders/:id/status", h.UpdateDeliveryStatus)
	}
}

// seedUser inserts a user and returns a bearer token for them
func (a *testApp) seedUser(t *testing.T, name string, role models.UserRole) (models.User, string) {
	t.Helper()
	user := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, a.db.Create(&user).Error)
	token, err := a.handler.Auth.GenerateToken(&user)
	require.NoError(t, err)
	return user, token
}

// seedRestaurant creates an open restaurant with a small menu
func (a *testApp) seedRestaurant(t *testing.T, ownerID uint) (models.Restaurant, []models.MenuItem) {
	t.Helper()
	restaurant := models.Restaurant{OwnerID: ownerID, Name: "Dosa Palace", Cuisine: "South Indian", Address: "1 Main Rd", IsOpen: true}
	require.NoError(t, a.db.Create(&restaurant).Error)
	items := []models.MenuItem{
		{RestaurantID: restaurant.ID, Name: "Masala Dosa", Price: 100, IsAvailable: true},
		{RestaurantID: restaurant.ID, Name: "Filter Coffee", Price: 50, IsAvailable: true},
	}
	require.NoError(t, a.db.Create(&items).Error)
	return restaurant, items
}

func (a *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeOrder(t *testing.T, w *httptest.ResponseRecorder) models.Order {
	t.Helper()
	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Order
}

// placeOrder is the common happy-path: two dosas and one coffee
func (a *testApp) placeOrder(t *testing.T, token string, restaurant models.Restaurant, items []models.MenuItem, extra map[string]interface{}) models.Order {
	t.Helper()
	body := map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"address":       "42 Test Street, Testville - 560001",
		"items": []map[string]interface{}{
			{"menu_item_id": items[0].ID, "quantity": 2},
			{"menu_item_id": items[1].ID, "quantity": 1},
		},
	}
	for k, v := range extra {
		body[k] = v
	}
	w := a.request(t, http.MethodPost, "/api/customer/orders", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeOrder(t, w)
}
