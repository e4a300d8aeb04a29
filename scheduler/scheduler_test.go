package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"food-delivery-backend/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Order{}, &models.OrderItem{}, &models.OrderStatusHistory{},
		&models.RecurringOrder{},
	))
	return db
}

func newSweeper(db *gorm.DB) *Sweeper {
	return NewSweeper(db, nil, zap.NewNop().Sugar(), 15*time.Minute)
}

func scheduledOrder(db *gorm.DB, t *testing.T, at time.Time) models.Order {
	t.Helper()
	order := models.Order{
		CustomerID:      1,
		RestaurantID:    1,
		Status:          models.StatusPending,
		OrderType:       models.OrderScheduled,
		IsScheduled:     true,
		ScheduledFor:    &at,
		TotalAmount:     300,
		FinalAmount:     300,
		DeliveryAddress: "42 Test Street",
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestPromoteScheduledInsideWindow(t *testing.T) {
	db := setupDB(t)
	s := newSweeper(db)
	now := time.Now()

	order := scheduledOrder(db, t, now.Add(10*time.Minute))

	promoted, err := s.PromoteScheduled(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.StatusPlaced, got.Status)
	assert.False(t, got.IsScheduled)

	var history models.OrderStatusHistory
	require.NoError(t, db.Where("order_id = ?", order.ID).First(&history).Error)
	assert.Equal(t, models.StatusPending, history.FromStatus)
	assert.Equal(t, models.StatusPlaced, history.ToStatus)
}

func TestPromoteScheduledOutsideWindowUntouched(t *testing.T) {
	db := setupDB(t)
	s := newSweeper(db)
	now := time.Now()

	order := scheduledOrder(db, t, now.Add(2*time.Hour))

	promoted, err := s.PromoteScheduled(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, promoted)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.True(t, got.IsScheduled)
}

func TestPromoteScheduledCatchesMissedSlots(t *testing.T) {
	db := setupDB(t)
	s := newSweeper(db)
	now := time.Now()

	// scheduled for two hours ago: the sweep that should have caught it
	// never ran. The one-sided window still promotes it.
	order := scheduledOrder(db, t, now.Add(-2*time.Hour))

	promoted, err := s.PromoteScheduled(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)

	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.StatusPlaced, got.Status)
}

func TestPromoteScheduledIgnoresImmediateOrders(t *testing.T) {
	db := setupDB(t)
	s := newSweeper(db)
	now := time.Now()

	order := models.Order{
		CustomerID: 1, RestaurantID: 1,
		Status: models.StatusPlaced, OrderType: models.OrderImmediate,
		TotalAmount: 100, FinalAmount: 100, DeliveryAddress: "x",
	}
	require.NoError(t, db.Create(&order).Error)

	promoted, err := s.PromoteScheduled(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, promoted)
}

func recurringTemplate(db *gorm.DB, t *testing.T, freq models.RecurringFrequency, next time.Time, end *time.Time) models.RecurringOrder {
	t.Helper()
	items, err := json.Marshal([]models.RecurringItem{
		{MenuItemID: 1, Name: "Masala Dosa", Price: 120, Quantity: 2},
		{MenuItemID: 2, Name: "Filter Coffee", Price: 40, Quantity: 1},
	})
	require.NoError(t, err)
	tmpl := models.RecurringOrder{
		CustomerID:      1,
		RestaurantID:    1,
		ItemsJSON:       string(items),
		Frequency:       freq,
		NextDelivery:    next,
		EndDate:         end,
		Status:          models.RecurringActive,
		PaymentMethod:   models.PaymentCOD,
		DeliveryAddress: "42 Test Street",
	}
	require.NoError(t, db.Create(&tmpl).Error)
	return tmpl
}

func TestMaterializeRecurringWeekly(t *testing.T) {
	db := setupDB(t)
	s := newSweeper(db)
	now := time.Now()
	due := now.Add(-5 * time.Minute)

	tmpl := recurringTemplate(db, t, models.FrequencyWeekly, due, nil)

	spawned, err := s.MaterializeRecurring(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, spawned)

	// next delivery advances by exactly one week from the previous slot
	var got models.RecurringOrder
	require.NoError(t, db.First(&got, tmpl.ID).Error)
	assert.WithinDuration(t, due.AddDate(0, 0, 7), got.NextDelivery, time.Second)
	assert.Equal(t, 1, got.TotalOrders)
	assert.Equal(t, 1, got.CompletedOrders)

	var order models.Order
	require.NoError(t, db.Preload("Items").Where("recurring_order_id = ?", tmpl.ID).First(&order).Error)
	assert.Equal(t, models.StatusPlaced, order.Status)
	assert.Equal(t, models.OrderRecurring, order.OrderType)
	assert.Equal(t, 280.0, order.TotalAmount) // 120*2 + 40*1
	assert.Equal(t, 280.0, order.FinalAmount)
	assert.Len(t, order.Items, 2)
}

func TestMaterializeRecurringNotYetDue(t *testing.T) {
	db := setupDB(t)
	s := newSweeper(db)
	now := time.Now()

	recurringTemplate(db, t, models.FrequencyDaily, now.Add(3*time.Hour), nil)

	spawned, err := s.MaterializeRecurring(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, spawned)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestMaterializeRecurringPastEndDateCompletes(t *testing.T) {
	db := setupDB(t)
	s := newSweeper(db)
	now := time.Now()
	ended := now.Add(-24 * time.Hour)

	tmpl := recurringTemplate(db, t, models.FrequencyDaily, now.Add(-time.Hour), &ended)

	spawned, err := s.MaterializeRecurring(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, spawned)

	var got models.RecurringOrder
	require.NoError(t, db.First(&got, tmpl.ID).Error)
	assert.Equal(t, models.RecurringCompleted, got.Status)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestMaterializeRecurringSkipsPaused(t *testing.T) {
	db := setupDB(t)
	s := newSweeper(db)
	now := time.Now()

	tmpl := recurringTemplate(db, t, models.FrequencyDaily, now.Add(-time.Hour), nil)
	require.NoError(t, db.Model(&tmpl).Update("status", models.RecurringPaused).Error)

	spawned, err := s.MaterializeRecurring(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, spawned)
}

func TestFrequencyNextAfter(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, base.AddDate(0, 0, 1), models.FrequencyDaily.NextAfter(base))
	assert.Equal(t, base.AddDate(0, 0, 7), models.FrequencyWeekly.NextAfter(base))
	assert.Equal(t, base.AddDate(0, 0, 14), models.FrequencyBiweekly.NextAfter(base))
	assert.Equal(t, base.AddDate(0, 1, 0), models.FrequencyMonthly.NextAfter(base))
}
