package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"food-delivery-backend/models"
	"food-delivery-backend/realtime"
)

// Sweeper runs the periodic order sweep: promoting due scheduled orders
// into the live flow and materializing recurring order templates.
type Sweeper struct {
	db        *gorm.DB
	publisher *realtime.Publisher
	logger    *zap.SugaredLogger
	lookAhead time.Duration
	cron      *cron.Cron
}

func NewSweeper(db *gorm.DB, publisher *realtime.Publisher, logger *zap.SugaredLogger, lookAhead time.Duration) *Sweeper {
	if lookAhead <= 0 {
		lookAhead = 15 * time.Minute
	}
	return &Sweeper{db: db, publisher: publisher, logger: logger, lookAhead: lookAhead}
}

// Start registers the sweep on a cron schedule and runs it until Stop
func (s *Sweeper) Start(interval time.Duration) error {
	c := cron.New()
	spec := fmt.Sprintf("@every %s", interval)
	if err := c.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return err
	}
	c.Start()
	s.cron = c
	s.logger.Infow("order sweep scheduled", "interval", interval, "look_ahead", s.lookAhead)
	return nil
}

func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce performs both sweeps; tests call this directly
func (s *Sweeper) RunOnce(ctx context.Context) {
	now := time.Now()
	promoted, err := s.PromoteScheduled(ctx, now)
	if err != nil {
		s.logger.Errorw("scheduled order sweep failed", "error", err)
	}
	spawned, err := s.MaterializeRecurring(ctx, now)
	if err != nil {
		s.logger.Errorw("recurring order sweep failed", "error", err)
	}
	if promoted > 0 || spawned > 0 {
		s.logger.Infow("order sweep complete", "promoted", promoted, "spawned", spawned)
	}
}

// PromoteScheduled moves due scheduled orders from PENDING to PLACED.
// The window is one-sided: anything with scheduled_for <= now+lookAhead is
// promoted, so an order whose slot was missed while the process was down
// gets placed late on the next sweep instead of being skipped forever.
func (s *Sweeper) PromoteScheduled(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(s.lookAhead)

	var due []models.Order
	if err := s.db.WithContext(ctx).
		Where("order_type = ? AND is_scheduled = ? AND status = ? AND scheduled_for <= ?",
			models.OrderScheduled, true, models.StatusPending, cutoff).
		Find(&due).Error; err != nil {
		return 0, err
	}

	promoted := 0
	for i := range due {
		order := &due[i]
		// compare-and-set: a concurrent sweep or cancel loses nothing
		res := s.db.WithContext(ctx).Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.StatusPending).
			Updates(map[string]interface{}{
				"status":       models.StatusPlaced,
				"is_scheduled": false,
			})
		if res.Error != nil {
			s.logger.Errorw("failed to promote scheduled order", "order_id", order.ID, "error", res.Error)
			continue
		}
		if res.RowsAffected == 0 {
			continue
		}
		order.Status = models.StatusPlaced
		order.IsScheduled = false
		s.db.WithContext(ctx).Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: models.StatusPending,
			ToStatus:   models.StatusPlaced,
			Note:       "Scheduled order promoted by sweep",
		})
		if s.publisher != nil {
			s.publisher.OrderCreated(ctx, order)
		}
		promoted++
	}
	return promoted, nil
}

// MaterializeRecurring spawns a real order for every active recurring
// template whose next_delivery has arrived, then advances next_delivery by
// one cadence unit. Templates past their end date are marked completed
// instead of spawning.
func (s *Sweeper) MaterializeRecurring(ctx context.Context, now time.Time) (int, error) {
	var due []models.RecurringOrder
	if err := s.db.WithContext(ctx).
		Where("status = ? AND next_delivery <= ?", models.RecurringActive, now).
		Find(&due).Error; err != nil {
		return 0, err
	}

	spawned := 0
	for i := range due {
		tmpl := &due[i]
		if tmpl.EndDate != nil && tmpl.EndDate.Before(now) {
			s.db.WithContext(ctx).Model(tmpl).Update("status", models.RecurringCompleted)
			continue
		}
		order, err := s.spawnOrder(ctx, tmpl)
		if err != nil {
			s.logger.Errorw("failed to materialize recurring order", "recurring_id", tmpl.ID, "error", err)
			continue
		}
		next := tmpl.Frequency.NextAfter(tmpl.NextDelivery)
		s.db.WithContext(ctx).Model(tmpl).Updates(map[string]interface{}{
			"next_delivery":    next,
			"total_orders":     gorm.Expr("total_orders + 1"),
			"completed_orders": gorm.Expr("completed_orders + 1"),
		})
		if s.publisher != nil {
			s.publisher.OrderCreated(ctx, order)
		}
		spawned++
	}
	return spawned, nil
}

func (s *Sweeper) spawnOrder(ctx context.Context, tmpl *models.RecurringOrder) (*models.Order, error) {
	var items []models.RecurringItem
	if err := json.Unmarshal([]byte(tmpl.ItemsJSON), &items); err != nil {
		return nil, fmt.Errorf("bad items snapshot: %w", err)
	}

	var orderItems []models.OrderItem
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
		})
	}

	order := models.Order{
		CustomerID:       tmpl.CustomerID,
		RestaurantID:     tmpl.RestaurantID,
		Status:           models.StatusPlaced,
		TotalAmount:      total,
		FinalAmount:      total,
		PaymentMethod:    tmpl.PaymentMethod,
		PaymentStatus:    models.PaymentPending,
		OrderType:        models.OrderRecurring,
		RecurringOrderID: &tmpl.ID,
		DeliveryAddress:  tmpl.DeliveryAddress,
		Items:            orderItems,
	}
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	s.db.WithContext(ctx).Create(&models.OrderStatusHistory{
		OrderID:  order.ID,
		ToStatus: models.StatusPlaced,
		Note:     "Order spawned from recurring template",
	})
	return &order, nil
}
