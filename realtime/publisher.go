package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"food-delivery-backend/models"
)

// Event types understood by dashboard subscribers
const (
	EventOrderCreated = "order_created"
	EventOrderUpdated = "order_updated"
	EventOrderClaimed = "order_claimed"
)

// Topic helpers; subscribers join/leave these channels out of band
func RestaurantTopic(restaurantID uint) string { return fmt.Sprintf("restaurant_%d", restaurantID) }
func OrderTopic(orderID uint) string           { return fmt.Sprintf("order_%d", orderID) }
func DeliveryTopic(partnerID uint) string      { return fmt.Sprintf("delivery_%d", partnerID) }

const DeliveryPoolTopic = "delivery_pool"

// OrderEvent is the payload pushed on every lifecycle change
type OrderEvent struct {
	Type              string             `json:"type"`
	OrderID           uint               `json:"order_id"`
	Status            models.OrderStatus `json:"status"`
	RestaurantID      uint               `json:"restaurant_id"`
	CustomerID        uint               `json:"customer_id"`
	DeliveryPartnerID *uint              `json:"delivery_partner_id,omitempty"`
	FinalAmount       float64            `json:"final_amount"`
	Timestamp         int64              `json:"timestamp"`
}

// Publisher fans order state out to interested dashboards over Redis
// pub/sub. Delivery is push-based, at-most-once and best effort: publish
// errors are logged and swallowed, an offline subscriber simply misses
// the message and reconciles via the delivery dashboard's periodic
// re-fetch of /orders/available.
type Publisher struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

func NewPublisher(addr, password string, db int, logger *zap.SugaredLogger) (*Publisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Publisher{client: client, logger: logger}, nil
}

// NewPublisherWithClient wraps an existing client; used by tests
func NewPublisherWithClient(client *redis.Client, logger *zap.SugaredLogger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

// OrderCreated announces a brand-new order on the restaurant's channel
// under a distinct type so the dashboard can tell "new" from "updated".
func (p *Publisher) OrderCreated(ctx context.Context, order *models.Order) {
	ev := eventFor(order, EventOrderCreated)
	p.publish(ctx, RestaurantTopic(order.RestaurantID), ev)
	p.publish(ctx, OrderTopic(order.ID), ev)
}

// OrderUpdated fans a status change out to every interested subscriber:
//   - the restaurant dashboard and the customer's tracking view, always;
//   - the delivery pool while the order is claimable;
//   - the assigned rider's channel once claimed, plus one more pool
//     message so other riders drop it from their available list.
func (p *Publisher) OrderUpdated(ctx context.Context, order *models.Order, claimed bool) {
	typ := EventOrderUpdated
	if claimed {
		typ = EventOrderClaimed
	}
	ev := eventFor(order, typ)

	p.publish(ctx, RestaurantTopic(order.RestaurantID), ev)
	p.publish(ctx, OrderTopic(order.ID), ev)

	if order.DeliveryPartnerID == nil {
		if claimable(order.Status) {
			p.publish(ctx, DeliveryPoolTopic, ev)
		}
		return
	}
	p.publish(ctx, DeliveryTopic(*order.DeliveryPartnerID), ev)
	if claimed {
		p.publish(ctx, DeliveryPoolTopic, ev)
	}
}

// claimable: visible to the delivery pool while no rider owns it
func claimable(status models.OrderStatus) bool {
	switch status {
	case models.StatusAccepted, models.StatusPreparing, models.StatusReady:
		return true
	}
	return false
}

func eventFor(order *models.Order, typ string) OrderEvent {
	return OrderEvent{
		Type:              typ,
		OrderID:           order.ID,
		Status:            order.Status,
		RestaurantID:      order.RestaurantID,
		CustomerID:        order.CustomerID,
		DeliveryPartnerID: order.DeliveryPartnerID,
		FinalAmount:       order.FinalAmount,
		Timestamp:         time.Now().Unix(),
	}
}

func (p *Publisher) publish(ctx context.Context, channel string, ev OrderEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Errorw("failed to marshal order event", "channel", channel, "error", err)
		return
	}
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		// best effort: a missed update is recovered by the poll fallback
		p.logger.Warnw("failed to publish order event", "channel", channel, "order_id", ev.OrderID, "error", err)
	}
}
