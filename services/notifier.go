package services

import (
	"context"
	"fmt"

	"go-storefront/events"
	"go-storefront/models"
	"go-storefront/store"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier fans order changes out to in-app notifications and the event stream. Both are
// best effort: failures are logged and never fail the request.
type Notifier struct {
	notifications store.Notifications
	publisher     events.Publisher
	logger        zerolog.Logger
	now           Clock
}

func NewNotifier(notifications store.Notifications, publisher events.Publisher, logger zerolog.Logger) *Notifier {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Notifier{notifications: notifications, publisher: publisher, logger: logger, now: systemClock}
}

func (n *Notifier) notify(ctx context.Context, userID primitive.ObjectID, title, message string) {
	err := n.notifications.Create(ctx, &models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      models.NotificationOrder,
		CreatedAt: n.now(),
	})
	if err != nil {
		n.logger.Warn().Err(err).Str("user_id", userID.Hex()).Msg("failed to create notification")
	}
}

func (n *Notifier) publish(ctx context.Context, eventType string, order *models.Order, prev models.OrderStatus) {
	payload := events.OrderPayload{
		OrderID:     order.ID.Hex(),
		UserID:      order.UserID.Hex(),
		VendorID:    order.VendorID.Hex(),
		Status:      string(order.Status),
		PrevStatus:  string(prev),
		TotalAmount: order.TotalAmount,
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, events.OrderItem{ProductID: item.ProductID.Hex(), Qty: item.Quantity, Price: item.Price})
	}
	env, err := events.NewEnvelope(eventType, order.ID.Hex(), payload)
	if err == nil {
		err = n.publisher.Publish(ctx, order.ID.Hex(), env)
	}
	if err != nil {
		n.logger.Warn().Err(err).Str("order_id", order.ID.Hex()).Str("event", eventType).Msg("failed to publish event")
	}
}

func shortID(id primitive.ObjectID) string {
	hex := id.Hex()
	return hex[len(hex)-6:]
}

// OrderPlaced tells the buyer and each vendor about a checkout.
func (n *Notifier) OrderPlaced(ctx context.Context, orders []models.Order) {
	for i := range orders {
		o := &orders[i]
		n.notify(ctx, o.UserID, "Order placed", fmt.Sprintf("Your order #%s has been placed.", shortID(o.ID)))
		n.notify(ctx, o.VendorID, "New order received", fmt.Sprintf("You received order #%s with %d item(s).", shortID(o.ID), len(o.Items)))
		n.publish(ctx, events.OrderPlaced, o, "")
	}
}

// OrderCancelled tells the vendor the buyer cancelled.
func (n *Notifier) OrderCancelled(ctx context.Context, order *models.Order, prev models.OrderStatus) {
	n.notify(ctx, order.VendorID, "Order cancelled", fmt.Sprintf("Order #%s was cancelled by the customer.", shortID(order.ID)))
	n.publish(ctx, events.OrderCancelled, order, prev)
}

// StatusChanged tells the buyer the vendor moved their order.
func (n *Notifier) StatusChanged(ctx context.Context, order *models.Order, prev models.OrderStatus) {
	n.notify(ctx, order.UserID, "Order status updated", fmt.Sprintf("Your order #%s is now %s.", shortID(order.ID), order.Status))
	n.publish(ctx, events.OrderStatusChanged, order, prev)
}
