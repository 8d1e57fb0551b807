package services

import (
	"context"
	"errors"
	"time"

	"go-storefront/cache"
	"go-storefront/models"
	"go-storefront/store"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderService turns carts into per-vendor orders and moves orders through their lifecycle.
type OrderService struct {
	store    *store.Store
	lock     cache.CheckoutLock
	notifier *Notifier
	email    *utils.EmailService
	policy   StatusPolicy
	logger   zerolog.Logger
	now      Clock
}

func NewOrderService(st *store.Store, lock cache.CheckoutLock, notifier *Notifier, email *utils.EmailService, policy StatusPolicy, logger zerolog.Logger) *OrderService {
	if lock == nil {
		lock = cache.NewLocalCheckoutLock()
	}
	if policy == nil {
		policy = PermissivePolicy{}
	}
	return &OrderService{
		store:    st,
		lock:     lock,
		notifier: notifier,
		email:    email,
		policy:   policy,
		logger:   logger.With().Str("component", "orders").Logger(),
		now:      systemClock,
	}
}

func outOfStock(p *models.Product) error {
	title := "Unknown"
	if p != nil {
		title = p.Title
	}
	return utils.InvalidState("Product %s is out of stock", title)
}

// reservation is a stock decrement applied during a checkout.
type reservation struct {
	productID primitive.ObjectID
	qty       int
}

// Place converts the account's cart into one order per vendor.
//
// Every line is checked before anything is written. Each order is then inserted and its
// stock reserved with a conditional decrement; if any reservation fails, all reservations
// and orders of this checkout are undone and the cart is left untouched.
func (s *OrderService) Place(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	release, err := s.lock.Acquire(ctx, userID.Hex())
	switch {
	case errors.Is(err, cache.ErrLocked):
		return nil, utils.Conflict("Another checkout is already in progress")
	case err != nil:
		s.logger.Warn().Err(err).Msg("checkout lock unavailable, continuing without it")
	default:
		defer release()
	}

	cart, err := s.store.Carts.Get(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, utils.Internal(err, "load cart")
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, utils.InvalidState("Cannot create an order from an empty cart")
	}

	products := make(map[primitive.ObjectID]*models.Product, len(cart.Items))
	for _, item := range cart.Items {
		p, err := s.store.Products.FindByID(ctx, item.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, outOfStock(nil)
		}
		if err != nil {
			return nil, utils.Internal(err, "load product")
		}
		if p.Stock < item.Quantity {
			return nil, outOfStock(p)
		}
		products[item.ProductID] = p
	}

	vendorOf := func(item models.CartItem) primitive.ObjectID { return products[item.ProductID].VendorID }
	vendors := lo.Uniq(lo.Map(cart.Items, func(item models.CartItem, _ int) primitive.ObjectID { return vendorOf(item) }))
	byVendor := lo.GroupBy(cart.Items, vendorOf)

	var (
		created  []models.Order
		reserved []reservation
	)
	rollback := func() {
		s.undo(context.WithoutCancel(ctx), created, reserved)
	}

	for _, vendorID := range vendors {
		order := s.buildOrder(userID, vendorID, byVendor[vendorID], products)
		if err := s.store.Orders.Create(ctx, &order); err != nil {
			rollback()
			return nil, utils.Internal(err, "create order")
		}
		created = append(created, order)

		for _, item := range order.Items {
			if err := s.store.Products.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
				rollback()
				if errors.Is(err, store.ErrInsufficientStock) {
					return nil, outOfStock(products[item.ProductID])
				}
				return nil, utils.Internal(err, "reserve stock")
			}
			reserved = append(reserved, reservation{productID: item.ProductID, qty: item.Quantity})
		}
	}

	if _, err := s.store.Carts.SetItems(ctx, userID, []models.CartItem{}); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.Hex()).Msg("orders placed but cart not cleared")
	}

	s.logger.Info().Str("user_id", userID.Hex()).Int("orders", len(created)).Msg("checkout completed")
	s.notifier.OrderPlaced(ctx, created)
	s.sendConfirmation(ctx, userID, created)
	return created, nil
}

func (s *OrderService) buildOrder(userID, vendorID primitive.ObjectID, items []models.CartItem, products map[primitive.ObjectID]*models.Product) models.Order {
	total := decimal.Zero
	lines := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		price := products[item.ProductID].Price
		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(item.Quantity))))
		lines = append(lines, models.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity, Price: price})
	}
	now := s.now()
	return models.Order{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		VendorID:    vendorID,
		Items:       lines,
		TotalAmount: total.InexactFloat64(),
		Status:      models.OrderPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// undo reverses a failed checkout. Errors are logged; there is nothing more to unwind.
func (s *OrderService) undo(ctx context.Context, created []models.Order, reserved []reservation) {
	for _, r := range reserved {
		if err := s.store.Products.Restock(ctx, r.productID, r.qty); err != nil {
			s.logger.Error().Err(err).Str("product_id", r.productID.Hex()).Int("qty", r.qty).Msg("failed to release reserved stock")
		}
	}
	for _, o := range created {
		if err := s.store.Orders.Delete(ctx, o.ID); err != nil {
			s.logger.Error().Err(err).Str("order_id", o.ID.Hex()).Msg("failed to delete order of failed checkout")
		}
	}
	s.logger.Warn().Int("orders", len(created)).Int("reservations", len(reserved)).Msg("checkout rolled back")
}

// sendConfirmation mails the buyer in the background.
func (s *OrderService) sendConfirmation(ctx context.Context, userID primitive.ObjectID, orders []models.Order) {
	if s.email == nil {
		return
	}
	user, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Msg("skipping order confirmation, buyer not found")
		return
	}
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(decimal.NewFromFloat(o.TotalAmount))
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.email.SendOrderConfirmation(ctx, user, orders, total.StringFixed(2)); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID.Hex()).Msg("failed to send order confirmation")
		}
	}()
}

// ListMine returns the buyer's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, userID primitive.ObjectID, page store.Page) (Paged[models.Order], error) {
	items, total, err := s.store.Orders.ListByUser(ctx, userID, page)
	if err != nil {
		return Paged[models.Order]{}, utils.Internal(err, "list orders")
	}
	return paged(items, total, page), nil
}

func (s *OrderService) GetMine(ctx context.Context, userID, id primitive.ObjectID) (*models.Order, error) {
	o, err := s.store.Orders.FindForUser(ctx, id, userID)
	if err != nil {
		return nil, storeErr(err, "Order not found", "load order")
	}
	return o, nil
}

func notCancellable(status models.OrderStatus) error {
	return utils.InvalidState("Order cannot be cancelled because it is already %s", status)
}

// Cancel lets the buyer cancel a Pending or Processing order and returns its stock.
func (s *OrderService) Cancel(ctx context.Context, userID, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.store.Orders.FindForUser(ctx, id, userID)
	if err != nil {
		return nil, storeErr(err, "Order not found", "load order")
	}
	if !order.Status.Cancellable() {
		return nil, notCancellable(order.Status)
	}

	prev := order.Status
	updated, err := s.store.Orders.Transition(ctx, id, []models.OrderStatus{models.OrderPending, models.OrderProcessing}, models.OrderCancelled)
	if errors.Is(err, store.ErrStaleState) {
		if current, ferr := s.store.Orders.FindForUser(ctx, id, userID); ferr == nil {
			return nil, notCancellable(current.Status)
		}
		return nil, notCancellable(models.OrderCancelled)
	}
	if err != nil {
		return nil, storeErr(err, "Order not found", "cancel order")
	}

	restockCtx := context.WithoutCancel(ctx)
	for _, item := range updated.Items {
		if err := s.store.Products.Restock(restockCtx, item.ProductID, item.Quantity); err != nil {
			s.logger.Warn().Err(err).Str("order_id", id.Hex()).Str("product_id", item.ProductID.Hex()).Msg("failed to restock cancelled item")
		}
	}
	s.logger.Info().Str("order_id", id.Hex()).Msg("order cancelled")
	s.notifier.OrderCancelled(ctx, updated, prev)
	return updated, nil
}

// ListForVendor returns the vendor's orders, newest first.
func (s *OrderService) ListForVendor(ctx context.Context, vendorID primitive.ObjectID, page store.Page) (Paged[models.Order], error) {
	items, total, err := s.store.Orders.ListByVendor(ctx, vendorID, page)
	if err != nil {
		return Paged[models.Order]{}, utils.Internal(err, "list vendor orders")
	}
	return paged(items, total, page), nil
}

func (s *OrderService) GetForVendor(ctx context.Context, vendorID, id primitive.ObjectID) (*models.Order, error) {
	o, err := s.store.Orders.FindForVendor(ctx, id, vendorID)
	if err != nil {
		return nil, storeErr(err, "Order not found or unauthorized", "load order")
	}
	return o, nil
}

// UpdateStatus sets the status of one of the vendor's orders, subject to the status policy.
// Stock is not adjusted here.
func (s *OrderService) UpdateStatus(ctx context.Context, vendorID, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, utils.Validation("Invalid status value")
	}
	order, err := s.store.Orders.FindForVendor(ctx, id, vendorID)
	if err != nil {
		return nil, storeErr(err, "Order not found or unauthorized to update status", "load order")
	}

	from := s.policy.From(status)
	if from != nil && !lo.Contains(from, order.Status) {
		return nil, utils.InvalidState("Cannot change order status from %s to %s", order.Status, status)
	}
	prev := order.Status
	updated, err := s.store.Orders.Transition(ctx, id, from, status)
	if errors.Is(err, store.ErrStaleState) {
		return nil, utils.InvalidState("Order status changed, please retry")
	}
	if err != nil {
		return nil, storeErr(err, "Order not found or unauthorized to update status", "update order status")
	}
	s.logger.Info().Str("order_id", id.Hex()).Str("from", string(prev)).Str("to", string(status)).Msg("order status updated")
	s.notifier.StatusChanged(ctx, updated, prev)
	return updated, nil
}
