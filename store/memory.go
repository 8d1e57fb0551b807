package store

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go-storefront/models"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is a process-local store used for local development (STORE_DRIVER=memory) and tests.
// Every method copies documents in and out so callers never share state with the store.
type Memory struct {
	mu            sync.Mutex
	users         map[primitive.ObjectID]models.User
	products      map[primitive.ObjectID]models.Product
	carts         map[primitive.ObjectID]models.Cart
	wishlists     map[primitive.ObjectID]models.Wishlist
	orders        map[primitive.ObjectID]models.Order
	reviews       map[primitive.ObjectID]models.Review
	addresses     map[primitive.ObjectID]models.Address
	notifications map[primitive.ObjectID]models.Notification
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:         map[primitive.ObjectID]models.User{},
		products:      map[primitive.ObjectID]models.Product{},
		carts:         map[primitive.ObjectID]models.Cart{},
		wishlists:     map[primitive.ObjectID]models.Wishlist{},
		orders:        map[primitive.ObjectID]models.Order{},
		reviews:       map[primitive.ObjectID]models.Review{},
		addresses:     map[primitive.ObjectID]models.Address{},
		notifications: map[primitive.ObjectID]models.Notification{},
	}
}

// Store exposes the memory store through the repository interfaces.
func (m *Memory) Store() *Store {
	return &Store{
		Users:         memUsers{m},
		Products:      memProducts{m},
		Carts:         memCarts{m},
		Wishlists:     memWishlists{m},
		Orders:        memOrders{m},
		Reviews:       memReviews{m},
		Addresses:     memAddresses{m},
		Notifications: memNotifications{m},
	}
}

func newestFirst[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return created(items[i]).After(created(items[j])) })
}

func paginate[T any](items []T, page Page) []T {
	skip := page.Skip()
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}

// ---- users ----

type memUsers struct{ m *Memory }

func (r memUsers) Create(_ context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
		if user.GoogleID != "" && u.GoogleID == user.GoogleID {
			return ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.m.users[user.ID] = *user
	return nil
}

func (r memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (r memUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Picture != nil {
		u.Picture = *update.Picture
	}
	u.UpdatedAt = time.Now().UTC()
	r.m.users[id] = u
	return &u, nil
}

func (r memUsers) UpdateStore(_ context.Context, id primitive.ObjectID, info models.StoreInfo) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.StoreName, u.StoreDescription, u.Logo, u.Address = info.StoreName, info.StoreDescription, info.Logo, info.Address
	u.UpdatedAt = time.Now().UTC()
	r.m.users[id] = u
	return &u, nil
}

func (r memUsers) LinkGoogle(_ context.Context, id primitive.ObjectID, googleID, picture string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok || u.GoogleID != "" {
		return ErrNotFound
	}
	u.GoogleID = googleID
	if u.Picture == "" {
		u.Picture = picture
	}
	r.m.users[id] = u
	return nil
}

func (r memUsers) SetResetOTP(_ context.Context, id primitive.ObjectID, otpHash string, expires time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.ResetPasswordOTP = otpHash
	u.ResetPasswordOTPExpires = &expires
	r.m.users[id] = u
	return nil
}

func (r memUsers) ConsumeResetOTP(_ context.Context, id primitive.ObjectID, otpHash, passwordHash string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok || u.ResetPasswordOTP == "" || u.ResetPasswordOTP != otpHash {
		return ErrStaleState
	}
	u.Password = passwordHash
	u.ResetPasswordOTP = ""
	u.ResetPasswordOTPExpires = nil
	u.UpdatedAt = time.Now().UTC()
	r.m.users[id] = u
	return nil
}

func (r memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.users, id)
	return nil
}

// ---- products ----

type memProducts struct{ m *Memory }

func (r memProducts) Create(_ context.Context, product *models.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	r.m.products[product.ID] = *product
	return nil
}

func (r memProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r memProducts) FindOwned(ctx context.Context, id, vendorID primitive.ObjectID) (*models.Product, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.VendorID != vendorID {
		return nil, ErrNotFound
	}
	return p, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (r memProducts) List(_ context.Context, filter ProductFilter, page Page) ([]models.Product, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	matched := lo.Filter(lo.Values(r.m.products), func(p models.Product, _ int) bool {
		if !filter.VendorID.IsZero() && p.VendorID != filter.VendorID {
			return false
		}
		if filter.Keyword != "" && !containsFold(p.Title, filter.Keyword) && !containsFold(p.Description, filter.Keyword) {
			return false
		}
		if filter.Title != "" && !containsFold(p.Title, filter.Title) {
			return false
		}
		if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
			return false
		}
		return true
	})
	newestFirst(matched, func(p models.Product) time.Time { return p.CreatedAt })
	return paginate(matched, page), int64(len(matched)), nil
}

func (r memProducts) Update(_ context.Context, id, vendorID primitive.ObjectID, update models.ProductUpdate) (*models.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok || p.VendorID != vendorID {
		return nil, ErrNotFound
	}
	if update.Title != nil {
		p.Title = *update.Title
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	if update.Category != nil {
		p.Category = *update.Category
	}
	if update.Price != nil {
		p.Price = *update.Price
	}
	if update.ImageURL != nil {
		p.ImageURL = *update.ImageURL
	}
	if update.Stock != nil {
		p.Stock = *update.Stock
	}
	p.UpdatedAt = time.Now().UTC()
	r.m.products[id] = p
	return &p, nil
}

func (r memProducts) Delete(_ context.Context, id, vendorID primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok || p.VendorID != vendorID {
		return ErrNotFound
	}
	delete(r.m.products, id)
	return nil
}

func (r memProducts) Reserve(_ context.Context, id primitive.ObjectID, qty int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok || p.Stock < qty {
		return ErrInsufficientStock
	}
	p.Stock -= qty
	r.m.products[id] = p
	return nil
}

func (r memProducts) Restock(_ context.Context, id primitive.ObjectID, qty int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Stock += qty
	r.m.products[id] = p
	return nil
}

func (r memProducts) CountByVendor(_ context.Context, vendorID primitive.ObjectID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(lo.CountBy(lo.Values(r.m.products), func(p models.Product) bool { return p.VendorID == vendorID })), nil
}

// ---- carts ----

type memCarts struct{ m *Memory }

func copyCart(c models.Cart) *models.Cart {
	c.Items = append([]models.CartItem{}, c.Items...)
	return &c
}

func (r memCarts) Get(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCart(c), nil
}

func (r memCarts) SetItems(_ context.Context, userID primitive.ObjectID, items []models.CartItem) (*models.Cart, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.carts[userID]
	if !ok {
		c = models.Cart{ID: primitive.NewObjectID(), UserID: userID}
	}
	c.Items = append([]models.CartItem{}, items...)
	c.UpdatedAt = time.Now().UTC()
	r.m.carts[userID] = c
	return copyCart(c), nil
}

func (r memCarts) RemoveItem(_ context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Items = lo.Reject(c.Items, func(item models.CartItem, _ int) bool { return item.ProductID == productID })
	c.UpdatedAt = time.Now().UTC()
	r.m.carts[userID] = c
	return copyCart(c), nil
}

func (r memCarts) Delete(_ context.Context, userID primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.carts, userID)
	return nil
}

// ---- wishlists ----

type memWishlists struct{ m *Memory }

func copyWishlist(w models.Wishlist) *models.Wishlist {
	w.Items = append([]primitive.ObjectID{}, w.Items...)
	return &w
}

func (r memWishlists) Get(_ context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	w, ok := r.m.wishlists[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyWishlist(w), nil
}

func (r memWishlists) AddItem(_ context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	w, ok := r.m.wishlists[userID]
	if !ok {
		w = models.Wishlist{ID: primitive.NewObjectID(), UserID: userID, Items: []primitive.ObjectID{}}
	}
	if lo.Contains(w.Items, productID) {
		return nil, ErrDuplicate
	}
	w.Items = append(w.Items, productID)
	w.UpdatedAt = time.Now().UTC()
	r.m.wishlists[userID] = w
	return copyWishlist(w), nil
}

func (r memWishlists) RemoveItem(_ context.Context, userID, productID primitive.ObjectID) (*models.Wishlist, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	w, ok := r.m.wishlists[userID]
	if !ok {
		return nil, ErrNotFound
	}
	w.Items = lo.Without(w.Items, productID)
	r.m.wishlists[userID] = w
	return copyWishlist(w), nil
}

func (r memWishlists) Clear(_ context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	w, ok := r.m.wishlists[userID]
	if !ok {
		return nil, ErrNotFound
	}
	w.Items = []primitive.ObjectID{}
	r.m.wishlists[userID] = w
	return copyWishlist(w), nil
}

func (r memWishlists) Delete(_ context.Context, userID primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.wishlists, userID)
	return nil
}

// ---- orders ----

type memOrders struct{ m *Memory }

func copyOrder(o models.Order) *models.Order {
	o.Items = append([]models.OrderItem{}, o.Items...)
	return &o
}

func (r memOrders) Create(_ context.Context, order *models.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	r.m.orders[order.ID] = *copyOrder(*order)
	return nil
}

func (r memOrders) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.orders, id)
	return nil
}

func (r memOrders) find(id primitive.ObjectID, match func(models.Order) bool) (*models.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok || !match(o) {
		return nil, ErrNotFound
	}
	return copyOrder(o), nil
}

func (r memOrders) FindForUser(_ context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	return r.find(id, func(o models.Order) bool { return o.UserID == userID })
}

func (r memOrders) FindForVendor(_ context.Context, id, vendorID primitive.ObjectID) (*models.Order, error) {
	return r.find(id, func(o models.Order) bool { return o.VendorID == vendorID })
}

func (r memOrders) list(page Page, match func(models.Order) bool) ([]models.Order, int64) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	matched := lo.Filter(lo.Values(r.m.orders), func(o models.Order, _ int) bool { return match(o) })
	newestFirst(matched, func(o models.Order) time.Time { return o.CreatedAt })
	return lo.Map(paginate(matched, page), func(o models.Order, _ int) models.Order { return *copyOrder(o) }), int64(len(matched))
}

func (r memOrders) ListByUser(_ context.Context, userID primitive.ObjectID, page Page) ([]models.Order, int64, error) {
	orders, total := r.list(page, func(o models.Order) bool { return o.UserID == userID })
	return orders, total, nil
}

func (r memOrders) ListByVendor(_ context.Context, vendorID primitive.ObjectID, page Page) ([]models.Order, int64, error) {
	orders, total := r.list(page, func(o models.Order) bool { return o.VendorID == vendorID })
	return orders, total, nil
}

func (r memOrders) Transition(_ context.Context, id primitive.ObjectID, from []models.OrderStatus, to models.OrderStatus) (*models.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	o, ok := r.m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if len(from) > 0 && !lo.Contains(from, o.Status) {
		return nil, ErrStaleState
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	r.m.orders[id] = o
	return copyOrder(o), nil
}

func (r memOrders) HasPurchased(_ context.Context, userID, productID primitive.ObjectID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, o := range r.m.orders {
		if o.UserID != userID || o.Status == models.OrderCancelled {
			continue
		}
		if lo.ContainsBy(o.Items, func(item models.OrderItem) bool { return item.ProductID == productID }) {
			return true, nil
		}
	}
	return false, nil
}

func (r memOrders) VendorStats(_ context.Context, vendorID primitive.ObjectID) (models.OrderStats, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var stats models.OrderStats
	for _, o := range r.m.orders {
		if o.VendorID != vendorID {
			continue
		}
		stats.TotalOrders++
		if o.Status == models.OrderPending {
			stats.PendingOrders++
		}
		if o.Status != models.OrderCancelled {
			stats.TotalRevenue += o.TotalAmount
		}
	}
	stats.TotalRevenue = math.Round(stats.TotalRevenue*100) / 100
	return stats, nil
}

func (r memOrders) TopSelling(_ context.Context, vendorID primitive.ObjectID, limit int) ([]models.ProductSales, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	sales := map[primitive.ObjectID]*models.ProductSales{}
	for _, o := range r.m.orders {
		if o.VendorID != vendorID || o.Status == models.OrderCancelled {
			continue
		}
		for _, item := range o.Items {
			s, ok := sales[item.ProductID]
			if !ok {
				s = &models.ProductSales{ProductID: item.ProductID}
				sales[item.ProductID] = s
			}
			s.TotalSold += item.Quantity
			s.TotalRevenue += item.Price * float64(item.Quantity)
		}
	}
	rows := lo.Map(lo.Values(sales), func(s *models.ProductSales, _ int) models.ProductSales { return *s })
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalSold > rows[j].TotalSold })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]models.ProductSales, 0, len(rows))
	for _, row := range rows {
		p, ok := r.m.products[row.ProductID]
		if !ok {
			continue
		}
		row.Title, row.ImageURL, row.Price, row.Stock = p.Title, p.ImageURL, p.Price, p.Stock
		out = append(out, row)
	}
	return out, nil
}

// ---- reviews ----

type memReviews struct{ m *Memory }

func (r memReviews) Create(_ context.Context, review *models.Review) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.reviews {
		if existing.UserID == review.UserID && existing.ProductID == review.ProductID {
			return ErrDuplicate
		}
	}
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	r.m.reviews[review.ID] = *review
	return nil
}

func (r memReviews) Update(_ context.Context, id, userID primitive.ObjectID, rating *int, comment *string) (*models.Review, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rv, ok := r.m.reviews[id]
	if !ok || rv.UserID != userID {
		return nil, ErrNotFound
	}
	if rating != nil {
		rv.Rating = *rating
	}
	if comment != nil {
		rv.Comment = *comment
	}
	rv.UpdatedAt = time.Now().UTC()
	r.m.reviews[id] = rv
	return &rv, nil
}

func (r memReviews) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rv, ok := r.m.reviews[id]
	if !ok || rv.UserID != userID {
		return ErrNotFound
	}
	delete(r.m.reviews, id)
	return nil
}

func (r memReviews) forProduct(productID primitive.ObjectID) []models.Review {
	return lo.Filter(lo.Values(r.m.reviews), func(rv models.Review, _ int) bool { return rv.ProductID == productID })
}

func (r memReviews) ListByProduct(_ context.Context, productID primitive.ObjectID, page Page) ([]models.Review, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	matched := r.forProduct(productID)
	newestFirst(matched, func(rv models.Review) time.Time { return rv.CreatedAt })
	return paginate(matched, page), int64(len(matched)), nil
}

func (r memReviews) AverageRating(_ context.Context, productID primitive.ObjectID) (float64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	matched := r.forProduct(productID)
	if len(matched) == 0 {
		return 0, nil
	}
	return float64(lo.SumBy(matched, func(rv models.Review) int { return rv.Rating })) / float64(len(matched)), nil
}

// ---- addresses ----

type memAddresses struct{ m *Memory }

func (r memAddresses) List(_ context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	matched := lo.Filter(lo.Values(r.m.addresses), func(a models.Address, _ int) bool { return a.UserID == userID })
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].IsDefault != matched[j].IsDefault {
			return matched[i].IsDefault
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (r memAddresses) Create(_ context.Context, address *models.Address) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if address.ID.IsZero() {
		address.ID = primitive.NewObjectID()
	}
	r.m.addresses[address.ID] = *address
	return nil
}

func (r memAddresses) Update(_ context.Context, id, userID primitive.ObjectID, update models.AddressUpdate) (*models.Address, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.addresses[id]
	if !ok || a.UserID != userID {
		return nil, ErrNotFound
	}
	if update.Street != nil {
		a.Street = *update.Street
	}
	if update.City != nil {
		a.City = *update.City
	}
	if update.State != nil {
		a.State = *update.State
	}
	if update.PostalCode != nil {
		a.PostalCode = *update.PostalCode
	}
	if update.Country != nil {
		a.Country = *update.Country
	}
	if update.IsDefault != nil {
		a.IsDefault = *update.IsDefault
	}
	a.UpdatedAt = time.Now().UTC()
	r.m.addresses[id] = a
	return &a, nil
}

func (r memAddresses) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.addresses[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(r.m.addresses, id)
	return nil
}

func (r memAddresses) ClearDefault(_ context.Context, userID primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, a := range r.m.addresses {
		if a.UserID == userID && a.IsDefault {
			a.IsDefault = false
			r.m.addresses[id] = a
		}
	}
	return nil
}

func (r memAddresses) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, a := range r.m.addresses {
		if a.UserID == userID {
			delete(r.m.addresses, id)
		}
	}
	return nil
}

// ---- notifications ----

type memNotifications struct{ m *Memory }

func (r memNotifications) Create(_ context.Context, n *models.Notification) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	r.m.notifications[n.ID] = *n
	return nil
}

func (r memNotifications) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	matched := lo.Filter(lo.Values(r.m.notifications), func(n models.Notification, _ int) bool { return n.UserID == userID })
	newestFirst(matched, func(n models.Notification) time.Time { return n.CreatedAt })
	return matched, nil
}

func (r memNotifications) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return int64(lo.CountBy(lo.Values(r.m.notifications), func(n models.Notification) bool {
		return n.UserID == userID && !n.IsRead
	})), nil
}

func (r memNotifications) MarkAllRead(_ context.Context, userID primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, n := range r.m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.m.notifications[id] = n
		}
	}
	return nil
}

func (r memNotifications) DeleteByUser(_ context.Context, userID primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, n := range r.m.notifications {
		if n.UserID == userID {
			delete(r.m.notifications, id)
		}
	}
	return nil
}
