// Package memstore is an in-memory repository.Store used by tests and local
// development without a database.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository"
)

type pair [2]uuid.UUID

type state struct {
	orders   map[uuid.UUID]models.Order
	coupons  map[uuid.UUID]models.Coupon
	users    map[uuid.UUID]models.User
	logins   []models.LoginRecord
	foods    map[uuid.UUID]models.FoodItem
	likes    map[pair]bool
	ratings  map[pair]models.FoodRating
	feedback map[uuid.UUID]models.Feedback
}

// Store keeps every record in maps guarded by a single mutex.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data state
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: state{
		orders:   map[uuid.UUID]models.Order{},
		coupons:  map[uuid.UUID]models.Coupon{},
		users:    map[uuid.UUID]models.User{},
		foods:    map[uuid.UUID]models.FoodItem{},
		likes:    map[pair]bool{},
		ratings:  map[pair]models.FoodRating{},
		feedback: map[uuid.UUID]models.Feedback{},
	}}
}

func (s *Store) Orders() repository.Orders     { return orderRepo{s} }
func (s *Store) Coupons() repository.Coupons   { return couponRepo{s} }
func (s *Store) Users() repository.Users       { return userRepo{s} }
func (s *Store) Foods() repository.Foods       { return foodRepo{s} }
func (s *Store) Feedback() repository.Feedback { return feedbackRepo{s} }

// Transaction restores the previous state when fn fails.
func (s *Store) Transaction(ctx context.Context, fn func(repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (st state) clone() state {
	out := state{
		orders:   make(map[uuid.UUID]models.Order, len(st.orders)),
		coupons:  make(map[uuid.UUID]models.Coupon, len(st.coupons)),
		users:    make(map[uuid.UUID]models.User, len(st.users)),
		logins:   append([]models.LoginRecord(nil), st.logins...),
		foods:    make(map[uuid.UUID]models.FoodItem, len(st.foods)),
		likes:    make(map[pair]bool, len(st.likes)),
		ratings:  make(map[pair]models.FoodRating, len(st.ratings)),
		feedback: make(map[uuid.UUID]models.Feedback, len(st.feedback)),
	}
	for k, v := range st.orders {
		out.orders[k] = cloneOrder(v)
	}
	for k, v := range st.coupons {
		out.coupons[k] = v
	}
	for k, v := range st.users {
		out.users[k] = v
	}
	for k, v := range st.foods {
		out.foods[k] = v
	}
	for k, v := range st.likes {
		out.likes[k] = v
	}
	for k, v := range st.ratings {
		out.ratings[k] = v
	}
	for k, v := range st.feedback {
		out.feedback[k] = v
	}
	return out
}

func cloneOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	for i, item := range o.Items {
		item.Extras = append([]string(nil), item.Extras...)
		items[i] = item
	}
	o.Items = items
	o.StatusHistory = append([]models.OrderStatusEntry(nil), o.StatusHistory...)
	return o
}

type orderRepo struct{ s *Store }

func (r orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order, ok := r.s.data.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneOrder(order)
	return &out, nil
}

func matches(o models.Order, f repository.OrderFilter) bool {
	if f.UserID != nil && o.UserID != *f.UserID {
		return false
	}
	if f.CustomerPhone != "" && o.CustomerPhone != f.CustomerPhone {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, o.Status) {
		return false
	}
	if len(f.ExcludeStatuses) > 0 && containsStatus(f.ExcludeStatuses, o.Status) {
		return false
	}
	if f.From != nil && o.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !o.CreatedAt.Before(*f.To) {
		return false
	}
	if f.HasFeedback != nil && o.HasFeedback != *f.HasFeedback {
		return false
	}
	if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hay := strings.ToLower(o.OrderNumber + " " + o.CustomerName + " " + o.CustomerPhone)
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

func containsStatus(list []models.OrderStatus, s models.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (r orderRepo) Find(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.Order
	for _, o := range r.s.data.orders {
		if matches(o, filter) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.OldestFirst {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r orderRepo) Count(ctx context.Context, filter repository.OrderFilter) (int64, error) {
	filter.Limit, filter.Offset = 0, 0
	orders, err := r.Find(ctx, filter)
	return int64(len(orders)), err
}

func (r orderRepo) Create(ctx context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.data.orders {
		if existing.OrderNumber == order.OrderNumber {
			return repository.ErrDuplicate
		}
	}

	order.EnsureID()
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].EnsureID()
		order.Items[i].OrderID = order.ID
	}
	for i := range order.StatusHistory {
		order.StatusHistory[i].EnsureID()
		order.StatusHistory[i].OrderID = order.ID
	}
	r.s.data.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r orderRepo) Save(ctx context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.data.orders[order.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != order.Version {
		return repository.ErrConflict
	}

	for i := range order.StatusHistory {
		if order.StatusHistory[i].IsNew() {
			order.StatusHistory[i].EnsureID()
			order.StatusHistory[i].OrderID = order.ID
		}
	}
	order.Version++
	order.UpdatedAt = time.Now()

	updated := cloneOrder(*order)
	updated.Items = stored.Items
	r.s.data.orders[order.ID] = updated
	return nil
}

type couponRepo struct{ s *Store }

func (r couponRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.data.coupons[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r couponRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	code = strings.ToUpper(code)
	for _, c := range r.s.data.coupons {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r couponRepo) List(ctx context.Context) ([]models.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Coupon, 0, len(r.s.data.coupons))
	for _, c := range r.s.data.coupons {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r couponRepo) ListActive(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	all, _ := r.List(ctx)
	var out []models.Coupon
	for _, c := range all {
		if !c.IsActive || now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
			continue
		}
		if c.HasUsageLimit() && c.UsedCount >= *c.UsageLimit {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r couponRepo) Create(ctx context.Context, coupon *models.Coupon) error {
	if _, err := r.FindByCode(ctx, coupon.Code); err == nil {
		return repository.ErrDuplicate
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	coupon.EnsureID()
	if coupon.CreatedAt.IsZero() {
		coupon.CreatedAt = time.Now()
	}
	coupon.UpdatedAt = coupon.CreatedAt
	r.s.data.coupons[coupon.ID] = *coupon
	return nil
}

func (r couponRepo) Update(ctx context.Context, coupon *models.Coupon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.coupons[coupon.ID]; !ok {
		return repository.ErrNotFound
	}
	coupon.UpdatedAt = time.Now()
	r.s.data.coupons[coupon.ID] = *coupon
	return nil
}

func (r couponRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.coupons[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.coupons, id)
	return nil
}

func (r couponRepo) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.data.coupons[id]
	if !ok {
		return repository.ErrNotFound
	}
	if c.HasUsageLimit() && c.UsedCount >= *c.UsageLimit {
		return repository.ErrLimitReached
	}
	c.UsedCount++
	r.s.data.coupons[id] = c
	return nil
}
