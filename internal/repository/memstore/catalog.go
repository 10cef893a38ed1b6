package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository"
)

type userRepo struct{ s *Store }

func (r userRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.users {
		if u.Phone == phone {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.User
	for _, id := range ids {
		if u, ok := r.s.data.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r userRepo) Save(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.EnsureID()
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	stored := *user
	stored.LoginHistory = nil
	r.s.data.users[user.ID] = stored
	return nil
}

func (r userRepo) AddLogin(ctx context.Context, userID uuid.UUID, record models.LoginRecord, keep int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	record.EnsureID()
	record.UserID = userID
	r.s.data.logins = append(r.s.data.logins, record)

	var own, others []models.LoginRecord
	for _, l := range r.s.data.logins {
		if l.UserID == userID {
			own = append(own, l)
		} else {
			others = append(others, l)
		}
	}
	sort.Slice(own, func(i, j int) bool { return own[i].LoginTime.After(own[j].LoginTime) })
	if len(own) > keep {
		own = own[:keep]
	}
	r.s.data.logins = append(others, own...)
	return nil
}

func (r userRepo) ListByRole(ctx context.Context, role models.Role, limit, offset int) ([]models.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.User
	for _, u := range r.s.data.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (r userRepo) ListOnline(ctx context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.User
	for _, u := range r.s.data.users {
		if u.IsOnline {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r userRepo) LoginHistory(ctx context.Context, limit int) ([]models.LoginRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := append([]models.LoginRecord(nil), r.s.data.logins...)
	sort.Slice(out, func(i, j int) bool { return out[i].LoginTime.After(out[j].LoginTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type foodRepo struct{ s *Store }

func (r foodRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.FoodItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.data.foods[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (r foodRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.FoodItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.FoodItem
	for _, id := range ids {
		if f, ok := r.s.data.foods[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r foodRepo) Find(ctx context.Context, filter repository.FoodFilter) ([]models.FoodItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.FoodItem
	for _, f := range r.s.data.foods {
		if filter.AvailableOnly && !f.IsAvailable {
			continue
		}
		if filter.Category != "" && f.Category != filter.Category {
			continue
		}
		if filter.IsVeg != nil && f.IsVeg != *filter.IsVeg {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r foodRepo) Create(ctx context.Context, food *models.FoodItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	food.EnsureID()
	if food.CreatedAt.IsZero() {
		food.CreatedAt = time.Now()
	}
	food.UpdatedAt = food.CreatedAt
	r.s.data.foods[food.ID] = *food
	return nil
}

func (r foodRepo) Update(ctx context.Context, food *models.FoodItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.foods[food.ID]; !ok {
		return repository.ErrNotFound
	}
	food.UpdatedAt = time.Now()
	r.s.data.foods[food.ID] = *food
	return nil
}

func (r foodRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.foods[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.data.foods, id)
	return nil
}

func (r foodRepo) ToggleLike(ctx context.Context, foodID, userID uuid.UUID) (bool, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.data.foods[foodID]
	if !ok {
		return false, 0, repository.ErrNotFound
	}
	key := pair{foodID, userID}
	liked := !r.s.data.likes[key]
	if liked {
		r.s.data.likes[key] = true
		f.LikeCount++
	} else {
		delete(r.s.data.likes, key)
		if f.LikeCount > 0 {
			f.LikeCount--
		}
	}
	r.s.data.foods[foodID] = f
	return liked, f.LikeCount, nil
}

func (r foodRepo) Rate(ctx context.Context, rating models.FoodRating) (*models.FoodItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.data.foods[rating.FoodID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	key := pair{rating.FoodID, rating.UserID}
	if existing, ok := r.s.data.ratings[key]; ok {
		rating.ID = existing.ID
		rating.CreatedAt = existing.CreatedAt
	}
	rating.EnsureID()
	rating.UpdatedAt = time.Now()
	r.s.data.ratings[key] = rating

	sum, total := 0, 0
	for k, v := range r.s.data.ratings {
		if k[0] == rating.FoodID {
			sum += v.Rating
			total++
		}
	}
	f.TotalRatings = total
	f.AverageRating = float64(sum) / float64(total)
	r.s.data.foods[f.ID] = f
	return &f, nil
}

func (r foodRepo) Ratings(ctx context.Context, foodID uuid.UUID, limit int) ([]models.FoodRating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.FoodRating
	for k, v := range r.s.data.ratings {
		if k[0] == foodID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type feedbackRepo struct{ s *Store }

func (r feedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, f := range r.s.data.feedback {
		if f.OrderID == feedback.OrderID {
			return repository.ErrDuplicate
		}
	}
	feedback.EnsureID()
	if feedback.CreatedAt.IsZero() {
		feedback.CreatedAt = time.Now()
	}
	for i := range feedback.ItemFeedbacks {
		feedback.ItemFeedbacks[i].EnsureID()
		feedback.ItemFeedbacks[i].FeedbackID = feedback.ID
	}
	stored := *feedback
	stored.ItemFeedbacks = append([]models.ItemFeedback(nil), feedback.ItemFeedbacks...)
	r.s.data.feedback[feedback.ID] = stored
	return nil
}

func (r feedbackRepo) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Feedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, f := range r.s.data.feedback {
		if f.OrderID == orderID {
			return &f, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r feedbackRepo) All(ctx context.Context) ([]models.Feedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Feedback, 0, len(r.s.data.feedback))
	for _, f := range r.s.data.feedback {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r feedbackRepo) List(ctx context.Context, limit, offset int) ([]models.Feedback, int64, error) {
	all, _ := r.All(ctx)
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}
