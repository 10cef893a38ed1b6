package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/utils"
)

// ItemView is an order line with its current catalog entry, if it still exists.
type ItemView struct {
	models.OrderItem
	Food *models.FoodSummary `json:"food,omitempty"`
}

// OrderView is an order with its customer and dishes resolved.
type OrderView struct {
	models.Order
	Customer *models.UserSummary `json:"customer,omitempty"`
	Items    []ItemView          `json:"items"`
}

// Assembler resolves the users and food items referenced by orders with one
// batch query per kind.
type Assembler struct {
	store repository.Store
}

// NewAssembler constructs an Assembler.
func NewAssembler(store repository.Store) *Assembler {
	return &Assembler{store: store}
}

// Assemble builds views for orders, preserving their order.
func (a *Assembler) Assemble(ctx context.Context, orders []models.Order) ([]OrderView, error) {
	userIDs := make([]uuid.UUID, 0, len(orders))
	foodIDs := make([]uuid.UUID, 0)
	seenUsers := map[uuid.UUID]bool{}
	seenFoods := map[uuid.UUID]bool{}
	for _, o := range orders {
		if !seenUsers[o.UserID] {
			seenUsers[o.UserID] = true
			userIDs = append(userIDs, o.UserID)
		}
		for _, item := range o.Items {
			if item.FoodID != nil && !seenFoods[*item.FoodID] {
				seenFoods[*item.FoodID] = true
				foodIDs = append(foodIDs, *item.FoodID)
			}
		}
	}

	users, err := a.store.Users().FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, utils.Persistence(err)
	}
	foods, err := a.store.Foods().FindByIDs(ctx, foodIDs)
	if err != nil {
		return nil, utils.Persistence(err)
	}

	userByID := make(map[uuid.UUID]models.UserSummary, len(users))
	for i := range users {
		userByID[users[i].ID] = users[i].Summary()
	}
	foodByID := make(map[uuid.UUID]models.FoodSummary, len(foods))
	for i := range foods {
		foodByID[foods[i].ID] = foods[i].Summary()
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		view := OrderView{Order: o, Items: make([]ItemView, 0, len(o.Items))}
		if u, ok := userByID[o.UserID]; ok {
			view.Customer = &u
		}
		for _, item := range o.Items {
			iv := ItemView{OrderItem: item}
			if item.FoodID != nil {
				if f, ok := foodByID[*item.FoodID]; ok {
					iv.Food = &f
				}
			}
			view.Items = append(view.Items, iv)
		}
		views = append(views, view)
	}
	return views, nil
}

// One builds the view of a single order.
func (a *Assembler) One(ctx context.Context, order *models.Order) (*OrderView, error) {
	views, err := a.Assemble(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
