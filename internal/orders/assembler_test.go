package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository/memstore"
)

func TestAssemblerResolvesReferences(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	user := &models.User{Phone: "9876543210", Name: "Asha", Role: models.RoleCustomer}
	require.NoError(t, store.Users().Save(ctx, user))
	food := &models.FoodItem{Name: "Tandoori Chicken", Category: "Tandoori", IsAvailable: true}
	require.NoError(t, store.Foods().Create(ctx, food))

	removed := uuid.New()
	orders := []models.Order{
		{UserID: user.ID, Items: []models.OrderItem{{FoodID: &food.ID, Name: "Tandoori Chicken", Quantity: 1}}},
		{UserID: uuid.New(), Items: []models.OrderItem{{FoodID: &removed, Name: "Old dish", Quantity: 2}, {Name: "Custom", Quantity: 1}}},
	}

	views, err := NewAssembler(store).Assemble(ctx, orders)
	require.NoError(t, err)
	require.Len(t, views, 2)

	require.NotNil(t, views[0].Customer)
	assert.Equal(t, "Asha", views[0].Customer.Name)
	require.NotNil(t, views[0].Items[0].Food)
	assert.Equal(t, "Tandoori", views[0].Items[0].Food.Category)

	assert.Nil(t, views[1].Customer)
	require.Len(t, views[1].Items, 2)
	assert.Nil(t, views[1].Items[0].Food)
	assert.Equal(t, "Old dish", views[1].Items[0].Name)
}
