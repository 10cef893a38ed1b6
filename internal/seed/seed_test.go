package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/repository/memstore"
)

const document = `
staff:
  - phone: "+91 99999 99999"
    name: Head Chef
    role: chef
menu:
  - name: Chapati
    category: Indian
    price: 100
    is_veg: true
    ingredients: [wheat, ghee]
  - name: Onion Dosa
    category: Indian
    price: 120
    available: false
coupons:
  - code: welcome50
    description: Flat 50 off
    discount_type: fixed
    discount_value: 50
    min_order_value: 200
    valid_days: 7
`

func TestLoadAndApply(t *testing.T) {
	f, err := Load(strings.NewReader(document))
	require.NoError(t, err)

	ctx := context.Background()
	store := memstore.New()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	res, err := Apply(ctx, store, f, now)
	require.NoError(t, err)
	assert.Equal(t, Result{Staff: 1, Foods: 2, Coupons: 1}, res)

	chef, err := store.Users().FindByPhone(ctx, "919999999999")
	require.NoError(t, err)
	assert.Equal(t, models.RoleChef, chef.Role)

	coupon, err := store.Coupons().FindByCode(ctx, "WELCOME50")
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 7), coupon.ValidUntil)

	foods, err := store.Foods().Find(ctx, repository.FoodFilter{AvailableOnly: true})
	require.NoError(t, err)
	assert.Len(t, foods, 1)

	again, err := Apply(ctx, store, f, now)
	require.NoError(t, err)
	assert.Equal(t, Result{}, again)
}

func TestLoadRejectsBadDocuments(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field":    "menu:\n  - name: Tea\n    colour: brown\n",
		"unknown category": "menu:\n  - name: Tea\n    category: Drinks\n    price: 20\n",
		"customer staff":   "staff:\n  - phone: \"9876543210\"\n    role: customer\n",
		"bad coupon type":  "coupons:\n  - code: X\n    discount_type: bogo\n    discount_value: 1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}
