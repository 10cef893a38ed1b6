package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/utils"
)

func TestAuthorizeKitchen(t *testing.T) {
	allowed := map[[2]models.OrderStatus]bool{
		{models.StatusConfirmed, models.StatusPreparing}: true,
		{models.StatusConfirmed, models.StatusReady}:     true,
		{models.StatusConfirmed, models.StatusDelivered}: true,
		{models.StatusPreparing, models.StatusReady}:     true,
		{models.StatusPreparing, models.StatusDelivered}: true,
		{models.StatusReady, models.StatusDelivered}:     true,
	}

	for _, from := range models.OrderStatuses {
		for _, to := range models.OrderStatuses {
			if from == to {
				continue
			}
			err := Authorize(models.RoleChef, from, to)
			if allowed[[2]models.OrderStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.ErrorIs(t, err, utils.ErrIllegalTransition, "%s -> %s", from, to)
			}
		}
	}
}

func TestAuthorizeRoles(t *testing.T) {
	for _, from := range models.OrderStatuses {
		for _, to := range models.OrderStatuses {
			assert.NoError(t, Authorize(models.RoleAdmin, from, to))
			assert.ErrorIs(t, Authorize(models.RoleCustomer, from, to), utils.ErrForbidden)
			assert.ErrorIs(t, Authorize("", from, to), utils.ErrForbidden)
		}
	}

	assert.True(t, CanChangeStatus(models.RoleChef))
	assert.True(t, CanChangeStatus(models.RoleAdmin))
	assert.False(t, CanChangeStatus(models.RoleCustomer))
}
