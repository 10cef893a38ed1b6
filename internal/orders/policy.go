package orders

import (
	"github.com/google/uuid"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/utils"
)

// Actor is the authenticated caller performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

// Label is the value recorded as updated_by in the status history.
func (a Actor) Label() string {
	return string(a.Role) + ":" + a.ID.String()
}

type rule struct {
	anyTransition bool
	from          map[models.OrderStatus]bool
	to            map[models.OrderStatus]bool
}

func statusSet(statuses ...models.OrderStatus) map[models.OrderStatus]bool {
	set := make(map[models.OrderStatus]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

// transitions is the single source of truth for who may move an order where.
// Roles absent from the table may not change status at all.
var transitions = map[models.Role]rule{
	models.RoleAdmin: {anyTransition: true},
	models.RoleChef: {
		from: statusSet(models.StatusConfirmed, models.StatusPreparing, models.StatusReady),
		to:   statusSet(models.StatusPreparing, models.StatusReady, models.StatusDelivered),
	},
}

// CanChangeStatus reports whether role may change order status at all.
func CanChangeStatus(role models.Role) bool {
	_, ok := transitions[role]
	return ok
}

// Authorize checks a concrete transition for role. Kitchen staff may only
// move an order forward through the kitchen stages.
func Authorize(role models.Role, from, to models.OrderStatus) error {
	r, ok := transitions[role]
	if !ok {
		return utils.NewError(utils.ReasonForbidden, "role %q cannot change order status", role)
	}
	if r.anyTransition {
		return nil
	}
	if !r.from[from] || !r.to[to] || rank(to) <= rank(from) {
		return utils.NewError(utils.ReasonIllegalTransition, "cannot move order from %s to %s", from, to)
	}
	return nil
}

func rank(s models.OrderStatus) int {
	for i, v := range models.OrderStatuses {
		if v == s {
			return i
		}
	}
	return -1
}
