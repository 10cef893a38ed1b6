package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/orders"
	"github.com/example/arfood/internal/reports"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/utils"
)

const kitchenQueueLimit = 100

// ChefHandler serves the kitchen dashboard.
type ChefHandler struct {
	store     repository.Store
	manager   *orders.Manager
	assembler *orders.Assembler
	reports   *reports.Service
}

// NewChefHandler constructs ChefHandler.
func NewChefHandler(store repository.Store, manager *orders.Manager, assembler *orders.Assembler, reports *reports.Service) *ChefHandler {
	return &ChefHandler{store: store, manager: manager, assembler: assembler, reports: reports}
}

// Queue lists the orders the kitchen still has to handle, newest first.
func (h *ChefHandler) Queue(c *fiber.Ctx) error {
	filter := repository.OrderFilter{
		ExcludeStatuses: []models.OrderStatus{models.StatusCancelled, models.StatusDelivered},
		Limit:           kitchenQueueLimit,
	}
	if status := models.OrderStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown status")
		}
		filter.Statuses = []models.OrderStatus{status}
	}

	list, err := h.store.Orders().Find(c.UserContext(), filter)
	if err != nil {
		return utils.Persistence(err)
	}

	views, err := h.assembler.Assemble(c.UserContext(), list)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": views, "count": len(views)})
}

// GetOrder returns one order for the kitchen.
func (h *ChefHandler) GetOrder(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.manager.Get(c.UserContext(), id, actor)
	if err != nil {
		return err
	}
	view, err := h.assembler.One(c.UserContext(), order)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": view})
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// UpdateStatus moves an order along the kitchen workflow.
func (h *ChefHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.manager.TransitionStatus(c.UserContext(), id, req.Status, actor)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": orders.StatusMessage(order.Status),
		"data":    order,
	})
}

// Deliver marks an order delivered in one step.
func (h *ChefHandler) Deliver(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.manager.MarkDelivered(c.UserContext(), id, actor)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": orders.StatusMessage(order.Status),
		"data":    order,
	})
}

// Stats counts today's orders per kitchen status.
func (h *ChefHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reports.KitchenStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}
