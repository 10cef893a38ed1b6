package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/arfood/internal/orders"
	"github.com/example/arfood/internal/reports"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/utils"
)

// FeedbackHandler serves detailed order reviews.
type FeedbackHandler struct {
	store   repository.Store
	manager *orders.Manager
	reports *reports.Service
}

// NewFeedbackHandler constructs FeedbackHandler.
func NewFeedbackHandler(store repository.Store, manager *orders.Manager, reports *reports.Service) *FeedbackHandler {
	return &FeedbackHandler{store: store, manager: manager, reports: reports}
}

type submitFeedbackRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	feedbackRequest
}

// Submit records a review for the order named in the body.
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req submitFeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	_, feedback, err := h.manager.AttachFeedback(c.UserContext(), orders.FeedbackInput{
		OrderID:        req.OrderID,
		Actor:          actor,
		Rating:         req.Rating,
		Comment:        req.Feedback,
		ServiceQuality: req.ServiceQuality,
		DeliverySpeed:  req.DeliverySpeed,
		Items:          req.Items,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": feedback})
}

// List returns every review, newest first.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	list, total, err := h.store.Feedback().List(c.UserContext(), pg.Limit, pg.Offset)
	if err != nil {
		return utils.Persistence(err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       list,
		"pagination": pg.Meta(total),
	})
}

// ForOrder returns the review of one order to its owner or staff.
func (h *FeedbackHandler) ForOrder(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "orderId")
	if err != nil {
		return err
	}

	if _, err := h.manager.Get(c.UserContext(), id, actor); err != nil {
		return err
	}

	feedback, err := h.store.Feedback().FindByOrder(c.UserContext(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "no feedback for this order")
	}
	if err != nil {
		return utils.Persistence(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": feedback})
}

// Stats averages the review scores.
func (h *FeedbackHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.reports.FeedbackStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}

// RatedItems lists dishes with at least one rating, best first.
func (h *FeedbackHandler) RatedItems(c *fiber.Ctx) error {
	items, err := h.reports.RatedItems(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": items, "count": len(items)})
}
