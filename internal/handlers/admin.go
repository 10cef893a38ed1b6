package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/orders"
	"github.com/example/arfood/internal/reports"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/utils"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	store     repository.Store
	manager   *orders.Manager
	assembler *orders.Assembler
	reports   *reports.Service
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(store repository.Store, manager *orders.Manager, assembler *orders.Assembler, reports *reports.Service) *AdminHandler {
	return &AdminHandler{store: store, manager: manager, assembler: assembler, reports: reports}
}

// ListOrders lists orders filtered by status, day and a free-text search.
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	filter := repository.OrderFilter{
		Search:        c.Query("search"),
		PaymentStatus: c.Query("payment_status"),
	}

	if status := models.OrderStatus(c.Query("status")); status != "" && status != "all" {
		if !status.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "unknown status")
		}
		filter.Statuses = []models.OrderStatus{status}
	}

	if raw := c.Query("date"); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		next := day.AddDate(0, 0, 1)
		filter.From, filter.To = &day, &next
	}

	return respondOrderPage(c, h.store, h.assembler, filter, pg)
}

// ListCustomers returns customer accounts.
func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	users, total, err := h.store.Users().ListByRole(c.UserContext(), models.RoleCustomer, pg.Limit, pg.Offset)
	if err != nil {
		return utils.Persistence(err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       users,
		"pagination": pg.Meta(total),
	})
}

// OnlineUsers returns the accounts currently logged in.
func (h *AdminHandler) OnlineUsers(c *fiber.Ctx) error {
	users, err := h.store.Users().ListOnline(c.UserContext())
	if err != nil {
		return utils.Persistence(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": users, "count": len(users)})
}

// LoginHistory returns the latest logins across all accounts.
func (h *AdminHandler) LoginHistory(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 100
	}

	records, err := h.store.Users().LoginHistory(c.UserContext(), limit)
	if err != nil {
		return utils.Persistence(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": records})
}

type shopNoteRequest struct {
	ShopFeedback string `json:"shop_feedback" validate:"max=1000"`
}

// AddShopNote stores the restaurant's internal note on an order.
func (h *AdminHandler) AddShopNote(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req shopNoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.manager.AddShopNote(c.UserContext(), id, req.ShopFeedback)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": order})
}

// FeedbackSummary aggregates customer ratings.
func (h *AdminHandler) FeedbackSummary(c *fiber.Ctx) error {
	summary, err := h.reports.FeedbackSummary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": summary})
}
