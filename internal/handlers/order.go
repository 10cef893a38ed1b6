package handlers

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/orders"
	"github.com/example/arfood/internal/reports"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/utils"
)

// RestaurantName is printed on receipts.
const RestaurantName = "AR Food Restaurant"

// OrderHandler manages customer order endpoints.
type OrderHandler struct {
	store     repository.Store
	manager   *orders.Manager
	assembler *orders.Assembler
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(store repository.Store, manager *orders.Manager, assembler *orders.Assembler) *OrderHandler {
	return &OrderHandler{store: store, manager: manager, assembler: assembler}
}

// CreateOrder places an order for the caller.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	var req orders.CreateOrderInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.CustomerID = actor.ID

	if req.CustomerName == "" || req.CustomerPhone == "" {
		if user, err := h.store.Users().FindByID(c.UserContext(), actor.ID); err == nil {
			if req.CustomerName == "" {
				req.CustomerName = user.Name
			}
			if req.CustomerPhone == "" {
				req.CustomerPhone = user.Phone
			}
		}
	}

	order, err := h.manager.CreateOrder(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Order %s placed successfully", order.OrderNumber),
		"data":    order,
	})
}

// ListMyOrders returns the caller's orders, newest first.
func (h *OrderHandler) ListMyOrders(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	filter := repository.OrderFilter{UserID: &actor.ID}
	return h.respondPage(c, filter, pg)
}

// ActiveOrders lists the caller's orders that still need attention: anything
// in progress plus delivered orders awaiting feedback.
func (h *OrderHandler) ActiveOrders(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}

	list, err := h.store.Orders().Find(c.UserContext(), repository.OrderFilter{
		UserID:          &actor.ID,
		ExcludeStatuses: []models.OrderStatus{models.StatusCancelled},
		Limit:           20,
	})
	if err != nil {
		return utils.Persistence(err)
	}

	active := make([]models.Order, 0, len(list))
	for _, o := range list {
		if o.Status == models.StatusDelivered && o.HasFeedback {
			continue
		}
		active = append(active, o)
	}

	views, err := h.assembler.Assemble(c.UserContext(), active)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": views, "count": len(views)})
}

// OrderHistory lists orders placed with a phone number. Customers may only
// query their own number.
func (h *OrderHandler) OrderHistory(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	phone := utils.CleanPhone(c.Params("phone"))
	if phone == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone is required")
	}
	if actor.Role == models.RoleCustomer {
		if claims, ok := currentClaims(c); !ok || utils.CleanPhone(claims.Phone) != phone {
			return utils.NewError(utils.ReasonForbidden, "cannot view another customer's history")
		}
	}

	pg := utils.ParsePagination(c)
	return h.respondPage(c, repository.OrderFilter{CustomerPhone: phone}, pg)
}

// GetOrder returns one order with customer and dishes resolved.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.load(c)
	if err != nil {
		return err
	}

	view, err := h.assembler.One(c.UserContext(), order)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": view})
}

type updateOrderRequest struct {
	Status        *models.OrderStatus `json:"status"`
	PaymentStatus *string             `json:"payment_status" validate:"omitempty,max=16"`
	PaymentID     *string             `json:"payment_id" validate:"omitempty,max=128"`
}

// UpdateOrder changes status and/or payment fields in one write.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req updateOrderRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, err := h.manager.UpdateOrder(c.UserContext(), id, actor, orders.OrderUpdate{
		Status:        req.Status,
		PaymentStatus: req.PaymentStatus,
		PaymentID:     req.PaymentID,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type feedbackRequest struct {
	Rating         int                 `json:"rating"`
	Feedback       string              `json:"feedback" validate:"max=1000"`
	ServiceQuality int                 `json:"service_quality"`
	DeliverySpeed  int                 `json:"delivery_speed"`
	Items          []orders.ItemRating `json:"item_feedback"`
}

// SubmitFeedback reviews a delivered order.
func (h *OrderHandler) SubmitFeedback(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req feedbackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	order, feedback, err := h.manager.AttachFeedback(c.UserContext(), orders.FeedbackInput{
		OrderID:        id,
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

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Thank you for your feedback",
		"data":     order,
		"feedback": feedback,
	})
}

// Receipt renders the order as a PDF.
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	order, err := h.load(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := reports.WriteReceipt(&buf, order, RestaurantName); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render receipt")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="receipt-%s.pdf"`, order.OrderNumber))
	return c.Send(buf.Bytes())
}

func (h *OrderHandler) load(c *fiber.Ctx) (*models.Order, error) {
	actor, err := currentActor(c)
	if err != nil {
		return nil, err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	return h.manager.Get(c.UserContext(), id, actor)
}

func (h *OrderHandler) respondPage(c *fiber.Ctx, filter repository.OrderFilter, pg utils.Pagination) error {
	return respondOrderPage(c, h.store, h.assembler, filter, pg)
}

// respondOrderPage renders a page of assembled orders with pagination meta.
func respondOrderPage(c *fiber.Ctx, store repository.Store, assembler *orders.Assembler, filter repository.OrderFilter, pg utils.Pagination) error {
	ctx := c.UserContext()
	total, err := store.Orders().Count(ctx, filter)
	if err != nil {
		return utils.Persistence(err)
	}

	filter.Limit = pg.Limit
	filter.Offset = pg.Offset
	list, err := store.Orders().Find(ctx, filter)
	if err != nil {
		return utils.Persistence(err)
	}

	views, err := assembler.Assemble(ctx, list)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       views,
		"pagination": pg.Meta(total),
	})
}
