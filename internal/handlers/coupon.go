package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/arfood/internal/coupons"
)

// CouponHandler exposes coupon validation, redemption and administration.
type CouponHandler struct {
	coupons *coupons.Service
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(service *coupons.Service) *CouponHandler {
	return &CouponHandler{coupons: service}
}

// Available lists coupons customers can use right now.
func (h *CouponHandler) Available(c *fiber.Ctx) error {
	list, err := h.coupons.Available(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": list})
}

// Validate reports whether a code is usable and, given ?order_value=, the
// discount it would grant.
func (h *CouponHandler) Validate(c *fiber.Ctx) error {
	var orderValue *float64
	if raw := c.Query("order_value"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "order_value must be a positive number")
		}
		orderValue = &v
	}

	result, err := h.coupons.Validate(c.UserContext(), c.Params("code"), orderValue)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": result})
}

type applyCouponRequest struct {
	Code       string  `json:"code" validate:"required"`
	OrderValue float64 `json:"order_value" validate:"gt=0"`
}

// Apply redeems a code and returns the discount.
func (h *CouponHandler) Apply(c *fiber.Ctx) error {
	var req applyCouponRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	discount, err := h.coupons.Apply(c.UserContext(), req.Code, req.OrderValue)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"discount":    discount,
		"final_value": req.OrderValue - discount,
	})
}

// List returns every coupon.
func (h *CouponHandler) List(c *fiber.Ctx) error {
	list, err := h.coupons.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": list})
}

// Create adds a coupon.
func (h *CouponHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req coupons.Input
	if err := parseBody(c, &req); err != nil {
		return err
	}

	coupon, err := h.coupons.Create(c.UserContext(), req, actor.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": coupon})
}

// Update replaces a coupon's editable fields.
func (h *CouponHandler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req coupons.Input
	if err := parseBody(c, &req); err != nil {
		return err
	}

	coupon, err := h.coupons.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": coupon})
}

// Delete removes a coupon.
func (h *CouponHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.coupons.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "coupon deleted"})
}

// Toggle flips a coupon's active flag.
func (h *CouponHandler) Toggle(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	coupon, err := h.coupons.Toggle(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": coupon})
}
