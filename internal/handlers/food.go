package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/repository"
	"github.com/example/arfood/internal/utils"
)

// FoodHandler serves the menu.
type FoodHandler struct {
	store repository.Store
}

// NewFoodHandler constructs FoodHandler.
func NewFoodHandler(store repository.Store) *FoodHandler {
	return &FoodHandler{store: store}
}

func foodFilter(c *fiber.Ctx, availableOnly bool) (repository.FoodFilter, error) {
	filter := repository.FoodFilter{Category: c.Query("category"), AvailableOnly: availableOnly}
	if filter.Category != "" && !models.IsFoodCategory(filter.Category) {
		return filter, fiber.NewError(fiber.StatusBadRequest, "unknown category")
	}
	if raw := c.Query("is_veg"); raw != "" {
		veg, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fiber.NewError(fiber.StatusBadRequest, "is_veg must be true or false")
		}
		filter.IsVeg = &veg
	}
	return filter, nil
}

// ListFoods returns the available dishes sorted by name.
func (h *FoodHandler) ListFoods(c *fiber.Ctx) error {
	filter, err := foodFilter(c, true)
	if err != nil {
		return err
	}

	foods, err := h.store.Foods().Find(c.UserContext(), filter)
	if err != nil {
		return utils.Persistence(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": foods, "count": len(foods)})
}

// ListAllFoods returns every dish including unavailable ones.
func (h *FoodHandler) ListAllFoods(c *fiber.Ctx) error {
	filter, err := foodFilter(c, false)
	if err != nil {
		return err
	}

	foods, err := h.store.Foods().Find(c.UserContext(), filter)
	if err != nil {
		return utils.Persistence(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": foods, "count": len(foods)})
}

// ListCategories returns the menu sections.
func (h *FoodHandler) ListCategories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": models.FoodCategories})
}

// GetFood returns a single dish.
func (h *FoodHandler) GetFood(c *fiber.Ctx) error {
	food, err := h.find(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": food})
}

// ToggleLike likes or unlikes a dish for the caller.
func (h *FoodHandler) ToggleLike(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	liked, count, err := h.store.Foods().ToggleLike(c.UserContext(), id, actor.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "food item not found")
	}
	if err != nil {
		return utils.Persistence(err)
	}

	return c.JSON(fiber.Map{"success": true, "liked": liked, "like_count": count})
}

type rateFoodRequest struct {
	Rating int    `json:"rating" validate:"min=1,max=5"`
	Review string `json:"review" validate:"max=500"`
}

// RateFood stores the caller's rating and returns the updated average.
func (h *FoodHandler) RateFood(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req rateFoodRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return utils.ErrInvalidRating
	}

	food, err := h.store.Foods().Rate(c.UserContext(), models.FoodRating{
		FoodID: id,
		UserID: actor.ID,
		Rating: req.Rating,
		Review: req.Review,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "food item not found")
	}
	if err != nil {
		return utils.Persistence(err)
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"average_rating": food.AverageRating,
		"total_ratings":  food.TotalRatings,
	})
}

type foodRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=1000"`
	Category    string   `json:"category" validate:"required"`
	Price       float64  `json:"price" validate:"gt=0"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url"`
	ModelURL    string   `json:"model_url"`
	IsVeg       bool     `json:"is_veg"`
	IsAvailable *bool    `json:"is_available"`
	PrepTime    int      `json:"prep_time" validate:"gte=0"`
	Ingredients []string `json:"ingredients"`
}

func (r foodRequest) applyTo(food *models.FoodItem) {
	food.Name = r.Name
	food.Description = r.Description
	food.Category = r.Category
	food.Price = r.Price
	food.ImageURL = r.ImageURL
	food.ModelURL = r.ModelURL
	food.IsVeg = r.IsVeg
	food.PrepTime = r.PrepTime
	food.Ingredients = r.Ingredients
	if r.IsAvailable != nil {
		food.IsAvailable = *r.IsAvailable
	}
}

func parseFoodRequest(c *fiber.Ctx) (foodRequest, error) {
	var req foodRequest
	if err := parseBody(c, &req); err != nil {
		return req, err
	}
	if !models.IsFoodCategory(req.Category) {
		return req, fiber.NewError(fiber.StatusBadRequest, "unknown category")
	}
	return req, nil
}

// CreateFood adds a dish to the menu.
func (h *FoodHandler) CreateFood(c *fiber.Ctx) error {
	req, err := parseFoodRequest(c)
	if err != nil {
		return err
	}

	food := models.FoodItem{IsAvailable: true}
	req.applyTo(&food)
	if err := h.store.Foods().Create(c.UserContext(), &food); err != nil {
		return utils.Persistence(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": food})
}

// UpdateFood replaces a dish's editable fields.
func (h *FoodHandler) UpdateFood(c *fiber.Ctx) error {
	food, err := h.find(c)
	if err != nil {
		return err
	}
	req, err := parseFoodRequest(c)
	if err != nil {
		return err
	}

	req.applyTo(food)
	if err := h.store.Foods().Update(c.UserContext(), food); err != nil {
		return utils.Persistence(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": food})
}

// DeleteFood removes a dish. Past orders keep their line snapshots.
func (h *FoodHandler) DeleteFood(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	err = h.store.Foods().Delete(c.UserContext(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "food item not found")
	}
	if err != nil {
		return utils.Persistence(err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "food item deleted"})
}

// ItemRatings lists the reviews of one dish.
func (h *FoodHandler) ItemRatings(c *fiber.Ctx) error {
	food, err := h.find(c)
	if err != nil {
		return err
	}

	ratings, err := h.store.Foods().Ratings(c.UserContext(), food.ID, 50)
	if err != nil {
		return utils.Persistence(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"food":    food.Summary(),
			"average": food.AverageRating,
			"total":   food.TotalRatings,
			"ratings": ratings,
		},
	})
}

func (h *FoodHandler) find(c *fiber.Ctx) (*models.FoodItem, error) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	food, err := h.store.Foods().FindByID(c.UserContext(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "food item not found")
	}
	if err != nil {
		return nil, utils.Persistence(err)
	}
	return food, nil
}
