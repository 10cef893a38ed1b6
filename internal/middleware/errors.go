package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/arfood/internal/utils"
)

// ErrorHandler renders every error returned by a handler as the JSON envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		if appErr.Reason == utils.ReasonPersistence {
			log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
		}
		return c.Status(appErr.Status()).JSON(fiber.Map{
			"success": false,
			"reason":  appErr.Reason,
			"message": appErr.Message,
		})
	}

	status := fiber.StatusInternalServerError
	message := "internal server error"
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
	} else {
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"reason":  reasonForStatus(status),
		"message": message,
	})
}

func reasonForStatus(status int) utils.Reason {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return utils.ReasonValidation
	case fiber.StatusUnauthorized:
		return utils.ReasonUnauthorized
	case fiber.StatusForbidden:
		return utils.ReasonForbidden
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return utils.ReasonNotFound
	case fiber.StatusConflict:
		return utils.ReasonConflict
	}
	return utils.ReasonPersistence
}
