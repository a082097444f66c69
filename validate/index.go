package validate

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"event_ticketing/utils"
)

var validate = validator.New()

// GetById parses the named numeric route param and stores it in
// Locals("inputId").
func GetById(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := c.Params(key)
		valueKey, err := strconv.Atoi(params)
		if err != nil || valueKey <= 0 {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Route parameter must be a positive number", errors.New("params invalid"))
		}

		c.Locals("inputId", uint(valueKey))
		return c.Next()
	}
}

// body parses and validates the request body into input, then stores it
// in Locals("input") for the handler.
func body[T any](c *fiber.Ctx) error {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request payload", err)
	}
	if err := validate.Struct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), err)
	}
	c.Locals("input", input)
	return c.Next()
}
