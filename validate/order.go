package validate

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"event_ticketing/model"
	"event_ticketing/utils"
)

func FinalizeOrder() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return body[model.FinalizeOrderInput](c)
	}
}

// OrderId validates the :orderId route param as a uuid and stores it in
// Locals("orderId").
func OrderId() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("orderId")
		if _, err := uuid.Parse(id); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Order id must be a uuid", errors.New("params invalid"))
		}
		c.Locals("orderId", id)
		return c.Next()
	}
}
