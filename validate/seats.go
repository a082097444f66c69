package validate

import (
	"github.com/gofiber/fiber/v2"

	"event_ticketing/model"
)

func LockSeats() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return body[model.LockSeatsInput](c)
	}
}

func UnlockSeats() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return body[model.UnlockSeatsInput](c)
	}
}

func CheckAvailability() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return body[model.CheckAvailabilityInput](c)
	}
}

func ExtendLease() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return body[model.ExtendLeaseInput](c)
	}
}
