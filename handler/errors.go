package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"event_ticketing/service"
	"event_ticketing/utils"
)

// respondServiceError translates the service error taxonomy into HTTP
// responses. Conflicts carry the contested seats so the client can
// resolve them; infrastructure failures come back 5xx and retryable.
func respondServiceError(c *fiber.Ctx, err error) error {
	var (
		validation *service.ValidationError
		sold       *service.SeatsSoldError
		locked     *service.SeatsLockedError
		invalid    *service.InvalidStateError
	)

	switch {
	case errors.As(err, &validation):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, validation.Msg, err)
	case errors.As(err, &sold):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":   "Some seats are already sold",
			"soldSeats": sold.Seats,
		})
	case errors.As(err, &locked):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":     "Some seats are held by other users",
			"lockedSeats": locked.Seats,
		})
	case errors.As(err, &invalid):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Order is not in a state that allows this operation", err)
	case errors.Is(err, service.ErrLeaseNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No active seat lease", err)
	case errors.Is(err, service.ErrOrderNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Order not found", err)
	case errors.Is(err, service.ErrPaymentMismatch):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Payment reference does not match the order", err)
	case errors.Is(err, service.ErrPaymentNotConfirmed):
		return utils.ErrorResponse(c, fiber.StatusPaymentRequired, "Payment has not been confirmed", err)
	case errors.Is(err, service.ErrOversold):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Not enough seats remain to complete the order", err)
	case errors.Is(err, service.ErrAssignmentsMissing):
		return utils.ErrorResponse(c, fiber.StatusConflict, "Order has no seat assignments", err)
	default:
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal error, please retry", err)
	}
}

func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("userId").(string)
	return userID
}
