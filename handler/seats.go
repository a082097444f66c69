package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"event_ticketing/model"
	"event_ticketing/service"
	"event_ticketing/utils"
)

// SeatHandler exposes the seat-lock lifecycle. Every route except
// availability runs behind Protected(), so Locals("userId") is set.
type SeatHandler struct {
	locks *service.SeatLockManager
}

func NewSeatHandler(locks *service.SeatLockManager) *SeatHandler {
	return &SeatHandler{locks: locks}
}

func (h *SeatHandler) LockSeats(c *fiber.Ctx) error {
	input := c.Locals("input").(model.LockSeatsInput)

	lease, err := h.locks.Lock(c.UserContext(), currentUserID(c), input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, fiber.Map{
		"lease":            lease,
		"remainingSeconds": lease.RemainingSeconds(time.Now()),
	})
}

func (h *SeatHandler) UnlockSeats(c *fiber.Ctx) error {
	input := c.Locals("input").(model.UnlockSeatsInput)

	released, err := h.locks.Unlock(c.UserContext(), currentUserID(c), input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"releasedSeats": released,
	})
}

func (h *SeatHandler) GetActiveLease(c *fiber.Ctx) error {
	lease, err := h.locks.GetActive(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	if lease == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No active seat lease", nil)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"lease":            lease,
		"remainingSeconds": lease.RemainingSeconds(time.Now()),
	})
}

func (h *SeatHandler) CheckAvailability(c *fiber.Ctx) error {
	input := c.Locals("input").(model.CheckAvailabilityInput)

	availability, err := h.locks.CheckAvailability(c.UserContext(), input.EventID, input.Seats)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, availability)
}

func (h *SeatHandler) ExtendLease(c *fiber.Ctx) error {
	input := c.Locals("input").(model.ExtendLeaseInput)

	newExpiry, err := h.locks.ExtendLease(c.UserContext(), currentUserID(c), input.LeaseID, time.Duration(input.ExtraSeconds)*time.Second)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"expiresAt": newExpiry,
	})
}
