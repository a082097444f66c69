package handler

import (
	"github.com/gofiber/fiber/v2"

	"event_ticketing/model"
	"event_ticketing/service"
	"event_ticketing/utils"
)

// OrderHandler exposes the order lifecycle on top of the coordinator.
// All routes run behind Protected(); order reads additionally verify
// the caller owns the order.
type OrderHandler struct {
	locks  *service.SeatLockManager
	orders *service.OrderCoordinator
}

func NewOrderHandler(locks *service.SeatLockManager, orders *service.OrderCoordinator) *OrderHandler {
	return &OrderHandler{locks: locks, orders: orders}
}

// CreatePendingOrder converts the caller's active lease into a pending
// order and hands back the payment intent's client secret.
func (h *OrderHandler) CreatePendingOrder(c *fiber.Ctx) error {
	userID := currentUserID(c)

	lease, err := h.locks.GetActive(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if lease == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No active seat lease to order", nil)
	}

	order, intent, err := h.orders.CreatePendingOrder(c.UserContext(), lease)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, fiber.Map{
		"order":   order,
		"payment": intent,
	})
}

func (h *OrderHandler) FinalizeOrder(c *fiber.Ctx) error {
	input := c.Locals("input").(model.FinalizeOrderInput)

	order, err := h.ownedOrder(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	completed, err := h.orders.FinalizeOrder(c.UserContext(), order.ID, input.PaymentReference)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, completed)
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	order, err := h.ownedOrder(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	cancelled, err := h.orders.CancelOrder(c.UserContext(), order.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, cancelled)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.ownedOrder(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, order)
}

func (h *OrderHandler) GetMyOrders(c *fiber.Ctx) error {
	pagination := model.Pagination{}
	if limit := c.QueryInt("limit"); limit > 0 {
		pagination.Limit = utils.Ptr(limit)
	}
	if page := c.QueryInt("page"); page > 0 {
		pagination.Page = utils.Ptr(page)
	}

	orders, err := h.orders.GetUserOrders(c.UserContext(), currentUserID(c), &pagination)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, orders)
}

func (h *OrderHandler) GetOrderTickets(c *fiber.Ctx) error {
	order, err := h.ownedOrder(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	tickets, err := h.orders.GetOrderTickets(c.UserContext(), order.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, tickets)
}

func (h *OrderHandler) GetOrderTransactions(c *fiber.Ctx) error {
	order, err := h.ownedOrder(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	transactions, err := h.orders.GetOrderTransactions(c.UserContext(), order.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, transactions)
}

func (h *OrderHandler) GetOrderSeatAssignments(c *fiber.Ctx) error {
	order, err := h.ownedOrder(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	assignments, err := h.orders.GetOrderSeatAssignments(c.UserContext(), order.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, assignments)
}

// GetOrderSummary prices the caller's active lease before checkout.
func (h *OrderHandler) GetOrderSummary(c *fiber.Ctx) error {
	lease, err := h.locks.GetActive(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	if lease == nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No active seat lease", nil)
	}

	summary, err := h.orders.GetOrderSummary(c.UserContext(), lease)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, summary)
}

func (h *OrderHandler) GetOrderDetail(c *fiber.Ctx) error {
	order, err := h.ownedOrder(c)
	if err != nil {
		return respondServiceError(c, err)
	}
	detail, err := h.orders.GetOrderDetail(c.UserContext(), order.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, detail)
}

// ownedOrder loads the order named in the route and verifies the caller
// owns it. Foreign orders come back as not-found, not forbidden, so
// order ids cannot be probed.
func (h *OrderHandler) ownedOrder(c *fiber.Ctx) (*model.Order, error) {
	orderID := c.Locals("orderId").(string)
	order, err := h.orders.GetOrder(c.UserContext(), orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != currentUserID(c) {
		return nil, service.ErrOrderNotFound
	}
	return order, nil
}
