package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"event_ticketing/handler"
	"event_ticketing/middleware"
	"event_ticketing/validate"
)

// Handlers collects the wired handler set built in main.
type Handlers struct {
	Seats   *handler.SeatHandler
	Orders  *handler.OrderHandler
	Browse  *handler.BrowseHandler
	Webhook *handler.WebhookHandler
}

func SetupRoutes(app *fiber.App, h *Handlers) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	// Public catalog.
	venue := v1.Group("/venue")
	venue.Get("/", h.Browse.GetVenues)

	event := v1.Group("/event")
	event.Get("/", h.Browse.GetEvents)
	event.Get("/slug/:slug", h.Browse.GetEventBySlug)
	event.Get("/:eventId/tiers", validate.GetById("eventId"), h.Browse.GetEventTiers)

	// Seat locking. Availability stays public so the seat map can be
	// rendered before login.
	seats := v1.Group("/seats", logger.New())
	seats.Post("/availability", validate.CheckAvailability(), h.Seats.CheckAvailability)
	seats.Post("/lock", middleware.Protected(), validate.LockSeats(), h.Seats.LockSeats)
	seats.Post("/unlock", middleware.Protected(), validate.UnlockSeats(), h.Seats.UnlockSeats)
	seats.Get("/lease", middleware.Protected(), h.Seats.GetActiveLease)
	seats.Post("/lease/extend", middleware.Protected(), validate.ExtendLease(), h.Seats.ExtendLease)

	// Order lifecycle.
	order := v1.Group("/order", logger.New())
	order.Post("/", middleware.Protected(), h.Orders.CreatePendingOrder)
	order.Get("/", middleware.Protected(), h.Orders.GetMyOrders)
	order.Get("/summary", middleware.Protected(), h.Orders.GetOrderSummary)
	order.Get("/:orderId", middleware.Protected(), validate.OrderId(), h.Orders.GetOrder)
	order.Get("/:orderId/detail", middleware.Protected(), validate.OrderId(), h.Orders.GetOrderDetail)
	order.Get("/:orderId/tickets", middleware.Protected(), validate.OrderId(), h.Orders.GetOrderTickets)
	order.Get("/:orderId/transactions", middleware.Protected(), validate.OrderId(), h.Orders.GetOrderTransactions)
	order.Get("/:orderId/seats", middleware.Protected(), validate.OrderId(), h.Orders.GetOrderSeatAssignments)
	order.Post("/:orderId/finalize", middleware.Protected(), validate.OrderId(), validate.FinalizeOrder(), h.Orders.FinalizeOrder)
	order.Post("/:orderId/cancel", middleware.Protected(), validate.OrderId(), h.Orders.CancelOrder)

	// Payment provider callback; authenticated by its signature, not by
	// a user token.
	payment := v1.Group("/payment")
	payment.Post("/webhook/stripe", h.Webhook.HandleStripeEvent)
}
