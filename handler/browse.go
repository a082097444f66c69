package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"event_ticketing/model"
	"event_ticketing/utils"
)

// BrowseHandler serves the public read-only catalog: venues, events and
// their pricing tiers. No auth, no writes.
type BrowseHandler struct {
	db *gorm.DB
}

func NewBrowseHandler(db *gorm.DB) *BrowseHandler {
	return &BrowseHandler{db: db}
}

func (h *BrowseHandler) GetVenues(c *fiber.Ctx) error {
	var venues []model.Venue
	if err := h.db.WithContext(c.UserContext()).Find(&venues).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Could not load venues", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, venues)
}

func (h *BrowseHandler) GetEvents(c *fiber.Ctx) error {
	query := h.db.WithContext(c.UserContext()).Preload("Tiers")
	if venueID := c.QueryInt("venueId"); venueID > 0 {
		query = query.Where("venue_id = ?", venueID)
	}

	var events []model.Event
	if err := query.Order("event_date asc").Find(&events).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Could not load events", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, events)
}

func (h *BrowseHandler) GetEventBySlug(c *fiber.Ctx) error {
	var event model.Event
	err := h.db.WithContext(c.UserContext()).
		Preload("Tiers").Preload("Venue").
		Where("slug = ?", c.Params("slug")).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Event not found", err)
	}
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Could not load event", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, event)
}

func (h *BrowseHandler) GetEventTiers(c *fiber.Ctx) error {
	eventID := c.Locals("inputId").(uint)

	var tiers []model.TicketTier
	err := h.db.WithContext(c.UserContext()).
		Where("event_id = ?", eventID).Order("id asc").
		Find(&tiers).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Could not load ticket tiers", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, tiers)
}
