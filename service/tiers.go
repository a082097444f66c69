package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"event_ticketing/model"
)

// tierAssignment groups the requested seats by the tier they are drawn
// from, in tier-id order.
type tierAssignment struct {
	Tier  model.TicketTier
	Seats []model.Seat
}

// resolveTierAssignments matches every seat to a pricing tier, either
// via the explicit hint or by matching the seat's section against the
// tiers' seat prefixes. A seat matching no tier is a hard error naming
// the seat. Returns the grouped assignments and the order total.
func resolveTierAssignments(db *gorm.DB, eventID uint, seats []model.Seat, hint *uint) ([]tierAssignment, float64, error) {
	if hint != nil {
		var tier model.TicketTier
		err := db.Where("id = ? AND event_id = ?", *hint, eventID).First(&tier).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, &ValidationError{Msg: fmt.Sprintf("ticket tier %d does not exist for event %d", *hint, eventID)}
		}
		if err != nil {
			return nil, 0, &DurableStoreError{Err: err}
		}
		return []tierAssignment{{Tier: tier, Seats: seats}}, tier.Price * float64(len(seats)), nil
	}

	var tiers []model.TicketTier
	if err := db.Where("event_id = ?", eventID).Order("id asc").Find(&tiers).Error; err != nil {
		return nil, 0, &DurableStoreError{Err: err}
	}

	byTier := make(map[uint]*tierAssignment)
	var ordered []uint
	var total float64
	for _, seat := range seats {
		matched := false
		for _, tier := range tiers {
			if seat.Section != tier.SeatPrefix {
				continue
			}
			a, ok := byTier[tier.ID]
			if !ok {
				a = &tierAssignment{Tier: tier}
				byTier[tier.ID] = a
				ordered = append(ordered, tier.ID)
			}
			a.Seats = append(a.Seats, seat)
			total += tier.Price
			matched = true
			break
		}
		if !matched {
			return nil, 0, &ValidationError{
				Msg: fmt.Sprintf("seat %s does not match any available ticket tier", seat),
			}
		}
	}

	assignments := make([]tierAssignment, 0, len(ordered))
	for _, id := range ordered {
		assignments = append(assignments, *byTier[id])
	}
	return assignments, total, nil
}
