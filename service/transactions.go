package service

import (
	"errors"

	"gorm.io/gorm"

	"event_ticketing/model"
)

// upsertOrderTransaction moves the order's audit transaction forward.
// The row is updated in place as the payment progresses; a fresh row is
// created only when none exists for the order yet, so every order keeps
// exactly one transaction telling its payment story.
func upsertOrderTransaction(tx *gorm.DB, orderID string, amount float64, method, status, reference string) error {
	var record model.Transaction
	err := tx.Where("order_id = ?", orderID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = model.Transaction{
			OrderID:       orderID,
			Amount:        amount,
			PaymentMethod: method,
			Status:        status,
			Reference:     reference,
		}
		return tx.Create(&record).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]any{
		"status":         status,
		"payment_method": method,
	}
	if amount > 0 {
		updates["amount"] = amount
	}
	if reference != "" {
		updates["reference"] = reference
	}
	return tx.Model(&record).Updates(updates).Error
}
