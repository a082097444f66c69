package model

// Transaction is the audit trail of payment state for an order. Rows
// are updated in place as the payment progresses; a new one is created
// only when none exists for the order yet.
type Transaction struct {
	DTO
	OrderID       string  `gorm:"index;size:36;not null" json:"orderId"`
	Amount        float64 `gorm:"not null" json:"amount"`
	PaymentMethod string  `gorm:"not null" json:"paymentMethod"`
	Status        string  `gorm:"not null;default:'pending'" json:"status"`
	Reference     string  `json:"reference,omitempty"`
}
