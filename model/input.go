package model

// Tagged request payloads, validated at the boundary before any domain
// logic runs.

type LockSeatsInput struct {
	EventID uint   `json:"eventId" validate:"required,gt=0"`
	Seats   []Seat `json:"seats" validate:"required,min=1,dive"`
	TierID  *uint  `json:"tierId" validate:"omitempty,gt=0"`
}

type UnlockSeatsInput struct {
	LeaseID string `json:"leaseId" validate:"omitempty,uuid4"`
	Seats   []Seat `json:"seats" validate:"omitempty,dive"`
}

type CheckAvailabilityInput struct {
	EventID uint   `json:"eventId" validate:"required,gt=0"`
	Seats   []Seat `json:"seats" validate:"required,min=1,dive"`
}

type ExtendLeaseInput struct {
	LeaseID      string `json:"leaseId" validate:"required,uuid4"`
	ExtraSeconds int    `json:"extraSeconds" validate:"required,gt=0,lte=1800"`
}

type FinalizeOrderInput struct {
	PaymentReference string `json:"paymentReference" validate:"required"`
}
