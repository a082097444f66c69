package model

import "time"

type DTO struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Pagination struct {
	Limit *int `json:"limit"`
	Page  *int `json:"page"`
}

// TokenClaim is the identity carried by the external auth token. UserID
// is the stable user identifier everything else keys on.
type TokenClaim struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}
