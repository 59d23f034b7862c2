package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Job struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Paid        *bool           `json:"paid"`
	PaymentDate *time.Time      `json:"paymentDate"`
	ContractID  uint            `gorm:"not null;index" json:"contractId"`
	CreatedAt   time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// IsPaid treats a NULL paid flag as unpaid.
func (j Job) IsPaid() bool {
	return j.Paid != nil && *j.Paid
}
