package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProfessionTotal struct {
	Profession string          `json:"profession"`
	Total      decimal.Decimal `json:"total"`
}

type ClientTotal struct {
	ID       uint            `json:"id"`
	FullName string          `json:"fullName"`
	Paid     decimal.Decimal `json:"paid"`
}

type ClientsReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Limit       int
	Clients     []ClientTotal
}

type JobReceipt struct {
	Job        Job
	Contract   Contract
	Client     Profile
	Contractor Profile
	IssuedAt   time.Time
}
