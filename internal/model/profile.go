package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ProfileType string

const (
	ProfileTypeClient     ProfileType = "client"
	ProfileTypeContractor ProfileType = "contractor"
)

type Profile struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	FirstName  string          `gorm:"size:255;not null" json:"firstName"`
	LastName   string          `gorm:"size:255;not null" json:"lastName"`
	Profession string          `gorm:"size:255;not null" json:"profession"`
	Balance    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0;check:chk_profiles_balance,balance >= 0" json:"balance"`
	Type       ProfileType     `gorm:"size:16;not null" json:"type"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
