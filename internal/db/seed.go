package db

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/contracts-ledger/internal/model"
)

// Seed inserts the demo dataset into an empty database. Rows are created in
// order so a fresh schema assigns the same ids the contract and job rows refer to.
func Seed(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&model.Profile{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		profiles := []model.Profile{
			seedProfile("Harry", "Potter", "Wizard", "1150", model.ProfileTypeClient),
			seedProfile("Mr", "Robot", "Hacker", "231.11", model.ProfileTypeClient),
			seedProfile("John", "Snow", "Knows nothing", "451.3", model.ProfileTypeClient),
			seedProfile("Ash", "Kethcum", "Pokemon master", "1.3", model.ProfileTypeClient),
			seedProfile("John", "Lenon", "Musician", "64", model.ProfileTypeContractor),
			seedProfile("Linus", "Torvalds", "Programmer", "1214", model.ProfileTypeContractor),
			seedProfile("Alan", "Turing", "Programmer", "22", model.ProfileTypeContractor),
			seedProfile("Aragorn", "II Elessar Telcontarvalds", "Fighter", "314", model.ProfileTypeContractor),
		}
		if err := tx.Create(&profiles).Error; err != nil {
			return err
		}
		id := func(i int) uint { return profiles[i-1].ID }

		contracts := []model.Contract{
			seedContract(model.ContractStatusTerminated, id(1), id(5)),
			seedContract(model.ContractStatusInProgress, id(1), id(6)),
			seedContract(model.ContractStatusInProgress, id(2), id(6)),
			seedContract(model.ContractStatusInProgress, id(2), id(7)),
			seedContract(model.ContractStatusNew, id(3), id(8)),
			seedContract(model.ContractStatusInProgress, id(3), id(7)),
			seedContract(model.ContractStatusInProgress, id(4), id(7)),
			seedContract(model.ContractStatusInProgress, id(4), id(6)),
			seedContract(model.ContractStatusInProgress, id(4), id(8)),
		}
		if err := tx.Create(&contracts).Error; err != nil {
			return err
		}
		contract := func(i int) uint { return contracts[i-1].ID }

		jobs := []model.Job{
			seedJob("200", contract(1), ""),
			seedJob("201", contract(2), ""),
			seedJob("202", contract(3), ""),
			seedJob("200", contract(4), ""),
			seedJob("200", contract(7), ""),
			seedJob("2020", contract(7), "2020-08-15T19:11:26.737Z"),
			seedJob("200", contract(2), "2020-08-15T19:11:26.737Z"),
			seedJob("200", contract(3), "2020-08-16T19:11:26.737Z"),
			seedJob("200", contract(1), "2020-08-17T19:11:26.737Z"),
			seedJob("200", contract(5), "2020-08-17T19:11:26.737Z"),
			seedJob("21", contract(1), "2020-08-10T19:11:26.737Z"),
			seedJob("21", contract(2), "2020-08-15T19:11:26.737Z"),
			seedJob("121", contract(3), "2020-08-15T19:11:26.737Z"),
			seedJob("121", contract(3), "2020-08-14T23:11:26.737Z"),
		}
		return tx.Create(&jobs).Error
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func seedProfile(first, last, profession, balance string, kind model.ProfileType) model.Profile {
	return model.Profile{
		FirstName:  first,
		LastName:   last,
		Profession: profession,
		Balance:    decimal.RequireFromString(balance),
		Type:       kind,
	}
}

func seedContract(status model.ContractStatus, clientID, contractorID uint) model.Contract {
	return model.Contract{
		Terms:        "bla bla bla",
		Status:       status,
		ClientID:     clientID,
		ContractorID: contractorID,
	}
}

func seedJob(price string, contractID uint, paidAt string) model.Job {
	job := model.Job{
		Description: "work",
		Price:       decimal.RequireFromString(price),
		ContractID:  contractID,
	}
	if paidAt != "" {
		at, err := time.Parse(time.RFC3339, paidAt)
		if err == nil {
			paid := true
			job.Paid = &paid
			job.PaymentDate = &at
		}
	}
	return job
}
