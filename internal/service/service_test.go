package service

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/contracts-ledger/internal/config"
	"github.com/nurpe/contracts-ledger/internal/db/dbtest"
	"github.com/nurpe/contracts-ledger/internal/model"
	"github.com/nurpe/contracts-ledger/internal/repository"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Ledger: config.LedgerConfig{
			DepositDefault: decimal.NewFromInt(10),
			DepositRate:    decimal.RequireFromString("0.25"),
		},
		Report: config.ReportConfig{DefaultLimit: 2},
	}
}

type fixture struct {
	db         *gorm.DB
	repo       *repository.LedgerRepository
	transfers  *TransferService
	client     model.Profile
	contractor model.Profile
	contract   model.Contract
}

func newFixture(t *testing.T, clientBalance string) *fixture {
	t.Helper()
	database := dbtest.Open(t)
	repo := repository.NewLedgerRepository(database)

	transfers := NewTransferService(repo, testConfig(), zerolog.Nop())
	transfers.now = func() time.Time { return fixedNow }

	client := dbtest.CreateProfile(t, database, model.ProfileTypeClient, "", clientBalance)
	contractor := dbtest.CreateProfile(t, database, model.ProfileTypeContractor, "Programmer", "50")
	contract := dbtest.CreateContract(t, database, model.ContractStatusInProgress, client.ID, contractor.ID)

	return &fixture{
		db:         database,
		repo:       repo,
		transfers:  transfers,
		client:     client,
		contractor: contractor,
		contract:   contract,
	}
}
