// Package dbtest opens migrated in-memory sqlite databases for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/contracts-ledger/internal/db"
	"github.com/nurpe/contracts-ledger/internal/model"
)

// Open returns a fresh database private to the test. The pool holds a single
// connection, so concurrent transactions queue instead of failing with SQLITE_BUSY.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	database, err := gorm.Open(sqlite.Open(dsn), db.Options(gormlogger.Silent))
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

func CreateProfile(t *testing.T, database *gorm.DB, kind model.ProfileType, profession, balance string) model.Profile {
	t.Helper()
	profile := model.Profile{
		FirstName:  "Test",
		LastName:   strings.ToUpper(string(kind[:1])) + string(kind[1:]),
		Profession: profession,
		Balance:    decimal.RequireFromString(balance),
		Type:       kind,
	}
	require.NoError(t, database.Create(&profile).Error)
	return profile
}

func CreateContract(t *testing.T, database *gorm.DB, status model.ContractStatus, clientID, contractorID uint) model.Contract {
	t.Helper()
	contract := model.Contract{
		Terms:        "terms",
		Status:       status,
		ClientID:     clientID,
		ContractorID: contractorID,
	}
	require.NoError(t, database.Create(&contract).Error)
	return contract
}

func CreateJob(t *testing.T, database *gorm.DB, contractID uint, price string, createdAt time.Time) model.Job {
	t.Helper()
	job := model.Job{
		Description: "work",
		Price:       decimal.RequireFromString(price),
		ContractID:  contractID,
		CreatedAt:   createdAt.UTC(),
	}
	require.NoError(t, database.Create(&job).Error)
	return job
}

func CreatePaidJob(t *testing.T, database *gorm.DB, contractID uint, price string, createdAt time.Time) model.Job {
	t.Helper()
	paid := true
	paidAt := createdAt.UTC()
	job := model.Job{
		Description: "work",
		Price:       decimal.RequireFromString(price),
		Paid:        &paid,
		PaymentDate: &paidAt,
		ContractID:  contractID,
		CreatedAt:   createdAt.UTC(),
	}
	require.NoError(t, database.Create(&job).Error)
	return job
}

func Balance(t *testing.T, database *gorm.DB, profileID uint) decimal.Decimal {
	t.Helper()
	var profile model.Profile
	require.NoError(t, database.First(&profile, profileID).Error)
	return profile.Balance
}
