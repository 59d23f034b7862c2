package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/contracts-ledger/internal/model"
)

// ErrNotFound is returned by every lookup that matches no row.
var ErrNotFound = gorm.ErrRecordNotFound

// Reader covers the read side of the ledger. Implementations are usable both
// outside and inside a transaction.
type Reader interface {
	GetProfile(ctx context.Context, id uint) (*model.Profile, error)
	GetContract(ctx context.Context, id uint) (*model.Contract, error)
	GetJob(ctx context.Context, id uint) (*model.Job, error)
	ListContracts(ctx context.Context, profileID uint) ([]model.Contract, error)
	ListUnpaidJobs(ctx context.Context, profileID uint) ([]model.Job, error)
	PendingAmount(ctx context.Context, clientID uint) (decimal.Decimal, error)
	ProfessionTotals(ctx context.Context, from, to time.Time, limit int) ([]model.ProfessionTotal, error)
	ClientTotals(ctx context.Context, from, to time.Time, limit int) ([]model.ClientTotal, error)
}

// Tx is the unit of work handed to WithinTx callbacks.
type Tx interface {
	Reader
	// LockProfiles row-locks the given profiles in ascending id order and
	// returns the ones that exist keyed by id.
	LockProfiles(ctx context.Context, ids ...uint) (map[uint]*model.Profile, error)
	// LockUnpaidJob row-locks a job whose paid flag is still NULL.
	LockUnpaidJob(ctx context.Context, id uint) (*model.Job, error)
	// MarkJobPaid flips paid from NULL to true. It reports false when another
	// writer got there first.
	MarkJobPaid(ctx context.Context, id uint, at time.Time) (bool, error)
	SetBalance(ctx context.Context, profileID uint, balance decimal.Decimal) error
}

type Store interface {
	Reader
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
