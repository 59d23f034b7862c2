package repository

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/contracts-ledger/internal/model"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

var (
	_ Store = (*LedgerRepository)(nil)
	_ Tx    = (*LedgerRepository)(nil)
)

func (r *LedgerRepository) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LedgerRepository{db: tx})
	})
}

func (r *LedgerRepository) GetProfile(ctx context.Context, id uint) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *LedgerRepository) GetContract(ctx context.Context, id uint) (*model.Contract, error) {
	var contract model.Contract
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *LedgerRepository) GetJob(ctx context.Context, id uint) (*model.Job, error) {
	var job model.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *LedgerRepository) ListContracts(ctx context.Context, profileID uint) ([]model.Contract, error) {
	contracts := []model.Contract{}
	err := r.db.WithContext(ctx).
		Where("(client_id = ? OR contractor_id = ?)", profileID, profileID).
		Where("status <> ?", model.ContractStatusTerminated).
		Order("id ASC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *LedgerRepository) ListUnpaidJobs(ctx context.Context, profileID uint) ([]model.Job, error) {
	active := r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Select("id").
		Where("(client_id = ? OR contractor_id = ?)", profileID, profileID).
		Where("status = ?", model.ContractStatusInProgress)

	jobs := []model.Job{}
	err := r.db.WithContext(ctx).
		Where("paid IS NULL").
		Where("contract_id IN (?)", active).
		Order("id ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *LedgerRepository) PendingAmount(ctx context.Context, clientID uint) (decimal.Decimal, error) {
	contracts := r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Select("id").
		Where("client_id = ?", clientID).
		Where("status <> ?", model.ContractStatusTerminated)

	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&model.Job{}).
		Select("COALESCE(SUM(price), 0) AS total").
		Where("paid IS NULL").
		Where("contract_id IN (?)", contracts).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *LedgerRepository) LockProfiles(ctx context.Context, ids ...uint) (map[uint]*model.Profile, error) {
	ordered := append([]uint(nil), ids...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	var profiles []model.Profile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ordered).
		Order("id ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}

	result := make(map[uint]*model.Profile, len(profiles))
	for i := range profiles {
		result[profiles[i].ID] = &profiles[i]
	}
	return result, nil
}

func (r *LedgerRepository) LockUnpaidJob(ctx context.Context, id uint) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND paid IS NULL", id).
		Take(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *LedgerRepository) MarkJobPaid(ctx context.Context, id uint, at time.Time) (bool, error) {
	// The paid IS NULL guard makes this a compare-and-set: a second writer
	// sees zero affected rows instead of paying twice.
	result := r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ? AND paid IS NULL", id).
		Updates(map[string]interface{}{
			"paid":         true,
			"payment_date": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *LedgerRepository) SetBalance(ctx context.Context, profileID uint, balance decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", profileID).
		Update("balance", balance)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
