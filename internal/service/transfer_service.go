package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/contracts-ledger/internal/auth"
	"github.com/nurpe/contracts-ledger/internal/config"
	"github.com/nurpe/contracts-ledger/internal/model"
	"github.com/nurpe/contracts-ledger/internal/repository"
)

// TransferService moves money between profiles. Every movement runs inside a
// single store transaction together with the checks that guard it.
type TransferService struct {
	store          repository.Store
	depositDefault decimal.Decimal
	depositRate    decimal.Decimal
	now            func() time.Time
	log            zerolog.Logger
}

func NewTransferService(store repository.Store, cfg *config.Config, log zerolog.Logger) *TransferService {
	return &TransferService{
		store:          store,
		depositDefault: cfg.Ledger.DepositDefault,
		depositRate:    cfg.Ledger.DepositRate,
		now:            time.Now,
		log:            log,
	}
}

type DepositResult struct {
	Amount decimal.Decimal
}

// PayJob pays an unpaid job from the contract's client to its contractor and
// returns the job as stored after payment.
func (s *TransferService) PayJob(ctx context.Context, jobID, callerID uint) (*model.Job, error) {
	if err := s.requireCaller(ctx, callerID); err != nil {
		return nil, err
	}

	var paid *model.Job
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		job, err := tx.LockUnpaidJob(ctx, jobID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: job already paid or invalid id", ErrNotFound)
			}
			return err
		}

		contract, err := tx.GetContract(ctx, job.ContractID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: contract %d", ErrNotFound, job.ContractID)
			}
			return err
		}
		if !auth.CanPayFor(contract, callerID) {
			return fmt.Errorf("%w: job belongs to another client", ErrForbidden)
		}

		profiles, err := tx.LockProfiles(ctx, contract.ClientID, contract.ContractorID)
		if err != nil {
			return err
		}
		client, ok := profiles[contract.ClientID]
		if !ok {
			return fmt.Errorf("%w: client profile %d", ErrNotFound, contract.ClientID)
		}
		contractor, ok := profiles[contract.ContractorID]
		if !ok {
			return fmt.Errorf("%w: contractor profile %d", ErrNotFound, contract.ContractorID)
		}

		if !client.Balance.GreaterThan(job.Price) {
			return fmt.Errorf("%w: balance %s, price %s", ErrInsufficientFunds, client.Balance, job.Price)
		}

		paidAt := s.now().UTC()
		marked, err := tx.MarkJobPaid(ctx, job.ID, paidAt)
		if err != nil {
			return err
		}
		if !marked {
			return fmt.Errorf("%w: job already paid or invalid id", ErrNotFound)
		}

		client.Balance = client.Balance.Sub(job.Price)
		contractor.Balance = contractor.Balance.Add(job.Price)
		if err := writeBalances(ctx, tx, profiles); err != nil {
			return err
		}

		paidFlag := true
		job.Paid = &paidFlag
		job.PaymentDate = &paidAt
		paid = job
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("job_id", paid.ID).
		Uint("contract_id", paid.ContractID).
		Uint("caller_id", callerID).
		Str("amount", paid.Price.String()).
		Msg("job paid")
	return paid, nil
}

// Deposit moves money from the caller to another profile. The amount is a
// share of the caller's pending job total, or the configured default when
// nothing is pending.
func (s *TransferService) Deposit(ctx context.Context, targetID, callerID uint) (*DepositResult, error) {
	if err := s.requireCaller(ctx, callerID); err != nil {
		return nil, err
	}
	if targetID == callerID {
		return nil, fmt.Errorf("%w: cannot deposit to own account", ErrInvalidOperation)
	}
	if _, err := s.store.GetProfile(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: profile %d", ErrNotFound, targetID)
		}
		return nil, err
	}

	var amount decimal.Decimal
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		profiles, err := tx.LockProfiles(ctx, callerID, targetID)
		if err != nil {
			return err
		}
		caller, ok := profiles[callerID]
		if !ok {
			return ErrUnauthorized
		}
		target, ok := profiles[targetID]
		if !ok {
			return fmt.Errorf("%w: profile %d", ErrNotFound, targetID)
		}

		pending, err := tx.PendingAmount(ctx, callerID)
		if err != nil {
			return err
		}
		amount = s.depositAmount(pending)

		if !caller.Balance.GreaterThan(amount) {
			return fmt.Errorf("%w: balance %s, amount %s", ErrInsufficientFunds, caller.Balance, amount)
		}

		caller.Balance = caller.Balance.Sub(amount)
		target.Balance = target.Balance.Add(amount)
		return writeBalances(ctx, tx, profiles)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint("caller_id", callerID).
		Uint("target_id", targetID).
		Str("amount", amount.String()).
		Msg("deposit transferred")
	return &DepositResult{Amount: amount}, nil
}

// depositAmount rounds to cents so both legs store the same value.
func (s *TransferService) depositAmount(pending decimal.Decimal) decimal.Decimal {
	if pending.IsPositive() {
		return pending.Mul(s.depositRate).Round(2)
	}
	return s.depositDefault
}

func (s *TransferService) requireCaller(ctx context.Context, callerID uint) error {
	if _, err := s.store.GetProfile(ctx, callerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}
	return nil
}

func writeBalances(ctx context.Context, tx repository.Tx, profiles map[uint]*model.Profile) error {
	for id, profile := range profiles {
		if err := tx.SetBalance(ctx, id, profile.Balance); err != nil {
			return err
		}
	}
	return nil
}
