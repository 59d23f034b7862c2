package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nurpe/contracts-ledger/internal/auth"
	"github.com/nurpe/contracts-ledger/internal/model"
	"github.com/nurpe/contracts-ledger/internal/repository"
)

type ReceiptGenerator interface {
	Receipt(doc model.JobReceipt) ([]byte, error)
}

type ContractService struct {
	repo     repository.Reader
	receipts ReceiptGenerator
	now      func() time.Time
}

func NewContractService(repo repository.Reader, receipts ReceiptGenerator) *ContractService {
	return &ContractService{
		repo:     repo,
		receipts: receipts,
		now:      time.Now,
	}
}

// GetContract returns the contract only to its parties. A stranger gets
// ErrForbidden, which the transport reports exactly like ErrNotFound.
func (s *ContractService) GetContract(ctx context.Context, id, callerID uint) (*model.Contract, error) {
	contract, err := s.repo.GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: contract %d", ErrNotFound, id)
		}
		return nil, err
	}
	if !auth.CanView(contract, callerID) {
		return nil, fmt.Errorf("%w: contract %d", ErrForbidden, id)
	}
	return contract, nil
}

func (s *ContractService) ListContracts(ctx context.Context, callerID uint) ([]model.Contract, error) {
	return s.repo.ListContracts(ctx, callerID)
}

// JobReceipt renders a receipt for a paid job visible to the caller.
func (s *ContractService) JobReceipt(ctx context.Context, jobID, callerID uint) (*FileResult, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
		}
		return nil, err
	}

	contract, err := s.GetContract(ctx, job.ContractID, callerID)
	if err != nil {
		return nil, err
	}
	if !job.IsPaid() {
		return nil, fmt.Errorf("%w: job %d is not paid", ErrNotFound, jobID)
	}

	client, err := s.profile(ctx, contract.ClientID)
	if err != nil {
		return nil, err
	}
	contractor, err := s.profile(ctx, contract.ContractorID)
	if err != nil {
		return nil, err
	}

	content, err := s.receipts.Receipt(model.JobReceipt{
		Job:        *job,
		Contract:   *contract,
		Client:     *client,
		Contractor: *contractor,
		IssuedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return &FileResult{
		FileName: fmt.Sprintf("receipt-job-%d.pdf", job.ID),
		Content:  content,
	}, nil
}

func (s *ContractService) profile(ctx context.Context, id uint) (*model.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: profile %d", ErrNotFound, id)
		}
		return nil, err
	}
	return profile, nil
}
