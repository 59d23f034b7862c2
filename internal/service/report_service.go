package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nurpe/contracts-ledger/internal/config"
	"github.com/nurpe/contracts-ledger/internal/model"
	"github.com/nurpe/contracts-ledger/internal/repository"
)

type ExcelGenerator interface {
	BestClients(report model.ClientsReport) ([]byte, error)
}

type ReportService struct {
	repo         repository.Reader
	excel        ExcelGenerator
	defaultLimit int
}

type FileResult struct {
	FileName string
	Content  []byte
}

func NewReportService(repo repository.Reader, excel ExcelGenerator, cfg *config.Config) *ReportService {
	return &ReportService{
		repo:         repo,
		excel:        excel,
		defaultLimit: cfg.Report.DefaultLimit,
	}
}

// UnpaidJobs lists unpaid jobs on in-progress contracts the caller is party to.
func (s *ReportService) UnpaidJobs(ctx context.Context, callerID uint) ([]model.Job, error) {
	return s.repo.ListUnpaidJobs(ctx, callerID)
}

// BestProfession returns the contractor profession with the highest job total
// created between start and end, both days inclusive.
func (s *ReportService) BestProfession(ctx context.Context, start, end time.Time) (string, error) {
	from, to, err := reportWindow(start, end)
	if err != nil {
		return "", err
	}

	rows, err := s.repo.ProfessionTotals(ctx, from, to, 1)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 || rows[0].Profession == "" {
		return "", fmt.Errorf("%w: no profession earned in period", ErrNotFound)
	}
	return rows[0].Profession, nil
}

// BestClients returns up to limit clients ordered by their job total in the
// window. A zero limit falls back to the configured default.
func (s *ReportService) BestClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientTotal, error) {
	from, to, err := reportWindow(start, end)
	if err != nil {
		return nil, err
	}
	limit, err = s.resolveLimit(limit)
	if err != nil {
		return nil, err
	}
	return s.repo.ClientTotals(ctx, from, to, limit)
}

func (s *ReportService) ExportBestClients(ctx context.Context, start, end time.Time, limit int) (*FileResult, error) {
	clients, err := s.BestClients(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}
	limit, _ = s.resolveLimit(limit)

	report := model.ClientsReport{
		PeriodStart: dateOnly(start),
		PeriodEnd:   dateOnly(end),
		Limit:       limit,
		Clients:     clients,
	}
	content, err := s.excel.BestClients(report)
	if err != nil {
		return nil, err
	}

	return &FileResult{
		FileName: fmt.Sprintf("best-clients-%s-%s.xlsx", report.PeriodStart.Format("20060102"), report.PeriodEnd.Format("20060102")),
		Content:  content,
	}, nil
}

func (s *ReportService) resolveLimit(limit int) (int, error) {
	if limit < 0 {
		return 0, fmt.Errorf("%w: limit must be positive", ErrBadRequest)
	}
	if limit == 0 {
		return s.defaultLimit, nil
	}
	return limit, nil
}

// reportWindow turns two calendar days into the half-open range
// [start 00:00, end+1 00:00) in UTC. The order of the days is not checked.
func reportWindow(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start and end are required", ErrBadRequest)
	}
	return dateOnly(start), dateOnly(end).Add(24 * time.Hour), nil
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
